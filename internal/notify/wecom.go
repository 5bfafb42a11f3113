// Package notify pushes run updates to a WeCom group robot webhook.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/aggregate"
)

// Notifier posts messages to one webhook URL. An empty URL disables
// delivery: every send becomes a logged no-op so the pipeline never
// branches on notification config.
type Notifier struct {
	webhook string
	http    *resty.Client
}

func New(webhook string) *Notifier {
	return &Notifier{
		webhook: webhook,
		http: resty.New().
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

type wecomResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// SendText posts a plain text message.
func (n *Notifier) SendText(ctx context.Context, text string) error {
	return n.post(ctx, map[string]any{
		"msgtype": "text",
		"text":    map[string]string{"content": text},
	})
}

// SendMarkdown posts a markdown message.
func (n *Notifier) SendMarkdown(ctx context.Context, content string) error {
	return n.post(ctx, map[string]any{
		"msgtype":  "markdown",
		"markdown": map[string]string{"content": content},
	})
}

// SendAlert posts a failure notice for one run stage.
func (n *Notifier) SendAlert(ctx context.Context, stage string, cause error) error {
	return n.SendText(ctx, fmt.Sprintf("⚠️ %s失败: %v", stage, cause))
}

// SendSummary posts the run-level analysis digest.
func (n *Notifier) SendSummary(ctx context.Context, label string, s aggregate.Summary, reportPath string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## 📊 舆情分析 %s\n", label)
	fmt.Fprintf(&b, "- 内容条数: %d\n", s.Total)
	fmt.Fprintf(&b, "- 财经相关: %d\n", s.Financial)
	for _, outlook := range []string{"看多", "看空", "中性", "分歧"} {
		if count := s.ByOutlook[outlook]; count > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", outlook, count)
		}
	}
	if len(s.Targets) > 0 {
		targets := s.Targets
		if len(targets) > 10 {
			targets = targets[:10]
		}
		fmt.Fprintf(&b, "- 提及标的: %s\n", strings.Join(targets, "、"))
	}
	if s.ParseFailures > 0 {
		fmt.Fprintf(&b, "- 解析失败: %d\n", s.ParseFailures)
	}
	if reportPath != "" {
		fmt.Fprintf(&b, "\n报告文件: %s", reportPath)
	}
	return n.SendMarkdown(ctx, b.String())
}

func (n *Notifier) post(ctx context.Context, payload map[string]any) error {
	if n.webhook == "" {
		slog.Warn("wecom webhook not configured, skipping notification")
		return nil
	}

	var result wecomResponse
	resp, err := n.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post(n.webhook)
	if err != nil {
		return fmt.Errorf("wecom request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("wecom returned status %d", resp.StatusCode())
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("wecom rejected message: %d %s", result.ErrCode, result.ErrMsg)
	}
	return nil
}
