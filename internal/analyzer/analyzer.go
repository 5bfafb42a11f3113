// Package analyzer runs the two-stage financial classification: a free
// deterministic keyword prefilter, then batched language model calls
// with provider fallback and bounded retry.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/config"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/retry"
)

const nonFinancialSummary = "非财经内容"

// Result pairs one topic with its classification.
type Result struct {
	Topic          models.Topic          `json:"topic"`
	Classification models.Classification `json:"classification"`
}

// Unit is one classifiable text: a post body or a single comment.
type Unit struct {
	Topic   *models.Topic
	Comment *models.Comment // nil for the post itself
	Kind    models.Kind
	Text    string
}

// SecurityResult is one (unit, security) sentiment row produced in
// security mode.
type SecurityResult struct {
	Unit       Unit
	Security   string
	Sentiment  string
	Confidence float64
	Reason     string
}

// Analyzer drives classification. Primary and secondary providers form
// a one-level fallback chain; nil providers are allowed as long as the
// input never needs a model call.
type Analyzer struct {
	primary   Provider
	secondary Provider
	policy    retry.Policy
	callDelay time.Duration
	batchSize int
}

// New builds an analyzer from configuration, constructing providers
// for whichever API keys are present. DeepSeek is the primary, the
// OpenAI-compatible endpoint the fallback.
func New(ctx context.Context, cfg *config.Config) (*Analyzer, error) {
	a := &Analyzer{
		policy:    retry.Model(),
		callDelay: cfg.ModelCallDelay,
		batchSize: cfg.BatchSize,
	}

	if cfg.DeepSeekAPIKey != "" {
		p, err := NewDeepSeekProvider(ctx, cfg.DeepSeekAPIKey, cfg.DeepSeekModel)
		if err != nil {
			return nil, err
		}
		a.primary = p
	}
	if cfg.OpenAIAPIKey != "" {
		p, err := NewOpenAIProvider(ctx, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		if a.primary == nil {
			a.primary = p
		} else {
			a.secondary = p
		}
	}

	return a, nil
}

// NewWithProviders wires explicit providers; tests and callers with
// custom backends use this instead of New.
func NewWithProviders(primary, secondary Provider, cfg *config.Config) *Analyzer {
	return &Analyzer{
		primary:   primary,
		secondary: secondary,
		policy:    retry.Model(),
		callDelay: cfg.ModelCallDelay,
		batchSize: cfg.BatchSize,
	}
}

// AnalyzeTopics classifies each topic. Topics with no financial
// keyword are resolved locally without a model call; model or parse
// failures degrade to safe defaults at item granularity. The only
// run-level errors are a missing provider configuration and context
// cancellation.
func (a *Analyzer) AnalyzeTopics(ctx context.Context, topics []models.Topic) ([]Result, error) {
	results := make([]Result, 0, len(topics))

	for i := range topics {
		topic := topics[i]
		if strings.TrimSpace(topic.Text) == "" {
			continue
		}

		if !MatchesFinanceKeyword(topic.AllText()) {
			results = append(results, Result{
				Topic:          topic,
				Classification: models.NonFinancial(nonFinancialSummary),
			})
			continue
		}

		slog.Info("analyzing topic", "topic", topic.TopicID, "progress",
			fmt.Sprintf("%d/%d", i+1, len(topics)))

		raw, err := a.generate(ctx, buildTopicPrompt(&topic))
		if err != nil {
			if errors.Is(err, ErrNoProvider) || ctx.Err() != nil {
				return results, err
			}
			slog.Error("topic analysis failed, using fallback result",
				"topic", topic.TopicID, "error", err)
			fallback := models.NonFinancial("分析失败")
			fallback.Reason = fmt.Sprintf("分析失败: %v", err)
			results = append(results, Result{Topic: topic, Classification: fallback})
			continue
		}

		results = append(results, Result{
			Topic:          topic,
			Classification: parseClassification(raw),
		})
	}

	financial := 0
	for _, r := range results {
		if r.Classification.IsFinancial {
			financial++
		}
	}
	slog.Info("topic analysis complete", "topics", len(results), "financial", financial)
	return results, nil
}

// AnalyzeSecurities runs the batched per-security sentiment mode over
// every post and comment that passes the prefilter. A failed batch
// degrades to individual per-text calls rather than failing the run.
func (a *Analyzer) AnalyzeSecurities(ctx context.Context, topics []models.Topic) ([]SecurityResult, error) {
	units := splitUnits(topics)

	var candidates []Unit
	for _, u := range units {
		if MatchesFinanceKeyword(u.Text) {
			candidates = append(candidates, u)
		}
	}
	slog.Info("security analysis starting", "units", len(units), "candidates", len(candidates))

	batchSize := a.batchSize
	if batchSize < 1 {
		batchSize = 1
	}

	var results []SecurityResult
	for from := 0; from < len(candidates); from += batchSize {
		to := from + batchSize
		if to > len(candidates) {
			to = len(candidates)
		}
		batch := candidates[from:to]

		entries, err := a.analyzeBatch(ctx, batch)
		if err != nil {
			if errors.Is(err, ErrNoProvider) || ctx.Err() != nil {
				return results, err
			}
			slog.Warn("batch failed, degrading to individual calls",
				"batch_start", from, "error", err)
			entries = a.analyzeIndividually(ctx, batch)
			if ctx.Err() != nil {
				return append(results, entries...), ctx.Err()
			}
		}
		results = append(results, entries...)
	}

	return results, nil
}

// analyzeBatch sends one numbered prompt covering the whole batch and
// maps returned indexes back onto units. Out-of-range indexes are
// dropped.
func (a *Analyzer) analyzeBatch(ctx context.Context, batch []Unit) ([]SecurityResult, error) {
	texts := make([]string, len(batch))
	for i, u := range batch {
		texts[i] = u.Text
	}

	raw, err := a.generate(ctx, buildBatchPrompt(texts))
	if err != nil {
		return nil, err
	}

	entries, ok := parseBatch(raw)
	if !ok {
		return nil, fmt.Errorf("batch response carried no JSON array")
	}

	var results []SecurityResult
	for _, e := range entries {
		if e.Index < 1 || e.Index > len(batch) || e.Security == "" {
			continue
		}
		results = append(results, SecurityResult{
			Unit:       batch[e.Index-1],
			Security:   e.Security,
			Sentiment:  e.Sentiment,
			Confidence: e.Confidence,
			Reason:     e.Reason,
		})
	}
	return results, nil
}

// analyzeIndividually is the degraded path: one call per unit, failures
// skipped at unit granularity.
func (a *Analyzer) analyzeIndividually(ctx context.Context, batch []Unit) []SecurityResult {
	var results []SecurityResult
	for _, u := range batch {
		raw, err := a.generate(ctx, buildBatchPrompt([]string{u.Text}))
		if err != nil {
			if ctx.Err() != nil {
				return results
			}
			slog.Warn("individual call failed, skipping unit", "error", err)
			continue
		}
		entries, ok := parseBatch(raw)
		if !ok {
			slog.Warn("individual response carried no JSON array, skipping unit")
			continue
		}
		for _, e := range entries {
			if e.Security == "" {
				continue
			}
			results = append(results, SecurityResult{
				Unit:       u,
				Security:   e.Security,
				Sentiment:  e.Sentiment,
				Confidence: e.Confidence,
				Reason:     e.Reason,
			})
		}
	}
	return results
}

// generate runs one classification call under the model retry policy.
// Within each attempt the primary provider is tried first and the
// secondary, when configured, picks up its failure. The inter-call
// delay throttles model traffic independently of the source limiter.
func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	if a.primary == nil && a.secondary == nil {
		return "", ErrNoProvider
	}

	if err := sleepCtx(ctx, a.callDelay); err != nil {
		return "", err
	}

	var out string
	err := a.policy.Do(ctx, func() error {
		var callErr error
		out, callErr = a.callOnce(ctx, prompt)
		return callErr
	})
	return out, err
}

// callOnce encodes the fallback decision table: primary first, then
// secondary exactly once. No recursion, no silent skips.
func (a *Analyzer) callOnce(ctx context.Context, prompt string) (string, error) {
	if a.primary == nil {
		return a.secondary.Generate(ctx, prompt)
	}

	out, err := a.primary.Generate(ctx, prompt)
	if err == nil {
		return out, nil
	}
	if a.secondary == nil {
		return "", err
	}

	slog.Warn("primary provider failed, falling back",
		"primary", a.primary.Name(), "secondary", a.secondary.Name(), "error", err)
	return a.secondary.Generate(ctx, prompt)
}

// splitUnits fans topics out into per-post and per-comment text units.
func splitUnits(topics []models.Topic) []Unit {
	var units []Unit
	for i := range topics {
		topic := &topics[i]
		if strings.TrimSpace(topic.Text) != "" {
			units = append(units, Unit{Topic: topic, Kind: models.KindPost, Text: topic.Text})
		}
		for j := range topic.Comments {
			comment := &topic.Comments[j]
			if strings.TrimSpace(comment.Text) == "" {
				continue
			}
			units = append(units, Unit{
				Topic:   topic,
				Comment: comment,
				Kind:    models.KindComment,
				Text:    comment.Text,
			})
		}
	}
	return units
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
