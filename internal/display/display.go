// Package display renders run summaries for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/aggregate"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2).
		Width(60)

	bullishStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	bearishStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	dimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))
)

// PrintRunSummary prints the aggregated result of one analysis run.
func PrintRunSummary(label string, s aggregate.Summary, reportPath string) {
	fmt.Println(titleStyle.Render("📊 舆情分析 " + label))

	var b strings.Builder
	fmt.Fprintf(&b, "内容条数: %d\n", s.Total)
	fmt.Fprintf(&b, "财经相关: %d\n", s.Financial)
	if count := s.ByOutlook["看多"]; count > 0 {
		fmt.Fprintf(&b, "%s: %d\n", bullishStyle.Render("看多"), count)
	}
	if count := s.ByOutlook["看空"]; count > 0 {
		fmt.Fprintf(&b, "%s: %d\n", bearishStyle.Render("看空"), count)
	}
	for _, outlook := range []string{"中性", "分歧"} {
		if count := s.ByOutlook[outlook]; count > 0 {
			fmt.Fprintf(&b, "%s: %d\n", outlook, count)
		}
	}
	if len(s.Targets) > 0 {
		targets := s.Targets
		if len(targets) > 10 {
			targets = targets[:10]
		}
		fmt.Fprintf(&b, "提及标的: %s\n", strings.Join(targets, "、"))
	}
	if s.ParseFailures > 0 {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("解析失败: %d", s.ParseFailures)))
	}
	if reportPath != "" {
		fmt.Fprintf(&b, "%s", dimStyle.Render("报告: "+reportPath))
	}

	fmt.Println(boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}

// PrintFetchSummary prints the per-group fetch counts.
func PrintFetchSummary(counts map[string]int) {
	total := 0
	var b strings.Builder
	for group, n := range counts {
		total += n
		fmt.Fprintf(&b, "星球 %s: %d 条\n", group, n)
	}
	fmt.Fprintf(&b, "共 %d 条", total)

	fmt.Println(titleStyle.Render("📥 内容抓取完成"))
	fmt.Println(boxStyle.Render(b.String()))
}
