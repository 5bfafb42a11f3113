// Package aggregate flattens analysis results into the tabular form the
// report writer and notifier consume.
package aggregate

import (
	"sort"
	"time"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/analyzer"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
)

// Row is one line of the analysis table. In topic mode there is one row
// per topic; in security mode one row per (text, security) pair.
type Row struct {
	GroupID     string      `json:"group_id"`
	TopicID     string      `json:"topic_id"`
	Kind        models.Kind `json:"kind"`
	Author      string      `json:"author"`
	CreateTime  time.Time   `json:"create_time"`
	Text        string      `json:"text"`
	IsFinancial bool        `json:"is_financial"`
	ProductType string      `json:"product_type"`
	Targets     []string    `json:"targets"`
	Outlook     string      `json:"outlook"`
	Confidence  float64     `json:"confidence,omitempty"`
	Reason      string      `json:"reason"`
	Summary     string      `json:"summary"`
}

// Summary carries the run-level counts shown in notifications and at
// the top of reports.
type Summary struct {
	Total         int            `json:"total"`
	Financial     int            `json:"financial"`
	ByOutlook     map[string]int `json:"by_outlook"`
	ByProduct     map[string]int `json:"by_product"`
	Targets       []string       `json:"targets"`
	ParseFailures int            `json:"parse_failures"`
}

// Table is the aggregated output of one analysis run.
type Table struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// FromTopicResults builds the table for topic-mode analysis.
func FromTopicResults(results []analyzer.Result) Table {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, Row{
			GroupID:     r.Topic.GroupID,
			TopicID:     r.Topic.TopicID,
			Kind:        models.KindPost,
			Author:      r.Topic.Author,
			CreateTime:  r.Topic.CreateTime,
			Text:        r.Topic.Text,
			IsFinancial: r.Classification.IsFinancial,
			ProductType: r.Classification.ProductType,
			Targets:     r.Classification.Targets,
			Outlook:     r.Classification.Outlook,
			Reason:      r.Classification.Reason,
			Summary:     r.Classification.Summary,
		})
	}

	summary := summarize(rows)
	for _, r := range results {
		if r.Classification.ParseFailed {
			summary.ParseFailures++
		}
	}
	return Table{Rows: rows, Summary: summary}
}

// FromSecurityResults builds the table for security-mode analysis. Every
// result is financial by construction: non-financial units never reach
// the model in that mode.
func FromSecurityResults(results []analyzer.SecurityResult) Table {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		row := Row{
			Kind:        r.Unit.Kind,
			Text:        r.Unit.Text,
			IsFinancial: true,
			Targets:     []string{r.Security},
			Outlook:     r.Sentiment,
			Confidence:  r.Confidence,
			Reason:      r.Reason,
		}
		if r.Unit.Topic != nil {
			row.GroupID = r.Unit.Topic.GroupID
			row.TopicID = r.Unit.Topic.TopicID
			row.Author = r.Unit.Topic.Author
			row.CreateTime = r.Unit.Topic.CreateTime
		}
		if r.Unit.Comment != nil {
			row.Author = r.Unit.Comment.Author
			row.CreateTime = r.Unit.Comment.CreateTime
		}
		rows = append(rows, row)
	}
	return Table{Rows: rows, Summary: summarize(rows)}
}

// summarize walks the rows once and collects the run-level counts.
// Outlook and product counts only cover financial rows.
func summarize(rows []Row) Summary {
	s := Summary{
		Total:     len(rows),
		ByOutlook: map[string]int{},
		ByProduct: map[string]int{},
	}

	seen := map[string]struct{}{}
	for _, r := range rows {
		if !r.IsFinancial {
			continue
		}
		s.Financial++
		if r.Outlook != "" && r.Outlook != models.OutlookNone {
			s.ByOutlook[r.Outlook]++
		}
		if r.ProductType != "" && r.ProductType != models.ProductNone {
			s.ByProduct[r.ProductType]++
		}
		for _, t := range r.Targets {
			if t == "" || t == models.ProductNone {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			s.Targets = append(s.Targets, t)
		}
	}

	sort.Strings(s.Targets)
	return s
}
