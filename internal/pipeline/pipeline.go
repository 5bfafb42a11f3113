// Package pipeline ties fetch, analysis, reporting and checkpointing
// into the runs the CLI commands execute.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/aggregate"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/analyzer"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/auth"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/checkpoint"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/config"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/ratelimit"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/zsxq"
)

// Window selects which slice of each group's timeline a fetch covers.
// A zero Start falls back to the start of the current day, unless
// SinceLast asks for the group's checkpoint instead. A zero End means
// now.
type Window struct {
	Start     time.Time
	End       time.Time
	SinceLast bool
}

// Pipeline owns the shared collaborators of one process: configuration,
// the checkpoint store and the request limiter.
type Pipeline struct {
	cfg     *config.Config
	store   *checkpoint.Store
	limiter *ratelimit.Limiter
}

func New(cfg *config.Config, store *checkpoint.Store) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		store:   store,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
	}
}

// Fetch pulls every configured group's topics for the window and
// advances each group's checkpoint past what was fetched. The per-group
// counts feed the fetch summary. One group failing does not abort the
// others.
func (p *Pipeline) Fetch(ctx context.Context, window Window) ([]models.Topic, map[string]int, error) {
	creds, err := auth.NewFileStore(p.cfg.CookiePath).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", zsxq.ErrAuthFailed, err)
	}

	client := zsxq.NewClient(creds, p.cfg)
	if err := client.Validate(ctx); err != nil {
		return nil, nil, err
	}

	crawler := zsxq.NewCrawler(client, p.limiter)

	var all []models.Topic
	counts := make(map[string]int, len(p.cfg.GroupIDs))
	for _, groupID := range p.cfg.GroupIDs {
		start, end, err := p.resolveWindow(ctx, groupID, window)
		if err != nil {
			return all, counts, err
		}
		slog.Info("fetching group", "group", groupID,
			"start", start.Format(zsxq.TimeLayout), "end", end.Format(zsxq.TimeLayout))

		topics, err := crawler.FetchRange(ctx, groupID, start, end)
		if err != nil {
			return append(all, topics...), counts, err
		}

		if len(topics) > 0 {
			if err := p.store.Update(ctx, groupID, topics); err != nil {
				slog.Error("checkpoint update failed", "group", groupID, "error", err)
			}
		}
		counts[groupID] = len(topics)
		all = append(all, topics...)
	}

	return all, counts, nil
}

// resolveWindow turns the requested window into concrete bounds for one
// group. SinceLast reads the group's checkpoint and falls back to now
// when none exists, which makes the first incremental run a no-op by
// contract.
func (p *Pipeline) resolveWindow(ctx context.Context, groupID string, w Window) (time.Time, time.Time, error) {
	end := w.End
	if end.IsZero() {
		end = time.Now()
	}

	if !w.Start.IsZero() {
		return w.Start, end, nil
	}

	if w.SinceLast {
		ts, ok, err := p.store.LastFetchTime(ctx, groupID)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if !ok {
			return time.Now(), end, nil
		}
		return ts, end, nil
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return startOfDay, end, nil
}

// Analyze classifies topics in the configured mode and aggregates the
// results into one table.
func (p *Pipeline) Analyze(ctx context.Context, topics []models.Topic) (aggregate.Table, error) {
	a, err := analyzer.New(ctx, p.cfg)
	if err != nil {
		return aggregate.Table{}, err
	}
	return p.analyzeWith(ctx, a, topics)
}

func (p *Pipeline) analyzeWith(ctx context.Context, a *analyzer.Analyzer, topics []models.Topic) (aggregate.Table, error) {
	switch p.cfg.AnalysisMode {
	case "security":
		results, err := a.AnalyzeSecurities(ctx, topics)
		return aggregate.FromSecurityResults(results), err
	default:
		results, err := a.AnalyzeTopics(ctx, topics)
		return aggregate.FromTopicResults(results), err
	}
}
