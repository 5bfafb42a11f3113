package zsxq

import (
	"context"
	"log/slog"
	"time"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/ratelimit"
)

// Crawler walks a group's topic listing backward in time. Pagination
// and comment retrieval are strictly sequential; the rate limiter is
// not built for concurrent callers.
type Crawler struct {
	client  *Client
	limiter *ratelimit.Limiter
}

func NewCrawler(client *Client, limiter *ratelimit.Limiter) *Crawler {
	return &Crawler{client: client, limiter: limiter}
}

// FetchRange returns every topic of the group created within
// [start, end), newest first, with comment threads attached.
//
// The listing API returns newest-first pages, so create_time is
// non-increasing across pages; the walk stops at the first item older
// than start. A page fetch that exhausts its retries ends pagination
// and returns what was accumulated. A failed comment fetch leaves that
// topic with an empty thread.
func (cr *Crawler) FetchRange(ctx context.Context, groupID string, start, end time.Time) ([]models.Topic, error) {
	var accepted []models.Topic

	cursor := end.Format(TimeLayout)
	page := 0

	for {
		page++
		if err := cr.limiter.Wait(ctx); err != nil {
			return accepted, err
		}
		slog.Info("fetching topic page", "group", groupID, "page", page)

		raws, err := cr.client.ListTopics(ctx, groupID, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return accepted, ctx.Err()
			}
			slog.Error("topic page failed, keeping partial results",
				"group", groupID, "page", page, "error", err)
			return accepted, nil
		}
		if len(raws) == 0 {
			break
		}

		for _, rt := range raws {
			created, err := time.Parse(TimeLayout, rt.CreateTime)
			if err != nil {
				slog.Warn("skipping topic with unparseable create_time",
					"topic", rt.TopicID.String(), "create_time", rt.CreateTime)
				continue
			}

			// 列表按时间倒序，越过 start 即可停止翻页
			if created.Before(start) {
				slog.Info("reached topics older than range, stopping",
					"group", groupID, "count", len(accepted))
				return accepted, nil
			}
			if !created.Before(end) {
				continue
			}

			topic, err := parseTopic(rt, groupID)
			if err != nil {
				slog.Warn("skipping unparseable topic", "topic", rt.TopicID.String(), "error", err)
				continue
			}

			topic.Comments, err = cr.fetchComments(ctx, topic.TopicID)
			if err != nil {
				return append(accepted, topic), err
			}
			accepted = append(accepted, topic)
		}

		cursor = raws[len(raws)-1].CreateTime
	}

	slog.Info("fetched all topics in range", "group", groupID, "count", len(accepted))
	return accepted, nil
}

// fetchComments retrieves a topic's thread. Only context cancellation
// is returned as an error; everything else degrades to an empty list.
func (cr *Crawler) fetchComments(ctx context.Context, topicID string) ([]models.Comment, error) {
	if err := cr.limiter.Wait(ctx); err != nil {
		return []models.Comment{}, err
	}

	raws, err := cr.client.ListComments(ctx, topicID)
	if err != nil {
		if ctx.Err() != nil {
			return []models.Comment{}, ctx.Err()
		}
		slog.Warn("comment fetch failed, keeping empty thread", "topic", topicID, "error", err)
		return []models.Comment{}, nil
	}

	comments := make([]models.Comment, 0, len(raws))
	for _, rc := range raws {
		comments = append(comments, parseComment(rc))
	}
	return comments, nil
}
