// Package checkpoint persists the per-group high-water mark used to
// resume incremental fetches.
package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
)

// TimeLayout matches the source API timestamp format, so stored
// checkpoints read back into the same instant, timezone included.
const TimeLayout = "2006-01-02T15:04:05.000-0700"

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS checkpoints (
		group_id        TEXT PRIMARY KEY,
		last_fetch_time TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LastFetchTime returns the stored high-water mark for a group. The
// second return is false when no checkpoint exists; an unparseable
// stored value is treated the same way rather than failing the run.
func (s *Store) LastFetchTime(ctx context.Context, groupID string) (time.Time, bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		"SELECT last_fetch_time FROM checkpoints WHERE group_id = ?", groupID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query checkpoint: %w", err)
	}

	ts, err := time.Parse(TimeLayout, stored)
	if err != nil {
		slog.Warn("ignoring unparseable checkpoint", "group", groupID, "value", stored)
		return time.Time{}, false, nil
	}
	return ts, true, nil
}

// Update persists the newest create_time of the batch as the group's
// checkpoint. The stored value only moves forward: replaying an old
// batch never rewinds it. Empty batches are a no-op by contract.
func (s *Store) Update(ctx context.Context, groupID string, topics []models.Topic) error {
	if len(topics) == 0 {
		return nil
	}

	newest := topics[0].CreateTime
	for _, topic := range topics[1:] {
		if topic.CreateTime.After(newest) {
			newest = topic.CreateTime
		}
	}

	if existing, ok, err := s.LastFetchTime(ctx, groupID); err != nil {
		return err
	} else if ok && existing.After(newest) {
		return nil
	}

	now := time.Now().Format(TimeLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (group_id, last_fetch_time, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(group_id) DO UPDATE SET
			last_fetch_time = excluded.last_fetch_time,
			updated_at      = excluded.updated_at`,
		groupID, newest.Format(TimeLayout), now)
	if err != nil {
		return fmt.Errorf("update checkpoint: %w", err)
	}
	return nil
}
