package internal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// FeedbackStore logs answer feedback locally in sqlite: resolved queries
// keep the retrieved context for future corpus curation, knowledge gaps are
// flagged for human review.
type FeedbackStore struct {
	db *sql.DB
}

func OpenFeedbackStore(path string) (*FeedbackStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open feedback db: %w", err)
	}

	s := &FeedbackStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *FeedbackStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS resolved (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			context TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS knowledge_gap (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create feedback schema: %w", err)
	}
	return nil
}

func (s *FeedbackStore) LogResolved(ctx context.Context, query, retrievedContext, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO resolved (query, context, answer, created_at) VALUES (?, ?, ?, ?)",
		query, retrievedContext, answer, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("log resolved query: %w", err)
	}
	return nil
}

func (s *FeedbackStore) LogGap(ctx context.Context, query, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO knowledge_gap (query, answer, created_at) VALUES (?, ?, ?)",
		query, answer, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("log knowledge gap: %w", err)
	}
	return nil
}

type FeedbackStats struct {
	Total          int
	Resolved       int
	Gaps           int
	ResolutionRate float64 // 0-100
}

func (s *FeedbackStore) Stats(ctx context.Context) (FeedbackStats, error) {
	var stats FeedbackStats

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM resolved").Scan(&stats.Resolved); err != nil {
		return FeedbackStats{}, fmt.Errorf("count resolved: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM knowledge_gap").Scan(&stats.Gaps); err != nil {
		return FeedbackStats{}, fmt.Errorf("count knowledge gaps: %w", err)
	}

	stats.Total = stats.Resolved + stats.Gaps
	if stats.Total > 0 {
		stats.ResolutionRate = float64(stats.Resolved) / float64(stats.Total) * 100
	}
	return stats, nil
}

type Gap struct {
	Query     string
	Answer    string
	CreatedAt time.Time
}

func (s *FeedbackStore) Gaps(ctx context.Context, limit int) ([]Gap, error) {
	query := "SELECT query, answer, created_at FROM knowledge_gap ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list knowledge gaps: %w", err)
	}
	defer rows.Close()

	var gaps []Gap
	for rows.Next() {
		var g Gap
		var createdAt string
		if err := rows.Scan(&g.Query, &g.Answer, &createdAt); err != nil {
			return nil, fmt.Errorf("scan knowledge gap: %w", err)
		}
		g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		gaps = append(gaps, g)
	}
	return gaps, rows.Err()
}

func (s *FeedbackStore) Close() error {
	return s.db.Close()
}
