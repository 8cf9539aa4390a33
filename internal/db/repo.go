package db

import (
	"context"
	"database/sql"
	"time"

	"dockstats/internal/models"
)

// Repository is the scrape journal.
type Repository struct {
	db *sql.DB
}

type ScrapeSummary struct {
	Total       int64      `json:"total"`
	Failed      int64      `json:"failed"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *sql.DB { return r.db }

func (r *Repository) InsertScrape(ctx context.Context, rec models.ScrapeRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO scrapes
		(started_at,duration_ms,source,containers,samples,outcome,stage,error)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.StartedAt.UTC(), rec.DurationMS, rec.Source, rec.Containers, rec.Samples, rec.Outcome, rec.Stage, rec.Error)
	return err
}

// RecentScrapes returns up to limit scrapes, newest first. An outcome of ""
// matches every scrape.
func (r *Repository) RecentScrapes(ctx context.Context, outcome string, limit int) ([]models.ScrapeRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query := `SELECT id,started_at,duration_ms,source,containers,samples,outcome,stage,error FROM scrapes`
	args := []any{}
	if outcome != "" {
		query += ` WHERE outcome = ?`
		args = append(args, outcome)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]models.ScrapeRecord, 0, limit)
	for rows.Next() {
		var rec models.ScrapeRecord
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.DurationMS, &rec.Source, &rec.Containers, &rec.Samples, &rec.Outcome, &rec.Stage, &rec.Error); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) Summary(ctx context.Context, from time.Time) (ScrapeSummary, error) {
	var s ScrapeSummary
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(CASE WHEN outcome != ? THEN 1 ELSE 0 END), 0)
		FROM scrapes WHERE started_at >= ?`, models.OutcomeOK, from.UTC()).Scan(&s.Total, &s.Failed)
	if err != nil {
		return s, err
	}
	var last time.Time
	err = r.db.QueryRowContext(ctx, `SELECT started_at FROM scrapes WHERE outcome = ? ORDER BY started_at DESC LIMIT 1`, models.OutcomeOK).Scan(&last)
	if err == sql.ErrNoRows {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	last = last.UTC()
	s.LastSuccess = &last
	return s, nil
}

func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scrapes WHERE started_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
