package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// AnalyticsRepository stores usage events as JSON blobs.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a repository over an open database.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) SaveSearchEvent(ctx context.Context, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_queries (query_data, created_at) VALUES (?, ?)`,
		string(payload), time.Now().UTC())
	return err
}

func (r *AnalyticsRepository) RecentSearchEvents(ctx context.Context, limit int) ([][]byte, error) {
	var rows []string
	err := r.db.SelectContext(ctx, &rows,
		`SELECT query_data FROM search_queries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	payloads := make([][]byte, len(rows))
	for i, row := range rows {
		payloads[i] = []byte(row)
	}
	return payloads, nil
}
