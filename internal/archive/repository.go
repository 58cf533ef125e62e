package archive

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/topgainers/internal/gainers"
)

// Repository persists gainer records to Postgres. The Redis ledger only
// covers a rolling week; rows archived here survive the weekday purge.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new archive repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the archive table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS gainer_archive (
			id          BIGSERIAL PRIMARY KEY,
			symbol      TEXT        NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL,
			weekday     TEXT        NOT NULL,
			trade_date  DATE        NOT NULL,
			UNIQUE (symbol, trade_date)
		)
	`

	_, err := r.pool.Exec(ctx, query)
	return err
}

// Save saves a single gainer record
func (r *Repository) Save(ctx context.Context, rec gainers.Record, loc *time.Location) error {
	observed := time.Unix(rec.Timestamp, 0).In(loc)

	query := `
		INSERT INTO gainer_archive (symbol, observed_at, weekday, trade_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			observed_at = EXCLUDED.observed_at,
			weekday = EXCLUDED.weekday
	`

	_, err := r.pool.Exec(ctx, query,
		rec.Symbol, observed, rec.Day, observed.Format("2006-01-02"),
	)
	return err
}

// SaveBatch saves multiple gainer records
func (r *Repository) SaveBatch(ctx context.Context, records []gainers.Record, loc *time.Location) error {
	if len(records) == 0 {
		return nil
	}

	for _, rec := range records {
		if err := r.Save(ctx, rec, loc); err != nil {
			return err
		}
	}
	return nil
}

// GetByDateRange retrieves archived symbols observed within the date range
func (r *Repository) GetByDateRange(ctx context.Context, from, to time.Time) ([]gainers.Record, error) {
	query := `
		SELECT symbol, observed_at, weekday
		FROM gainer_archive
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY observed_at ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []gainers.Record
	for rows.Next() {
		var symbol, weekday string
		var observed time.Time
		if err := rows.Scan(&symbol, &observed, &weekday); err != nil {
			return nil, err
		}
		rec := gainers.NewRecord(symbol, observed)
		rec.Day = weekday
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteOlderThan removes archive rows with a trade date before the cutoff
// and returns how many were deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM gainer_archive WHERE trade_date < $1`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
