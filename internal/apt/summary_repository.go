package apt

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SummaryRepository reads and writes apt_last_per rows:
// (id, apt_name, apt_py, last_avg_price, last_avg_rent, last_per, updated)
// with a unique index on (apt_name, apt_py).
// numeric 컬럼은 텍스트로 스캔해서 decimal로 파싱한다.
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository creates a new valuation snapshot repository
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

// Get loads the snapshot for one identity. Returns (nil, nil) when none
// exists yet.
func (r *SummaryRepository) Get(ctx context.Context, name, py string) (*Summary, error) {
	query := `
		SELECT id, apt_name, apt_py,
		       last_avg_price::text, last_avg_rent::text, last_per::text,
		       updated
		FROM apt_last_per
		WHERE apt_name = $1 AND apt_py = $2
	`

	var s Summary
	var price, rent, per string
	err := r.pool.QueryRow(ctx, query, name, py).Scan(
		&s.ID, &s.AptName, &s.AptPY, &price, &rent, &per, &s.Updated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get summary %s/%s: %w", name, py, err)
	}

	if s.LastAvgPrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse last_avg_price %q: %w", price, err)
	}
	if s.LastAvgRent, err = decimal.NewFromString(rent); err != nil {
		return nil, fmt.Errorf("parse last_avg_rent %q: %w", rent, err)
	}
	if s.LastPER, err = decimal.NewFromString(per); err != nil {
		return nil, fmt.Errorf("parse last_per %q: %w", per, err)
	}

	return &s, nil
}

// Insert creates the first snapshot row for an identity
func (r *SummaryRepository) Insert(ctx context.Context, s *Summary) error {
	query := `
		INSERT INTO apt_last_per (apt_name, apt_py, last_avg_price, last_avg_rent, last_per, updated)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		s.AptName, s.AptPY,
		s.LastAvgPrice.String(), s.LastAvgRent.String(), s.LastPER.String(),
		s.Updated,
	)
	if err != nil {
		return fmt.Errorf("insert summary %s/%s: %w", s.AptName, s.AptPY, err)
	}
	return nil
}

// Update overwrites the snapshot values for an identity in place
func (r *SummaryRepository) Update(ctx context.Context, s *Summary) error {
	query := `
		UPDATE apt_last_per
		SET last_avg_price = $3, last_avg_rent = $4, last_per = $5, updated = $6
		WHERE apt_name = $1 AND apt_py = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		s.AptName, s.AptPY,
		s.LastAvgPrice.String(), s.LastAvgRent.String(), s.LastPER.String(),
		s.Updated,
	)
	if err != nil {
		return fmt.Errorf("update summary %s/%s: %w", s.AptName, s.AptPY, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update summary %s/%s: no such row", s.AptName, s.AptPY)
	}
	return nil
}

// List returns all snapshots ordered for the dashboard
func (r *SummaryRepository) List(ctx context.Context) ([]Summary, error) {
	query := `
		SELECT id, apt_name, apt_py,
		       last_avg_price::text, last_avg_rent::text, last_per::text,
		       updated
		FROM apt_last_per
		ORDER BY apt_name, apt_py
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var result []Summary
	for rows.Next() {
		var s Summary
		var price, rent, per string
		if err := rows.Scan(&s.ID, &s.AptName, &s.AptPY, &price, &rent, &per, &s.Updated); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if s.LastAvgPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse last_avg_price %q: %w", price, err)
		}
		if s.LastAvgRent, err = decimal.NewFromString(rent); err != nil {
			return nil, fmt.Errorf("parse last_avg_rent %q: %w", rent, err)
		}
		if s.LastPER, err = decimal.NewFromString(per); err != nil {
			return nil, fmt.Errorf("parse last_per %q: %w", per, err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Delete removes the snapshot row for one identity, if any
func (r *SummaryRepository) Delete(ctx context.Context, name, py string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM apt_last_per WHERE apt_name = $1 AND apt_py = $2`, name, py)
	if err != nil {
		return fmt.Errorf("delete summary %s/%s: %w", name, py, err)
	}
	return nil
}
