package apt

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aptper/internal/series"
)

// Repository reads and writes apt_info rows:
// (id, name, py, deal_type, seq, description, price_trend jsonb, status, address, built)
// ⭐ SSOT: 시세 원본 저장소 접근은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new apartment repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTracked returns the distinct tracked units (status = 1).
// 배치 드라이버가 순회하는 목록이다.
func (r *Repository) ListTracked(ctx context.Context) ([]TrackedUnit, error) {
	query := `
		SELECT DISTINCT name, py, COALESCE(seq, ''), COALESCE(description, '')
		FROM apt_info
		WHERE status = 1
		ORDER BY name, py
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tracked units: %w", err)
	}
	defer rows.Close()

	var units []TrackedUnit
	for rows.Next() {
		var u TrackedUnit
		if err := rows.Scan(&u.Name, &u.SizeClass, &u.Seq, &u.Description); err != nil {
			return nil, fmt.Errorf("scan tracked unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// GetRecord loads one raw-series row by its (name, py, deal_type) key.
// Returns (nil, nil) when the row does not exist.
func (r *Repository) GetRecord(ctx context.Context, name, py string, deal DealType) (*Apartment, error) {
	query := `
		SELECT id, name, py, deal_type, COALESCE(seq, ''), COALESCE(description, ''),
		       COALESCE(price_trend, '[]'::jsonb), status,
		       COALESCE(address, ''), COALESCE(built, 0)
		FROM apt_info
		WHERE name = $1 AND py = $2 AND deal_type = $3
		LIMIT 1
	`

	var a Apartment
	var trendRaw []byte
	var dealRaw string
	err := r.pool.QueryRow(ctx, query, name, py, string(deal)).Scan(
		&a.ID, &a.Name, &a.SizeClass, &dealRaw, &a.Seq, &a.Description,
		&trendRaw, &a.Status, &a.Address, &a.BuiltYM,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s/%s/%s: %w", name, py, deal, err)
	}

	a.DealType = DealType(dealRaw)

	trend, err := series.DecodeTrend(trendRaw)
	if err != nil {
		return nil, fmt.Errorf("decode trend for %s/%s/%s: %w", name, py, deal, err)
	}
	a.Trend = trend

	return &a, nil
}

// SaveTrend replaces the stored price trend of one row
func (r *Repository) SaveTrend(ctx context.Context, id int64, trend series.Series) error {
	data, err := series.EncodeTrend(trend)
	if err != nil {
		return fmt.Errorf("encode trend: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE apt_info SET price_trend = $1 WHERE id = $2`, data, id)
	if err != nil {
		return fmt.Errorf("save trend id=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save trend id=%d: no such row", id)
	}
	return nil
}

// UnitMeta is a display-oriented view of one tracked unit
type UnitMeta struct {
	Name      string `json:"name"`
	SizeClass string `json:"py"`
	Address   string `json:"address,omitempty"`
	BuiltYM   int    `json:"built,omitempty"`
}

// ListUnits returns one metadata row per (name, py) pair.
// 표시 이름은 소비자가 Identity.DisplayName으로 조립한다.
func (r *Repository) ListUnits(ctx context.Context) ([]UnitMeta, error) {
	query := `
		SELECT DISTINCT ON (name, py)
		       name, py, COALESCE(address, ''), COALESCE(built, 0)
		FROM apt_info
		ORDER BY name, py, built
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []UnitMeta
	for rows.Next() {
		var u UnitMeta
		if err := rows.Scan(&u.Name, &u.SizeClass, &u.Address, &u.BuiltYM); err != nil {
			return nil, fmt.Errorf("scan unit meta: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// DescriptionRow pairs a row id with its raw description for meta backfill
type DescriptionRow struct {
	ID          int64
	Description string
}

// ListDescriptions returns every row that has a description
func (r *Repository) ListDescriptions(ctx context.Context) ([]DescriptionRow, error) {
	query := `
		SELECT id, description
		FROM apt_info
		WHERE description IS NOT NULL AND description <> ''
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list descriptions: %w", err)
	}
	defer rows.Close()

	var result []DescriptionRow
	for rows.Next() {
		var d DescriptionRow
		if err := rows.Scan(&d.ID, &d.Description); err != nil {
			return nil, fmt.Errorf("scan description: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// UpdateMeta writes the derived address/built fields back to one row.
// 추출 실패한 필드는 빈 값으로 들어오면 건드리지 않는다.
func (r *Repository) UpdateMeta(ctx context.Context, id int64, address string, builtYM int) error {
	if address != "" {
		if _, err := r.pool.Exec(ctx,
			`UPDATE apt_info SET address = $1 WHERE id = $2`, address, id); err != nil {
			return fmt.Errorf("update address id=%d: %w", id, err)
		}
	}
	if builtYM > 0 {
		if _, err := r.pool.Exec(ctx,
			`UPDATE apt_info SET built = $1 WHERE id = $2`, builtYM, id); err != nil {
			return fmt.Errorf("update built id=%d: %w", id, err)
		}
	}
	return nil
}

// Insert registers one raw-series row (admin flow registers three, one per
// deal type)
func (r *Repository) Insert(ctx context.Context, a *Apartment) error {
	data, err := series.EncodeTrend(a.Trend)
	if err != nil {
		return fmt.Errorf("encode trend: %w", err)
	}

	query := `
		INSERT INTO apt_info (name, py, deal_type, seq, description, price_trend, status, address, built)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, 0))
	`
	_, err = r.pool.Exec(ctx, query,
		a.Name, a.SizeClass, string(a.DealType), a.Seq, a.Description,
		data, a.Status, a.Address, a.BuiltYM,
	)
	if err != nil {
		return fmt.Errorf("insert %s/%s/%s: %w", a.Name, a.SizeClass, a.DealType, err)
	}
	return nil
}

// Exists reports whether any row is registered for the identity
func (r *Repository) Exists(ctx context.Context, name, py string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM apt_info WHERE name = $1 AND py = $2)`,
		name, py,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check exists %s/%s: %w", name, py, err)
	}
	return exists, nil
}

// Delete removes every row of one identity and returns the count removed
func (r *Repository) Delete(ctx context.Context, name, py string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM apt_info WHERE name = $1 AND py = $2`, name, py)
	if err != nil {
		return 0, fmt.Errorf("delete %s/%s: %w", name, py, err)
	}
	return tag.RowsAffected(), nil
}
