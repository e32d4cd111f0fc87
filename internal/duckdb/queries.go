package duckdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/decodeproject/decode/internal/model"
)

// TotalIssued returns the number of credentials issued so far.
func (s *Store) TotalIssued(ctx context.Context) (int64, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM credentials").Scan(&n); err != nil {
		return 0, fmt.Errorf("duckdb: total issued: %w", err)
	}
	return n, nil
}

// Stats returns the issuance statistic with the total rendered as a decimal string.
func (s *Store) Stats(ctx context.Context) (model.Stats, error) {
	n, err := s.TotalIssued(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return model.Stats{Total: strconv.FormatInt(n, 10)}, nil
}

// IssuedByAttribute returns per-attribute issuance counts, largest first.
func (s *Store) IssuedByAttribute(ctx context.Context) ([]model.AttributeCount, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT attribute_id, COUNT(*) AS cnt
		FROM credentials
		GROUP BY attribute_id
		ORDER BY cnt DESC, attribute_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: issued by attribute: %w", err)
	}
	defer rows.Close()

	var out []model.AttributeCount
	for rows.Next() {
		var ac model.AttributeCount
		if err := rows.Scan(&ac.AttributeID, &ac.Count); err != nil {
			return nil, fmt.Errorf("duckdb: issued by attribute: scan: %w", err)
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("duckdb: issued by attribute: %w", err)
	}
	return out, nil
}
