package duckdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/decodeproject/decode/internal/model"
	"github.com/google/uuid"
)

// ErrEmptyAttribute is returned when an issuance names no attribute.
var ErrEmptyAttribute = errors.New("duckdb: attribute id is empty")

// RecordIssuance stores one newly issued credential for attributeID.
func (s *Store) RecordIssuance(ctx context.Context, attributeID string) (model.Credential, error) {
	attributeID = strings.TrimSpace(attributeID)
	if attributeID == "" {
		return model.Credential{}, ErrEmptyAttribute
	}

	cred := model.Credential{
		ID:          uuid.NewString(),
		AttributeID: attributeID,
		IssuedAt:    s.now().UTC(),
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO credentials (id, attribute_id, issued_at) VALUES (?, ?, ?)",
		cred.ID, cred.AttributeID, cred.IssuedAt)
	if err != nil {
		return model.Credential{}, fmt.Errorf("duckdb: record issuance: %w", err)
	}
	return cred, nil
}

// Seed inserts n demo credentials spread round-robin over attributes in a
// single transaction.
func (s *Store) Seed(ctx context.Context, n int, attributes []string) error {
	if n <= 0 {
		return nil
	}
	if len(attributes) == 0 {
		return ErrEmptyAttribute
	}

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("duckdb: seed: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO credentials (id, attribute_id, issued_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("duckdb: seed: prepare: %w", err)
	}
	defer stmt.Close()

	now := s.now().UTC()
	for i := range n {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), attributes[i%len(attributes)], now); err != nil {
			return fmt.Errorf("duckdb: seed: insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("duckdb: seed: commit: %w", err)
	}
	return nil
}
