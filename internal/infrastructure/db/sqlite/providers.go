package sqlite

import (
	"context"
	"fmt"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
)

var _ ports.ProviderRepository = (*Store)(nil)

// Seed inserts the provider reference rows; existing rows are left alone.
func (s *Store) Seed(ctx context.Context, providers []domain.Provider) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed providers: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range providers {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO providers (name) VALUES (?)`, string(p)); err != nil {
			return fmt.Errorf("seed provider %s: %w", p, err)
		}
	}
	return tx.Commit()
}

func (s *Store) List(ctx context.Context) ([]domain.Provider, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM providers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var out []domain.Provider
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list providers: %w", err)
		}
		out = append(out, domain.Provider(name))
	}
	return out, rows.Err()
}
