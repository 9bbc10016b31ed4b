package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
)

var _ ports.UserRepository = (*Store)(nil)

const userColumns = `id, username, name, password_hash, salt, provider, created_at, updated_at`

func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u                    domain.User
		provider             string
		createdAt, updatedAt int64
	)
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Salt, &provider, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Provider = domain.ParseProvider(provider)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, username, name, passwordHash, salt string) (int64, error) {
	return s.insertUser(ctx, username, name, passwordHash, salt, domain.ProviderLocal)
}

func (s *Store) CreateExternalUser(ctx context.Context, externalID, name string, provider domain.Provider) (int64, error) {
	return s.insertUser(ctx, externalID, name, "", "", provider)
}

func (s *Store) insertUser(ctx context.Context, username, name, hash, salt string, provider domain.Provider) (int64, error) {
	now := toMillis(s.now())
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, name, password_hash, salt, provider, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		username, name, hash, salt, string(provider), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrUserExists
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash, salt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, salt = ?, updated_at = ? WHERE id = ?`,
		passwordHash, salt, toMillis(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
