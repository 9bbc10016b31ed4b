package ports

import (
	"context"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

// UserRepository is the storage collaborator of the auth core. Implementations
// must enforce username uniqueness and report a conflict as domain.ErrUserExists.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, username, name, passwordHash, salt string) (int64, error)
	CreateExternalUser(ctx context.Context, externalID, name string, provider domain.Provider) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash, salt string) error
}

// ProviderRepository seeds and lists the fixed provider reference entities.
type ProviderRepository interface {
	Seed(ctx context.Context, providers []domain.Provider) error
	List(ctx context.Context) ([]domain.Provider, error)
}

// AuthEventRepository persists the authentication audit trail.
type AuthEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
