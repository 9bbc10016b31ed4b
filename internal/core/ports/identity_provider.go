package ports

import (
	"context"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

// IdentityProvider is the capability set every identity source implements.
type IdentityProvider interface {
	Name() domain.Provider
	// CheckIncomingCredential validates a bearer credential and returns the
	// identity it proves.
	CheckIncomingCredential(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error)
	// Refresh reconfirms a credential and returns the one the client should
	// continue to use.
	Refresh(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error)
	// Finalize builds the session response for the canonical user record.
	Finalize(ctx context.Context, user *domain.User, credential string) (*domain.Session, error)
}
