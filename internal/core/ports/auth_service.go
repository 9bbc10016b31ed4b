package ports

import (
	"context"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

// LoginInput carries an inbound login attempt. Username and Password are used
// by the local provider; Bearer by the external ones.
type LoginInput struct {
	Provider domain.Provider
	Username string
	Password string
	Bearer   string
}

// AuthService is the authentication dispatcher.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*domain.Session, error)
	Verify(ctx context.Context, provider domain.Provider, bearer string) (*domain.Claims, error)
	Refresh(ctx context.Context, provider domain.Provider, bearer string) (*domain.Session, error)
	Register(ctx context.Context, username, password string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

// AuthEventRecorder accepts audit events without blocking the caller.
type AuthEventRecorder interface {
	Record(event domain.AuthEvent)
}

// LoginThrottle limits repeated failed local logins per username.
type LoginThrottle interface {
	Allow(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
