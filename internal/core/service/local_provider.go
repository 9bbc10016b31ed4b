package service

import (
	"context"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
	"github.com/displayables/dashboard-api/internal/core/security"
)

// localProvider backs the local username/password scheme. Its bearer
// credentials are self-contained session tokens.
type localProvider struct {
	tokens *security.TokenService
}

// NewLocalProvider returns the IdentityProvider for locally issued tokens.
func NewLocalProvider(tokens *security.TokenService) ports.IdentityProvider {
	return &localProvider{tokens: tokens}
}

func (p *localProvider) Name() domain.Provider {
	return domain.ProviderLocal
}

func (p *localProvider) CheckIncomingCredential(_ context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	claims, err := p.tokens.Verify(bearer)
	if err != nil {
		return nil, err
	}
	return verifiedLocal(claims, bearer), nil
}

// Refresh re-validates the current token and signs a fresh one with a new
// expiry window.
func (p *localProvider) Refresh(_ context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	claims, err := p.tokens.Verify(bearer)
	if err != nil {
		return nil, err
	}

	token, err := p.tokens.Issue(claims.Username, claims.Name, claims.ID)
	if err != nil {
		return nil, err
	}
	return verifiedLocal(claims, token), nil
}

// Finalize signs a token for user, or echoes credential when one was already
// minted by Refresh.
func (p *localProvider) Finalize(_ context.Context, user *domain.User, credential string) (*domain.Session, error) {
	if credential == "" {
		token, err := p.tokens.Issue(user.Username, user.Name, user.ID)
		if err != nil {
			return nil, err
		}
		credential = token
	}
	return &domain.Session{Authorization: security.WithBearer(credential), User: user}, nil
}

func verifiedLocal(claims *domain.Claims, credential string) *domain.VerifiedIdentity {
	return &domain.VerifiedIdentity{
		Provider:   domain.ProviderLocal,
		Identity:   domain.ExternalIdentity{ExternalID: claims.Username, DisplayName: claims.Name},
		Credential: credential,
		Claims:     claims,
	}
}
