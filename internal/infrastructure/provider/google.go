package provider

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleConfig configures the Google adapter.
type GoogleConfig struct {
	UserInfoURL string
	HTTPClient  *http.Client
}

// Google validates Google OAuth access tokens through the userinfo endpoint.
type Google struct {
	upstream
	userInfoURL string
}

var _ ports.IdentityProvider = (*Google)(nil)

// NewGoogle creates the Google adapter.
func NewGoogle(cfg GoogleConfig) *Google {
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultGoogleUserInfoURL
	}
	return &Google{
		upstream:    newUpstream(domain.ProviderGoogle, cfg.HTTPClient),
		userInfoURL: cfg.UserInfoURL,
	}
}

type googleProfile struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
}

type googleError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// CheckIncomingCredential implements ports.IdentityProvider.
func (g *Google) CheckIncomingCredential(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	var profile googleProfile
	if err := g.getJSON(ctx, g.userInfoURL, bearer, &profile, googleMessage); err != nil {
		return nil, err
	}
	return g.verified(profile.Sub, profile.Name, bearer)
}

// Refresh implements ports.IdentityProvider. Google access tokens are renewed
// client side, so the current token is only re-validated.
func (g *Google) Refresh(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	return g.CheckIncomingCredential(ctx, bearer)
}

func googleMessage(body []byte) string {
	var e googleError
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		if e.Description != "" {
			return e.Error + ": " + e.Description
		}
		return e.Error
	}
	return string(body)
}
