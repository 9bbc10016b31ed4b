package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
)

const defaultFacebookGraphURL = "https://graph.facebook.com/v3.2"

// FacebookConfig configures the Facebook adapter.
type FacebookConfig struct {
	GraphURL   string
	HTTPClient *http.Client
}

// Facebook validates user access tokens against the Graph API /me node.
type Facebook struct {
	upstream
	graphURL string
}

var _ ports.IdentityProvider = (*Facebook)(nil)

// NewFacebook creates the Facebook adapter.
func NewFacebook(cfg FacebookConfig) *Facebook {
	if cfg.GraphURL == "" {
		cfg.GraphURL = defaultFacebookGraphURL
	}
	return &Facebook{
		upstream: newUpstream(domain.ProviderFacebook, cfg.HTTPClient),
		graphURL: cfg.GraphURL,
	}
}

type facebookGraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type facebookProfile struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Error *facebookGraphError `json:"error"`
}

// CheckIncomingCredential implements ports.IdentityProvider.
func (f *Facebook) CheckIncomingCredential(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	q := url.Values{
		"access_token": {bearer},
		"fields":       {"id,name"},
	}

	var profile facebookProfile
	if err := f.getJSON(ctx, f.graphURL+"/me?"+q.Encode(), "", &profile, facebookMessage); err != nil {
		return nil, err
	}
	// The Graph API can report errors inside a 200 body.
	if profile.Error != nil {
		return nil, f.rejected(errors.New(profile.Error.Message))
	}
	return f.verified(profile.ID, profile.Name, bearer)
}

// Refresh implements ports.IdentityProvider by re-validating the token.
func (f *Facebook) Refresh(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	return f.CheckIncomingCredential(ctx, bearer)
}

func facebookMessage(body []byte) string {
	var p facebookProfile
	if err := json.Unmarshal(body, &p); err == nil && p.Error != nil {
		return p.Error.Message
	}
	return string(body)
}
