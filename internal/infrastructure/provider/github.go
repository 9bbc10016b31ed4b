package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
)

const (
	defaultGithubAPIURL   = "https://api.github.com"
	defaultGithubOAuthURL = "https://github.com/login/oauth/access_token"

	// ExchangeCodeLength is the length of a GitHub OAuth code. Bearers of this
	// length are exchanged for an access token before validation.
	ExchangeCodeLength = 20
)

// GithubConfig configures the GitHub adapter.
type GithubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	APIURL       string
	OAuthURL     string
	HTTPClient   *http.Client
}

// Github validates GitHub access tokens and exchanges OAuth codes.
type Github struct {
	upstream
	apiURL string
	oauth  *oauth2.Config
}

var _ ports.IdentityProvider = (*Github)(nil)

// NewGithub creates the GitHub adapter.
func NewGithub(cfg GithubConfig) *Github {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultGithubAPIURL
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = defaultGithubOAuthURL
	}
	return &Github{
		upstream: newUpstream(domain.ProviderGithub, cfg.HTTPClient),
		apiURL:   strings.TrimRight(cfg.APIURL, "/"),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.OAuthURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

type githubUser struct {
	ID    json.Number `json:"id"`
	Login string      `json:"login"`
	Name  string      `json:"name"`
}

type githubAPIError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

// CheckIncomingCredential implements ports.IdentityProvider. The returned
// credential is the access token, which differs from bearer when a code was
// exchanged.
func (g *Github) CheckIncomingCredential(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	token := bearer
	if len(bearer) == ExchangeCodeLength {
		exchanged, err := g.exchange(ctx, bearer)
		if err != nil {
			return nil, err
		}
		token = exchanged
	}

	var user githubUser
	if err := g.getJSON(ctx, g.apiURL+"/user", token, &user, githubMessage); err != nil {
		return nil, err
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return g.verified(githubID(user.ID), name, token)
}

// Refresh implements ports.IdentityProvider. GitHub tokens do not expire, so
// the token is only re-validated.
func (g *Github) Refresh(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	return g.CheckIncomingCredential(ctx, bearer)
}

func (g *Github) exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)

	start := time.Now()
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		g.observe("exchange", "error", start)
		var retrieve *oauth2.RetrieveError
		if errors.As(err, &retrieve) {
			return "", g.rejected(fmt.Errorf("exchange code: %w", err))
		}
		return "", domain.NewProviderError(domain.ReasonProviderUnavailable, fmt.Errorf("github exchange: %w", err))
	}
	g.observe("exchange", "ok", start)
	return tok.AccessToken, nil
}

func githubMessage(body []byte) string {
	var e githubAPIError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		if e.DocumentationURL != "" {
			return e.Message + " (" + e.DocumentationURL + ")"
		}
		return e.Message
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return "github request failed"
}

// githubID normalises numeric ids to their decimal form.
func githubID(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	return n.String()
}
