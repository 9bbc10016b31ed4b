// Package provider holds the identity-provider adapters that validate bearer
// credentials against Google, Facebook and GitHub.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/security"
	"github.com/displayables/dashboard-api/internal/metrics"
)

// DefaultTimeout bounds every round-trip to an identity provider.
const DefaultTimeout = 10 * time.Second

const (
	maxBodyBytes = 1 << 20
	userAgent    = "dashboard-api"
)

// NewHTTPClient returns the client shared by the adapters. If timeout <= 0,
// DefaultTimeout is used.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// upstream performs JSON calls against one provider and records their
// latency.
type upstream struct {
	name   domain.Provider
	client *http.Client
}

func newUpstream(name domain.Provider, client *http.Client) upstream {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return upstream{name: name, client: client}
}

// do sends req and returns the status and body. Transport failures, including
// timeouts, come back as provider_unavailable.
func (u upstream) do(req *http.Request, operation string) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		u.observe(operation, "error", start)
		return 0, nil, domain.NewProviderError(domain.ReasonProviderUnavailable, fmt.Errorf("%s %s: %w", u.name, operation, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		u.observe(operation, "error", start)
		return 0, nil, domain.NewProviderError(domain.ReasonProviderUnavailable, fmt.Errorf("%s %s: read body: %w", u.name, operation, err))
	}

	result := "ok"
	if resp.StatusCode != http.StatusOK {
		result = "error"
	}
	u.observe(operation, result, start)
	return resp.StatusCode, body, nil
}

func (u upstream) observe(operation, result string, start time.Time) {
	metrics.ProviderRequestDuration.
		WithLabelValues(string(u.name), operation, result).
		Observe(time.Since(start).Seconds())
}

// getJSON issues a GET and decodes a 200 response into out. Any other status
// is a rejection carrying the provider's message.
func (u upstream) getJSON(ctx context.Context, url, bearer string, out any, message func([]byte) string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s profile: %w", u.name, err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	status, body, err := u.do(req, "profile")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return u.rejected(fmt.Errorf("status %d: %s", status, message(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return u.rejected(fmt.Errorf("decode profile: %w", err))
	}
	return nil
}

func (u upstream) rejected(err error) error {
	return domain.NewProviderError(domain.ReasonProviderRejected, fmt.Errorf("%s: %w", u.name, err))
}

// verified builds the identity for a successful profile call. An empty id is
// treated as a rejection.
func (u upstream) verified(id, name, credential string) (*domain.VerifiedIdentity, error) {
	if id == "" {
		return nil, u.rejected(errors.New("profile has no id"))
	}
	return &domain.VerifiedIdentity{
		Provider:   u.name,
		Identity:   domain.ExternalIdentity{ExternalID: id, DisplayName: name},
		Credential: credential,
	}, nil
}

// Finalize echoes the provider credential in transport form.
func (u upstream) Finalize(_ context.Context, user *domain.User, credential string) (*domain.Session, error) {
	return &domain.Session{Authorization: security.WithBearer(credential), User: user}, nil
}

func (u upstream) Name() domain.Provider {
	return u.name
}
