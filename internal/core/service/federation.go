package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
	"github.com/displayables/dashboard-api/internal/metrics"
)

// resolveTimeout bounds a shared resolution once it no longer follows the
// caller's cancellation.
const resolveTimeout = 10 * time.Second

// FederationResolver maps a verified external identity to a local user,
// provisioning one on first login.
type FederationResolver struct {
	users  ports.UserRepository
	events ports.AuthEventRecorder
	flight singleflight.Group
	log    zerolog.Logger
	now    func() time.Time
}

// NewFederationResolver returns a FederationResolver backed by users. events
// may be nil.
func NewFederationResolver(users ports.UserRepository, events ports.AuthEventRecorder, log zerolog.Logger) *FederationResolver {
	return &FederationResolver{users: users, events: events, log: log, now: time.Now}
}

// Resolve returns the local user for identity. It is idempotent: a second call
// with the same identity is a pure lookup.
func (r *FederationResolver) Resolve(ctx context.Context, provider domain.Provider, identity domain.ExternalIdentity) (*domain.User, error) {
	username := domain.NormalizeUsername(identity.ExternalID)
	if username == "" {
		return nil, domain.NewProviderError(domain.ReasonProviderRejected, errors.New("empty external id"))
	}

	// Concurrent first logins for one identity share a single provisioning
	// call. It runs detached from any one caller so a disconnecting leader
	// does not fail the followers; each caller still honours its own ctx.
	ch := r.flight.DoChan(string(provider)+":"+username, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		return r.resolve(shared, provider, username, identity.DisplayName)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneUser(res.Val.(*domain.User)), nil
	}
}

// cloneUser gives each caller of a shared resolution its own record.
func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *FederationResolver) resolve(ctx context.Context, provider domain.Provider, username, displayName string) (*domain.User, error) {
	user, err := r.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return ownedBy(user, provider)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("federation lookup: %w", err)
	}

	return r.provision(ctx, provider, username, displayName)
}

// provision is the Federating transition: it creates the local record for an
// identity seen for the first time.
func (r *FederationResolver) provision(ctx context.Context, provider domain.Provider, username, displayName string) (*domain.User, error) {
	if displayName == "" {
		displayName = username
	}

	id, err := r.users.CreateExternalUser(ctx, username, displayName, provider)
	if errors.Is(err, domain.ErrUserExists) {
		// Lost the race against another instance; the record is there now.
		r.log.Debug().Str("username", username).Str("provider", string(provider)).Msg("federation conflict, re-reading user")
		user, findErr := r.users.FindByUsername(ctx, username)
		if findErr != nil {
			return nil, fmt.Errorf("federation re-read: %w", findErr)
		}
		return ownedBy(user, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("federation create: %w", err)
	}

	metrics.UsersProvisionedTotal.WithLabelValues(string(provider)).Inc()
	if r.events != nil {
		r.events.Record(domain.AuthEvent{
			Username: username,
			Provider: provider,
			Action:   domain.ActionProvision,
			State:    domain.StateFederating,
			At:       r.now().UTC(),
		})
	}
	r.log.Info().Str("username", username).Str("provider", string(provider)).Int64("user_id", id).Msg("user provisioned")

	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("federation read: %w", err)
	}
	return user, nil
}

// ownedBy rejects a record that belongs to a different provider's namespace.
func ownedBy(user *domain.User, provider domain.Provider) (*domain.User, error) {
	if user.Provider != provider {
		return nil, domain.NewAuthenticationError(domain.ReasonProviderMismatch,
			fmt.Errorf("username %q belongs to provider %s", user.Username, user.Provider))
	}
	return user, nil
}
