package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
	"github.com/displayables/dashboard-api/internal/core/security"
	"github.com/displayables/dashboard-api/internal/metrics"
)

// AuthService dispatches login, verify and refresh flows to the identity
// provider named by the request, and owns local registration.
type AuthService struct {
	providers map[domain.Provider]ports.IdentityProvider
	users     ports.UserRepository
	resolver  *FederationResolver
	vault     *security.Vault
	throttle  ports.LoginThrottle
	events    ports.AuthEventRecorder
	log       zerolog.Logger
	now       func() time.Time
}

// Option customises an AuthService.
type Option func(*AuthService)

// WithThrottle limits failed local logins per username.
func WithThrottle(t ports.LoginThrottle) Option {
	return func(s *AuthService) { s.throttle = t }
}

// WithEventRecorder sends every flow outcome to the audit trail.
func WithEventRecorder(r ports.AuthEventRecorder) Option {
	return func(s *AuthService) { s.events = r }
}

// WithClock replaces the clock used to timestamp audit events.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService builds the dispatcher. providers must include the local
// provider; it is the fallback for unknown tags.
func NewAuthService(
	users ports.UserRepository,
	vault *security.Vault,
	providers []ports.IdentityProvider,
	log zerolog.Logger,
	opts ...Option,
) (*AuthService, error) {
	s := &AuthService{
		providers: make(map[domain.Provider]ports.IdentityProvider, len(providers)),
		users:     users,
		vault:     vault,
		log:       log,
		now:       time.Now,
	}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	if _, ok := s.providers[domain.ProviderLocal]; !ok {
		return nil, errors.New("auth service: local provider is required")
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = NewFederationResolver(users, s.events, log)
	return s, nil
}

// adapter selects the provider implementation, defaulting to local.
func (s *AuthService) adapter(p domain.Provider) ports.IdentityProvider {
	if a, ok := s.providers[p]; ok {
		return a
	}
	return s.providers[domain.ProviderLocal]
}

// Login authenticates a user and issues a session.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	provider := s.adapter(in.Provider).Name()
	if provider.IsExternal() {
		return s.loginExternal(ctx, provider, in.Bearer)
	}
	return s.loginLocal(ctx, in.Username, in.Password)
}

func (s *AuthService) loginLocal(ctx context.Context, rawUsername, password string) (*domain.Session, error) {
	username := domain.NormalizeUsername(rawUsername)
	done := s.track(domain.ActionLogin, domain.ProviderLocal, username)

	// Length rules apply to registration only; provisioned external ids may exceed them.
	if username == "" || password == "" {
		return nil, done(domain.NewValidationError(domain.ReasonLoginDetailsRequired))
	}
	if err := s.checkThrottle(ctx, username); err != nil {
		return nil, done(err)
	}

	s.transition(domain.StateProviderVerifying, domain.ProviderLocal, username)
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, done(domain.NewAuthenticationError(domain.ReasonUsernameNotFound, err))
	}
	if err != nil {
		return nil, done(fmt.Errorf("login: %w", err))
	}
	if !user.HasLocalPassword() {
		return nil, done(domain.NewAuthenticationError(domain.ReasonExternalAccount, nil))
	}
	if !s.vault.Verify(password, user.Salt, user.PasswordHash) {
		s.recordFailure(ctx, username)
		return nil, done(domain.NewAuthenticationError(domain.ReasonIncorrectPassword, nil))
	}
	s.resetThrottle(ctx, username)

	session, err := s.adapter(domain.ProviderLocal).Finalize(ctx, user, "")
	if err != nil {
		return nil, done(fmt.Errorf("login: finalize: %w", err))
	}
	return session, done(nil)
}

func (s *AuthService) loginExternal(ctx context.Context, provider domain.Provider, bearer string) (*domain.Session, error) {
	done := s.track(domain.ActionLogin, provider, "")

	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, done(domain.NewAuthenticationError(domain.ReasonTokenMissing, nil))
	}

	adapter := s.adapter(provider)
	s.transition(domain.StateProviderVerifying, provider, "")
	verified, err := adapter.CheckIncomingCredential(ctx, bearer)
	if err != nil {
		return nil, done(err)
	}

	s.transition(domain.StateFederating, provider, verified.Identity.ExternalID)
	user, err := s.resolver.Resolve(ctx, provider, verified.Identity)
	if err != nil {
		return nil, done(err)
	}
	done = s.track(domain.ActionLogin, provider, user.Username)

	session, err := adapter.Finalize(ctx, user, verified.Credential)
	if err != nil {
		return nil, done(fmt.Errorf("login: finalize: %w", err))
	}
	return session, done(nil)
}

// Verify is the protected-route guard. Local tokens are checked locally;
// external credentials are re-validated upstream on every call. No user is
// ever provisioned here.
func (s *AuthService) Verify(ctx context.Context, provider domain.Provider, bearer string) (*domain.Claims, error) {
	adapter := s.adapter(provider)
	provider = adapter.Name()
	done := s.track(domain.ActionVerify, provider, "")

	if bearer == "" {
		return nil, done(domain.NewAuthenticationError(domain.ReasonTokenMissing, nil))
	}

	verified, err := adapter.CheckIncomingCredential(ctx, bearer)
	if err != nil {
		return nil, done(err)
	}
	if verified.Claims != nil {
		return verified.Claims, done(nil)
	}

	user, err := s.existingUser(ctx, provider, verified)
	if err != nil {
		return nil, done(err)
	}
	return claimsOf(user), done(nil)
}

// Refresh reconfirms a credential and returns the session the client should
// continue with. Local tokens are re-signed; external ones are echoed.
func (s *AuthService) Refresh(ctx context.Context, provider domain.Provider, bearer string) (*domain.Session, error) {
	adapter := s.adapter(provider)
	provider = adapter.Name()
	done := s.track(domain.ActionRefresh, provider, "")

	if bearer == "" {
		return nil, done(domain.NewAuthenticationError(domain.ReasonTokenMissing, nil))
	}

	s.transition(domain.StateProviderVerifying, provider, "")
	verified, err := adapter.Refresh(ctx, bearer)
	if err != nil {
		return nil, done(err)
	}

	user, err := s.existingUser(ctx, provider, verified)
	if err != nil {
		return nil, done(err)
	}
	done = s.track(domain.ActionRefresh, provider, user.Username)

	session, err := adapter.Finalize(ctx, user, verified.Credential)
	if err != nil {
		return nil, done(fmt.Errorf("refresh: finalize: %w", err))
	}
	return session, done(nil)
}

// Register creates a local user with a freshly salted password hash.
func (s *AuthService) Register(ctx context.Context, rawUsername, password string) (*domain.User, error) {
	username := domain.NormalizeUsername(rawUsername)
	done := s.track(domain.ActionRegister, domain.ProviderLocal, username)

	if err := validateCredentials(username, password); err != nil {
		return nil, done(err)
	}
	if domain.IsRestrictedUsername(username) {
		return nil, done(domain.NewValidationError(domain.ReasonUsernameRestricted))
	}

	cred, err := s.vault.Derive(password, "")
	if err != nil {
		return nil, done(fmt.Errorf("register: %w", err))
	}

	id, err := s.users.CreateUser(ctx, username, username, cred.Hash, cred.Salt)
	if errors.Is(err, domain.ErrUserExists) {
		return nil, done(domain.NewValidationError(domain.ReasonUsernameExists))
	}
	if err != nil {
		return nil, done(fmt.Errorf("register: %w", err))
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, done(fmt.Errorf("register: %w", err))
	}
	return user, done(nil)
}

// UpdatePassword replaces a local user's password after checking the old one.
// A new salt is generated for every update.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	done := s.track(domain.ActionPasswordUpdate, domain.ProviderLocal, "")

	if oldPassword == "" || newPassword == "" {
		return done(domain.NewValidationError(domain.ReasonPasswordUpdateRequired))
	}
	if !validPasswordLength(newPassword) {
		return done(domain.NewValidationError(domain.ReasonInvalidPasswordLength))
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return done(domain.NewAuthenticationError(domain.ReasonUsernameNotFound, err))
	}
	if err != nil {
		return done(fmt.Errorf("update password: %w", err))
	}
	done = s.track(domain.ActionPasswordUpdate, domain.ProviderLocal, user.Username)

	if !user.HasLocalPassword() {
		return done(domain.NewAuthenticationError(domain.ReasonExternalAccount, nil))
	}
	if !s.vault.Verify(oldPassword, user.Salt, user.PasswordHash) {
		return done(domain.NewAuthenticationError(domain.ReasonIncorrectPassword, nil))
	}

	cred, err := s.vault.Derive(newPassword, "")
	if err != nil {
		return done(fmt.Errorf("update password: %w", err))
	}
	if err := s.users.UpdatePassword(ctx, user.ID, cred.Hash, cred.Salt); err != nil {
		return done(fmt.Errorf("update password: %w", err))
	}
	return done(nil)
}

// existingUser reads the canonical record behind a verified identity without
// provisioning it.
func (s *AuthService) existingUser(ctx context.Context, provider domain.Provider, verified *domain.VerifiedIdentity) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	if verified.Claims != nil {
		user, err = s.users.FindByID(ctx, verified.Claims.ID)
	} else {
		user, err = s.users.FindByUsername(ctx, domain.NormalizeUsername(verified.Identity.ExternalID))
	}

	if errors.Is(err, domain.ErrUserNotFound) {
		reason := domain.ReasonAccountNotProvisioned
		if !provider.IsExternal() {
			reason = domain.ReasonUsernameNotFound
		}
		return nil, domain.NewAuthenticationError(reason, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return ownedBy(user, provider)
}

func (s *AuthService) checkThrottle(ctx context.Context, username string) error {
	if s.throttle == nil {
		return nil
	}
	allowed, err := s.throttle.Allow(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("throttle check failed, allowing login")
		return nil
	}
	if !allowed {
		return domain.NewAuthenticationError(domain.ReasonTooManyAttempts, nil)
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

func (s *AuthService) resetThrottle(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
	}
}

func (s *AuthService) transition(state domain.AuthState, provider domain.Provider, subject string) {
	s.log.Debug().
		Str("state", string(state)).
		Str("provider", string(provider)).
		Str("subject", subject).
		Msg("auth transition")
}

// track returns a completion func that logs, counts and audits the outcome of
// one flow, then hands err back unchanged.
func (s *AuthService) track(action domain.AuthAction, provider domain.Provider, username string) func(error) error {
	return func(err error) error {
		event := domain.AuthEvent{
			Username: username,
			Provider: provider,
			Action:   action,
			State:    domain.StateSessionIssued,
			At:       s.now().UTC(),
		}
		outcome := "success"

		if err != nil {
			event.State = domain.StateRejected
			if ae, ok := domain.AsAuthError(err); ok {
				outcome = string(ae.Kind)
				event.Reason = ae.Reason
				s.log.Info().
					Str("action", string(action)).
					Str("provider", string(provider)).
					Str("username", username).
					Str("reason", string(ae.Reason)).
					Msg("auth rejected")
			} else {
				outcome = string(domain.KindInternal)
				event.Reason = domain.ReasonSomethingWrong
				s.log.Error().Err(err).
					Str("action", string(action)).
					Str("provider", string(provider)).
					Msg("auth flow failed")
			}
		}

		metrics.AuthAttemptsTotal.WithLabelValues(string(action), string(provider), outcome).Inc()
		// Verify runs on every protected call; only failures go to the trail.
		if s.events != nil && (action != domain.ActionVerify || err != nil) {
			s.events.Record(event)
		}
		return err
	}
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return domain.NewValidationError(domain.ReasonLoginDetailsRequired)
	}
	if n := len([]rune(username)); n < domain.UsernameMinLength || n > domain.UsernameMaxLength {
		return domain.NewValidationError(domain.ReasonInvalidUsernameLength)
	}
	if !validPasswordLength(password) {
		return domain.NewValidationError(domain.ReasonInvalidPasswordLength)
	}
	return nil
}

func validPasswordLength(password string) bool {
	n := len([]rune(password))
	return n >= domain.PasswordMinLength && n <= domain.PasswordMaxLength
}

func claimsOf(user *domain.User) *domain.Claims {
	return &domain.Claims{
		Username: user.Username,
		Name:     user.Name,
		ID:       user.ID,
		Provider: user.Provider,
	}
}
