package service

import (
	"context"
	"sync"
	"time"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/security"
)

// ---------------------------------------------------------------------------
// In-memory user store with a unique username index.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*domain.User
	creates int

	// beforeCreate runs inside CreateExternalUser before the uniqueness check,
	// letting tests simulate a concurrent writer.
	beforeCreate func()
	findErr      error

	// findGate holds FindByUsername until closed, the way a slow store would;
	// findEntered receives once a lookup is waiting on it.
	findGate    chan struct{}
	findEntered chan struct{}
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func (r *stubUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if r.findGate != nil {
		select {
		case r.findEntered <- struct{}{}:
		default:
		}
		select {
		case <-r.findGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) insert(u *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return 0, domain.ErrUserExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.byID[u.ID] = u
	r.creates++
	return u.ID, nil
}

func (r *stubUserRepo) CreateUser(_ context.Context, username, name, hash, salt string) (int64, error) {
	return r.insert(&domain.User{Username: username, Name: name, PasswordHash: hash, Salt: salt, Provider: domain.ProviderLocal})
}

func (r *stubUserRepo) CreateExternalUser(_ context.Context, externalID, name string, provider domain.Provider) (int64, error) {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	return r.insert(&domain.User{Username: externalID, Name: name, Provider: provider})
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id int64, hash, salt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash, u.Salt = hash, salt
	return nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---------------------------------------------------------------------------
// External provider whose upstream verdict is scripted per bearer value.
// ---------------------------------------------------------------------------

type stubExternalProvider struct {
	name       domain.Provider
	identities map[string]domain.ExternalIdentity
	failWith   error
	checks     int
}

func (p *stubExternalProvider) Name() domain.Provider { return p.name }

func (p *stubExternalProvider) CheckIncomingCredential(_ context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	p.checks++
	if p.failWith != nil {
		return nil, p.failWith
	}
	id, ok := p.identities[bearer]
	if !ok {
		return nil, domain.NewProviderError(domain.ReasonProviderRejected, nil)
	}
	return &domain.VerifiedIdentity{Provider: p.name, Identity: id, Credential: bearer}, nil
}

func (p *stubExternalProvider) Refresh(ctx context.Context, bearer string) (*domain.VerifiedIdentity, error) {
	return p.CheckIncomingCredential(ctx, bearer)
}

func (p *stubExternalProvider) Finalize(_ context.Context, user *domain.User, credential string) (*domain.Session, error) {
	return &domain.Session{Authorization: security.WithBearer(credential), User: user}, nil
}

// ---------------------------------------------------------------------------
// Audit recorder and throttle.
// ---------------------------------------------------------------------------

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *stubRecorder) Record(e domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *stubRecorder) last() domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type stubThrottle struct {
	limit    int
	failures map[string]int
	allowErr error
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{limit: limit, failures: make(map[string]int)}
}

func (t *stubThrottle) Allow(_ context.Context, username string) (bool, error) {
	if t.allowErr != nil {
		return false, t.allowErr
	}
	return t.failures[username] < t.limit, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	delete(t.failures, username)
	return nil
}
