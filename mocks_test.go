package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookwhim/auth"
)

// spyStore is an in-memory AccountStore that records every call and
// emulates the unique indexes on email and the token columns.
type spyStore struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account
	calls    map[string]int

	// failWith, when set, is returned by every mutation.
	failWith error
}

func newSpyStore() *spyStore {
	return &spyStore{
		accounts: map[string]*auth.Account{},
		calls:    map[string]int{},
	}
}

func (s *spyStore) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *spyStore) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *spyStore) get(email string) *auth.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == auth.NormalizeEmail(email) {
			return a.Clone()
		}
	}
	return nil
}

func (s *spyStore) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FindByEmail"]++

	for _, a := range s.accounts {
		if a.Email == auth.NormalizeEmail(email) {
			return a.Clone(), nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *spyStore) FindByToken(_ context.Context, field auth.TokenField, token string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FindByToken"]++

	for _, a := range s.accounts {
		if tokenField(a, field) == token {
			return a.Clone(), nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *spyStore) FindByID(_ context.Context, id string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FindByID"]++

	if a, ok := s.accounts[id]; ok {
		return a.Clone(), nil
	}
	return nil, auth.ErrAccountNotFound
}

func (s *spyStore) Insert(_ context.Context, account *auth.Account) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Insert"]++

	if s.failWith != nil {
		return nil, s.failWith
	}

	for _, existing := range s.accounts {
		if err := s.uniqueViolation(existing, account); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	stored := account.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt == nil {
		stored.CreatedAt = &now
	}
	if stored.UpdatedAt == nil {
		stored.UpdatedAt = &now
	}
	s.accounts[stored.ID.String()] = stored

	return stored.Clone(), nil
}

func (s *spyStore) Save(_ context.Context, account *auth.Account) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["Save"]++

	if s.failWith != nil {
		return nil, s.failWith
	}

	id := account.ID.String()
	if _, ok := s.accounts[id]; !ok {
		return nil, auth.ErrAccountNotFound
	}

	for otherID, existing := range s.accounts {
		if otherID == id {
			continue
		}
		if err := s.uniqueViolation(existing, account); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	stored := account.Clone()
	stored.UpdatedAt = &now
	s.accounts[id] = stored

	return stored.Clone(), nil
}

func (s *spyStore) uniqueViolation(existing, candidate *auth.Account) error {
	if existing.Email == candidate.Email {
		return auth.ErrDuplicateAccount
	}
	if existing.ActivationToken != nil && candidate.ActivationToken != nil &&
		*existing.ActivationToken == *candidate.ActivationToken {
		return auth.ErrDuplicateAccount
	}
	if existing.ResetPasswordToken != nil && candidate.ResetPasswordToken != nil &&
		*existing.ResetPasswordToken == *candidate.ResetPasswordToken {
		return auth.ErrDuplicateAccount
	}
	return nil
}

func tokenField(a *auth.Account, field auth.TokenField) string {
	switch field {
	case auth.TokenFieldActivation:
		if a.ActivationToken != nil {
			return *a.ActivationToken
		}
	case auth.TokenFieldReset:
		if a.ResetPasswordToken != nil {
			return *a.ResetPasswordToken
		}
	}
	return ""
}

// recordingDispatcher captures dispatched email without delivering anything.
type recordingDispatcher struct {
	mu         sync.Mutex
	activation []*auth.Account
	reset      []*auth.Account
}

func (r *recordingDispatcher) DispatchActivationEmail(account *auth.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activation = append(r.activation, account.Clone())
}

func (r *recordingDispatcher) DispatchPasswordResetEmail(account *auth.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset = append(r.reset, account.Clone())
}

func (r *recordingDispatcher) activationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.activation)
}

func (r *recordingDispatcher) resetCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reset)
}

// recordingSink captures activity events.
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) eventTypes() []auth.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]auth.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.EventType)
	}
	return types
}

// fakeClock is a controllable clock for throttle and expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *auth.StaticConfig {
	return &auth.StaticConfig{
		SigningKey:      "test-signing-key",
		TokenExpiration: 86400,
		BcryptCost:      4,
		BaseURL:         "http://localhost:3001",
	}
}
