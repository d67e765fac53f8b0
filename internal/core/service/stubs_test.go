package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/marketsquare/identity-service/internal/core/domain"
)

// ── Account repository stub ──────────────────────────────────────────────────

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // keyed by id
	nextID   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Authorities = append([]string(nil), a.Authorities...)
	if a.PasswordChangedAt != nil {
		t := *a.PasswordChangedAt
		clone.PasswordChangedAt = &t
	}
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrEmailExists
		}
	}
	r.nextID++
	clone := cloneAccount(account)
	clone.ID = fmt.Sprintf("acc-%d", r.nextID)
	r.accounts[clone.ID] = clone
	return cloneAccount(clone), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email && !a.Deleted {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.Deleted {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) RecordFailedAttempt(_ context.Context, id string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, false, domain.ErrNotFound
	}
	if a.Locked || a.FailedAttempts >= domain.MaxFailedAttempts {
		return domain.MaxFailedAttempts, false, nil
	}
	a.FailedAttempts++
	if a.FailedAttempts >= domain.MaxFailedAttempts {
		a.Locked = true
		return a.FailedAttempts, true, nil
	}
	return a.FailedAttempts, false, nil
}

func (r *stubAccountRepo) ResetFailedAttempts(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.FailedAttempts = 0
	return nil
}

func (r *stubAccountRepo) SetActive(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Active = true
	return nil
}

func (r *stubAccountRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.PasswordChangedAt = &changedAt
	a.Locked = false
	a.FailedAttempts = 0
	return nil
}

// put seeds an account directly, bypassing Create.
func (r *stubAccountRepo) put(a *domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = cloneAccount(a)
}

func (r *stubAccountRepo) get(id string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAccount(r.accounts[id])
}

// ── Refresh token store stub ─────────────────────────────────────────────────

type stubRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken // keyed by id
	nextID int
	ttl    time.Duration
}

func newStubRefreshStore() *stubRefreshStore {
	return &stubRefreshStore{tokens: make(map[string]*domain.RefreshToken), ttl: time.Hour}
}

func (s *stubRefreshStore) Replace(_ context.Context, accountID string) (*domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tokens {
		if t.AccountID == accountID {
			delete(s.tokens, id)
		}
	}
	s.nextID++
	token := &domain.RefreshToken{
		ID:        fmt.Sprintf("rt-%d", s.nextID),
		Value:     fmt.Sprintf("refresh-value-%d", s.nextID),
		AccountID: accountID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	s.tokens[token.ID] = token
	return token, nil
}

func (s *stubRefreshStore) FindByValue(_ context.Context, value string) (*domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Value == value {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrTokenInvalid
}

func (s *stubRefreshStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	return nil
}

func (s *stubRefreshStore) DeleteByAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tokens {
		if t.AccountID == accountID {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *stubRefreshStore) countForAccount(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.AccountID == accountID {
			n++
		}
	}
	return n
}

func (s *stubRefreshStore) expire(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Value == value {
			t.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		}
	}
}

// ── One-time token store stub ────────────────────────────────────────────────

type stubOneTimeStore struct {
	mu     sync.Mutex
	tokens map[string]*domain.OneTimeToken // keyed by id
	nextID int
	prefix string
	ttl    time.Duration
}

func newStubOneTimeStore(prefix string) *stubOneTimeStore {
	return &stubOneTimeStore{
		tokens: make(map[string]*domain.OneTimeToken),
		prefix: prefix,
		ttl:    time.Hour,
	}
}

func (s *stubOneTimeStore) Issue(_ context.Context, accountID string) (*domain.OneTimeToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tokens {
		if t.AccountID == accountID {
			delete(s.tokens, id)
		}
	}
	s.nextID++
	token := &domain.OneTimeToken{
		ID:        fmt.Sprintf("%s-%d", s.prefix, s.nextID),
		Value:     fmt.Sprintf("%s-value-%d", s.prefix, s.nextID),
		AccountID: accountID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	s.tokens[token.ID] = token
	return token, nil
}

func (s *stubOneTimeStore) FindByValue(_ context.Context, value string) (*domain.OneTimeToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Value == value {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrTokenInvalid
}

func (s *stubOneTimeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	return nil
}

func (s *stubOneTimeStore) expire(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Value == value {
			t.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		}
	}
}

func (s *stubOneTimeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// ── Blacklist stub ───────────────────────────────────────────────────────────

type memBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{entries: make(map[string]time.Time)}
}

func (b *memBlacklist) Put(_ context.Context, token string, expiry time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[token] = expiry
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiry, ok := b.entries[token]
	return ok && expiry.After(time.Now()), nil
}

// ── Notifier stub ────────────────────────────────────────────────────────────

type recordedNotification struct {
	Template  string
	Recipient string
	Args      []string
}

type stubNotifier struct {
	mu    sync.Mutex
	calls []recordedNotification
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{}
}

func (n *stubNotifier) Notify(templateKey, recipient string, args ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recordedNotification{Template: templateKey, Recipient: recipient, Args: args})
}

func (n *stubNotifier) sent() []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedNotification(nil), n.calls...)
}

// ── Password hasher (real bcrypt, min cost for speed) ────────────────────────

type testHasher struct{}

func (testHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	return string(hashed), err
}

func (testHasher) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func mustHash(plain string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hashed)
}
