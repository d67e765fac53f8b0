package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marketsquare/identity-service/internal/core/domain"
	"github.com/marketsquare/identity-service/internal/token"
)

type stubAccounts struct {
	accounts map[string]*domain.Account // keyed by email
}

func (s *stubAccounts) Create(context.Context, *domain.Account) (*domain.Account, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	if a, ok := s.accounts[email]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubAccounts) FindByID(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrNotFound
}

func (s *stubAccounts) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

func (s *stubAccounts) RecordFailedAttempt(context.Context, string) (int, bool, error) {
	return 0, false, nil
}

func (s *stubAccounts) ResetFailedAttempts(context.Context, string) error { return nil }
func (s *stubAccounts) SetActive(context.Context, string) error           { return nil }
func (s *stubAccounts) UpdatePassword(context.Context, string, string, time.Time) error {
	return nil
}

type stubBlacklist struct {
	revoked map[string]bool
}

func (b *stubBlacklist) Put(_ context.Context, tok string, _ time.Time) error {
	if b.revoked == nil {
		b.revoked = map[string]bool{}
	}
	b.revoked[tok] = true
	return nil
}

func (b *stubBlacklist) IsBlacklisted(_ context.Context, tok string) (bool, error) {
	return b.revoked[tok], nil
}

func runSession(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, c, err
}

func TestSession_NoHeaderPassesThrough(t *testing.T) {
	codec := token.NewCodec("secret", time.Minute)
	mw := Session(codec, &stubBlacklist{}, &stubAccounts{})

	rec, c, err := runSession(t, mw, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.Get(ContextKeyEmail) != nil {
		t.Fatalf("no identity should be attached without a token")
	}
}

func TestSession_MalformedHeader(t *testing.T) {
	codec := token.NewCodec("secret", time.Minute)
	mw := Session(codec, &stubBlacklist{}, &stubAccounts{})

	_, _, err := runSession(t, mw, "Token abc")
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestSession_ValidToken(t *testing.T) {
	codec := token.NewCodec("secret", time.Minute)
	accounts := &stubAccounts{accounts: map[string]*domain.Account{
		"alice@example.com": {
			ID:          "acc-1",
			Email:       "alice@example.com",
			Authorities: []string{domain.AuthorityCustomer},
			Active:      true,
		},
	}}
	mw := Session(codec, &stubBlacklist{}, accounts)

	signed, _, err := codec.Generate("alice@example.com", []string{domain.AuthorityCustomer})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	rec, c, err := runSession(t, mw, "Bearer "+signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := c.Get(ContextKeyEmail); got != "alice@example.com" {
		t.Fatalf("unexpected email in context: %v", got)
	}
}

func TestSession_AuthoritiesComeFromStoreNotClaims(t *testing.T) {
	codec := token.NewCodec("secret", time.Minute)
	accounts := &stubAccounts{accounts: map[string]*domain.Account{
		"alice@example.com": {
			ID:          "acc-1",
			Email:       "alice@example.com",
			Authorities: []string{domain.AuthorityCustomer},
		},
	}}
	mw := Session(codec, &stubBlacklist{}, accounts)

	// Token minted while the account still had the admin authority.
	signed, _, err := codec.Generate("alice@example.com", []string{domain.AuthorityAdmin})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	_, c, err := runSession(t, mw, "Bearer "+signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	authorities, _ := c.Get(ContextKeyAuthorities).([]string)
	if len(authorities) != 1 || authorities[0] != domain.AuthorityCustomer {
		t.Fatalf("authorities must come from the store, got %v", authorities)
	}
}

func TestSession_RevokedTokenRejectedBeforeVerify(t *testing.T) {
	codec := token.NewCodec("secret", time.Minute)
	blacklist := &stubBlacklist{revoked: map[string]bool{"revoked-raw-token": true}}
	mw := Session(codec, blacklist, &stubAccounts{})

	// Not even a parseable JWT; the blacklist check must short-circuit.
	_, _, err := runSession(t, mw, "Bearer revoked-raw-token")
	assertHTTPStatus(t, err, http.StatusUnauthorized)
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "already logged out" {
		t.Fatalf("unexpected message: %v", httpErr.Message)
	}
}

func TestSession_BadSignature(t *testing.T) {
	codec := token.NewCodec("secret", time.Minute)
	foreign := token.NewCodec("other-secret", time.Minute)
	mw := Session(codec, &stubBlacklist{}, &stubAccounts{})

	signed, _, err := foreign.Generate("alice@example.com", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	_, _, err = runSession(t, mw, "Bearer "+signed)
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestSession_UnknownAccount(t *testing.T) {
	codec := token.NewCodec("secret", time.Minute)
	mw := Session(codec, &stubBlacklist{}, &stubAccounts{})

	signed, _, err := codec.Generate("deleted@example.com", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	_, _, err = runSession(t, mw, "Bearer "+signed)
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != want {
		t.Fatalf("expected status %d, got %d", want, httpErr.Code)
	}
}
