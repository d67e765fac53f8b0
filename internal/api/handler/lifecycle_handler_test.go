package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/marketsquare/identity-service/internal/core/domain"
)

type stubLifecycleService struct {
	registerAccount *domain.Account
	registerErr     error
	activateErr     error
	resendErr       error
	requestErr      error
	resetErr        error

	gotEmail     string
	gotToken     string
	gotAuthority string
}

func (s *stubLifecycleService) Register(_ context.Context, email, _, _, authority string) (*domain.Account, error) {
	s.gotEmail, s.gotAuthority = email, authority
	return s.registerAccount, s.registerErr
}

func (s *stubLifecycleService) Activate(_ context.Context, token string) error {
	s.gotToken = token
	return s.activateErr
}

func (s *stubLifecycleService) ResendActivation(_ context.Context, email string) error {
	s.gotEmail = email
	return s.resendErr
}

func (s *stubLifecycleService) RequestPasswordReset(_ context.Context, email string) error {
	s.gotEmail = email
	return s.requestErr
}

func (s *stubLifecycleService) ResetPassword(_ context.Context, token, _, _ string) error {
	s.gotToken = token
	return s.resetErr
}

func TestLifecycleHandler_Register_Created(t *testing.T) {
	svc := &stubLifecycleService{registerAccount: &domain.Account{
		ID:          "acc-1",
		Email:       "bob@example.com",
		Authorities: []string{domain.AuthorityCustomer},
	}}
	h := NewLifecycleHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","password":"s3cretpass","confirm_password":"s3cretpass","authority":"CUSTOMER"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.gotAuthority != domain.AuthorityCustomer {
		t.Fatalf("authority not forwarded: %q", svc.gotAuthority)
	}
}

func TestLifecycleHandler_Register_RejectsUnknownAuthority(t *testing.T) {
	svc := &stubLifecycleService{}
	h := NewLifecycleHandler(svc)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","password":"s3cretpass","confirm_password":"s3cretpass","authority":"ADMIN"}`)

	err := h.Register(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if svc.gotEmail != "" {
		t.Fatalf("service must not be called on invalid input")
	}
}

func TestLifecycleHandler_Register_ShortPassword(t *testing.T) {
	h := NewLifecycleHandler(&stubLifecycleService{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","password":"short","confirm_password":"short","authority":"CUSTOMER"}`)

	err := h.Register(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestLifecycleHandler_Activate_OK(t *testing.T) {
	svc := &stubLifecycleService{}
	h := NewLifecycleHandler(svc)

	c, rec := newTestContext(t, http.MethodGet, "/auth/activate?token=abc123", "")

	if err := h.Activate(c); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotToken != "abc123" {
		t.Fatalf("token not forwarded: %q", svc.gotToken)
	}
}

func TestLifecycleHandler_Activate_MissingToken(t *testing.T) {
	h := NewLifecycleHandler(&stubLifecycleService{})

	c, _ := newTestContext(t, http.MethodGet, "/auth/activate", "")

	err := h.Activate(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestLifecycleHandler_Activate_ExpiredPropagates(t *testing.T) {
	svc := &stubLifecycleService{activateErr: domain.ErrActivationExpired}
	h := NewLifecycleHandler(svc)

	c, _ := newTestContext(t, http.MethodGet, "/auth/activate?token=stale", "")

	if err := h.Activate(c); !errors.Is(err, domain.ErrActivationExpired) {
		t.Fatalf("expected ErrActivationExpired to propagate, got %v", err)
	}
}

func TestLifecycleHandler_ResendActivation_OK(t *testing.T) {
	svc := &stubLifecycleService{}
	h := NewLifecycleHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/auth/resend-activation",
		`{"email":"bob@example.com"}`)

	if err := h.ResendActivation(c); err != nil {
		t.Fatalf("ResendActivation returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotEmail != "bob@example.com" {
		t.Fatalf("email not forwarded: %q", svc.gotEmail)
	}
}

func TestLifecycleHandler_ForgotPassword_UnknownEmailPropagates(t *testing.T) {
	svc := &stubLifecycleService{requestErr: domain.ErrNotFound}
	h := NewLifecycleHandler(svc)

	c, _ := newTestContext(t, http.MethodPost, "/auth/forgot-password",
		`{"email":"ghost@example.com"}`)

	if err := h.ForgotPassword(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound to propagate, got %v", err)
	}
}

func TestLifecycleHandler_ResetPassword_OK(t *testing.T) {
	svc := &stubLifecycleService{}
	h := NewLifecycleHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/auth/reset-password",
		`{"token":"rst-1","password":"newpass99","confirm_password":"newpass99"}`)

	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotToken != "rst-1" {
		t.Fatalf("token not forwarded: %q", svc.gotToken)
	}
}

func TestLifecycleHandler_ResetPassword_MissingFields(t *testing.T) {
	h := NewLifecycleHandler(&stubLifecycleService{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/reset-password",
		`{"token":"rst-1"}`)

	err := h.ResetPassword(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
