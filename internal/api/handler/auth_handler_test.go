package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, email, role string) (*domain.User, error)
	signInFn   func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email, role string) (*domain.User, error) {
	return s.registerFn(ctx, username, password, email, role)
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.signInFn(ctx, email, password)
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email, role string) (*domain.User, error) {
			if username != "alice" || role != "client" || email != "a@example.com" {
				t.Fatalf("unexpected args: %s %s %s", username, role, email)
			}
			return &domain.User{Username: username, Email: email, Role: role}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/auth/register",
		`{"username":"alice","password":"secret123","email":"a@example.com","role":"client"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["role"] != "client" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash leaked: %+v", user)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email, role string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/auth/register",
		`{"username":"bob","password":"secret123","email":"b@example.com","role":"client"}`)
	_ = handler.Register(c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, email, role string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	for _, body := range []string{
		"not-json",
		`{"username":"bob"}`,
		`{"username":"bob","password":"secret123","email":"b@example.com","role":"root"}`,
	} {
		c, rec := newJSONContext(http.MethodPost, "/auth/register", body)
		_ = handler.Register(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &domain.User{Username: "alice", Role: "admin"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_AuthErrors(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{domain.CodeWrongPassword, http.StatusUnauthorized},
		{domain.CodeInvalidCredential, http.StatusUnauthorized},
		{domain.CodeUserNotFound, http.StatusNotFound},
		{domain.CodeTooManyRequests, http.StatusTooManyRequests},
		{domain.CodeEmailNotVerified, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			stub := &stubAuthService{
				signInFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
					return "", nil, domain.NewAuthError(tt.code, "nope")
				},
			}
			c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"bad"}`)
			_ = NewAuthHandler(stub).Login(c)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var resp authErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, resp.Code)
			}
		})
	}
}

func TestAuthHandler_Login_InfrastructureErrorIsReturned(t *testing.T) {
	boom := errors.New("mongo down")
	stub := &stubAuthService{
		signInFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, boom
		},
	}

	c, _ := newJSONContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"pwd"}`)
	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, boom) {
		t.Fatalf("expected error to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}

	c, rec := newJSONContext(http.MethodPost, "/auth/login", "{")
	_ = NewAuthHandler(stub).Login(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
