package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

type stubTokenStore struct {
	tokens  map[string]string
	saveErr error
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: make(map[string]string)}
}

func (s *stubTokenStore) Save(_ context.Context, token, email string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tokens[token] = email
	return nil
}

func (s *stubTokenStore) Consume(_ context.Context, token string) (string, error) {
	email, ok := s.tokens[token]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	delete(s.tokens, token)
	return email, nil
}

type stubOutbox struct {
	err  error
	sent []domain.Email
}

func (o *stubOutbox) Enqueue(msg domain.Email) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

func seededUsers(verified bool) *stubAuthRepo {
	repo := newStubAuthRepo()
	repo.users["hana@example.com"] = &domain.User{ID: "u1", Email: "hana@example.com", EmailVerified: verified}
	return repo
}

func TestVerificationService_ResendAndVerify(t *testing.T) {
	users := seededUsers(false)
	tokens := newStubTokenStore()
	outbox := &stubOutbox{}
	svc := NewVerificationService(users, tokens, outbox, "https://portal.test", zerolog.Nop())

	if err := svc.Resend(context.Background(), "Hana@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if len(outbox.sent) != 1 || outbox.sent[0].To != "hana@example.com" {
		t.Fatalf("unexpected outbox: %+v", outbox.sent)
	}
	if len(tokens.tokens) != 1 {
		t.Fatalf("expected one stored token")
	}
	var token string
	for tok := range tokens.tokens {
		token = tok
	}
	if !strings.Contains(outbox.sent[0].Body, "https://portal.test/verify?token="+token) {
		t.Fatalf("link missing from body: %q", outbox.sent[0].Body)
	}

	email, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if email != "hana@example.com" || !users.users[email].EmailVerified {
		t.Fatalf("user not verified")
	}

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("token reusable: %v", err)
	}
}

func TestVerificationService_Resend_AlreadyVerified(t *testing.T) {
	outbox := &stubOutbox{}
	svc := NewVerificationService(seededUsers(true), newStubTokenStore(), outbox, "", zerolog.Nop())

	if err := svc.Resend(context.Background(), "hana@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if len(outbox.sent) != 0 {
		t.Fatalf("mail sent to verified account")
	}
}

func TestVerificationService_Resend_Failures(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		svc := NewVerificationService(newStubAuthRepo(), newStubTokenStore(), &stubOutbox{}, "", zerolog.Nop())
		if err := svc.Resend(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
	t.Run("token store down", func(t *testing.T) {
		tokens := newStubTokenStore()
		tokens.saveErr = errors.New("redis down")
		svc := NewVerificationService(seededUsers(false), tokens, &stubOutbox{}, "", zerolog.Nop())
		if err := svc.Resend(context.Background(), "hana@example.com"); err == nil {
			t.Fatalf("expected error")
		}
	})
	t.Run("outbox full", func(t *testing.T) {
		full := errors.New("outbox full")
		svc := NewVerificationService(seededUsers(false), newStubTokenStore(), &stubOutbox{err: full}, "", zerolog.Nop())
		if err := svc.Resend(context.Background(), "hana@example.com"); !errors.Is(err, full) {
			t.Fatalf("expected outbox error, got %v", err)
		}
	})
}

func TestVerificationService_Verify_EmptyToken(t *testing.T) {
	svc := NewVerificationService(newStubAuthRepo(), newStubTokenStore(), &stubOutbox{}, "", zerolog.Nop())
	if _, err := svc.Verify(context.Background(), ""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
