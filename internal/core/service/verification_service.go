package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
	"github.com/99minutos/parcel-portal/internal/metrics"
)

const verificationSubject = "Verify your email"

type verificationService struct {
	users   ports.UserRepository
	tokens  ports.VerificationTokenStore
	outbox  ports.Outbox
	baseURL string
	log     zerolog.Logger
}

// NewVerificationService returns a VerificationService. baseURL is the public
// address of the portal; links point at baseURL + "/verify".
func NewVerificationService(
	users ports.UserRepository,
	tokens ports.VerificationTokenStore,
	outbox ports.Outbox,
	baseURL string,
	log zerolog.Logger,
) ports.VerificationService {
	return &verificationService{
		users:   users,
		tokens:  tokens,
		outbox:  outbox,
		baseURL: baseURL,
		log:     log,
	}
}

// Resend issues a fresh token for email and queues the message. Accounts that
// are already verified are skipped silently.
func (s *verificationService) Resend(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	if user.EmailVerified {
		s.log.Debug().Str("email", email).Msg("already verified, nothing to send")
		return nil
	}

	token, err := newVerificationToken()
	if err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	if err := s.tokens.Save(ctx, token, email); err != nil {
		return fmt.Errorf("resend verification: store token: %w", err)
	}

	msg := domain.Email{
		To:      email,
		Subject: verificationSubject,
		Body:    "Confirm your address by opening " + s.link(token),
	}
	if err := s.outbox.Enqueue(msg); err != nil {
		metrics.VerificationEmailsTotal.WithLabelValues("queue_full").Inc()
		return fmt.Errorf("resend verification: %w", err)
	}

	metrics.VerificationEmailsTotal.WithLabelValues("queued").Inc()
	s.log.Info().Str("email", email).Msg("verification email queued")
	return nil
}

// Verify redeems token and marks its account verified. It returns the e-mail
// of the verified account.
func (s *verificationService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrInvalidToken
	}
	email, err := s.tokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return "", err
		}
		return "", fmt.Errorf("verify email: %w", err)
	}
	if err := s.users.MarkEmailVerified(ctx, email); err != nil {
		return "", fmt.Errorf("verify email: %w", err)
	}

	s.log.Info().Str("email", email).Msg("email verified")
	return email, nil
}

func (s *verificationService) link(token string) string {
	return s.baseURL + "/verify?token=" + url.QueryEscape(token)
}

func newVerificationToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Resender exposes svc as the sign-in page's resend collaborator.
func Resender(svc ports.VerificationService) ports.VerificationResender {
	return resender{svc: svc}
}

type resender struct {
	svc ports.VerificationService
}

func (r resender) ResendVerificationEmail(ctx context.Context, email string) error {
	return r.svc.Resend(ctx, email)
}
