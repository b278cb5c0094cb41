package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
	"github.com/99minutos/parcel-portal/internal/metrics"
)

// Messages carried by the AuthError values SignIn returns.
const (
	msgMissingCredentials = "Email and password are required."
	msgTooManyAttempts    = "Access to this account has been temporarily disabled due to many failed login attempts."
	msgNoSuchUser         = "There is no user record corresponding to this email."
	msgWrongPassword      = "The password is invalid."
	msgUnverified         = "Please verify your email before signing in."
)

// AuthService implements registration and sign-in.
type AuthService struct {
	repo      ports.UserRepository
	limiter   ports.AttemptLimiter
	verifier  ports.VerificationService
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	limiter ports.AttemptLimiter,
	verifier ports.VerificationService,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		limiter:   limiter,
		verifier:  verifier,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Register stores a new unverified account and queues its verification e-mail.
func (s *AuthService) Register(ctx context.Context, username, password, email, role string) (*domain.User, error) {
	email = normalizeEmail(email)
	if username == "" || password == "" || email == "" || role == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if role != domain.RoleAdmin && role != domain.RoleClient {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.Resend(ctx, created.Email); err != nil {
		s.log.Warn().Err(err).Str("email", created.Email).Msg("failed to queue verification email")
	}

	s.log.Info().Str("email", created.Email).Str("role", created.Role).Msg("user registered")
	return created, nil
}

// SignIn checks credentials and returns a signed session token. Credential
// failures are *domain.AuthError values; anything else is an infrastructure
// error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	token, user, err := s.signIn(ctx, normalizeEmail(email), password)

	outcome := "success"
	if err != nil {
		outcome = domain.ClassifyAuthError(err).Kind.String()
	}
	metrics.SignInAttemptsTotal.WithLabelValues(outcome).Inc()

	return token, user, err
}

func (s *AuthService) signIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.NewAuthError(domain.CodeInvalidCredential, msgMissingCredentials)
	}

	blocked, err := s.limiter.Blocked(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("attempt limiter check failed, continuing")
	} else if blocked {
		return "", nil, domain.NewAuthError(domain.CodeTooManyRequests, msgTooManyAttempts)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return "", nil, domain.NewAuthError(domain.CodeUserNotFound, msgNoSuchUser)
		}
		return "", nil, fmt.Errorf("sign in: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return "", nil, domain.NewAuthError(domain.CodeWrongPassword, msgWrongPassword)
	}

	if !user.EmailVerified {
		return "", nil, domain.NewAuthError(domain.CodeEmailNotVerified, msgUnverified)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to reset attempt counter")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user signed in")
	return token, user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to record sign-in failure")
	}
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
