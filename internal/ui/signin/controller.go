// Package signin holds the state of the sign-in page.
package signin

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
)

// RootPath is where a successful sign-in lands.
const RootPath = "/"

var (
	ErrSignInInFlight = errors.New("sign in: attempt already in flight")
	ErrResendInFlight = errors.New("sign in: verification resend already in flight")
)

const (
	MsgResendFailed = "Could not resend the verification email. Please try again."
	MsgResendSent   = "Verification email sent. Check your inbox."
)

// View is a read-only copy of the page state.
type View struct {
	Email           string
	Password        string
	PasswordVisible bool
	Submitting      bool
	Error           string
	Notice          string
	ShowResend      bool
}

// PasswordInputType is the input type the password field renders with.
func (v View) PasswordInputType() string {
	if v.PasswordVisible {
		return "text"
	}
	return "password"
}

// Controller owns the credentials and the transient flags of the page.
type Controller struct {
	auth     ports.Authenticator
	resender ports.VerificationResender
	nav      ports.Navigator
	log      zerolog.Logger

	mu              sync.Mutex
	email           string
	password        string
	passwordVisible bool
	submitting      bool
	resending       bool
	errMsg          string
	notice          string
	showResend      bool
	pendingEmail    string
	lastFailure     *domain.AuthFailure
}

func New(auth ports.Authenticator, resender ports.VerificationResender, nav ports.Navigator, log zerolog.Logger) *Controller {
	return &Controller{
		auth:     auth,
		resender: resender,
		nav:      nav,
		log:      log.With().Str("component", "sign_in").Logger(),
	}
}

func (c *Controller) SetEmail(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = email
}

func (c *Controller) SetPassword(password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.password = password
}

// TogglePasswordVisibility flips masked/plain rendering of the password.
func (c *Controller) TogglePasswordVisibility() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passwordVisible = !c.passwordVisible
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Email:           c.email,
		Password:        c.password,
		PasswordVisible: c.passwordVisible,
		Submitting:      c.submitting,
		Error:           c.errMsg,
		Notice:          c.notice,
		ShowResend:      c.showResend,
	}
}

// LastFailure returns the classification of the most recent failed attempt,
// or nil when the last attempt succeeded or none was made.
func (c *Controller) LastFailure() *domain.AuthFailure {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastFailure == nil {
		return nil
	}
	f := *c.lastFailure
	return &f
}

// AttemptSignIn checks the current credentials. On success it navigates to
// RootPath; on failure it shows the classified message.
func (c *Controller) AttemptSignIn(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSignInInFlight
	}
	c.errMsg, c.notice = "", ""
	c.showResend = false
	c.lastFailure = nil
	c.submitting = true
	email, password := c.email, c.password
	c.mu.Unlock()

	_, err := c.auth.SignIn(ctx, email, password)

	c.mu.Lock()
	c.submitting = false
	if err == nil {
		c.password = ""
		c.pendingEmail = ""
		c.mu.Unlock()
		c.nav.Navigate(RootPath)
		return nil
	}
	defer c.mu.Unlock()

	failure := domain.ClassifyAuthError(err)
	c.lastFailure = &failure
	c.errMsg = failure.Message
	c.showResend = failure.CanResendVerification()
	if c.showResend {
		c.pendingEmail = email
	}
	c.log.Debug().Err(err).Str("kind", failure.Kind.String()).Msg("sign in failed")
	return nil
}

// ResendVerification asks for a new verification e-mail for the account of
// the last unverified attempt. It does nothing unless the resend action is
// shown, and returns ErrResendInFlight while a previous resend is running.
func (c *Controller) ResendVerification(ctx context.Context) error {
	c.mu.Lock()
	if !c.showResend {
		c.mu.Unlock()
		return nil
	}
	if c.resending {
		c.mu.Unlock()
		return ErrResendInFlight
	}
	email := c.pendingEmail
	c.resending = true
	c.notice = ""
	if c.lastFailure != nil {
		c.errMsg = c.lastFailure.Message
	}
	c.mu.Unlock()

	err := c.resender.ResendVerificationEmail(ctx, email)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resending = false
	if err != nil {
		c.log.Error().Err(err).Msg("resend verification email failed")
		c.errMsg = MsgResendFailed
		return nil
	}
	c.notice = MsgResendSent
	return nil
}
