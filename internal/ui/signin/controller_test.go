package signin

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

type stubAuth struct {
	signInFn func(ctx context.Context, email, password string) (*domain.User, error)
	calls    int
}

func (s *stubAuth) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	s.calls++
	return s.signInFn(ctx, email, password)
}

type stubResender struct {
	err    error
	emails []string
}

func (s *stubResender) ResendVerificationEmail(_ context.Context, email string) error {
	s.emails = append(s.emails, email)
	return s.err
}

type recordingNav struct {
	paths []string
}

func (n *recordingNav) Navigate(path string) { n.paths = append(n.paths, path) }

func failingWith(err error) *stubAuth {
	return &stubAuth{signInFn: func(context.Context, string, string) (*domain.User, error) {
		return nil, err
	}}
}

func newController(auth *stubAuth, res *stubResender, nav *recordingNav) *Controller {
	c := New(auth, res, nav, zerolog.Nop())
	c.SetEmail("alice@example.com")
	c.SetPassword("s3cret")
	return c
}

func TestController_SignIn_Success(t *testing.T) {
	auth := &stubAuth{signInFn: func(_ context.Context, email, password string) (*domain.User, error) {
		if email != "alice@example.com" || password != "s3cret" {
			t.Fatalf("unexpected credentials: %s %s", email, password)
		}
		return &domain.User{Email: email}, nil
	}}
	nav := &recordingNav{}
	c := newController(auth, &stubResender{}, nav)

	if err := c.AttemptSignIn(context.Background()); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if len(nav.paths) != 1 || nav.paths[0] != RootPath {
		t.Fatalf("expected one navigation to %s, got %v", RootPath, nav.paths)
	}
	v := c.View()
	if v.Error != "" || v.ShowResend {
		t.Fatalf("unexpected error state after success: %+v", v)
	}
	if c.LastFailure() != nil {
		t.Fatalf("failure recorded after success")
	}
}

func TestController_SignIn_UserNotFound(t *testing.T) {
	nav := &recordingNav{}
	c := newController(failingWith(domain.NewAuthError(domain.CodeUserNotFound, "no user")), &stubResender{}, nav)

	_ = c.AttemptSignIn(context.Background())

	v := c.View()
	if v.Error != "No account found with this email" {
		t.Fatalf("unexpected message %q", v.Error)
	}
	if v.ShowResend {
		t.Fatalf("resend shown for user-not-found")
	}
	if len(nav.paths) != 0 {
		t.Fatalf("navigated on failure")
	}
}

func TestController_SignIn_UnknownCode(t *testing.T) {
	c := newController(failingWith(domain.NewAuthError("auth/internal-error", "oops")), &stubResender{}, &recordingNav{})

	_ = c.AttemptSignIn(context.Background())

	if got := c.View().Error; got != "Sign in failed. Please try again." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestController_SignIn_UnverifiedShowsResendRegardlessOfCode(t *testing.T) {
	for _, code := range []string{"", domain.CodeInvalidCredential, domain.CodeTooManyRequests} {
		msg := "Please verify your email before signing in."
		c := newController(failingWith(domain.NewAuthError(code, msg)), &stubResender{}, &recordingNav{})

		_ = c.AttemptSignIn(context.Background())

		v := c.View()
		if !v.ShowResend {
			t.Fatalf("code %q: resend not shown", code)
		}
		if v.Error != msg {
			t.Fatalf("code %q: expected original text, got %q", code, v.Error)
		}
	}
}

func TestController_AttemptClearsPreviousError(t *testing.T) {
	fail := true
	auth := &stubAuth{signInFn: func(context.Context, string, string) (*domain.User, error) {
		if fail {
			return nil, domain.NewAuthError(domain.CodeEmailNotVerified, "Please verify your email before signing in.")
		}
		return &domain.User{}, nil
	}}
	c := newController(auth, &stubResender{}, &recordingNav{})

	_ = c.AttemptSignIn(context.Background())
	if !c.View().ShowResend {
		t.Fatalf("resend not shown after first attempt")
	}

	fail = false
	_ = c.AttemptSignIn(context.Background())
	v := c.View()
	if v.Error != "" || v.ShowResend {
		t.Fatalf("stale state after success: %+v", v)
	}
}

func TestController_SignIn_DoubleSubmitGuard(t *testing.T) {
	var c *Controller
	auth := &stubAuth{}
	auth.signInFn = func(context.Context, string, string) (*domain.User, error) {
		if !c.View().Submitting {
			t.Errorf("submitting flag not set during call")
		}
		if err := c.AttemptSignIn(context.Background()); !errors.Is(err, ErrSignInInFlight) {
			t.Errorf("expected ErrSignInInFlight, got %v", err)
		}
		return &domain.User{}, nil
	}
	nav := &recordingNav{}
	c = newController(auth, &stubResender{}, nav)

	if err := c.AttemptSignIn(context.Background()); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if auth.calls != 1 || len(nav.paths) != 1 {
		t.Fatalf("expected one call and one navigation, got %d and %d", auth.calls, len(nav.paths))
	}
}

func TestController_TogglePasswordVisibility(t *testing.T) {
	c := newController(failingWith(errors.New("x")), &stubResender{}, &recordingNav{})

	if got := c.View().PasswordInputType(); got != "password" {
		t.Fatalf("expected masked input, got %s", got)
	}
	c.TogglePasswordVisibility()
	if got := c.View().PasswordInputType(); got != "text" {
		t.Fatalf("expected plain input, got %s", got)
	}
	c.TogglePasswordVisibility()
	v := c.View()
	if v.PasswordInputType() != "password" {
		t.Fatalf("expected masked input after two toggles")
	}
	if v.Password != "s3cret" {
		t.Fatalf("password mutated: %q", v.Password)
	}
}

func TestController_ResendVerification(t *testing.T) {
	res := &stubResender{}
	c := newController(failingWith(errors.New("Please verify your email first")), res, &recordingNav{})

	c.ResendVerification(context.Background())
	if len(res.emails) != 0 {
		t.Fatalf("resend called before affordance was shown")
	}

	_ = c.AttemptSignIn(context.Background())
	c.ResendVerification(context.Background())

	if len(res.emails) != 1 || res.emails[0] != "alice@example.com" {
		t.Fatalf("unexpected resend calls: %v", res.emails)
	}
	if got := c.View().Notice; got != MsgResendSent {
		t.Fatalf("expected notice %q, got %q", MsgResendSent, got)
	}
}

func TestController_ResendVerification_FailureSurfaced(t *testing.T) {
	res := &stubResender{err: errors.New("queue full")}
	c := newController(failingWith(errors.New("Please verify your email first")), res, &recordingNav{})

	_ = c.AttemptSignIn(context.Background())
	c.ResendVerification(context.Background())

	v := c.View()
	if v.Error != MsgResendFailed {
		t.Fatalf("expected %q, got %q", MsgResendFailed, v.Error)
	}
	if !v.ShowResend {
		t.Fatalf("resend affordance hidden after failure")
	}
}

type sequenceResender struct {
	errs   []error
	emails []string
}

func (s *sequenceResender) ResendVerificationEmail(_ context.Context, email string) error {
	s.emails = append(s.emails, email)
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func TestController_ResendVerification_RetryClearsFailure(t *testing.T) {
	res := &sequenceResender{errs: []error{errors.New("queue full"), nil}}
	c := New(failingWith(errors.New("Please verify your email first")), res, &recordingNav{}, zerolog.Nop())
	c.SetEmail("alice@example.com")
	c.SetPassword("s3cret")

	_ = c.AttemptSignIn(context.Background())
	_ = c.ResendVerification(context.Background())
	if got := c.View().Error; got != MsgResendFailed {
		t.Fatalf("expected %q after failed resend, got %q", MsgResendFailed, got)
	}

	if err := c.ResendVerification(context.Background()); err != nil {
		t.Fatalf("resend: %v", err)
	}
	v := c.View()
	if v.Notice != MsgResendSent {
		t.Fatalf("expected notice %q, got %q", MsgResendSent, v.Notice)
	}
	if v.Error != "Please verify your email first" {
		t.Fatalf("stale error after successful resend: %q", v.Error)
	}
	if len(res.emails) != 2 {
		t.Fatalf("expected two resend calls, got %d", len(res.emails))
	}
}

type reentrantResender struct {
	c     *Controller
	calls int
	t     *testing.T
}

func (r *reentrantResender) ResendVerificationEmail(ctx context.Context, _ string) error {
	r.calls++
	if err := r.c.ResendVerification(ctx); !errors.Is(err, ErrResendInFlight) {
		r.t.Errorf("expected ErrResendInFlight, got %v", err)
	}
	return nil
}

func TestController_ResendVerification_InFlightGuard(t *testing.T) {
	res := &reentrantResender{t: t}
	c := New(failingWith(errors.New("Please verify your email first")), res, &recordingNav{}, zerolog.Nop())
	res.c = c
	c.SetEmail("alice@example.com")

	_ = c.AttemptSignIn(context.Background())
	if err := c.ResendVerification(context.Background()); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if res.calls != 1 {
		t.Fatalf("expected one resend call, got %d", res.calls)
	}
	if err := c.ResendVerification(context.Background()); err != nil {
		t.Fatalf("guard not released after settle: %v", err)
	}
	if res.calls != 2 {
		t.Fatalf("expected second resend after settle, got %d calls", res.calls)
	}
}
