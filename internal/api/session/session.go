// Package session keeps the per-browser controllers of the portal in memory.
//
// Each browser gets a random "sid" cookie. The Session behind it owns one
// sign-in controller for the whole visit and at most one open request form.
package session

import (
	"context"
	"sync"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/core/ports"
	"github.com/99minutos/parcel-portal/internal/ui/requestform"
	"github.com/99minutos/parcel-portal/internal/ui/signin"
)

// Session is the state of one browser.
type Session struct {
	ID string

	SignIn *signin.Controller
	Nav    *Redirect
	Auth   *TokenAuthenticator

	mu        sync.Mutex
	form      *requestform.Controller
	formOwner string
}

// RequestForm returns the open form of ownerID, creating one with newForm
// when there is none. Cancelling the returned form drops it from the session.
func (s *Session) RequestForm(ownerID string, newForm func(onClose func()) *requestform.Controller) *requestform.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.form != nil && s.formOwner == ownerID && !s.form.Closed() {
		return s.form
	}

	var form *requestform.Controller
	form = newForm(func() { s.dropForm(form) })
	s.form = form
	s.formOwner = ownerID
	return form
}

// CloseRequestForm cancels the open form, if any.
func (s *Session) CloseRequestForm() {
	s.mu.Lock()
	form := s.form
	s.mu.Unlock()
	if form != nil {
		form.Cancel()
	}
}

func (s *Session) dropForm(form *requestform.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == form {
		s.form = nil
		s.formOwner = ""
	}
}

// Redirect is a Navigator that records the target for the HTTP handler to
// turn into a redirect.
type Redirect struct {
	mu   sync.Mutex
	path string
}

func (r *Redirect) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

// Take returns the pending target and clears it. Empty means no navigation.
func (r *Redirect) Take() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.path
	r.path = ""
	return p
}

// TokenAuthenticator adapts the auth service to the sign-in controller and
// keeps the session token of the last successful sign-in.
type TokenAuthenticator struct {
	svc ports.AuthService

	mu    sync.Mutex
	token string
}

func NewTokenAuthenticator(svc ports.AuthService) *TokenAuthenticator {
	return &TokenAuthenticator{svc: svc}
}

func (a *TokenAuthenticator) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	token, user, err := a.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
	return user, nil
}

// TakeToken returns the stored token and clears it.
func (a *TokenAuthenticator) TakeToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := a.token
	a.token = ""
	return t
}
