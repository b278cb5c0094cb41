package domain

import (
	"errors"
	"strings"
)

// Error codes reported by the authentication backend.
const (
	CodeInvalidCredential = "auth/invalid-credential"
	CodeWrongPassword     = "auth/wrong-password"
	CodeUserNotFound      = "auth/user-not-found"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeEmailNotVerified  = "auth/email-not-verified"
)

// AuthError is a sign-in failure as reported by the authentication backend.
// Code may be empty.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NewAuthError builds an AuthError.
func NewAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthFailureKind is the user-facing class of a sign-in failure.
type AuthFailureKind int

const (
	AuthUnknown AuthFailureKind = iota
	AuthEmailNotVerified
	AuthInvalidCredential
	AuthUserNotFound
	AuthTooManyRequests
)

func (k AuthFailureKind) String() string {
	switch k {
	case AuthEmailNotVerified:
		return "email_not_verified"
	case AuthInvalidCredential:
		return "invalid_credential"
	case AuthUserNotFound:
		return "user_not_found"
	case AuthTooManyRequests:
		return "too_many_requests"
	default:
		return "unknown"
	}
}

// Messages shown for classified sign-in failures.
const (
	MsgInvalidCredential = "Invalid email or password"
	MsgUserNotFound      = "No account found with this email"
	MsgTooManyRequests   = "Too many failed attempts. Please try again later."
	MsgSignInFailed      = "Sign in failed. Please try again."
)

// unverifiedMarker is the text the backend puts in the message of an
// unverified-account failure.
const unverifiedMarker = "verify your email"

// AuthFailure is the classification of a sign-in error.
type AuthFailure struct {
	Kind    AuthFailureKind
	Message string
}

// CanResendVerification reports whether the failure unlocks the resend action.
func (f AuthFailure) CanResendVerification() bool {
	return f.Kind == AuthEmailNotVerified
}

var codeFailures = map[string]AuthFailure{
	CodeInvalidCredential: {Kind: AuthInvalidCredential, Message: MsgInvalidCredential},
	CodeWrongPassword:     {Kind: AuthInvalidCredential, Message: MsgInvalidCredential},
	CodeUserNotFound:      {Kind: AuthUserNotFound, Message: MsgUserNotFound},
	CodeTooManyRequests:   {Kind: AuthTooManyRequests, Message: MsgTooManyRequests},
}

// ClassifyAuthError maps a sign-in error to exactly one AuthFailure. The
// unverified-email text wins over any code.
func ClassifyAuthError(err error) AuthFailure {
	if err == nil {
		return AuthFailure{Kind: AuthUnknown, Message: MsgSignInFailed}
	}
	if strings.Contains(err.Error(), unverifiedMarker) {
		return AuthFailure{Kind: AuthEmailNotVerified, Message: err.Error()}
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		if f, ok := codeFailures[ae.Code]; ok {
			return f
		}
	}
	return AuthFailure{Kind: AuthUnknown, Message: MsgSignInFailed}
}
