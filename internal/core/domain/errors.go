package domain

import "errors"

var (
	// ErrInvalidCredentials covers every authentication failure: bad or
	// expired tokens, unknown subjects and wrong passwords all collapse here.
	ErrInvalidCredentials = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrEmailTaken         = errors.New("email already in use by another account")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// AccessDeniedError is returned by access policies. It matches ErrForbidden
// under errors.Is and carries which policy denied the request and why.
type AccessDeniedError struct {
	Policy string
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return "forbidden: " + e.Reason
}

func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrForbidden
}
