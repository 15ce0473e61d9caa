package domain

import (
	"errors"
	"strings"
)

var (
	ErrTooFewImages        = errors.New("too few reference images")
	ErrTooManyImages       = errors.New("too many reference images")
	ErrAssetTooLarge       = errors.New("reference asset too large")
	ErrUnsupportedAsset    = errors.New("unsupported reference asset")
	ErrUnknownPlacement    = errors.New("unknown placement")
	ErrUnknownStyle        = errors.New("unknown background style")
	ErrMissingCredential   = errors.New("synthesis api credential missing")
	ErrSessionUnconfigured = errors.New("session store not configured")
	ErrNetworkUnavailable  = errors.New("remote server unreachable")
	ErrNoUsableResult      = errors.New("no imagery candidates returned")
	ErrInvalidTransition   = errors.New("invalid view transition")
	ErrNotFound            = errors.New("not found")
	ErrClosed              = errors.New("controller closed")
)

// AuthError carries a message produced by the session provider. The message
// is shown to the user as-is.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "authentication failed"
	}
	return e.Message
}

// ErrorKind groups errors by how they are surfaced.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConfiguration  ErrorKind = "configuration"
	KindNetwork        ErrorKind = "network"
	KindNoUsableResult ErrorKind = "no_usable_result"
	KindAuthProvider   ErrorKind = "auth_provider"
	KindTransition     ErrorKind = "transition"
	KindNotFound       ErrorKind = "not_found"
	KindInternal       ErrorKind = "internal"
)

// KindOf classifies err. Nil maps to an empty kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var authErr *AuthError
	switch {
	case errors.Is(err, ErrTooFewImages),
		errors.Is(err, ErrTooManyImages),
		errors.Is(err, ErrAssetTooLarge),
		errors.Is(err, ErrUnsupportedAsset),
		errors.Is(err, ErrUnknownPlacement),
		errors.Is(err, ErrUnknownStyle):
		return KindValidation
	case errors.Is(err, ErrMissingCredential), errors.Is(err, ErrSessionUnconfigured):
		return KindConfiguration
	case errors.Is(err, ErrNetworkUnavailable):
		return KindNetwork
	case errors.Is(err, ErrNoUsableResult):
		return KindNoUsableResult
	case errors.As(err, &authErr):
		return KindAuthProvider
	case errors.Is(err, ErrInvalidTransition):
		return KindTransition
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
