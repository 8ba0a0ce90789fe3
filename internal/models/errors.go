package models

import "errors"

// Error taxonomy shared across layers. Handlers map these onto HTTP statuses;
// everything else wraps them with fmt.Errorf("...: %w", err).
var (
	// ErrTokenNotFound means the identifier resolved to no known entity on
	// any data source. Not retryable.
	ErrTokenNotFound = errors.New("token not found")

	// ErrValidation means the request itself was malformed. Not retryable.
	ErrValidation = errors.New("invalid request")

	// ErrUpstream means a single external source returned a non-success
	// status or an unusable payload. Recovered locally by degrading the
	// affected fields.
	ErrUpstream = errors.New("upstream source error")

	// ErrConnectivity means a backing service (cache store) was unreachable
	// and the direct-fetch fallback also failed.
	ErrConnectivity = errors.New("backing service unreachable")

	// ErrQuotaExceeded means the caller used up their daily scan allowance.
	ErrQuotaExceeded = errors.New("daily scan quota exceeded")
)
