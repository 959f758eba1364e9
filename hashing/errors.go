package hashing

import "errors"

// Sentinel errors returned by hashing operations.
//
// Use [errors.Is] for comparisons:
//
//	_, _, err := registry.Resolve(id)
//	if errors.Is(err, hashing.ErrNoStrategyAvailable) {
//	    // misconfigured registry
//	}
var (
	// ErrInvalidHash is returned when an encoded value cannot be parsed because
	// it has an unrecognised format, missing fields, or invalid encoding.
	ErrInvalidHash = errors.New("hashing: invalid or unrecognised hash string")

	// ErrInvalidOption is returned when a constructor is called with a
	// parameter value that falls outside the allowed range (e.g., a bcrypt
	// cost below 4 or above 31, or a negative policy minimum).
	ErrInvalidOption = errors.New("hashing: invalid option value")

	// ErrNoStrategyAvailable is returned when neither the requested strategy
	// nor the default strategy is registered.  It is a configuration error and
	// is never reported as a password mismatch.
	ErrNoStrategyAvailable = errors.New("hashing: no strategy available")

	// ErrEmptyStrategyName is returned by [Registry.Register] when the
	// supplied strategy id is an empty string.
	ErrEmptyStrategyName = errors.New("hashing: strategy name must not be empty")

	// ErrNilStrategy is returned by [Registry.Register] when a nil [Strategy]
	// is supplied.
	ErrNilStrategy = errors.New("hashing: strategy must not be nil")

	// ErrUnknownKind is returned by [NewStrategy] when no constructor has been
	// registered for the requested implementation kind.
	ErrUnknownKind = errors.New("hashing: unknown strategy implementation")

	// ErrPasswordPolicy is wrapped by every [*ValidationError].
	ErrPasswordPolicy = errors.New("hashing: password policy violation")

	// ErrEntropyUnavailable is returned when no acceptable randomness source
	// could produce salt bytes.
	ErrEntropyUnavailable = errors.New("hashing: entropy source unavailable")

	// ErrDegradedEntropy is logged (never returned) when salt bytes had to be
	// derived from the timing-based fallback.
	ErrDegradedEntropy = errors.New("hashing: degraded entropy, salt derived from timing fallback")
)
