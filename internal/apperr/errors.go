// Package apperr defines the error taxonomy shared by the complaint core.
// Handlers map these sentinels onto HTTP status codes; internal layers wrap
// them with operation context via fmt.Errorf("%w").
package apperr

import "errors"

var (
	// ErrValidation marks missing or malformed input. Maps to 400.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing complaint, tracking ID or identity mapping. Maps to 404.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied marks an ownership mismatch on student self-service access. Maps to 403.
	ErrAccessDenied = errors.New("access denied")

	// ErrForbidden marks a role or tenant mismatch on admin operations. Maps to 403.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized marks a missing or invalid token. Maps to 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrExhaustedRetries marks a tracking-ID collision storm. Maps to 500; the
	// request is retryable by the caller.
	ErrExhaustedRetries = errors.New("exhausted retries")

	// ErrDecryption marks a malformed blob, wrong key or corrupted ciphertext.
	// Maps to 500 and must be logged loudly: it can indicate key rotation
	// without data migration, or tampering.
	ErrDecryption = errors.New("decryption failed")

	// ErrDuplicateKey marks a race on a unique column. Maps to 400.
	ErrDuplicateKey = errors.New("duplicate key")
)

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
