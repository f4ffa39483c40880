// Package tracking generates the public identifiers that stand in for
// complaint identity. A tracking ID is the student's only reference to their
// complaint: it carries no user id, no timestamp and no sequence, so it can be
// shared without revealing anything.
package tracking

import (
	"context"
	"crypto/rand"
	"fmt"

	"voisafe/backend/internal/apperr"
)

// Length is the fixed tracking ID length. The 62-symbol alphabet gives a
// keyspace of 62^12 (~3.2e21), which makes enumeration infeasible.
const Length = 12

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxAttempts bounds the collision-check loop so a pathological collision
// storm fails the request instead of blocking forever.
const maxAttempts = 10

// ExistsFunc reports whether a candidate tracking ID is already taken.
type ExistsFunc func(ctx context.Context, trackingID string) (bool, error)

// Generate returns one candidate tracking ID from a cryptographically secure
// random source.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tracking: reading random bytes: %w", err)
	}

	id := make([]byte, Length)
	for i, b := range buf {
		id[i] = charset[int(b)%len(charset)]
	}
	return string(id), nil
}

// GenerateUnique repeatedly generates candidates until exists reports a free
// one, or the retry budget runs out with apperr.ErrExhaustedRetries.
func GenerateUnique(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := Generate()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("tracking: existence check for %s: %w", id, err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("tracking: no unique id after %d attempts: %w", maxAttempts, apperr.ErrExhaustedRetries)
}

// IsValidFormat checks length and alphabet membership only. It says nothing
// about whether the ID exists.
func IsValidFormat(trackingID string) bool {
	if len(trackingID) != Length {
		return false
	}
	for i := 0; i < len(trackingID); i++ {
		c := trackingID[i]
		if !('A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}
