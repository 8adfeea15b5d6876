package shortcode

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// CodeLength is the number of characters in a generated short code.
const CodeLength = 10

// Generator produces short codes for links.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate() (string, error)
}

type randomGenerator struct{}

// NewGenerator returns a Generator backed by crypto/rand. Codes are drawn
// from the URL-safe base64 alphabet (letters, digits, '-' and '_'), so they
// are unpredictable and need no escaping in paths.
func NewGenerator() Generator {
	return &randomGenerator{}
}

// Generate returns a random code of CodeLength characters. Collisions are
// astronomically unlikely but not impossible; callers must treat a
// uniqueness violation from storage as a retryable condition.
func (g *randomGenerator) Generate() (string, error) {
	// 8 random bytes encode to 11 base64 characters, one more than we need.
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(bytes)
	return encoded[:CodeLength], nil
}
