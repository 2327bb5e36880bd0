package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session token format: st_<ULID>_<16 hex chars>
// Example: st_01HV4Q2M9GZJ8RW3T5Y6K7N8P9_4f8d2e1b9c7a5f3d
const sessionTokenSuffixBytes = 8

var sessionTokenRegex = regexp.MustCompile(`^st_[0-9A-HJKMNP-TV-Z]{26}_[a-f0-9]{16}$`)

// GenerateSessionToken creates a new opaque session token.
// The ULID part keeps tokens sortable by issue time for operational
// inspection; the random suffix makes them unguessable.
func GenerateSessionToken() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	suffix := make([]byte, sessionTokenSuffixBytes)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate token suffix: %w", err)
	}

	return fmt.Sprintf("st_%s_%s", id.String(), hex.EncodeToString(suffix)), nil
}

// IsSessionToken reports whether the value looks like a session token.
// Used by the auth middleware to reject garbage before a store lookup.
func IsSessionToken(token string) bool {
	return sessionTokenRegex.MatchString(token)
}
