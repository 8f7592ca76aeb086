package tokens

import (
	"crypto/rand"
	"encoding/base64"
)

// 32 random bytes = 256 bits of entropy.
const refreshTokenBytes = 32

// NewRefreshToken returns an opaque, URL-safe random credential. The
// string carries no meaning; the database row it keys is the state.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
