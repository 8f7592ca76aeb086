package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the shortest signing secret accepted at startup.
const MinSecretLen = 32

var ErrInvalidToken = errors.New("invalid token")

// Codec signs and verifies the short-lived access tokens. It keeps no
// state besides the secret: validity is signature plus expiry.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}
	return &Codec{secret: secret}, nil
}

func (c *Codec) Issue(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode returns the subject username, or ErrInvalidToken for any
// failure: bad signature, malformed payload, missing subject, or
// expiry at or before now.
func (c *Codec) Decode(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return "", ErrInvalidToken
	}
	// strict boundary, enforced here instead of relying on the
	// library's leeway handling: the token is dead the moment its
	// expiry is reached.
	if !claims.ExpiresAt.Time.After(time.Now()) {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
