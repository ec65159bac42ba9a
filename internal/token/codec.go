package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type constants
const (
	TokenTypeBearer = "Bearer"
)

// Claims is the bearer claim set: subject, issued-at, expiry, optional
// scope set, and the role carried for audit. Liveness beyond expiry is
// decided by the blacklist layer above the codec, never here.
type Claims struct {
	Scope []string `json:"scope,omitempty"`
	Role  string   `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as a 64-bit user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Codec signs and verifies bearer claims with a process-wide HS256 secret.
// It never consults storage.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec over the configured signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode creates a signed token for the given subject with the given
// lifetime. scope may be nil.
func (c *Codec) Encode(userID int64, ttl time.Duration, scope []string, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Scope: scope,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return tokenString, nil
}

// Decode verifies the signature and expiry and returns the claims.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
