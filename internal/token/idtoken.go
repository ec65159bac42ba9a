package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IDTokenParams holds the data needed to generate an OIDC ID Token
// (OIDC Core 1.0 §2). The lifetime mirrors the access token it accompanies.
type IDTokenParams struct {
	Issuer   string
	Subject  string
	Audience string // client_id
	Expiry   time.Duration
	Name     string
	Email    string
}

// EncodeIDToken creates a signed HS256 JWT ID Token. ID tokens are not
// stored; they are short-lived and non-revocable.
func (c *Codec) EncodeIDToken(params IDTokenParams) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":            params.Issuer,
		"sub":            params.Subject,
		"aud":            params.Audience,
		"exp":            now.Add(params.Expiry).Unix(),
		"iat":            now.Unix(),
		"jti":            uuid.New().String(),
		"name":           params.Name,
		"email":          params.Email,
		"email_verified": true,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return tokenString, nil
}
