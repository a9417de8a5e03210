package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer = "shiftinsight"

	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Operator is a person allowed to load or inspect spreadsheets.
type Operator struct {
	UserName string
	Email    string
	Role     string
}

type Identity struct {
	UniqueName string `json:"unique_name"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
}

// IdentityClaims includes Identity and standard JWT claims
type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

func DecodeSecret(base64Secret string) ([]byte, error) {
	if base64Secret == "" {
		return nil, errors.New("signing secret is not configured")
	}
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("signing secret is not valid base64: %w", err)
	}
	return secret, nil
}

func CreateIdentityToken(operator *Operator, base64Secret string, ttl time.Duration) (string, error) {
	secretBytes, err := DecodeSecret(base64Secret)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := IdentityClaims{
		Identity: Identity{
			UniqueName: operator.UserName,
			Email:      operator.Email,
			Role:       operator.Role,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   operator.UserName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	// Use HS256 signing method (symmetric key)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secretBytes)
}

// ParseIdentityToken verifies an HS256 token signed with secret, including its expiry.
func ParseIdentityToken(tokenStr string, secret []byte) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
