package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shubhavasar/storefront-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Identity is the verified subject of a bearer token issued by the auth
// provider.
type Identity struct {
	UserID string
	Email  string
}

type identityClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ParseIdentityToken validates a bearer token and returns the identity it
// carries. Callers treat any error as "guest"; the token is optional.
func ParseIdentityToken(cfg config.JWTConfig, tokenString string) (*Identity, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("token is required")
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token subject is empty")
	}

	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
