package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTResolver verifies HMAC-signed access tokens locally, the way the
// provider's own API gateway does with the project's JWT secret.
type JWTResolver struct {
	secret   []byte
	audience string
}

// NewJWTResolver returns a resolver for tokens signed with secret. When
// audience is non-empty the aud claim must contain it.
func NewJWTResolver(secret []byte, audience string) *JWTResolver {
	return &JWTResolver{secret: secret, audience: audience}
}

type accessClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (r *JWTResolver) Resolve(_ context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if r.audience != "" {
		opts = append(opts, jwt.WithAudience(r.audience))
	}

	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return &Principal{ID: claims.Subject, Email: claims.Email, Metadata: claims.UserMetadata}, nil
}
