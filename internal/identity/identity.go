// Package identity resolves bearer tokens issued by the external identity
// provider into the authenticated principal. Token issuance, sign-in and
// password handling stay with the provider.
package identity

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when a token is missing, malformed, expired or rejected.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the authenticated user making a request.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	// Metadata mirrors the provider's user_metadata (full_name, company, ...).
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// MetadataString returns Metadata[key] when it is a string.
func (p *Principal) MetadataString(key string) string {
	if p == nil || p.Metadata == nil {
		return ""
	}
	s, _ := p.Metadata[key].(string)
	return s
}

// Resolver turns a raw bearer token into a Principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Principal, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, token string) (*Principal, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (*Principal, error) {
	return f(ctx, token)
}

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKey{}).(*Principal)
	return p
}
