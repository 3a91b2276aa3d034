package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/dealflow-studio/engine/pkg/logger"
	"github.com/dealflow-studio/engine/pkg/utils"
)

// GoTrueResolver asks a GoTrue-compatible provider (GET /auth/v1/user) who a
// token belongs to. Successful lookups are cached for the configured TTL so a
// page load does not cost one provider round trip per API call. An entry never
// outlives the token's own exp claim, but a token revoked at the provider keeps
// resolving until its entry expires.
type GoTrueResolver struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *cache.Cache
	ttl     time.Duration
}

// NewGoTrueResolver builds a resolver against baseURL (e.g. https://xyz.supabase.co).
// A zero ttl disables caching.
func NewGoTrueResolver(baseURL, apiKey string, ttl time.Duration, client *http.Client) *GoTrueResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	r := &GoTrueResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		ttl:     ttl,
	}
	if ttl > 0 {
		r.cache = cache.New(ttl, ttl*2)
	}
	return r
}

type gotrueUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (r *GoTrueResolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	key := utils.Fingerprint(token)
	if r.cache != nil {
		if cached, found := r.cache.Get(key); found {
			return cached.(*Principal), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.L().Warn("identity provider error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var u gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: provider returned no user id", ErrUnauthenticated)
	}

	p := &Principal{ID: u.ID, Email: u.Email, Metadata: u.UserMetadata}
	if r.cache != nil {
		if ttl := r.cacheTTL(token); ttl > 0 {
			r.cache.Set(key, p, ttl)
		}
	}
	return p, nil
}

// cacheTTL caps the configured TTL at the token's remaining lifetime. The
// signature is not checked here: the provider has just accepted the token.
func (r *GoTrueResolver) cacheTTL(token string) time.Duration {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return r.ttl
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return 0
	}
	return min(r.ttl, remaining)
}
