package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const RequestIDKey ctxKey = "request_id"

// requestMeta is shared by every middleware layer of one request, so values
// set deeper in the chain (the user id) are visible to outer layers.
type requestMeta struct {
	id     string
	userID string
}

// RequestID ensures each request has an ID in context and response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), RequestIDKey, &requestMeta{id: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id from context.
func GetRequestID(ctx context.Context) string {
	if m, ok := ctx.Value(RequestIDKey).(*requestMeta); ok {
		return m.id
	}
	return ""
}

func setRequestUser(ctx context.Context, userID string) {
	if m, ok := ctx.Value(RequestIDKey).(*requestMeta); ok {
		m.userID = userID
	}
}

func requestUser(ctx context.Context) string {
	if m, ok := ctx.Value(RequestIDKey).(*requestMeta); ok {
		return m.userID
	}
	return ""
}
