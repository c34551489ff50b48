package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"nextrole/internal/httpapi"
)

// DefaultIdentityHeader is where the upstream identity provider puts the
// caller's user id.
const DefaultIdentityHeader = "user-id"

var ErrNoIdentity = errors.New("no caller identity")

type ctxKey string

const identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey).(string)
	return id, ok && id != ""
}

// Resolver extracts the caller identity from a request.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// HeaderResolver trusts a header set by the upstream identity provider.
type HeaderResolver struct {
	Header string
}

func (h HeaderResolver) Resolve(r *http.Request) (string, error) {
	name := h.Header
	if name == "" {
		name = DefaultIdentityHeader
	}
	id := strings.TrimSpace(r.Header.Get(name))
	if id == "" {
		return "", ErrNoIdentity
	}
	return id, nil
}

// BearerResolver verifies an HS256 token from the Authorization header.
type BearerResolver struct {
	JWT *JWT
}

func (b BearerResolver) Resolve(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", ErrNoIdentity
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if token == "" {
		return "", ErrNoIdentity
	}
	return b.JWT.Verify(token)
}

// EitherResolver prefers a bearer token and falls back to the header. A
// bearer token that fails verification is not retried against the header.
type EitherResolver struct {
	Bearer BearerResolver
	Header HeaderResolver
}

func (e EitherResolver) Resolve(r *http.Request) (string, error) {
	if r.Header.Get("Authorization") != "" {
		return e.Bearer.Resolve(r)
	}
	return e.Header.Resolve(r)
}

// RequireIdentity rejects requests without a caller identity before any
// handler runs and binds the identity into the request context otherwise.
func RequireIdentity(res Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := res.Resolve(r)
			if err != nil || id == "" {
				httpapi.WriteError(w, http.StatusUnauthorized, httpapi.CodeUnauthorized, "unauthorized: no user id found")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
