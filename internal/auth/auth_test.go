package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_SignVerify(t *testing.T) {
	j := NewJWT("secret", time.Hour)

	tok, err := j.Sign("42")
	require.NoError(t, err)

	sub, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestJWT_Verify_Rejects(t *testing.T) {
	j := NewJWT("secret", time.Hour)

	other, err := NewJWT("other", time.Hour).Sign("42")
	require.NoError(t, err)
	_, err = j.Verify(other)
	assert.Error(t, err, "wrong secret")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = j.Verify(expired)
	assert.Error(t, err, "expired")

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = j.Verify(noSub)
	assert.Error(t, err, "missing sub")

	_, err = j.Verify("not-a-token")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, ComparePassword(h, "correct horse"))
	assert.False(t, ComparePassword(h, "battery staple"))
}

func gated(res Resolver) (http.Handler, *string, *bool) {
	var seen string
	called := false
	h := RequireIdentity(res)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen, &called
}

func TestRequireIdentity_Header(t *testing.T) {
	h, seen, called := gated(HeaderResolver{})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("user-id", " u1 ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, *called)
	assert.Equal(t, "u1", *seen)
}

func TestRequireIdentity_MissingOrBlank(t *testing.T) {
	for _, v := range []string{"", "   "} {
		h, _, called := gated(HeaderResolver{})

		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		if v != "" {
			req.Header.Set("user-id", v)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called, "handler must not run")
		assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
	}
}

func TestRequireIdentity_CustomHeader(t *testing.T) {
	h, seen, _ := gated(HeaderResolver{Header: "X-User"})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("X-User", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc", *seen)
}

func TestRequireIdentity_Bearer(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	tok, err := j.Sign("7")
	require.NoError(t, err)

	h, seen, _ := gated(BearerResolver{JWT: j})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "7", *seen)

	req = httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireIdentity_Either(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	res := EitherResolver{Bearer: BearerResolver{JWT: j}, Header: HeaderResolver{}}
	h, seen, _ := gated(res)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("user-id", "from-header")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "from-header", *seen)

	// a bad token does not fall back to the header
	req = httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("user-id", "from-header")
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFromContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	id, ok := IdentityFromContext(WithIdentity(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestMemUsers(t *testing.T) {
	s := NewMemUsers()
	ctx := context.Background()

	u := &User{Email: "a@b.c", PasswordHash: "x"}
	require.NoError(t, s.Create(ctx, u))
	assert.Equal(t, "1", u.Identity())

	assert.ErrorIs(t, s.Create(ctx, &User{Email: "a@b.c"}), ErrEmailTaken)

	got, err := s.FindByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.FindByEmail(ctx, "nobody@b.c")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
