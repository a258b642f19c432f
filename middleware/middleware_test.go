package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func guarded(roles ...string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetUserIDFromContext(r.Context())
		if id > 0 {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(secret)(Authorize(roles...)(ok))
}

func TestAuthenticateAuthorize(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def", http.StatusUnauthorized},
		{"wrong key", "Bearer " + sign(t, jwt.MapClaims{"user_id": 1, "role": "admin", "exp": exp}, []byte("other")), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.MapClaims{"user_id": 1, "role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}, secret), http.StatusUnauthorized},
		{"player role", "Bearer " + sign(t, jwt.MapClaims{"user_id": 1, "role": "player", "exp": exp}, secret), http.StatusForbidden},
		{"missing role", "Bearer " + sign(t, jwt.MapClaims{"user_id": 1, "exp": exp}, secret), http.StatusForbidden},
		{"organizer", "Bearer " + sign(t, jwt.MapClaims{"user_id": 9, "role": "organizer", "exp": exp}, secret), http.StatusOK},
		{"admin without user id", "Bearer " + sign(t, jwt.MapClaims{"role": "admin", "exp": exp}, secret), http.StatusNoContent},
	}
	h := guarded(RoleAdmin, RoleOrganizer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/zones", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthenticate_RejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"role": "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	guarded(RoleAdmin).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"), "budgets are per address")
}

func TestRateLimit_PrunesIdleEntries(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }
	for i := 0; i <= cleanupThreshold; i++ {
		limiter.limiter("10.1.0." + strconv.Itoa(i))
	}
	now = now.Add(maxIdleAge + time.Minute)
	limiter.limiter("fresh")
	assert.Len(t, limiter.ips, 1)
}
