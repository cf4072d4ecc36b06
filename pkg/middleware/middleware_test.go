package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marketplace/pkg/auth"
)

func lookupOf(users map[uint]Principal) LookupFunc {
	return func(_ context.Context, id uint) (*Principal, error) {
		if id == 999 {
			return nil, errors.New("db down")
		}
		p, ok := users[id]
		if !ok {
			return nil, nil
		}
		return &p, nil
	}
}

func echoPrincipal(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromCtx(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Role", p.Role)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(lookupOf(map[uint]Principal{
		1: {ID: 1, Role: "seller", Approved: true},
	}))(echoPrincipal(t))

	token := func(id uint) string {
		tok, err := auth.GenerateToken(id, "customer")
		require.NoError(t, err)
		return tok
	}

	cases := []struct {
		name    string
		header  string
		code    int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "Not authorized, no token"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "Not authorized, no token"},
		{"garbage", "Bearer abc", http.StatusUnauthorized, "Not authorized, invalid token"},
		{"deleted user", "Bearer " + token(2), http.StatusUnauthorized, "Not authorized, user not found"},
		{"lookup failure", "Bearer " + token(999), http.StatusInternalServerError, "Internal Server Error"},
		{"valid", "Bearer " + token(1), http.StatusNoContent, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			if tc.message != "" {
				assert.Contains(t, rec.Body.String(), tc.message)
			}
		})
	}
}

func TestAuthenticateUsesStoredRole(t *testing.T) {
	// The token says customer; the store says seller. The store wins.
	h := Authenticate(lookupOf(map[uint]Principal{1: {ID: 1, Role: "seller"}}))(echoPrincipal(t))
	tok, err := auth.GenerateToken(1, "customer")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "seller", rec.Header().Get("X-Role"))
}

func TestQueryTokenOnlyForWebsocketUpgrades(t *testing.T) {
	h := Authenticate(lookupOf(map[uint]Principal{1: {ID: 1, Role: "customer"}}))(echoPrincipal(t))
	tok, err := auth.GenerateToken(1, "customer")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+tok, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/ws?token="+tok, nil)
	req.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))
}

func TestLimiterWindowResets(t *testing.T) {
	l := newLimiter(1, time.Second)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	ok, _ := l.allow("a")
	assert.True(t, ok)
	ok, _ = l.allow("a")
	assert.False(t, ok)

	now = now.Add(2 * time.Second)
	ok, _ = l.allow("a")
	assert.True(t, ok)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(CORSOptions{
		AllowedOrigins: []string{"https://shop.example"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization"},
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, ParseOrigins(""))
	assert.Equal(t, []string{"https://a", "https://b"}, ParseOrigins(" https://a, https://b ,"))
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"https://shop.example"})

	req := httptest.NewRequest(http.MethodGet, "/api/ws/orders", nil)
	assert.True(t, check(req), "no Origin header")

	req.Header.Set("Origin", "https://shop.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal Server Error"}`, rec.Body.String())
}

func TestLoggerKeepsStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}
