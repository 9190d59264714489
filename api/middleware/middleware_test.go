package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabanadebrincar/cabana-backend/pkg/config"
	"github.com/cabanadebrincar/cabana-backend/pkg/security"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuthRejectsWrongPassword(t *testing.T) {
	handler := AdminAuth(config.AdminConfig{Password: "segredo"}, nil)(okHandler())

	for _, provided := range []string{"", "errada"} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/pedidos", nil)
		if provided != "" {
			req.Header.Set(AdminPasswordHeader, provided)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Senha incorreta!"}`, rec.Body.String())
	}
}

func TestAdminAuthAcceptsPlainSecret(t *testing.T) {
	handler := AdminAuth(config.AdminConfig{Password: "segredo"}, nil)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/pedidos", nil)
	req.Header.Set(AdminPasswordHeader, "segredo")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuthPrefersHash(t *testing.T) {
	hash, err := security.HashSecret("segredo-forte", config.PasswordConfig{})
	require.NoError(t, err)
	handler := AdminAuth(config.AdminConfig{Password: "segredo", PasswordHash: hash}, nil)(okHandler())

	cases := map[string]int{
		"segredo-forte": http.StatusOK,
		"segredo":       http.StatusUnauthorized,
	}
	for provided, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/pedidos", nil)
		req.Header.Set(AdminPasswordHeader, provided)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, provided)
	}
}

func TestAdminAuthWithoutConfiguredSecretRejects(t *testing.T) {
	handler := AdminAuth(config.AdminConfig{}, nil)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/pedidos", nil)
	req.Header.Set(AdminPasswordHeader, "anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeWindowStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeWindowStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func TestRateLimitBlocksPerIP(t *testing.T) {
	store := &fakeWindowStore{}
	handler := RateLimit(NewRateLimitPolicy("orcamento", time.Minute, 2), store, nil)(okHandler())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/orcamento", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("1.2.3.4"))
	assert.Equal(t, http.StatusOK, send("1.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.2.3.4"))
	assert.Equal(t, http.StatusOK, send("5.6.7.8"))
}

func TestRateLimitUsesForwardedFor(t *testing.T) {
	store := &fakeWindowStore{}
	handler := RateLimit(NewRateLimitPolicy("feedback", time.Minute, 1), store, nil)(okHandler())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/feedback/x", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", "200.1.1.1, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "request %d", i)
	}
	_, ok := store.counts["ip:feedback:200.1.1.1"]
	assert.True(t, ok)
}

func TestRateLimitFailsOpen(t *testing.T) {
	store := &fakeWindowStore{err: errors.New("redis down")}
	handler := RateLimit(NewRateLimitPolicy("orcamento", time.Minute, 1), store, nil)(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/api/orcamento", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-Id", "id com espaço\n")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEqual(t, "id com espaço\n", rec.Header().Get("X-Request-Id"))
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecovererRepanicsAbort(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestCORSAllowsAdminHeader(t *testing.T) {
	handler := CORS([]string{"https://cabana.example"})(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/api/admin/pedidos", nil)
	req.Header.Set("Origin", "https://cabana.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "x-admin-password")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://cabana.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-admin-password")
}
