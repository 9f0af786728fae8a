package warden

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/leagueforge/waiverwire/internal/domain/user"
	"github.com/leagueforge/waiverwire/internal/platform/logging"
	"github.com/leagueforge/waiverwire/internal/platform/resilience"
	"github.com/leagueforge/waiverwire/internal/usecase"
)

func newIntrospectServer(t *testing.T, hits *atomic.Int64, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.Method != http.MethodPost || r.URL.Path != "/v1/auth/introspect" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func activeResponse(w http.ResponseWriter, userID string) {
	w.Header().Set("Content-Type", "application/json")
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(introspectResponse{
		Active: true,
		UserID: userID,
		Email:  userID + "@example.com",
	})
}

func testClient(serverURL string, cacheTTL time.Duration, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        serverURL,
		IntrospectPath: "/v1/auth/introspect",
		Timeout:        2 * time.Second,
		CacheTTL:       cacheTTL,
		CacheMaxSize:   16,
		CircuitBreaker: breaker,
	}, nil, logging.NewNop())
}

func TestClient_VerifyAccessToken_Success(t *testing.T) {
	var hits atomic.Int64
	server := newIntrospectServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		var req introspectRequest
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Token != "token-abc" {
			t.Errorf("unexpected token: %q", req.Token)
		}
		activeResponse(w, "user-1")
	})

	client := testClient(server.URL, time.Minute, resilience.CircuitBreakerConfig{})

	principal, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if principal.UserID != "user-1" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestClient_VerifyAccessToken_CachesPrincipal(t *testing.T) {
	var hits atomic.Int64
	server := newIntrospectServer(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		activeResponse(w, "user-1")
	})

	client := testClient(server.URL, time.Minute, resilience.CircuitBreakerConfig{})

	for i := 0; i < 3; i++ {
		if _, err := client.VerifyAccessToken(context.Background(), "token-abc"); err != nil {
			t.Fatalf("verify access token: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected one introspection call, got %d", got)
	}
}

func TestClient_VerifyAccessToken_EmptyToken(t *testing.T) {
	client := testClient("http://warden.invalid", time.Minute, resilience.CircuitBreakerConfig{})

	_, err := client.VerifyAccessToken(context.Background(), "   ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_VerifyAccessToken_DeniedAndInactive(t *testing.T) {
	t.Run("401 maps to unauthorized", func(t *testing.T) {
		server := newIntrospectServer(t, nil, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		client := testClient(server.URL, 0, resilience.CircuitBreakerConfig{})

		_, err := client.VerifyAccessToken(context.Background(), "bad-token")
		if !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("inactive token maps to unauthorized", func(t *testing.T) {
		server := newIntrospectServer(t, nil, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = sonic.ConfigDefault.NewEncoder(w).Encode(introspectResponse{Active: false})
		})
		client := testClient(server.URL, 0, resilience.CircuitBreakerConfig{})

		_, err := client.VerifyAccessToken(context.Background(), "expired-token")
		if !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestClient_VerifyAccessToken_CircuitOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int64
	server := newIntrospectServer(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := testClient(server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		if _, err := client.VerifyAccessToken(context.Background(), "token-abc"); err == nil {
			t.Fatalf("expected transient failure %d", i)
		}
	}

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected circuit to stop the third call, got %d hits", got)
	}
}

func TestClient_UnauthorizedDoesNotTripCircuit(t *testing.T) {
	server := newIntrospectServer(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := testClient(server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 5; i++ {
		_, err := client.VerifyAccessToken(context.Background(), "bad-token")
		if !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("call %d: expected ErrUnauthorized, got %v", i, err)
		}
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base string
		path string
		want string
	}{
		{"http://warden:8081", "/v1/auth/introspect", "http://warden:8081/v1/auth/introspect"},
		{"http://warden:8081/", "v1/auth/introspect", "http://warden:8081/v1/auth/introspect"},
		{"http://warden:8081", "", "http://warden:8081"},
		{"http://warden:8081", "https://other.example.com/introspect", "https://other.example.com/introspect"},
	}
	for _, tc := range cases {
		if got := buildURL(tc.base, tc.path); got != tc.want {
			t.Fatalf("buildURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

func TestPrincipalCache_TTLAndEviction(t *testing.T) {
	t.Parallel()

	c := newInMemoryPrincipalCache(20*time.Millisecond, 2)

	c.Set("a", user.Principal{UserID: "user-a"})
	if got, ok := c.Get("a"); !ok || got.UserID != "user-a" {
		t.Fatalf("expected cached principal, got %+v ok=%t", got, ok)
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected entry expired")
	}

	c.Set("a", user.Principal{UserID: "user-a"})
	c.Set("b", user.Principal{UserID: "user-b"})
	c.Set("c", user.Principal{UserID: "user-c"})

	cached := 0
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := c.Get(key); ok {
			cached++
		}
	}
	if cached > 2 {
		t.Fatalf("expected eviction to keep at most 2 entries, got %d", cached)
	}
}
