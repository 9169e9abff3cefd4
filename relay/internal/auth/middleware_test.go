package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SpooderfyBot/room/pkg/wire"
	"github.com/SpooderfyBot/room/relay/internal/auth"
	"github.com/SpooderfyBot/room/relay/internal/config"
)

func echoIdentity(t *testing.T) (http.Handler, *wire.Identity) {
	t.Helper()
	var seen wire.Identity
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok {
			t.Error("IdentityFrom: no identity in context")
		}
		seen = id
	})
	return h, &seen
}

func TestMiddleware_NoneModePassesAnonymous(t *testing.T) {
	a := auth.New(config.AuthConfig{Mode: "none"})
	next, seen := echoIdentity(t)

	rec := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/@me", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if *seen != auth.Anonymous {
		t.Errorf("identity: got %+v, want anonymous", *seen)
	}
}

func TestMiddleware_BearerResolvesMember(t *testing.T) {
	t.Setenv("TEST_MEMBER_TOKEN", "s3cret")
	a := auth.New(config.AuthConfig{
		Mode: "bearer",
		Members: []config.Member{
			{TokenEnv: "TEST_MEMBER_TOKEN", Username: "spooder", Avatar: "https://cdn.test/s.png"},
		},
	})
	next, seen := echoIdentity(t)

	req := httptest.NewRequest(http.MethodGet, "/api/@me", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	a.Middleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if seen.Username != "spooder" {
		t.Errorf("identity: got %+v", *seen)
	}
}

func TestMiddleware_BearerRejections(t *testing.T) {
	t.Setenv("TEST_MEMBER_TOKEN", "s3cret")
	a := auth.New(config.AuthConfig{
		Mode:    "bearer",
		Members: []config.Member{{TokenEnv: "TEST_MEMBER_TOKEN", Username: "spooder"}},
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic s3cret"},
		{"wrong token", "Bearer nope"},
		{"empty token", "Bearer "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/@me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			a.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Error("handler reached despite bad credentials")
			})).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rec.Code)
			}
		})
	}
}

func TestNew_SkipsUnresolvedTokens(t *testing.T) {
	a := auth.New(config.AuthConfig{
		Mode:    "bearer",
		Members: []config.Member{{TokenEnv: "DEFINITELY_UNSET_VAR_42", Username: "ghost"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/@me", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	a.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler reached")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
