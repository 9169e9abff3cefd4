package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/SpooderfyBot/room/pkg/wire"
	"github.com/SpooderfyBot/room/relay/internal/config"
)

type contextKey struct{}

// Anonymous is the identity handed out when authentication is disabled.
var Anonymous = wire.Identity{Username: "anonymous"}

// Authenticator resolves bearer tokens to member identities.
//
// Behaviour:
//   - Mode "none" (or empty): every request passes with the Anonymous
//     identity.
//   - Mode "bearer": the Authorization header must carry a token from the
//     member list; anything else is 401.
type Authenticator struct {
	mode    string
	members map[string]wire.Identity
}

// New builds an Authenticator from the config's auth section. Members whose
// token does not resolve from the environment are skipped.
func New(cfg config.AuthConfig) *Authenticator {
	members := make(map[string]wire.Identity, len(cfg.Members))
	for _, m := range cfg.Members {
		token := m.Token()
		if token == "" {
			continue
		}
		members[token] = wire.Identity{Username: m.Username, Avatar: m.Avatar}
	}
	return &Authenticator{mode: cfg.Mode, members: members}
}

// Middleware enforces authentication and stores the caller's identity in
// the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.mode != "bearer" {
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), Anonymous)))
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		id, ok := a.members[token]
		if !ok {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// IdentityFrom returns the identity the middleware attached to ctx.
func IdentityFrom(ctx context.Context) (wire.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(wire.Identity)
	return id, ok
}

func withIdentity(ctx context.Context, id wire.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) || len(h) == len(prefix) {
		return "", false
	}
	return h[len(prefix):], true
}
