package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Akshit358/Job-Tracker-CRM/internal/model"
)

// Principal is the authenticated identity attached to a request context.
type Principal struct {
	UserID string
	Role   model.Role
}

// IsAdmin is the admin capability predicate. It is deliberately a pure
// function of the principal so it can be unit-tested without any HTTP
// machinery.
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// contextKey is an unexported type for context keys so no other package
// can read or shadow the principal.
type contextKey string

const principalKey contextKey = "principal"

// RequireAuth enforces authentication. It reads the Bearer token from the
// Authorization header, validates it, and stores the Principal in the
// request context. Missing or invalid tokens end the chain with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := extractPrincipal(r, tokens)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces the admin capability. It must run inside
// RequireAuth — without a principal in the context it denies the request.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || !p.IsAdmin() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"forbidden","message":"admin access required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func extractPrincipal(r *http.Request, tokens *TokenService) (Principal, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return Principal{}, false
	}
	userID, role, err := tokens.Validate(token)
	if err != nil {
		return Principal{}, false
	}
	return Principal{UserID: userID, Role: role}, true
}
