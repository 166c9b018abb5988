package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type actorContextKey string

const actorKey actorContextKey = "actor"

// actorClaims is the subset of token claims the tracker cares about.
// Identity issuance is someone else's problem; only the display name is
// extracted here.
type actorClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Actor returns the authenticated actor name from the context, or ""
// when the request carried no usable token.
func Actor(ctx context.Context) string {
	name, _ := ctx.Value(actorKey).(string)
	return name
}

// BearerActor parses an optional HS256 bearer token signed with secret
// and stores the actor name in the request context. With an empty
// secret, or an invalid token, the request proceeds anonymously: action
// payloads carry their own actor field and this is only a default.
func BearerActor(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := &actorClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims,
				func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
				jwt.WithValidMethods([]string{"HS256"}),
			)
			if err != nil || !token.Valid {
				logger.Debug("bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			name := claims.Name
			if name == "" {
				name = claims.Subject
			}
			ctx := context.WithValue(r.Context(), actorKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
