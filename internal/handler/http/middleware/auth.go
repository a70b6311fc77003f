package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/paycore-hr/payroll-engine/internal/handler/http/response"
	"github.com/paycore-hr/payroll-engine/internal/pkg/jwt"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthRequired rejects requests without a valid access token and puts the
// acting operator on the request context for audit stamping.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Missing access token")
				return
			}

			if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
				response.Unauthorized(w, "Not an access token")
				return
			}

			actor, ok := jwtService.Actor(claims)
			if !ok {
				response.Unauthorized(w, "Token carries no subject")
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// ActorFromContext returns the operator set by AuthRequired.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok {
		return actor
	}
	return ""
}
