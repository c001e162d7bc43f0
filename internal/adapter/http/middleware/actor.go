package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/auth"
	"github.com/iho/debtledger/internal/infrastructure/logger"
	"github.com/iho/debtledger/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ActorContextKey is the context key for the acting owner
	ActorContextKey ContextKey = "actor"

	// OwnerHeader names the acting owner when token authentication is disabled.
	OwnerHeader = "X-Owner"
)

// ActorMiddleware resolves the acting owner of every request. With a JWT
// manager the owner comes from the Bearer token; without one it is read from
// the X-Owner header. Requests without an owner are rejected with 401.
func ActorMiddleware(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, reason := resolveActor(r, jwtManager)
			if reason != "" {
				if m != nil {
					m.AuthFailures.WithLabelValues(reason).Inc()
				}
				unauthorized(w, reason)
				return
			}

			ctx := WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveActor(r *http.Request, jwtManager *auth.JWTManager) (domain.Actor, string) {
	if jwtManager == nil {
		actor, err := domain.NewActor(r.Header.Get(OwnerHeader))
		if err != nil {
			return domain.Actor{}, "missing_owner"
		}
		return actor, ""
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return domain.Actor{}, "missing_token"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return domain.Actor{}, "invalid_header"
	}

	claims, err := jwtManager.Verify(parts[1])
	if err != nil {
		if err == domain.ErrExpiredToken {
			return domain.Actor{}, "expired_token"
		}
		return domain.Actor{}, "invalid_token"
	}

	actor, err := claims.Actor()
	if err != nil {
		return domain.Actor{}, "invalid_token"
	}

	return actor, ""
}

func unauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": reason,
	})
}

// WithActor stores the acting owner in ctx and tags the request logger with it.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	ctx = context.WithValue(ctx, ActorContextKey, actor)
	return logger.WithActorID(ctx, actor.ID)
}

// ActorFromContext extracts the acting owner from context
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(domain.Actor)
	return actor, ok
}
