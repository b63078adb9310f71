package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/authn"
	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// ClaimsFrom returns the operator claims stored by JWTMiddleware.
func ClaimsFrom(ctx context.Context) (authn.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(authn.Claims)
	return claims, ok
}

// JWTMiddleware parses the bearer token and adds the operator's claims to
// the request context. Signatures are checked by the gateway in front of
// the service.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().
				Str("handler", "JWTMiddleware").Logger()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug().Msg("authorization header missing")
				reject(w, http.StatusUnauthorized, "unauthorized", "authorization header missing")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found {
				logger.Warn().Msg("authorization header is not a bearer token")
				reject(w, http.StatusUnauthorized, "unauthorized", "invalid token format")
				return
			}

			claims, err := authn.ParseClaims(token)
			if err != nil {
				logger.Warn().Err(err).Msg("invalid bearer jwt token")
				reject(w, http.StatusUnauthorized, "unauthorized", "invalid bearer jwt token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = logger.With().Str("operator", claims.Username).Logger().WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// RequireRole rejects requests whose claims lack the given realm role. It
// must run after JWTMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				claims, ok := ClaimsFrom(r.Context())
				if !ok {
					reject(w, http.StatusUnauthorized, "unauthorized", "invalid claims")
					return
				}

				if !claims.HasRole(role) {
					zerolog.Ctx(r.Context()).Warn().
						Str("role", role).
						Msg("operator lacks required role")
					reject(w, http.StatusForbidden, "forbidden", "missing role "+role)
					return
				}

				next.ServeHTTP(w, r)
			},
		)
	}
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Logger()

			start := time.Now()
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))

			logger.Debug().Dur("duration", time.Since(start)).Msg("request handled")
		},
	)
}

func reject(w http.ResponseWriter, status int, code, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.Response{ErrorCode: code, ErrorDetails: details})
}
