package auth

import (
	"context"
	"net/http"

	"charity-events/internal/logger"
	"charity-events/internal/utils"
)

type contextKey string

const subjectKey contextKey = "subject"

// AdminOnly requires a valid admin bearer token. An empty secret disables the
// check so local setups work without tokens.
func AdminOnly(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := ExtractTokenFromRequest(r)
			if err != nil {
				deny(w, log, r, err.Error())
				return
			}
			claims, err := ParseAdminToken(secret, raw)
			if err != nil {
				deny(w, log, r, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deny(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	if log != nil {
		log.LogSecurity("ADMIN_DENIED", r.Method+" "+r.URL.Path+": "+reason)
	}
	utils.WriteErrorCode(w, http.StatusUnauthorized, utils.CodeUnauthorized, "admin authorization required")
}

// Subject returns the admin subject stored by AdminOnly.
func Subject(ctx context.Context) string {
	if sub, ok := ctx.Value(subjectKey).(string); ok {
		return sub
	}
	return ""
}
