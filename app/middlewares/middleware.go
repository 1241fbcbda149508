package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/danuarta/go-marketplace/app/helpers"
	"github.com/gorilla/sessions"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

// SessionMiddleware reads the authenticated identity out of the cookie
// session and stashes it in the request context. It never creates identity:
// requests without a session pass through anonymous and each handler decides
// whether that is acceptable.
func SessionMiddleware(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, helpers.SessionName)
			if err != nil {
				// A stale or tampered cookie is treated as anonymous.
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if userID, ok := session.Values[helpers.SessionUserIDKey].(string); ok && userID != "" {
				ctx = context.WithValue(ctx, helpers.ContextKeyUserID, userID)
				if role, ok := session.Values[helpers.SessionUserRoleKey].(string); ok {
					ctx = context.WithValue(ctx, helpers.ContextKeyUserRole, role)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a subtree to requests whose session carries one of the
// allowed roles.
func RequireRole(rnd *render.Render, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := r.Context().Value(helpers.ContextKeyUserID).(string)
			if userID == "" {
				rnd.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			role, _ := r.Context().Value(helpers.ContextKeyUserRole).(string)
			if _, ok := allowed[role]; !ok {
				rnd.JSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs one line per request with method, path, status and
// latency.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
