package handler

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/authz"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

type contextKeyType string

const requestIDKey contextKeyType = "request_id"

// RequestID injects a unique request ID into every request context and response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestLogger logs each request with slog structured logging.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", GetRequestID(r.Context()),
			)
		})
	}
}

// Recovery catches panics and returns 500.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"error", rec,
						"stack", string(debug.Stack()),
						"path", r.URL.Path,
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser gates a subtree behind a live session. The session resolves to
// an admin_users row on every request, so deactivating a user locks them out
// immediately, mid-session. The user lands in the request context.
func RequireUser(sessions *auth.SessionManager, users repository.AdminUserRepository, db repository.DBTX) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.Resolve(r.Context(), r)
			if err != nil || session == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			user, err := users.FindByID(r.Context(), db, session.UserID)
			if err != nil || user == nil || !user.Active {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// RequirePanel gates a subtree behind one admin-panel capability. It runs
// after RequireUser, so a user is always in context. The check repeats on
// every request; revoking the capability takes effect immediately.
func RequirePanel(checker authz.Checker, renderer *Renderer, action domain.PanelAction) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := currentUser(r)
			if err != nil {
				renderer.Error(w, r, err)
				return
			}
			allowed, err := checker.CanPanel(r.Context(), user.ID, action)
			if err != nil {
				renderer.Error(w, r, domain.ErrInternal("check panel permission", err))
				return
			}
			if !allowed {
				renderer.Error(w, r, domain.ErrForbidden("no "+string(action)+" capability"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}
