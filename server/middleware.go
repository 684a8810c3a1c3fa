package server

import (
	"context"
	"net/http"
	"time"

	"riseup/logger"
	"riseup/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFromContext returns the request's session, or nil when the request
// carried no valid cookie.
func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// SessionMiddleware resolves the session cookie into the request context and
// refreshes the TTL of authenticated sessions, giving a rolling expiry.
func (h *APIHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.config().SessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := h.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			if err != session.ErrNotFound {
				logger.Error("Failed to load session", logger.ErrorField(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		if sess.Authenticated() {
			if err := h.sessions.Save(r.Context(), sess); err != nil {
				logger.Warn("Failed to refresh session TTL", logger.ErrorField(err))
			}
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ensureSession returns the request's session, creating an anonymous one and
// setting the cookie when none exists yet. The OTP flow needs a session
// before the user is authenticated.
func (h *APIHandler) ensureSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if sess := sessionFromContext(r.Context()); sess != nil {
		return sess, nil
	}

	sess := &session.Session{}
	if err := h.sessions.Create(r.Context(), sess); err != nil {
		return nil, err
	}
	h.setSessionCookie(w, sess.ID)
	return sess, nil
}

func (h *APIHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	cfg := h.config()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *APIHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config().SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth rejects requests without an authenticated session.
func (h *APIHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		if sess == nil || !sess.Authenticated() {
			writeMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin rejects requests whose session email is not on the admin
// allow list. The generic message avoids confirming which emails are admins.
func (h *APIHandler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		if sess == nil || !sess.Authenticated() || !h.config().IsAdminEmail(sess.Email) {
			writeMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// CORSMiddleware sets the CORS headers and answers preflight requests.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			// Sessions ride on cookies, so the origin is echoed instead of "*".
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogMiddleware logs every API request with method, path, status and
// duration.
func RequestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logger.Info("Request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", recorder.status),
			logger.Duration("duration", time.Since(start)))
	})
}
