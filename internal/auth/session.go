package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/repository"
)

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "supportdesk_session"

// SessionManager issues and resolves opaque server-side sessions. The cookie
// carries only the random token; user identity and expiry live in the
// database, so deleting the row revokes access immediately.
type SessionManager struct {
	db       repository.DBTX
	sessions repository.SessionRepository
	ttl      time.Duration
	secure   bool
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(db repository.DBTX, sessions repository.SessionRepository, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{db: db, sessions: sessions, ttl: ttl, secure: secure}
}

// Issue creates a session for the user and sets the cookie.
func (m *SessionManager) Issue(ctx context.Context, w http.ResponseWriter, userID int64) (*domain.Session, error) {
	token, err := generateToken(32)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	// Logins are rare enough to carry the expired-row sweep; there is no
	// background job to do it.
	_ = m.sessions.DeleteExpired(ctx, m.db, now)

	session := &domain.Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, m.db, session); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}

// Resolve returns the live session for the request, or nil when the cookie
// is absent, unknown or expired. Expired rows are deleted on sight.
func (m *SessionManager) Resolve(ctx context.Context, r *http.Request) (*domain.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	session, err := m.sessions.Find(ctx, m.db, cookie.Value)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	if session.Expired(time.Now()) {
		_ = m.sessions.Delete(ctx, m.db, session.ID)
		return nil, nil
	}
	return session, nil
}

// Destroy deletes the request's session row and clears the cookie.
func (m *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := m.sessions.Delete(ctx, m.db, cookie.Value); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return nil
}

// Flash appends a transient message to the request's session. Requests
// without a session drop the message silently.
func (m *SessionManager) Flash(ctx context.Context, r *http.Request, message, category string) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	_ = m.sessions.AppendFlash(ctx, m.db, cookie.Value, domain.FlashMessage{
		Message:  message,
		Category: category,
	})
}

// DrainFlash returns and clears the request's pending flash messages.
func (m *SessionManager) DrainFlash(ctx context.Context, r *http.Request) []domain.FlashMessage {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	msgs, err := m.sessions.DrainFlash(ctx, m.db, cookie.Value)
	if err != nil {
		return nil
	}
	return msgs
}

func generateToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
