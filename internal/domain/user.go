package domain

import "time"

// AdminRoleName is the distinguished role that passes panel and field checks.
const AdminRoleName = "admin"

// AdminUser represents an admin_users row. Accounts are never hard-deleted;
// the active flag gates login instead.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// Role represents an admin_roles row.
type Role struct {
	ID   int64
	Name string
}

// Session is a server-side login session. The ID is an opaque random token
// carried only by the browser cookie; everything else lives in the database,
// so deactivating a user or deleting the row revokes access immediately.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Flash categories, matching the alert styles the templates render.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// FlashMessage is one transient per-session notice, shown on the next render
// and then discarded.
type FlashMessage struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}
