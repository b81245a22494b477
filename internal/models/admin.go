// internal/models/admin.go
package models

import "time"

// UserRole is the role-table side of the admin dual write.
type UserRole struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"` // "candidate", "recruiter", "admin"
	UpdatedAt time.Time `json:"updated_at"`
}

// UserBan holds at most one row per user; later bans replace earlier ones.
type UserBan struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	BannedUntil time.Time `json:"banned_until"`
	CreatedAt   time.Time `json:"created_at"`
}
