// internal/services/admin/models.go
package admin

// Admin actions accepted by Execute.
const (
	ActionResetPassword = "reset_password"
	ActionBanUser       = "ban_user"
	ActionUnbanUser     = "unban_user"
	ActionChangeRole    = "change_role"
	ActionDeleteUser    = "delete_user"
	ActionVerifyEmail   = "verify_email"
)

// Request is one privileged action against one user account.
type Request struct {
	Action      string `json:"action"`
	UserID      string `json:"user_id"`
	NewPassword string `json:"new_password,omitempty"`
	BanDuration string `json:"ban_duration,omitempty"` // "1day", "7days", "30days", "permanent"
	BanReason   string `json:"ban_reason,omitempty"`
	NewRole     string `json:"new_role,omitempty"` // "candidate", "recruiter", "admin"
}

// Result reports what an action did; fields are action-specific.
type Result struct {
	Action      string `json:"action"`
	UserID      string `json:"user_id"`
	BannedUntil string `json:"banned_until,omitempty"`
	Role        string `json:"role,omitempty"`
}
