package models

const (
	RoleFan       = "fan"
	RolePerformer = "performer"
)

// Session identifies an authenticated client. Stored in the session KV store
// under the session ID for the configured TTL.
type Session struct {
	ID string `json:"id"`
	// UserID is the backing principal: a users row for fans, a performers row
	// for performers.
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// LoginRequest carries the shared-secret credential check.
type LoginRequest struct {
	Email       string `json:"email"`
	AccessCode  string `json:"access_code"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// LoginResponse returns the bearer token for the started session.
type LoginResponse struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}
