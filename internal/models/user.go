package models

// User is a management API account. The emulated devices themselves
// authenticate with their per-device key, not with users.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
