package profiles

import "time"

// Profile is the public identity card of a registered DID.
// Profiles are created once by Register and never updated or deleted.
type Profile struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	DID       string    `json:"did" db:"did"`
	Username  string    `json:"username" db:"username"`
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
}

// RegisterRequest represents input for creating a profile
// DID comes from the authenticated session, never from the request body
type RegisterRequest struct {
	DID       string `json:"-"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}
