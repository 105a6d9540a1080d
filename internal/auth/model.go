package auth

import "time"

// User is one registered credential record. PasswordHash holds the bcrypt
// digest of the password, never the plaintext, and is never serialized into
// a response.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenResponse is the body returned by register and login.
type TokenResponse struct {
	Token string `json:"token"`
}
