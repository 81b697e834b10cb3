package domain

import "time"

// User is the account record returned by the auth endpoints.
type User struct {
	ID        ID         `json:"id,omitempty"`
	AltID     ID         `json:"_id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Key returns the primary id, falling back to _id.
func (u User) Key() ID {
	if u.ID != "" {
		return u.ID
	}
	return u.AltID
}

// AuthResult is the payload of a successful login or signup.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest carries new account details.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}
