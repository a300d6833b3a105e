package models

import "time"

// User is an identity record. UID is opaque and unique; the profile document is keyed by it.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
}

type PublicUser struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		UID:      u.UID,
		Email:    u.Email,
		Provider: u.Provider,
	}
}
