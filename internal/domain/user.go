package domain

import "time"

// User representa una cuenta registrada. PasswordHash nunca se serializa.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Image        string    `json:"image,omitempty"`
	Color        int       `json:"color"`
	ProfileSetup bool      `json:"profileSetup"`
	CreatedAt    time.Time `json:"created_at"`
}
