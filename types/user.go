package types

import "time"

// User is an account record. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"userId" gorm:"primaryKey;column:user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the client-facing view of a user.
type PublicUser struct {
	ID    string `json:"userId"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

// Public strips the credential fields.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Plan: u.Plan}
}
