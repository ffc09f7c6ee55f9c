package users

import (
	"time"

	"resume-builder/resume/model"
)

// Account is a stored user including the password hash.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

// Public strips the credential material.
func (a Account) Public() model.User {
	return model.User{ID: a.ID, Username: a.Username, Name: a.Name}
}
