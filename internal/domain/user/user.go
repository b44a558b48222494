package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Note         *string
	IsActive     bool
	IsAdmin      bool
	ManagerID    *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// FullName falls back to the email address when no name is set.
func (u *User) FullName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

type CreateUserInput struct {
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	IsAdmin      bool
}

type UpdateUserInput struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Note         *string
	IsActive     *bool
	IsAdmin      *bool
}
