package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string     `json:"name" gorm:"size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         Role       `json:"role" gorm:"type:varchar(10);not null;default:'user'"`
	IsActive     bool       `json:"isActive" gorm:"not null;default:true"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Safe returns a copy of the user with the password hash cleared.
func (u *User) Safe() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// ProfileUpdate is a partial update of a user's own profile. Nil fields are
// left untouched. Password holds the already hashed value.
type ProfileUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil
}

// NormalizeEmail canonicalizes an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
