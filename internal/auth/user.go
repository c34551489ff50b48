package auth

import (
	"strconv"
	"time"
)

// User is a local account for the token identity mode.
type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
}

// Identity is the caller identity string stored as the owner of the user's
// applications.
func (u User) Identity() string {
	return strconv.FormatUint(u.ID, 10)
}
