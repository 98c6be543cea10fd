package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Needed for pq.StringArray
	"gorm.io/gorm"
)

// User represents a registered account in the user directory.
// The messaging core only reads users; registration and profile editing
// live behind the HTTP API of the main application.
type User struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string         `gorm:"not null" json:"-"`
	Bio            string         `json:"bio"`
	FavoriteDrinks pq.StringArray `gorm:"type:text[]" json:"favorite_drinks"`
	SoberDate      *time.Time     `json:"sober_date"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// BeforeCreate is a GORM hook called before a record is inserted.
// It generates a new UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// DaysSober returns the number of whole days since SoberDate,
// or -1 when the user has not set one.
func (u *User) DaysSober() int {
	if u.SoberDate == nil {
		return -1
	}
	return int(time.Since(*u.SoberDate).Hours() / 24)
}
