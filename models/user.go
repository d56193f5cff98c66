package models

import "gorm.io/gorm"

// User backs the login endpoint. The only authorization question in this
// service is authenticated vs anonymous, so no roles are attached.
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null" json:"-"` // Don't expose password hash
	Email    string `gorm:"unique"`
}
