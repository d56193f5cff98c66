package models

import "gorm.io/gorm"

// Configuration is the root owner of actions and attachments. Its visibility
// flags decide whether anonymous or authenticated callers may see anything
// beneath it.
type Configuration struct {
	gorm.Model
	Label      string `gorm:"not null"`
	IsPublic   bool   `gorm:"not null;default:false"`
	IsInternal bool   `gorm:"not null;default:false"`
}
