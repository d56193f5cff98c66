package models

import (
	"time"

	"gorm.io/gorm"
)

// GenericConfigurationAction is a procedural record scoped to a configuration
// (e.g. a maintenance visit). Read-only in this service; actions are managed
// elsewhere.
type GenericConfigurationAction struct {
	gorm.Model
	ConfigurationID uint `gorm:"not null;index"`
	Configuration   Configuration
	ActionTypeName  string `gorm:"not null"`
	Description     string
	BeginDate       *time.Time
	EndDate         *time.Time
}
