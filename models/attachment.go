package models

import "gorm.io/gorm"

// ConfigurationAttachment is a labeled file/URL reference owned by a configuration.
type ConfigurationAttachment struct {
	gorm.Model
	Label           string `gorm:"not null"`
	URL             string `gorm:"not null"`
	ConfigurationID uint   `gorm:"not null;index"`
	Configuration   Configuration
}
