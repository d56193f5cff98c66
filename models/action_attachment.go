package models

import "gorm.io/gorm"

// Resource type discriminators as they appear on the JSON:API wire and in
// notification payloads. Relationship payloads naming any other type are
// rejected at the boundary.
const (
	TypeActionAttachment = "generic_configuration_action_attachment"
	TypeAction           = "generic_configuration_action"
	TypeAttachment       = "configuration_attachment"
)

// GenericConfigurationActionAttachment links one action to one attachment.
// It references both without owning them; deleting the link never cascades.
type GenericConfigurationActionAttachment struct {
	gorm.Model
	ActionID     uint `gorm:"not null;index"`
	Action       GenericConfigurationAction
	AttachmentID uint `gorm:"not null;index"`
	Attachment   ConfigurationAttachment
}
