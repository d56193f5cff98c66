package repositories

import (
	"sms-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActionAttachmentRepository defines the database operations for
// GenericConfigurationActionAttachment records and the lookups needed to
// validate their relationships.
type ActionAttachmentRepository interface {
	Create(aa *models.GenericConfigurationActionAttachment) error
	Update(aa *models.GenericConfigurationActionAttachment) error
	Delete(aa *models.GenericConfigurationActionAttachment) error

	// FindByID fetches a record regardless of visibility. Used on the
	// mutation path, where the caller is always authenticated.
	FindByID(id uint) (*models.GenericConfigurationActionAttachment, error)

	// FindVisibleByID fetches a record only if its owning configuration is
	// visible to the caller. Hidden and missing are indistinguishable.
	FindVisibleByID(id uint, authenticated bool) (*models.GenericConfigurationActionAttachment, error)

	// FindAllVisible returns all visible records and their count.
	FindAllVisible(authenticated bool) ([]models.GenericConfigurationActionAttachment, int64, error)

	FindActionByID(id uint) (*models.GenericConfigurationAction, error)
	FindAttachmentByID(id uint) (*models.ConfigurationAttachment, error)

	// Transaction runs fn against a repository bound to a database
	// transaction. fn returning an error rolls everything back.
	Transaction(fn func(ActionAttachmentRepository) error) error
}

// actionAttachmentRepository implements ActionAttachmentRepository
type actionAttachmentRepository struct {
	db *gorm.DB
}

// NewActionAttachmentRepository creates a new ActionAttachmentRepository instance
func NewActionAttachmentRepository(db *gorm.DB) ActionAttachmentRepository {
	return &actionAttachmentRepository{db: db}
}

// visibleQuery joins up to the owning configuration and applies the
// visibility rule: public rows for everyone, internal rows only for
// authenticated callers. Rows whose configuration carries neither flag are
// hidden from everyone.
func (r *actionAttachmentRepository) visibleQuery(authenticated bool) *gorm.DB {
	q := r.db.Model(&models.GenericConfigurationActionAttachment{}).
		Joins("JOIN generic_configuration_actions ON generic_configuration_actions.id = generic_configuration_action_attachments.action_id").
		Joins("JOIN configurations ON configurations.id = generic_configuration_actions.configuration_id")
	if authenticated {
		return q.Where("configurations.is_public = ? OR configurations.is_internal = ?", true, true)
	}
	return q.Where("configurations.is_public = ?", true)
}

// Create and Update write the link row only; the preloaded Action and
// Attachment structs must never be written back through this resource.

func (r *actionAttachmentRepository) Create(aa *models.GenericConfigurationActionAttachment) error {
	return r.db.Omit(clause.Associations).Create(aa).Error
}

func (r *actionAttachmentRepository) Update(aa *models.GenericConfigurationActionAttachment) error {
	return r.db.Omit(clause.Associations).Save(aa).Error
}

func (r *actionAttachmentRepository) Delete(aa *models.GenericConfigurationActionAttachment) error {
	return r.db.Delete(aa).Error
}

func (r *actionAttachmentRepository) FindByID(id uint) (*models.GenericConfigurationActionAttachment, error) {
	var aa models.GenericConfigurationActionAttachment
	result := r.db.Preload("Action").Preload("Attachment").First(&aa, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &aa, nil
}

func (r *actionAttachmentRepository) FindVisibleByID(id uint, authenticated bool) (*models.GenericConfigurationActionAttachment, error) {
	var aa models.GenericConfigurationActionAttachment
	result := r.visibleQuery(authenticated).
		Where("generic_configuration_action_attachments.id = ?", id).
		Preload("Action").Preload("Attachment").
		First(&aa)
	if result.Error != nil {
		return nil, result.Error
	}
	return &aa, nil
}

func (r *actionAttachmentRepository) FindAllVisible(authenticated bool) ([]models.GenericConfigurationActionAttachment, int64, error) {
	var total int64
	if err := r.visibleQuery(authenticated).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.GenericConfigurationActionAttachment
	result := r.visibleQuery(authenticated).
		Preload("Action").Preload("Attachment").
		Find(&items)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return items, total, nil
}

func (r *actionAttachmentRepository) FindActionByID(id uint) (*models.GenericConfigurationAction, error) {
	var action models.GenericConfigurationAction
	result := r.db.Preload("Configuration").First(&action, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &action, nil
}

func (r *actionAttachmentRepository) FindAttachmentByID(id uint) (*models.ConfigurationAttachment, error) {
	var attachment models.ConfigurationAttachment
	result := r.db.First(&attachment, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &attachment, nil
}

func (r *actionAttachmentRepository) Transaction(fn func(ActionAttachmentRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&actionAttachmentRepository{db: tx})
	})
}
