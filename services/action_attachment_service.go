package services

import (
	"errors"
	"fmt"
	"strconv"

	"sms-backend/models"
	"sms-backend/repositories"

	"gorm.io/gorm"
)

// Notifier publishes a notification message for every successful mutation.
// The concrete implementation lives in the messaging package; tests
// substitute a recording double.
type Notifier interface {
	ActionAttachmentCreated(aa *models.GenericConfigurationActionAttachment) error
	ActionAttachmentUpdated(aa *models.GenericConfigurationActionAttachment) error
	ActionAttachmentDeleted(id uint) error
}

// RelationshipRef names a related resource the way the client supplied it:
// type string plus stringified id.
type RelationshipRef struct {
	Type string
	ID   string
}

type CreateActionAttachmentInput struct {
	Action     *RelationshipRef
	Attachment *RelationshipRef
}

type UpdateActionAttachmentInput struct {
	// Action may restate the current action id but can never change it.
	Action     *RelationshipRef
	Attachment *RelationshipRef
}

// The ActionAttachmentService interface defines the operations on the
// generic configuration action attachment resource.
type ActionAttachmentService interface {
	List(authenticated bool) ([]models.GenericConfigurationActionAttachment, int64, error)
	Get(id uint, authenticated bool) (*models.GenericConfigurationActionAttachment, error)
	Create(input *CreateActionAttachmentInput) (*models.GenericConfigurationActionAttachment, error)
	Update(id uint, input *UpdateActionAttachmentInput) (*models.GenericConfigurationActionAttachment, error)
	Delete(id uint) error
}

// actionAttachmentService is the implementation of ActionAttachmentService
type actionAttachmentService struct {
	repo     repositories.ActionAttachmentRepository
	notifier Notifier
}

var _ ActionAttachmentService = (*actionAttachmentService)(nil)

// NewActionAttachmentService creates a new ActionAttachmentService instance
func NewActionAttachmentService(repo repositories.ActionAttachmentRepository, notifier Notifier) ActionAttachmentService {
	return &actionAttachmentService{repo: repo, notifier: notifier}
}

// resolveRelationship checks the supplied type string against the accepted
// type for the slot and parses the id. Any mismatch aborts the mutation
// before anything is written.
func resolveRelationship(slot string, ref *RelationshipRef, accepted string) (uint, error) {
	if ref == nil {
		return 0, newValidationError("relationship %q is required", slot)
	}
	if ref.Type != accepted {
		return 0, newValidationError("relationship %q must reference type %q, got %q", slot, accepted, ref.Type)
	}
	id, err := strconv.ParseUint(ref.ID, 10, 32)
	if err != nil {
		return 0, newValidationError("relationship %q has an invalid id %q", slot, ref.ID)
	}
	return uint(id), nil
}

func (s *actionAttachmentService) List(authenticated bool) ([]models.GenericConfigurationActionAttachment, int64, error) {
	items, total, err := s.repo.FindAllVisible(authenticated)
	if err != nil {
		return nil, 0, fmt.Errorf("database error listing action attachments: %w", err)
	}
	return items, total, nil
}

func (s *actionAttachmentService) Get(id uint, authenticated bool) (*models.GenericConfigurationActionAttachment, error) {
	aa, err := s.repo.FindVisibleByID(id, authenticated)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error retrieving action attachment: %w", err)
	}
	return aa, nil
}

func (s *actionAttachmentService) Create(input *CreateActionAttachmentInput) (*models.GenericConfigurationActionAttachment, error) {
	actionID, err := resolveRelationship("action", input.Action, models.TypeAction)
	if err != nil {
		return nil, err
	}
	attachmentID, err := resolveRelationship("attachment", input.Attachment, models.TypeAttachment)
	if err != nil {
		return nil, err
	}

	action, err := s.repo.FindActionByID(actionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newValidationError("action with id %d does not exist", actionID)
		}
		return nil, fmt.Errorf("database error resolving action: %w", err)
	}

	attachment, err := s.repo.FindAttachmentByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newValidationError("attachment with id %d does not exist", attachmentID)
		}
		return nil, fmt.Errorf("database error resolving attachment: %w", err)
	}

	if attachment.ConfigurationID != action.ConfigurationID {
		return nil, newValidationError("attachment with id %d does not belong to the configuration of action %d", attachmentID, actionID)
	}

	aa := &models.GenericConfigurationActionAttachment{
		ActionID:     action.ID,
		AttachmentID: attachment.ID,
	}

	// Persistence and notification share a transaction: a failed publish
	// leaves no persisted row behind.
	err = s.repo.Transaction(func(tx repositories.ActionAttachmentRepository) error {
		if err := tx.Create(aa); err != nil {
			return fmt.Errorf("failed to create action attachment: %w", err)
		}
		if err := s.notifier.ActionAttachmentCreated(aa); err != nil {
			return fmt.Errorf("failed to publish create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	aa.Action = *action
	aa.Attachment = *attachment
	return aa, nil
}

func (s *actionAttachmentService) Update(id uint, input *UpdateActionAttachmentInput) (*models.GenericConfigurationActionAttachment, error) {
	aa, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error retrieving action attachment for update: %w", err)
	}

	if input.Action != nil {
		actionID, err := resolveRelationship("action", input.Action, models.TypeAction)
		if err != nil {
			return nil, err
		}
		if actionID != aa.ActionID {
			return nil, newValidationError("relationship %q is immutable once set", "action")
		}
	}

	if input.Attachment != nil {
		attachmentID, err := resolveRelationship("attachment", input.Attachment, models.TypeAttachment)
		if err != nil {
			return nil, err
		}
		if attachmentID != aa.AttachmentID {
			attachment, err := s.repo.FindAttachmentByID(attachmentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, newValidationError("attachment with id %d does not exist", attachmentID)
				}
				return nil, fmt.Errorf("database error resolving attachment: %w", err)
			}
			if attachment.ConfigurationID != aa.Action.ConfigurationID {
				return nil, newValidationError("attachment with id %d does not belong to the configuration of action %d", attachmentID, aa.ActionID)
			}
			aa.AttachmentID = attachment.ID
			aa.Attachment = *attachment
		}
	}

	// A successful PATCH always publishes exactly one notification, even
	// when it restates the current values.
	err = s.repo.Transaction(func(tx repositories.ActionAttachmentRepository) error {
		if err := tx.Update(aa); err != nil {
			return fmt.Errorf("failed to save action attachment update: %w", err)
		}
		if err := s.notifier.ActionAttachmentUpdated(aa); err != nil {
			return fmt.Errorf("failed to publish update notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return aa, nil
}

func (s *actionAttachmentService) Delete(id uint) error {
	aa, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error retrieving action attachment for delete: %w", err)
	}

	// Removes the link only. The referenced action and attachment stay.
	return s.repo.Transaction(func(tx repositories.ActionAttachmentRepository) error {
		if err := tx.Delete(aa); err != nil {
			return fmt.Errorf("failed to delete action attachment: %w", err)
		}
		if err := s.notifier.ActionAttachmentDeleted(aa.ID); err != nil {
			return fmt.Errorf("failed to publish delete notification: %w", err)
		}
		return nil
	})
}
