package messaging

import (
	"encoding/json"
	"fmt"
	"strconv"

	"sms-backend/models"
)

// Topic names follow sms/{operation}-{resource}, where operation is the
// lowercased HTTP verb of the mutation. External consumers depend on the
// exact topic strings and payload bytes produced here.
const (
	topicPrefix              = "sms/"
	actionAttachmentResource = "generic-configuration-action-attachment"
)

// Minimal envelope shapes. Relationship linkages in notifications carry only
// ids, and delete notifications carry no relationships at all.
type notificationRef struct {
	ID string `json:"id"`
}

type notificationRelationship struct {
	Data notificationRef `json:"data"`
}

type notificationResource struct {
	Type          string                              `json:"type"`
	ID            string                              `json:"id"`
	Relationships map[string]notificationRelationship `json:"relationships,omitempty"`
}

type notificationEnvelope struct {
	Data notificationResource `json:"data"`
}

// Notifier builds notification envelopes for resource mutations and
// publishes them through the messaging port.
type Notifier struct {
	publisher Publisher
}

// NewNotifier creates a Notifier publishing through the given port.
func NewNotifier(publisher Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

func topicFor(operation string) string {
	return topicPrefix + operation + "-" + actionAttachmentResource
}

func (n *Notifier) publish(operation string, envelope notificationEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	return n.publisher.Publish(topicFor(operation), payload)
}

func actionAttachmentEnvelope(aa *models.GenericConfigurationActionAttachment) notificationEnvelope {
	return notificationEnvelope{
		Data: notificationResource{
			Type: models.TypeActionAttachment,
			ID:   strconv.FormatUint(uint64(aa.ID), 10),
			Relationships: map[string]notificationRelationship{
				"action":     {Data: notificationRef{ID: strconv.FormatUint(uint64(aa.ActionID), 10)}},
				"attachment": {Data: notificationRef{ID: strconv.FormatUint(uint64(aa.AttachmentID), 10)}},
			},
		},
	}
}

func (n *Notifier) ActionAttachmentCreated(aa *models.GenericConfigurationActionAttachment) error {
	return n.publish("post", actionAttachmentEnvelope(aa))
}

func (n *Notifier) ActionAttachmentUpdated(aa *models.GenericConfigurationActionAttachment) error {
	return n.publish("patch", actionAttachmentEnvelope(aa))
}

func (n *Notifier) ActionAttachmentDeleted(id uint) error {
	return n.publish("delete", notificationEnvelope{
		Data: notificationResource{
			Type: models.TypeActionAttachment,
			ID:   strconv.FormatUint(uint64(id), 10),
		},
	})
}
