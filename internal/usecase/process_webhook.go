package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/canalzap/waba-gateway/internal/entity"
)

type MessageStatusInput struct {
	ProviderID string
	Status     string
}

type TemplateStatusInput struct {
	Name     string
	Language string
	Event    string
	Reason   string
}

// ProcessWebhookUseCase applies provider webhook events to local state:
// delivery statuses update the message log, template review decisions update
// the template record, and a rejection raises an alert.
type ProcessWebhookUseCase struct {
	Messages  MessageLogRepository
	Templates TemplateRecordRepository
	Alerts    AlertService
}

func NewProcessWebhookUseCase(messages MessageLogRepository, templates TemplateRecordRepository, alerts AlertService) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{Messages: messages, Templates: templates, Alerts: alerts}
}

var messageStatusMap = map[string]string{
	"sent":      entity.MessageStatusSent,
	"delivered": entity.MessageStatusDelivered,
	"read":      entity.MessageStatusRead,
	"failed":    entity.MessageStatusFailed,
}

func (uc *ProcessWebhookUseCase) HandleMessageStatus(ctx context.Context, input MessageStatusInput) error {
	status, ok := messageStatusMap[strings.ToLower(input.Status)]
	if !ok {
		// Unknown statuses are ignored; Meta adds new ones over time.
		log.Printf("webhook: ignoring unknown message status %q", input.Status)
		return nil
	}

	if err := uc.Messages.UpdateStatusByProviderID(ctx, input.ProviderID, status); err != nil {
		if err == entity.ErrMessageNotFound {
			// Status for a message not sent through this gateway.
			return nil
		}
		return &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	return nil
}

func (uc *ProcessWebhookUseCase) HandleTemplateStatus(ctx context.Context, input TemplateStatusInput) error {
	event := strings.ToUpper(input.Event)

	var status string
	switch event {
	case entity.TemplateStatusApproved:
		status = entity.TemplateStatusApproved
	case entity.TemplateStatusRejected:
		status = entity.TemplateStatusRejected
	case "PENDING", "IN_APPEAL", "FLAGGED", "PAUSED":
		status = event
	default:
		log.Printf("webhook: ignoring unknown template event %q", input.Event)
		return nil
	}

	err := uc.Templates.UpdateStatusByNameAndLanguage(ctx, input.Name, input.Language, status)
	if err != nil && err != entity.ErrTemplateNotFound {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if status == entity.TemplateStatusRejected && uc.Alerts != nil {
		if err := uc.Alerts.SendTemplateRejected(input.Name, input.Language, input.Reason); err != nil {
			// Alerting is best effort; the status update already landed.
			log.Printf("webhook: rejection alert not sent: %v", err)
		}
	}

	return nil
}
