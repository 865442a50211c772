package usecase

import (
	"context"

	"github.com/canalzap/waba-gateway/internal/entity"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
	"github.com/canalzap/waba-gateway/internal/infra/queue"
)

type TemplateGateway interface {
	CreateTemplate(ctx context.Context, payload meta.CreateTemplatePayload) (string, error)
	ListTemplates(ctx context.Context, filter meta.TemplateFilter) (*meta.TemplateListResponse, error)
	DeleteTemplate(ctx context.Context, name string) error
}

type MessageGateway interface {
	SendMessage(ctx context.Context, payload meta.MessagePayload) (string, error)
	MarkMessageRead(ctx context.Context, messageID string) error
}

type TemplateRecordRepository interface {
	Create(ctx context.Context, rec *entity.TemplateRecord) error
	FindByNameAndLanguage(ctx context.Context, name, language string) (*entity.TemplateRecord, error)
	UpdateStatusByNameAndLanguage(ctx context.Context, name, language, status string) error
}

type MessageLogRepository interface {
	Create(ctx context.Context, msg *entity.MessageLog) error
	FindByID(ctx context.Context, id string) (*entity.MessageLog, error)
	MarkSent(ctx context.Context, id, providerID string) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateStatusByProviderID(ctx context.Context, providerID, status string) error
}

type DispatchProducer interface {
	PublishDispatch(ctx context.Context, job queue.DispatchJob) error
}

type AlertService interface {
	SendTemplateRejected(name, language, reason string) error
}
