package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/canalzap/waba-gateway/internal/entity"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
	"github.com/canalzap/waba-gateway/internal/infra/queue"
)

// MockTemplateRecordRepository
type MockTemplateRecordRepository struct {
	mock.Mock
}

func (m *MockTemplateRecordRepository) Create(ctx context.Context, rec *entity.TemplateRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockTemplateRecordRepository) FindByNameAndLanguage(ctx context.Context, name, language string) (*entity.TemplateRecord, error) {
	args := m.Called(ctx, name, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TemplateRecord), args.Error(1)
}

func (m *MockTemplateRecordRepository) UpdateStatusByNameAndLanguage(ctx context.Context, name, language, status string) error {
	args := m.Called(ctx, name, language, status)
	return args.Error(0)
}

// MockMessageLogRepository
type MockMessageLogRepository struct {
	mock.Mock
}

func (m *MockMessageLogRepository) Create(ctx context.Context, msg *entity.MessageLog) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageLogRepository) FindByID(ctx context.Context, id string) (*entity.MessageLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MessageLog), args.Error(1)
}

func (m *MockMessageLogRepository) MarkSent(ctx context.Context, id, providerID string) error {
	args := m.Called(ctx, id, providerID)
	return args.Error(0)
}

func (m *MockMessageLogRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockMessageLogRepository) UpdateStatusByProviderID(ctx context.Context, providerID, status string) error {
	args := m.Called(ctx, providerID, status)
	return args.Error(0)
}

// MockTemplateGateway
type MockTemplateGateway struct {
	mock.Mock
}

func (m *MockTemplateGateway) CreateTemplate(ctx context.Context, payload meta.CreateTemplatePayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *MockTemplateGateway) ListTemplates(ctx context.Context, filter meta.TemplateFilter) (*meta.TemplateListResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*meta.TemplateListResponse), args.Error(1)
}

func (m *MockTemplateGateway) DeleteTemplate(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockMessageGateway
type MockMessageGateway struct {
	mock.Mock
}

func (m *MockMessageGateway) SendMessage(ctx context.Context, payload meta.MessagePayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *MockMessageGateway) MarkMessageRead(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

// MockDispatchProducer
type MockDispatchProducer struct {
	mock.Mock
}

func (m *MockDispatchProducer) PublishDispatch(ctx context.Context, job queue.DispatchJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockAlertService
type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) SendTemplateRejected(name, language, reason string) error {
	args := m.Called(name, language, reason)
	return args.Error(0)
}
