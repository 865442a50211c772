package usecase

import (
	"context"

	"github.com/canalzap/waba-gateway/internal/entity"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
)

// SendTemplateUseCase queues a template message for dispatch. The worker
// owns the actual Graph API call.
type SendTemplateUseCase struct {
	Repo     MessageLogRepository
	Producer DispatchProducer
}

func NewSendTemplateUseCase(repo MessageLogRepository, producer DispatchProducer) *SendTemplateUseCase {
	return &SendTemplateUseCase{Repo: repo, Producer: producer}
}

func (uc *SendTemplateUseCase) Execute(ctx context.Context, input SendTemplateInput) (*SendMessageOutput, error) {
	if input.PhoneNumber == "" || input.TemplateName == "" {
		return nil, &DomainError{Code: "MISSING_FIELDS", Message: "phone_number and template_name are required"}
	}
	if v := ValidatePhoneNumbers([]entity.Button{{Type: entity.ButtonPhoneNumber, PhoneNumber: input.PhoneNumber}}); !v.IsValid {
		return nil, &DomainError{Code: "INVALID_PHONE", Message: v.Error}
	}
	if input.LanguageCode == "" {
		input.LanguageCode = "en_US"
	}
	if v := ValidateLanguageCode(input.LanguageCode); !v.IsValid {
		return nil, &DomainError{Code: "INVALID_LANGUAGE", Message: v.Error}
	}

	payload := meta.MessagePayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               input.PhoneNumber,
		Type:             "template",
		Template: &meta.TemplateMessage{
			Name:     input.TemplateName,
			Language: meta.LanguageObject{Code: input.LanguageCode},
		},
	}

	if len(input.HeaderParameters) > 0 {
		payload.Template.Components = append(payload.Template.Components, meta.TemplateComponent{
			Type:       "header",
			Parameters: textParameters(input.HeaderParameters),
		})
	}
	if len(input.BodyParameters) > 0 {
		payload.Template.Components = append(payload.Template.Components, meta.TemplateComponent{
			Type:       "body",
			Parameters: textParameters(input.BodyParameters),
		})
	}
	if input.ReplyToMessageID != "" {
		payload.Context = &meta.MessageContext{MessageID: input.ReplyToMessageID}
	}

	return enqueueMessage(ctx, uc.Repo, uc.Producer, input.PhoneNumber, "template", payload)
}

func textParameters(values []string) []meta.TemplateParameter {
	params := make([]meta.TemplateParameter, 0, len(values))
	for _, v := range values {
		params = append(params, meta.TemplateParameter{Type: "text", Text: v})
	}
	return params
}
