package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/canalzap/waba-gateway/internal/entity"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
	"github.com/canalzap/waba-gateway/internal/infra/queue"
)

// SendMessageUseCase queues text, media, location and reaction messages and
// forwards read receipts. Sends go through the dispatch queue; marking a
// message read hits the gateway directly since there is nothing to track.
type SendMessageUseCase struct {
	Repo     MessageLogRepository
	Producer DispatchProducer
	Gateway  MessageGateway
}

func NewSendMessageUseCase(repo MessageLogRepository, producer DispatchProducer, gateway MessageGateway) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Producer: producer, Gateway: gateway}
}

func (uc *SendMessageUseCase) SendText(ctx context.Context, input SendTextInput) (*SendMessageOutput, error) {
	if input.PhoneNumber == "" || input.Message == "" {
		return nil, &DomainError{Code: "MISSING_FIELDS", Message: "phone_number and message are required"}
	}

	payload := meta.MessagePayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               input.PhoneNumber,
		Type:             "text",
		Text:             &meta.TextContent{Body: input.Message, PreviewURL: input.PreviewURL},
	}
	return enqueueMessage(ctx, uc.Repo, uc.Producer, input.PhoneNumber, "text", payload)
}

func (uc *SendMessageUseCase) SendMedia(ctx context.Context, input SendMediaInput) (*SendMessageOutput, error) {
	if input.PhoneNumber == "" {
		return nil, &DomainError{Code: "MISSING_FIELDS", Message: "phone_number is required"}
	}
	if input.MediaID == "" && input.MediaURL == "" {
		return nil, &DomainError{Code: "MISSING_FIELDS", Message: "media_id or media_url is required"}
	}

	content := &meta.MediaContent{ID: input.MediaID, Link: input.MediaURL, Caption: input.Caption}

	payload := meta.MessagePayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               input.PhoneNumber,
	}

	switch strings.ToLower(input.MediaType) {
	case "image":
		payload.Type = "image"
		payload.Image = content
	case "video":
		payload.Type = "video"
		payload.Video = content
	case "audio":
		payload.Type = "audio"
		content.Caption = ""
		payload.Audio = content
	case "document":
		payload.Type = "document"
		content.Filename = input.Filename
		payload.Document = content
	default:
		return nil, &DomainError{Code: "INVALID_MEDIA_TYPE", Message: "media_type must be image, video, audio or document"}
	}

	return enqueueMessage(ctx, uc.Repo, uc.Producer, input.PhoneNumber, payload.Type, payload)
}

func (uc *SendMessageUseCase) SendLocation(ctx context.Context, input SendLocationInput) (*SendMessageOutput, error) {
	if input.PhoneNumber == "" {
		return nil, &DomainError{Code: "MISSING_FIELDS", Message: "phone_number is required"}
	}

	payload := meta.MessagePayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               input.PhoneNumber,
		Type:             "location",
		Location: &meta.LocationContent{
			Latitude:  input.Latitude,
			Longitude: input.Longitude,
			Name:      input.Name,
			Address:   input.Address,
		},
	}
	return enqueueMessage(ctx, uc.Repo, uc.Producer, input.PhoneNumber, "location", payload)
}

func (uc *SendMessageUseCase) SendReaction(ctx context.Context, input SendReactionInput) (*SendMessageOutput, error) {
	if input.PhoneNumber == "" || input.MessageID == "" {
		return nil, &DomainError{Code: "MISSING_FIELDS", Message: "phone_number and message_id are required"}
	}

	payload := meta.MessagePayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               input.PhoneNumber,
		Type:             "reaction",
		Reaction:         &meta.ReactionContent{MessageID: input.MessageID, Emoji: input.Emoji},
	}
	return enqueueMessage(ctx, uc.Repo, uc.Producer, input.PhoneNumber, "reaction", payload)
}

func (uc *SendMessageUseCase) MarkRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return &DomainError{Code: "MISSING_FIELDS", Message: "message_id is required"}
	}
	if err := uc.Gateway.MarkMessageRead(ctx, messageID); err != nil {
		return &TechnicalError{Code: "PROVIDER_ERROR", Message: err.Error()}
	}
	return nil
}

// enqueueMessage persists the log entry and hands the ready payload to the
// dispatch queue.
func enqueueMessage(ctx context.Context, repo MessageLogRepository, producer DispatchProducer, to, kind string, payload meta.MessagePayload) (*SendMessageOutput, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TechnicalError{Code: "MARSHAL_ERROR", Message: err.Error()}
	}

	msg := entity.NewMessageLog(to, kind, string(body))
	if err := repo.Create(ctx, msg); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	job := queue.DispatchJob{LogID: msg.ID, To: to, Kind: kind, Payload: body}
	if err := producer.PublishDispatch(ctx, job); err != nil {
		return nil, &TechnicalError{Code: "QUEUE_ERROR", Message: err.Error()}
	}

	return &SendMessageOutput{ID: msg.ID, To: to, Kind: kind, Status: msg.Status}, nil
}
