package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/canalzap/waba-gateway/internal/entity"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
)

// CreateTemplateUseCase validates a template description and, only if every
// rule passes, forwards it to the provider and records it locally.
type CreateTemplateUseCase struct {
	Repo    TemplateRecordRepository
	Gateway TemplateGateway
}

func NewCreateTemplateUseCase(repo TemplateRecordRepository, gateway TemplateGateway) *CreateTemplateUseCase {
	return &CreateTemplateUseCase{Repo: repo, Gateway: gateway}
}

// BuildTemplate assembles the entity the validation engine consumes from the
// flat creation input. Component order follows presentation order: header,
// body, footer, buttons, then one CAROUSEL component per card.
func BuildTemplate(input CreateTemplateInput) *entity.Template {
	t := &entity.Template{
		Name:     input.Name,
		Category: entity.TemplateCategory(strings.ToUpper(input.Category)),
		Language: input.Language,
	}

	if input.HeaderFormat != "" {
		header := entity.Component{
			Type:   entity.ComponentHeader,
			Format: entity.HeaderFormat(strings.ToUpper(input.HeaderFormat)),
		}
		if header.Format == entity.HeaderText {
			header.Text = input.HeaderText
		} else if input.HeaderURL != "" {
			header.Example = []string{input.HeaderURL}
		}
		t.Components = append(t.Components, header)
	}

	t.Components = append(t.Components, entity.Component{
		Type:    entity.ComponentBody,
		Text:    input.BodyText,
		Example: input.BodyExamples,
	})

	if input.FooterText != "" {
		t.Components = append(t.Components, entity.Component{
			Type: entity.ComponentFooter,
			Text: input.FooterText,
		})
	}

	if len(input.Buttons) > 0 {
		t.Components = append(t.Components, entity.Component{
			Type:    entity.ComponentButtons,
			Buttons: buildButtons(input.Buttons),
		})
	}

	for i, card := range input.Cards {
		t.Components = append(t.Components, entity.Component{
			Type: entity.ComponentCarousel,
			Card: buildCard(i, card),
		})
	}

	return t
}

func buildButtons(inputs []ButtonInput) []entity.Button {
	buttons := make([]entity.Button, 0, len(inputs))
	for _, b := range inputs {
		buttons = append(buttons, entity.Button{
			Type:        entity.ButtonType(strings.ToUpper(b.Type)),
			Text:        b.Text,
			URL:         b.URL,
			PhoneNumber: b.PhoneNumber,
		})
	}
	return buttons
}

func buildCard(index int, input CardInput) *entity.Card {
	card := &entity.Card{
		Index: index,
		Body: entity.Component{
			Type:    entity.ComponentBody,
			Text:    input.BodyText,
			Example: input.BodyExamples,
		},
		Buttons: buildButtons(input.Buttons),
	}

	if input.HeaderFormat != "" {
		header := &entity.Component{
			Type:   entity.ComponentHeader,
			Format: entity.HeaderFormat(strings.ToUpper(input.HeaderFormat)),
		}
		if header.Format == entity.HeaderText {
			header.Text = input.HeaderText
		} else if input.HeaderURL != "" {
			header.Example = []string{input.HeaderURL}
		}
		card.Header = header
	}

	return card
}

// Execute returns the validation verdict alongside the output. On an
// invalid template nothing is forwarded and err is nil: a failed validation
// is a verdict, not a fault.
func (uc *CreateTemplateUseCase) Execute(ctx context.Context, input CreateTemplateInput) (*CreateTemplateOutput, ValidationResult, error) {
	template := BuildTemplate(input)

	verdict := ValidateCompleteTemplate(template)
	if !verdict.IsValid {
		return nil, verdict, nil
	}

	payload := meta.TemplateToPayload(template)
	payload.AllowCategoryChange = input.AllowCategoryChange

	providerID, err := uc.Gateway.CreateTemplate(ctx, payload)
	if err != nil {
		return nil, verdict, &TechnicalError{Code: "PROVIDER_ERROR", Message: err.Error()}
	}

	record := entity.NewTemplateRecord(template.Name, string(template.Category), template.Language)
	if err := uc.Repo.Create(ctx, record); err != nil {
		// The provider accepted the template; losing the local record is
		// logged but does not fail the call.
		log.Printf("create template: record not persisted: %v", err)
	}

	return &CreateTemplateOutput{
		ID:         record.ID,
		ProviderID: providerID,
		Name:       record.Name,
		Status:     record.Status,
	}, verdict, nil
}
