package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/canalzap/waba-gateway/internal/entity"
	"github.com/canalzap/waba-gateway/internal/usecase"
)

func TestValidateCharacterLimits(t *testing.T) {
	tests := []struct {
		name  string
		kind  string
		text  string
		valid bool
	}{
		{"body at limit", "body", strings.Repeat("a", 550), true},
		{"body over limit", "body", strings.Repeat("a", 551), false},
		{"header at limit", "header", strings.Repeat("a", 60), true},
		{"header over limit", "header", strings.Repeat("a", 61), false},
		{"footer at limit", "footer", strings.Repeat("a", 60), true},
		{"footer over limit", "footer", strings.Repeat("a", 61), false},
		{"button at limit", "button", strings.Repeat("a", 20), true},
		{"button over limit", "button", strings.Repeat("a", 21), false},
		{"empty body", "body", "", true},
		{"unknown kind", "sidebar", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := usecase.ValidateCharacterLimits(tt.kind, tt.text)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}
}

func TestValidateCharacterLimitsCountsRunes(t *testing.T) {
	// 550 multibyte characters are within the limit even though the byte
	// count is far larger.
	result := usecase.ValidateCharacterLimits("body", strings.Repeat("ã", 550))
	assert.True(t, result.IsValid)

	result = usecase.ValidateCharacterLimits("body", strings.Repeat("ã", 551))
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Error, "551 characters")
}

func TestCountEmojis(t *testing.T) {
	assert.Equal(t, 0, usecase.CountEmojis("plain text"))
	assert.Equal(t, 1, usecase.CountEmojis("hello 😀"))
	assert.Equal(t, 2, usecase.CountEmojis("😀 and 🚀"))
	// Adjacent emojis form a single run.
	assert.Equal(t, 1, usecase.CountEmojis("😀🚀"))
}

func TestValidateEmojiLimit(t *testing.T) {
	spaced := func(n int) string {
		return strings.TrimSpace(strings.Repeat("😀 ", n))
	}

	t.Run("ten emojis across fields pass", func(t *testing.T) {
		result := usecase.ValidateEmojiLimit([]string{spaced(4), spaced(3), spaced(3)})
		assert.True(t, result.IsValid)
	})

	t.Run("eleven emojis across fields fail", func(t *testing.T) {
		result := usecase.ValidateEmojiLimit([]string{spaced(4), spaced(4), spaced(3)})
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "11 emojis")
	})
}

func TestValidateFormatting(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{"plain text", "Hello there", true},
		{"balanced bold", "Hello *world*", true},
		{"unpaired bold run", "Hello *** world", false},
		{"unpaired italic run", "Hello ___ world", false},
		{"unpaired strikethrough run", "Hello ~~~ world", false},
		{"single line break", "line one\nline two", true},
		{"consecutive line breaks", "line one\n\nline two", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := usecase.ValidateFormatting(tt.text)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}
}

func TestValidateFormattingReportsEveryProblem(t *testing.T) {
	result := usecase.ValidateFormatting("*** and ___ and\n\nmore")
	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 3)
}

func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"lowercase with digits and underscores", "order_confirm_2", true},
		{"uppercase letters", "Order_Confirm", false},
		{"hyphen", "order-confirm", false},
		{"space", "order confirm", false},
		{"empty", "", false},
		{"at length limit", strings.Repeat("a", 512), true},
		{"over length limit", strings.Repeat("a", 513), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := usecase.ValidateTemplateName(tt.input)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}
}

func TestValidateTemplateCategory(t *testing.T) {
	assert.True(t, usecase.ValidateTemplateCategory("MARKETING").IsValid)
	assert.True(t, usecase.ValidateTemplateCategory("utility").IsValid)
	assert.True(t, usecase.ValidateTemplateCategory("Authentication").IsValid)
	assert.False(t, usecase.ValidateTemplateCategory("PROMO").IsValid)
	assert.False(t, usecase.ValidateTemplateCategory("").IsValid)
}

func TestValidateLanguageCode(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"en_US", true},
		{"pt_BR", true},
		{"en-US", false},
		{"EN_us", false},
		{"eng_US", false},
		{"en_usa", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := usecase.ValidateLanguageCode(tt.input)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}
}

func TestValidateAuthenticationFormat(t *testing.T) {
	assert.True(t, usecase.ValidateAuthenticationFormat("{{1}} is your verification code").IsValid)
	assert.True(t, usecase.ValidateAuthenticationFormat("{{1}} is your verification code. Do not share it.").IsValid)
	assert.False(t, usecase.ValidateAuthenticationFormat("Your code is {{1}}").IsValid)
	assert.False(t, usecase.ValidateAuthenticationFormat(" {{1}} is your verification code").IsValid)
}

func TestValidateButtonText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{"plain label", "Shop Now", true},
		{"emoji", "Shop 🛒", false},
		{"asterisk", "Shop *Now*", false},
		{"underscore", "shop_now", false},
		{"line break", "Shop\nNow", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buttons := []entity.Button{{Type: entity.ButtonQuickReply, Text: tt.text}}
			result := usecase.ValidateButtonText(buttons)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}
}

func TestValidateURLs(t *testing.T) {
	t.Run("https passes", func(t *testing.T) {
		buttons := []entity.Button{{Type: entity.ButtonURL, Text: "Open", URL: "https://example.com/page"}}
		assert.True(t, usecase.ValidateURLs(buttons).IsValid)
	})

	t.Run("http fails", func(t *testing.T) {
		buttons := []entity.Button{{Type: entity.ButtonURL, Text: "Open", URL: "http://example.com"}}
		result := usecase.ValidateURLs(buttons)
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "HTTPS")
	})

	t.Run("over length limit fails", func(t *testing.T) {
		long := "https://example.com/" + strings.Repeat("a", 2000)
		buttons := []entity.Button{{Type: entity.ButtonURL, Text: "Open", URL: long}}
		assert.False(t, usecase.ValidateURLs(buttons).IsValid)
	})

	t.Run("non-url buttons are ignored", func(t *testing.T) {
		buttons := []entity.Button{{Type: entity.ButtonQuickReply, Text: "Yes", URL: "http://ignored"}}
		assert.True(t, usecase.ValidateURLs(buttons).IsValid)
	})
}

func TestValidatePhoneNumbers(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"international format", "+5511999999999", true},
		{"fifteen digits", "+123456789012345", true},
		{"missing plus", "5511999999999", false},
		{"too short", "+123456789", false},
		{"too long", "+1234567890123456", false},
		{"letters", "+55abc99999999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buttons := []entity.Button{{Type: entity.ButtonPhoneNumber, Text: "Call", PhoneNumber: tt.phone}}
			result := usecase.ValidatePhoneNumbers(buttons)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}
}

func TestValidateButtonCombinations(t *testing.T) {
	qr := entity.Button{Type: entity.ButtonQuickReply, Text: "Yes"}
	link := entity.Button{Type: entity.ButtonURL, Text: "Open", URL: "https://example.com"}
	call := entity.Button{Type: entity.ButtonPhoneNumber, Text: "Call", PhoneNumber: "+5511999999999"}

	t.Run("standard templates are unrestricted", func(t *testing.T) {
		result := usecase.ValidateButtonCombinations(usecase.TemplateKindStandard, []entity.Button{qr, link, call})
		assert.True(t, result.IsValid)
	})

	carouselTests := []struct {
		name    string
		buttons []entity.Button
		valid   bool
	}{
		{"quick reply only", []entity.Button{qr}, true},
		{"url only", []entity.Button{link}, true},
		{"phone only", []entity.Button{call}, true},
		{"quick reply and url", []entity.Button{qr, link}, true},
		{"quick reply and phone", []entity.Button{qr, call}, true},
		{"two quick replies", []entity.Button{qr, qr}, true},
		{"url and phone", []entity.Button{link, call}, false},
		{"all three types", []entity.Button{qr, link, call}, false},
	}

	for _, tt := range carouselTests {
		t.Run("carousel "+tt.name, func(t *testing.T) {
			result := usecase.ValidateButtonCombinations(usecase.TemplateKindCarousel, tt.buttons)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}
}

func TestValidateMediaHeaders(t *testing.T) {
	tests := []struct {
		name    string
		format  entity.HeaderFormat
		example string
		valid   bool
	}{
		{"image png", entity.HeaderImage, "https://cdn.example.com/pic.png", true},
		{"image jpg", entity.HeaderImage, "https://cdn.example.com/pic.jpg", true},
		{"image jpeg uppercase", entity.HeaderImage, "https://cdn.example.com/PIC.JPEG", true},
		{"image wrong extension", entity.HeaderImage, "https://cdn.example.com/pic.gif", false},
		{"video mp4", entity.HeaderVideo, "https://cdn.example.com/clip.mp4", true},
		{"video wrong extension", entity.HeaderVideo, "https://cdn.example.com/clip.mov", false},
		{"document pdf", entity.HeaderDocument, "https://cdn.example.com/terms.pdf", true},
		{"document wrong extension", entity.HeaderDocument, "https://cdn.example.com/terms.docx", false},
		{"http url", entity.HeaderImage, "http://cdn.example.com/pic.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := &entity.Component{
				Type:    entity.ComponentHeader,
				Format:  tt.format,
				Example: []string{tt.example},
			}
			result := usecase.ValidateMediaHeaders(header)
			assert.Equal(t, tt.valid, result.IsValid)
		})
	}

	t.Run("nil header passes", func(t *testing.T) {
		assert.True(t, usecase.ValidateMediaHeaders(nil).IsValid)
	})

	t.Run("text header passes", func(t *testing.T) {
		header := &entity.Component{Type: entity.ComponentHeader, Format: entity.HeaderText, Text: "Hi"}
		assert.True(t, usecase.ValidateMediaHeaders(header).IsValid)
	})

	t.Run("media header without example passes", func(t *testing.T) {
		header := &entity.Component{Type: entity.ComponentHeader, Format: entity.HeaderImage}
		assert.True(t, usecase.ValidateMediaHeaders(header).IsValid)
	})
}

func TestValidateComponentStructure(t *testing.T) {
	body := entity.Component{Type: entity.ComponentBody, Text: "Hello"}
	header := entity.Component{Type: entity.ComponentHeader, Format: entity.HeaderText, Text: "Hi"}
	buttons := entity.Component{Type: entity.ComponentButtons, Buttons: []entity.Button{{Type: entity.ButtonQuickReply, Text: "Yes"}}}

	t.Run("body alone passes", func(t *testing.T) {
		assert.True(t, usecase.ValidateComponentStructure([]entity.Component{body}).IsValid)
	})

	t.Run("missing body fails", func(t *testing.T) {
		result := usecase.ValidateComponentStructure([]entity.Component{header})
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "BODY component is required")
	})

	t.Run("duplicate header fails", func(t *testing.T) {
		result := usecase.ValidateComponentStructure([]entity.Component{body, header, header})
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "HEADER")
	})

	t.Run("duplicate buttons pass", func(t *testing.T) {
		result := usecase.ValidateComponentStructure([]entity.Component{body, buttons, buttons})
		assert.True(t, result.IsValid)
	})

	t.Run("multiple carousel cards pass", func(t *testing.T) {
		card := entity.Component{Type: entity.ComponentCarousel, Card: &entity.Card{Body: body}}
		result := usecase.ValidateComponentStructure([]entity.Component{body, card, card})
		assert.True(t, result.IsValid)
	})
}

func TestValidateVariableExamples(t *testing.T) {
	t.Run("sequential with matching examples", func(t *testing.T) {
		result := usecase.ValidateVariableExamples("Hi {{1}}, order {{2}} shipped", []string{"Ana", "1042"})
		assert.True(t, result.IsValid)
	})

	t.Run("no variables no examples", func(t *testing.T) {
		assert.True(t, usecase.ValidateVariableExamples("Hi there", nil).IsValid)
	})

	t.Run("gap in sequence", func(t *testing.T) {
		result := usecase.ValidateVariableExamples("Hi {{1}}, order {{3}} shipped", []string{"Ana", "1042"})
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "sequential")
	})

	t.Run("not starting at one", func(t *testing.T) {
		result := usecase.ValidateVariableExamples("Order {{2}}", []string{"1042"})
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Errors[0], "{{2}}")
	})

	t.Run("example count mismatch", func(t *testing.T) {
		result := usecase.ValidateVariableExamples("Hi {{1}}", []string{"Ana", "extra"})
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "Variable count (1) doesn't match example count (2)")
	})

	t.Run("gap and count mismatch reported together", func(t *testing.T) {
		result := usecase.ValidateVariableExamples("Hi {{1}} and {{3}}", []string{"Ana"})
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 2)
	})
}

func carouselCard(headerFormat entity.HeaderFormat, buttons ...entity.Button) entity.Card {
	return entity.Card{
		Header:  &entity.Component{Type: entity.ComponentHeader, Format: headerFormat, Example: []string{"https://cdn.example.com/pic.png"}},
		Body:    entity.Component{Type: entity.ComponentBody, Text: "Card body"},
		Buttons: buttons,
	}
}

func TestValidateCarouselConsistency(t *testing.T) {
	qr := entity.Button{Type: entity.ButtonQuickReply, Text: "Pick"}
	link := entity.Button{Type: entity.ButtonURL, Text: "Open", URL: "https://example.com"}

	t.Run("single card fails", func(t *testing.T) {
		result := usecase.ValidateCarouselConsistency([]entity.Card{carouselCard(entity.HeaderImage, qr)})
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "2-10 cards, got 1")
	})

	t.Run("eleven cards fail", func(t *testing.T) {
		cards := make([]entity.Card, 11)
		for i := range cards {
			cards[i] = carouselCard(entity.HeaderImage, qr)
		}
		result := usecase.ValidateCarouselConsistency(cards)
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "got 11")
	})

	t.Run("identical cards pass", func(t *testing.T) {
		cards := []entity.Card{
			carouselCard(entity.HeaderImage, qr),
			carouselCard(entity.HeaderImage, qr),
		}
		assert.True(t, usecase.ValidateCarouselConsistency(cards).IsValid)
	})

	t.Run("header format mismatch names the card", func(t *testing.T) {
		cards := []entity.Card{
			carouselCard(entity.HeaderImage, qr),
			carouselCard(entity.HeaderVideo, qr),
		}
		result := usecase.ValidateCarouselConsistency(cards)
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "Card 2")
	})

	t.Run("button type mismatch fails", func(t *testing.T) {
		cards := []entity.Card{
			carouselCard(entity.HeaderImage, qr),
			carouselCard(entity.HeaderImage, link),
		}
		assert.False(t, usecase.ValidateCarouselConsistency(cards).IsValid)
	})

	t.Run("button order does not matter", func(t *testing.T) {
		cards := []entity.Card{
			carouselCard(entity.HeaderImage, qr, link),
			carouselCard(entity.HeaderImage, link, qr),
		}
		assert.True(t, usecase.ValidateCarouselConsistency(cards).IsValid)
	})
}

func validMarketingTemplate() *entity.Template {
	return &entity.Template{
		Name:     "order_update",
		Category: entity.CategoryMarketing,
		Language: "en_US",
		Components: []entity.Component{
			{Type: entity.ComponentHeader, Format: entity.HeaderText, Text: "Order update"},
			{Type: entity.ComponentBody, Text: "Hi {{1}}, your order {{2}} has shipped.", Example: []string{"Ana", "1042"}},
			{Type: entity.ComponentFooter, Text: "Reply STOP to opt out"},
			{Type: entity.ComponentButtons, Buttons: []entity.Button{
				{Type: entity.ButtonURL, Text: "Track order", URL: "https://shop.example.com/track"},
			}},
		},
	}
}

func TestValidateCompleteTemplateValid(t *testing.T) {
	result := usecase.ValidateCompleteTemplate(validMarketingTemplate())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Fields)
}

func TestValidateCompleteTemplateCollectsEveryError(t *testing.T) {
	tmpl := &entity.Template{
		Name:     "order_update",
		Category: entity.CategoryMarketing,
		Language: "en_US",
		Components: []entity.Component{
			{Type: entity.ComponentBody, Text: strings.Repeat("a", 580) + " " + strings.TrimSpace(strings.Repeat("😀 ", 12))},
			{Type: entity.ComponentButtons, Buttons: []entity.Button{
				{Type: entity.ButtonURL, Text: "Open", URL: "http://insecure.example.com"},
			}},
		},
	}

	result := usecase.ValidateCompleteTemplate(tmpl)
	assert.False(t, result.IsValid)
	assert.GreaterOrEqual(t, len(result.Errors), 3)

	joined := strings.Join(result.Errors, "; ")
	assert.Contains(t, joined, "body exceeds 550 character limit")
	assert.Contains(t, joined, "HTTPS")
	assert.Contains(t, joined, "12 emojis")
}

func TestValidateCompleteTemplateIsIdempotent(t *testing.T) {
	tmpl := validMarketingTemplate()
	tmpl.Name = "Bad-Name"

	first := usecase.ValidateCompleteTemplate(tmpl)
	second := usecase.ValidateCompleteTemplate(tmpl)

	assert.Equal(t, first, second)
}

func TestValidateCompleteTemplateTagsFields(t *testing.T) {
	tmpl := validMarketingTemplate()
	tmpl.Name = "Bad-Name"
	tmpl.Language = "en-US"

	result := usecase.ValidateCompleteTemplate(tmpl)
	assert.False(t, result.IsValid)

	fields := make(map[string]bool)
	for _, fe := range result.Fields {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["language"])
}

func TestValidateCompleteTemplateChecksBodyExamples(t *testing.T) {
	tmpl := validMarketingTemplate()
	tmpl.Components[1] = entity.Component{
		Type:    entity.ComponentBody,
		Text:    "Hi {{1}}, your order {{3}} has shipped.",
		Example: []string{"Ana"},
	}

	result := usecase.ValidateCompleteTemplate(tmpl)
	assert.False(t, result.IsValid)

	joined := strings.Join(result.Errors, "; ")
	assert.Contains(t, joined, "sequential")
	assert.Contains(t, joined, "example count")

	fields := make(map[string]bool)
	for _, fe := range result.Fields {
		fields[fe.Field] = true
	}
	assert.True(t, fields["body"])
}

func TestValidateCompleteTemplateAuthentication(t *testing.T) {
	tmpl := &entity.Template{
		Name:     "login_code",
		Category: entity.CategoryAuthentication,
		Language: "en_US",
		Components: []entity.Component{
			{Type: entity.ComponentBody, Text: "{{1}} is your verification code. It expires in {{2}} minutes.", Example: []string{"123456", "10"}},
		},
	}
	assert.True(t, usecase.ValidateCompleteTemplate(tmpl).IsValid)

	tmpl.Components[0].Text = "Use code {{1}} to log in"
	tmpl.Components[0].Example = []string{"123456"}
	result := usecase.ValidateCompleteTemplate(tmpl)
	assert.False(t, result.IsValid)
	assert.Contains(t, strings.Join(result.Errors, "; "), "verification code")
}

func TestValidateCompleteTemplateCarousel(t *testing.T) {
	qr := entity.Button{Type: entity.ButtonQuickReply, Text: "Pick"}

	carousel := func(cards ...entity.Card) *entity.Template {
		components := []entity.Component{
			{Type: entity.ComponentBody, Text: "Browse our catalog"},
		}
		for i := range cards {
			card := cards[i]
			card.Index = i
			components = append(components, entity.Component{Type: entity.ComponentCarousel, Card: &card})
		}
		return &entity.Template{
			Name:       "catalog_carousel",
			Category:   entity.CategoryMarketing,
			Language:   "en_US",
			Components: components,
		}
	}

	t.Run("consistent cards pass", func(t *testing.T) {
		tmpl := carousel(
			carouselCard(entity.HeaderImage, qr),
			carouselCard(entity.HeaderImage, qr),
		)
		result := usecase.ValidateCompleteTemplate(tmpl)
		assert.True(t, result.IsValid)
	})

	t.Run("structure mismatch names the card", func(t *testing.T) {
		tmpl := carousel(
			carouselCard(entity.HeaderImage, qr),
			carouselCard(entity.HeaderVideo, qr),
		)
		result := usecase.ValidateCompleteTemplate(tmpl)
		assert.False(t, result.IsValid)
		assert.Contains(t, strings.Join(result.Errors, "; "), "Card 2")
	})

	t.Run("card button combination is enforced", func(t *testing.T) {
		link := entity.Button{Type: entity.ButtonURL, Text: "Open", URL: "https://example.com"}
		call := entity.Button{Type: entity.ButtonPhoneNumber, Text: "Call", PhoneNumber: "+5511999999999"}
		tmpl := carousel(
			carouselCard(entity.HeaderImage, link, call),
			carouselCard(entity.HeaderImage, link, call),
		)
		result := usecase.ValidateCompleteTemplate(tmpl)
		assert.False(t, result.IsValid)
		assert.Contains(t, strings.Join(result.Errors, "; "), "carousel button combination")
	})
}

func TestFormatValidationErrors(t *testing.T) {
	t.Run("valid result", func(t *testing.T) {
		response := usecase.FormatValidationErrors(usecase.ValidationResult{IsValid: true})
		assert.True(t, response.Success)
		assert.Empty(t, response.ValidationErrors)
	})

	t.Run("field-tagged aggregate", func(t *testing.T) {
		tmpl := validMarketingTemplate()
		tmpl.Name = "Bad-Name"
		response := usecase.FormatValidationErrors(usecase.ValidateCompleteTemplate(tmpl))
		assert.False(t, response.Success)
		assert.Len(t, response.ValidationErrors, 1)
		assert.Equal(t, "name", response.ValidationErrors[0].Field)
	})

	t.Run("untagged result falls back to template", func(t *testing.T) {
		result := usecase.ValidationResult{IsValid: false, Error: "something failed"}
		response := usecase.FormatValidationErrors(result)
		assert.False(t, response.Success)
		assert.Len(t, response.ValidationErrors, 1)
		assert.Equal(t, "template", response.ValidationErrors[0].Field)
	})
}
