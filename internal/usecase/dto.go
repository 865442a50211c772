package usecase

// Inputs arrive from the HTTP layer as flat JSON; the use cases assemble
// them into entity values.

type ButtonInput struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	URL         string `json:"url,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type CardInput struct {
	HeaderFormat string        `json:"header_format,omitempty"`
	HeaderText   string        `json:"header_text,omitempty"`
	HeaderURL    string        `json:"header_url,omitempty"`
	BodyText     string        `json:"body_text"`
	BodyExamples []string      `json:"body_examples,omitempty"`
	Buttons      []ButtonInput `json:"buttons,omitempty"`
}

type CreateTemplateInput struct {
	Name                string        `json:"name"`
	Category            string        `json:"category"`
	Language            string        `json:"language"`
	BodyText            string        `json:"body_text"`
	BodyExamples        []string      `json:"body_examples,omitempty"`
	HeaderFormat        string        `json:"header_format,omitempty"`
	HeaderText          string        `json:"header_text,omitempty"`
	HeaderURL           string        `json:"header_url,omitempty"`
	FooterText          string        `json:"footer_text,omitempty"`
	Buttons             []ButtonInput `json:"buttons,omitempty"`
	Cards               []CardInput   `json:"cards,omitempty"`
	AllowCategoryChange bool          `json:"allow_category_change,omitempty"`
}

type CreateTemplateOutput struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id,omitempty"`
	Name       string `json:"name"`
	Status     string `json:"status"`
}

type SendTemplateInput struct {
	PhoneNumber      string   `json:"phone_number"`
	TemplateName     string   `json:"template_name"`
	LanguageCode     string   `json:"language_code"`
	BodyParameters   []string `json:"body_parameters,omitempty"`
	HeaderParameters []string `json:"header_parameters,omitempty"`
	ReplyToMessageID string   `json:"reply_to_message_id,omitempty"`
}

type SendTextInput struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
	PreviewURL  bool   `json:"preview_url,omitempty"`
}

type SendMediaInput struct {
	PhoneNumber string `json:"phone_number"`
	MediaType   string `json:"media_type"`
	MediaID     string `json:"media_id,omitempty"`
	MediaURL    string `json:"media_url,omitempty"`
	Caption     string `json:"caption,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

type SendLocationInput struct {
	PhoneNumber string  `json:"phone_number"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Name        string  `json:"name,omitempty"`
	Address     string  `json:"address,omitempty"`
}

type SendReactionInput struct {
	PhoneNumber string `json:"phone_number"`
	MessageID   string `json:"message_id"`
	Emoji       string `json:"emoji"`
}

type SendMessageOutput struct {
	ID     string `json:"id"`
	To     string `json:"to"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}
