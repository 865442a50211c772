package entity

// Template category accepted by the Cloud API.
type TemplateCategory string

const (
	CategoryMarketing      TemplateCategory = "MARKETING"
	CategoryUtility        TemplateCategory = "UTILITY"
	CategoryAuthentication TemplateCategory = "AUTHENTICATION"
)

// Component kinds inside a template. CAROUSEL wraps one card of a
// multi-card template.
type ComponentType string

const (
	ComponentHeader   ComponentType = "HEADER"
	ComponentBody     ComponentType = "BODY"
	ComponentFooter   ComponentType = "FOOTER"
	ComponentButtons  ComponentType = "BUTTONS"
	ComponentCarousel ComponentType = "CAROUSEL"
)

// Header formats. TEXT headers carry text, media headers carry an example URL.
type HeaderFormat string

const (
	HeaderText     HeaderFormat = "TEXT"
	HeaderImage    HeaderFormat = "IMAGE"
	HeaderVideo    HeaderFormat = "VIDEO"
	HeaderDocument HeaderFormat = "DOCUMENT"
)

type ButtonType string

const (
	ButtonQuickReply  ButtonType = "QUICK_REPLY"
	ButtonURL         ButtonType = "URL"
	ButtonPhoneNumber ButtonType = "PHONE_NUMBER"
)

// Button is one pressable element inside a BUTTONS component. URL and
// PhoneNumber are only meaningful for their respective types.
type Button struct {
	Type        ButtonType `json:"type"`
	Text        string     `json:"text"`
	URL         string     `json:"url,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
}

// Component is one structural section of a template. Which fields are set
// depends on Type: HEADER uses Format plus Text or Example, BODY and FOOTER
// use Text, BUTTONS uses Buttons, CAROUSEL uses Card.
type Component struct {
	Type    ComponentType `json:"type"`
	Format  HeaderFormat  `json:"format,omitempty"`
	Text    string        `json:"text,omitempty"`
	Example []string      `json:"example,omitempty"`
	Buttons []Button      `json:"buttons,omitempty"`
	Card    *Card         `json:"card,omitempty"`
}

// Card is one carousel card. Every card of a carousel template must share
// the same structure (header presence/format, button count and types).
type Card struct {
	Index   int        `json:"index"`
	Header  *Component `json:"header,omitempty"`
	Body    Component  `json:"body"`
	Buttons []Button   `json:"buttons,omitempty"`
}

// Template is the in-memory description handed to the validation engine and,
// once accepted, forwarded to the Cloud API. Component order is presentation
// order.
type Template struct {
	Name       string           `json:"name"`
	Category   TemplateCategory `json:"category"`
	Language   string           `json:"language"`
	Components []Component      `json:"components"`
}

// Cards returns the carousel cards in component order, or nil for a flat
// template.
func (t *Template) Cards() []Card {
	var cards []Card
	for _, c := range t.Components {
		if c.Type == ComponentCarousel && c.Card != nil {
			cards = append(cards, *c.Card)
		}
	}
	return cards
}

// BodyText returns the text of the first BODY component, or "".
func (t *Template) BodyText() string {
	for _, c := range t.Components {
		if c.Type == ComponentBody {
			return c.Text
		}
	}
	return ""
}
