package meta

import "github.com/canalzap/waba-gateway/internal/entity"

// Cloud API message payloads. Shapes follow the Meta webhook/message
// standard; only the fields the gateway sends are modelled.

type MessagePayload struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type,omitempty"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *TextContent     `json:"text,omitempty"`
	Image            *MediaContent    `json:"image,omitempty"`
	Video            *MediaContent    `json:"video,omitempty"`
	Audio            *MediaContent    `json:"audio,omitempty"`
	Document         *MediaContent    `json:"document,omitempty"`
	Location         *LocationContent `json:"location,omitempty"`
	Reaction         *ReactionContent `json:"reaction,omitempty"`
	Template         *TemplateMessage `json:"template,omitempty"`
	Context          *MessageContext  `json:"context,omitempty"`
	Status           string           `json:"status,omitempty"`
	MessageID        string           `json:"message_id,omitempty"`
}

type TextContent struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

type MediaContent struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type LocationContent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type ReactionContent struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type MessageContext struct {
	MessageID string `json:"message_id"`
}

type TemplateMessage struct {
	Name       string              `json:"name"`
	Language   LanguageObject      `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type LanguageObject struct {
	Code string `json:"code"`
}

// TemplateComponent is used both when sending a template message (with
// Parameters) and when creating a template definition (with Text, Format,
// Buttons, Cards).
type TemplateComponent struct {
	Type       string              `json:"type"`
	SubType    string              `json:"sub_type,omitempty"`
	Index      string              `json:"index,omitempty"`
	Format     string              `json:"format,omitempty"`
	Text       string              `json:"text,omitempty"`
	Example    *ComponentExample   `json:"example,omitempty"`
	Buttons    []TemplateButton    `json:"buttons,omitempty"`
	Cards      []TemplateCard      `json:"cards,omitempty"`
	Parameters []TemplateParameter `json:"parameters,omitempty"`
}

type ComponentExample struct {
	HeaderText   []string   `json:"header_text,omitempty"`
	BodyText     [][]string `json:"body_text,omitempty"`
	HeaderHandle []string   `json:"header_handle,omitempty"`
}

type TemplateButton struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	URL         string `json:"url,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type TemplateCard struct {
	CardIndex  int                 `json:"card_index"`
	Components []TemplateComponent `json:"components"`
}

type TemplateParameter struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	Image    *MediaContent `json:"image,omitempty"`
	Video    *MediaContent `json:"video,omitempty"`
	Document *MediaContent `json:"document,omitempty"`
}

// CreateTemplatePayload is the POST body for the message_templates edge.
type CreateTemplatePayload struct {
	Name                string              `json:"name"`
	Category            string              `json:"category"`
	Language            string              `json:"language"`
	Components          []TemplateComponent `json:"components"`
	AllowCategoryChange bool                `json:"allow_category_change,omitempty"`
}

// TemplateFilter narrows template listings.
type TemplateFilter struct {
	Name     string
	Status   string
	Category string
	Language string
	Limit    int
}

type SendMessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *GraphError `json:"error,omitempty"`
}

type CreateTemplateResponse struct {
	ID       string      `json:"id"`
	Status   string      `json:"status"`
	Category string      `json:"category"`
	Error    *GraphError `json:"error,omitempty"`
}

type TemplateListResponse struct {
	Data []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Language string `json:"language"`
		Status   string `json:"status"`
	} `json:"data"`
	Paging struct {
		Cursors struct {
			Before string `json:"before"`
			After  string `json:"after"`
		} `json:"cursors"`
	} `json:"paging"`
	Error *GraphError `json:"error,omitempty"`
}

type MediaInfoResponse struct {
	ID       string      `json:"id"`
	URL      string      `json:"url"`
	MimeType string      `json:"mime_type"`
	Sha256   string      `json:"sha256"`
	FileSize int64       `json:"file_size"`
	Error    *GraphError `json:"error,omitempty"`
}

type MediaUploadResponse struct {
	ID    string      `json:"id"`
	Error *GraphError `json:"error,omitempty"`
}

// CreateFlowPayload is the POST body for the flows edge.
type CreateFlowPayload struct {
	Name        string   `json:"name"`
	Categories  []string `json:"categories"`
	CloneFlowID string   `json:"clone_flow_id,omitempty"`
	EndpointURI string   `json:"endpoint_uri,omitempty"`
}

type UpdateFlowPayload struct {
	Name       string   `json:"name,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

type MigrateFlowsPayload struct {
	SourceWABAID    string   `json:"source_waba_id"`
	SourceFlowNames []string `json:"source_flow_names,omitempty"`
}

type CreateFlowResponse struct {
	ID    string      `json:"id"`
	Error *GraphError `json:"error,omitempty"`
}

// FlowMetricsQuery narrows a flow metrics read. Since and Until are optional
// date strings passed through untouched.
type FlowMetricsQuery struct {
	MetricName  string
	Granularity string
	Since       string
	Until       string
}

type GraphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	Subcode   int    `json:"error_subcode,omitempty"`
	FBTraceID string `json:"fbtrace_id,omitempty"`
}

// TemplateToPayload converts a validated template description into the
// message_templates wire shape. Carousel cards become one CAROUSEL component
// holding a components list per card.
func TemplateToPayload(t *entity.Template) CreateTemplatePayload {
	payload := CreateTemplatePayload{
		Name:     t.Name,
		Category: string(t.Category),
		Language: t.Language,
	}

	var cards []TemplateCard

	for _, c := range t.Components {
		switch c.Type {
		case entity.ComponentBody:
			comp := TemplateComponent{Type: "BODY", Text: c.Text}
			if len(c.Example) > 0 {
				comp.Example = &ComponentExample{BodyText: [][]string{c.Example}}
			}
			payload.Components = append(payload.Components, comp)

		case entity.ComponentHeader:
			comp := TemplateComponent{Type: "HEADER", Format: string(c.Format)}
			if c.Format == entity.HeaderText || c.Format == "" {
				comp.Format = string(entity.HeaderText)
				comp.Text = c.Text
				if len(c.Example) > 0 {
					comp.Example = &ComponentExample{HeaderText: c.Example}
				}
			} else if len(c.Example) > 0 {
				comp.Example = &ComponentExample{HeaderHandle: c.Example}
			}
			payload.Components = append(payload.Components, comp)

		case entity.ComponentFooter:
			payload.Components = append(payload.Components, TemplateComponent{Type: "FOOTER", Text: c.Text})

		case entity.ComponentButtons:
			comp := TemplateComponent{Type: "BUTTONS"}
			for _, b := range c.Buttons {
				comp.Buttons = append(comp.Buttons, TemplateButton{
					Type:        string(b.Type),
					Text:        b.Text,
					URL:         b.URL,
					PhoneNumber: b.PhoneNumber,
				})
			}
			payload.Components = append(payload.Components, comp)

		case entity.ComponentCarousel:
			if c.Card != nil {
				cards = append(cards, cardToPayload(*c.Card))
			}
		}
	}

	if len(cards) > 0 {
		payload.Components = append(payload.Components, TemplateComponent{Type: "CAROUSEL", Cards: cards})
	}

	return payload
}

func cardToPayload(card entity.Card) TemplateCard {
	out := TemplateCard{CardIndex: card.Index}

	if card.Header != nil {
		comp := TemplateComponent{Type: "HEADER", Format: string(card.Header.Format)}
		if card.Header.Format == entity.HeaderText {
			comp.Text = card.Header.Text
		} else if len(card.Header.Example) > 0 {
			comp.Example = &ComponentExample{HeaderHandle: card.Header.Example}
		}
		out.Components = append(out.Components, comp)
	}

	body := TemplateComponent{Type: "BODY", Text: card.Body.Text}
	if len(card.Body.Example) > 0 {
		body.Example = &ComponentExample{BodyText: [][]string{card.Body.Example}}
	}
	out.Components = append(out.Components, body)

	if len(card.Buttons) > 0 {
		comp := TemplateComponent{Type: "BUTTONS"}
		for _, b := range card.Buttons {
			comp.Buttons = append(comp.Buttons, TemplateButton{
				Type:        string(b.Type),
				Text:        b.Text,
				URL:         b.URL,
				PhoneNumber: b.PhoneNumber,
			})
		}
		out.Components = append(out.Components, comp)
	}

	return out
}
