package meta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the Graph API. One instance per access token; safe for
// concurrent use.
type Client struct {
	accessToken       string
	phoneNumberID     string
	businessAccountID string
	baseURL           string
	http              *http.Client
}

// NewClient builds a Graph API client. baseURL already includes the API
// version, e.g. "https://graph.facebook.com/v22.0".
func NewClient(accessToken, phoneNumberID, businessAccountID, baseURL string) *Client {
	return &Client{
		accessToken:       accessToken,
		phoneNumberID:     phoneNumberID,
		businessAccountID: businessAccountID,
		baseURL:           baseURL,
		http:              &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneNumberID != ""
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
}

func (c *Client) mediaURL() string {
	return fmt.Sprintf("%s/%s/media", c.baseURL, c.phoneNumberID)
}

func (c *Client) templatesURL() string {
	return fmt.Sprintf("%s/%s/message_templates", c.baseURL, c.businessAccountID)
}

func (c *Client) flowsURL() string {
	return fmt.Sprintf("%s/%s/flows", c.baseURL, c.businessAccountID)
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var envelope struct {
			Error *GraphError `json:"error"`
		}
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != nil {
			return fmt.Errorf("graph api: %s (code %d)", envelope.Error.Message, envelope.Error.Code)
		}
		log.Printf("graph api: status %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("graph api: status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SendMessage posts one message payload and returns the provider message ID
// (wamid).
func (c *Client) SendMessage(ctx context.Context, payload MessagePayload) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("meta client not configured: missing access token or phone number id")
	}

	var out SendMessageResponse
	if err := c.doJSON(ctx, http.MethodPost, c.messagesURL(), payload, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("graph api: %s (code %d)", out.Error.Message, out.Error.Code)
	}
	if len(out.Messages) == 0 {
		return "", fmt.Errorf("graph api: response carried no message id")
	}
	return out.Messages[0].ID, nil
}

// MarkMessageRead flips an inbound message to read.
func (c *Client) MarkMessageRead(ctx context.Context, messageID string) error {
	payload := MessagePayload{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}
	return c.doJSON(ctx, http.MethodPost, c.messagesURL(), payload, nil)
}

// CreateTemplate submits an already-validated template definition and
// returns the provider template ID.
func (c *Client) CreateTemplate(ctx context.Context, payload CreateTemplatePayload) (string, error) {
	if c.businessAccountID == "" {
		return "", fmt.Errorf("meta client not configured: missing business account id")
	}

	var out CreateTemplateResponse
	if err := c.doJSON(ctx, http.MethodPost, c.templatesURL(), payload, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("graph api: %s (code %d)", out.Error.Message, out.Error.Code)
	}
	return out.ID, nil
}

// ListTemplates fetches template definitions, optionally filtered.
func (c *Client) ListTemplates(ctx context.Context, filter TemplateFilter) (*TemplateListResponse, error) {
	if c.businessAccountID == "" {
		return nil, fmt.Errorf("meta client not configured: missing business account id")
	}

	params := url.Values{}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Name != "" {
		params.Set("name", filter.Name)
	}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if filter.Category != "" {
		params.Set("category", filter.Category)
	}
	if filter.Language != "" {
		params.Set("language", filter.Language)
	}

	listURL := c.templatesURL()
	if encoded := params.Encode(); encoded != "" {
		listURL += "?" + encoded
	}

	var out TemplateListResponse
	if err := c.doJSON(ctx, http.MethodGet, listURL, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTemplate removes every language variant of a named template.
func (c *Client) DeleteTemplate(ctx context.Context, name string) error {
	deleteURL := fmt.Sprintf("%s?name=%s", c.templatesURL(), url.QueryEscape(name))
	return c.doJSON(ctx, http.MethodDelete, deleteURL, nil, nil)
}

// UploadMedia pushes raw bytes to the media endpoint and returns the media
// ID.
func (c *Client) UploadMedia(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", err
	}
	if err := writer.WriteField("type", mimeType); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mediaURL(), &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph api request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var out MediaUploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("graph api: %s (code %d)", out.Error.Message, out.Error.Code)
	}
	if out.ID == "" {
		return "", fmt.Errorf("graph api: status %d", resp.StatusCode)
	}
	return out.ID, nil
}

// GetMediaInfo resolves a media ID into its download URL and metadata.
func (c *Client) GetMediaInfo(ctx context.Context, mediaID string) (*MediaInfoResponse, error) {
	var out MediaInfoResponse
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, mediaID), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMedia removes an uploaded media object.
func (c *Client) DeleteMedia(ctx context.Context, mediaID string) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/%s", c.baseURL, mediaID), nil, nil)
}

// GetPhoneNumbers lists the phone numbers attached to the business account.
func (c *Client) GetPhoneNumbers(ctx context.Context) (json.RawMessage, error) {
	return c.rawGet(ctx, fmt.Sprintf("%s/%s/phone_numbers", c.baseURL, c.businessAccountID))
}

// GetPhoneNumberInfo fetches one phone number's details (defaults to the
// configured sender).
func (c *Client) GetPhoneNumberInfo(ctx context.Context, phoneNumberID string) (json.RawMessage, error) {
	if phoneNumberID == "" {
		phoneNumberID = c.phoneNumberID
	}
	return c.rawGet(ctx, fmt.Sprintf("%s/%s", c.baseURL, phoneNumberID))
}

// GetBusinessAccount fetches the WABA object.
func (c *Client) GetBusinessAccount(ctx context.Context) (json.RawMessage, error) {
	return c.rawGet(ctx, fmt.Sprintf("%s/%s", c.baseURL, c.businessAccountID))
}

// GetAnalytics pulls message analytics for a time range. Granularity is
// HALF_HOUR, DAY or MONTH.
func (c *Client) GetAnalytics(ctx context.Context, granularity string, start, end int64) (json.RawMessage, error) {
	fields := fmt.Sprintf("analytics.start(%d).end(%d).granularity(%s)", start, end, granularity)
	analyticsURL := fmt.Sprintf("%s/%s?fields=%s", c.baseURL, c.businessAccountID, url.QueryEscape(fields))
	return c.rawGet(ctx, analyticsURL)
}

// GetConversationAnalytics pulls conversation counts and costs for a time
// range. Granularity is HALF_HOUR, DAILY or MONTHLY.
func (c *Client) GetConversationAnalytics(ctx context.Context, granularity string, start, end int64) (json.RawMessage, error) {
	fields := fmt.Sprintf("conversation_analytics.start(%d).end(%d).granularity(%s)", start, end, granularity)
	analyticsURL := fmt.Sprintf("%s/%s?fields=%s", c.baseURL, c.businessAccountID, url.QueryEscape(fields))
	return c.rawGet(ctx, analyticsURL)
}

// GetQualityRating reads a phone number's quality rating over a time range
// (defaults to the configured sender).
func (c *Client) GetQualityRating(ctx context.Context, phoneNumberID string, start, end int64) (json.RawMessage, error) {
	if phoneNumberID == "" {
		phoneNumberID = c.phoneNumberID
	}
	fields := fmt.Sprintf("quality_rating.start(%d).end(%d)", start, end)
	ratingURL := fmt.Sprintf("%s/%s?fields=%s", c.baseURL, phoneNumberID, url.QueryEscape(fields))
	return c.rawGet(ctx, ratingURL)
}

// wabaDetailFields is the field selection for a WABA details read.
const wabaDetailFields = "id,name,currency,timezone_id,message_template_namespace,account_review_status,account_type,owner_business_info"

// GetWABADetails fetches one WhatsApp Business Account with its extended
// field set.
func (c *Client) GetWABADetails(ctx context.Context, wabaID string) (json.RawMessage, error) {
	if wabaID == "" {
		wabaID = c.businessAccountID
	}
	detailsURL := fmt.Sprintf("%s/%s?fields=%s", c.baseURL, wabaID, url.QueryEscape(wabaDetailFields))
	return c.rawGet(ctx, detailsURL)
}

// GetOwnedWABAs lists the WhatsApp Business Accounts owned by a business
// portfolio.
func (c *Client) GetOwnedWABAs(ctx context.Context, portfolioID string, limit int) (json.RawMessage, error) {
	return c.listWABAs(ctx, portfolioID, "owned_whatsapp_business_accounts", limit)
}

// GetSharedWABAs lists the WhatsApp Business Accounts shared with a business
// portfolio by clients.
func (c *Client) GetSharedWABAs(ctx context.Context, portfolioID string, limit int) (json.RawMessage, error) {
	return c.listWABAs(ctx, portfolioID, "shared_whatsapp_business_accounts", limit)
}

func (c *Client) listWABAs(ctx context.Context, portfolioID, edge string, limit int) (json.RawMessage, error) {
	if portfolioID == "" {
		return nil, fmt.Errorf("meta client: missing business portfolio id")
	}
	listURL := fmt.Sprintf("%s/%s/%s", c.baseURL, portfolioID, edge)
	if limit > 0 {
		listURL += "?limit=" + strconv.Itoa(limit)
	}
	return c.rawGet(ctx, listURL)
}

// CreateFlow registers a flow under the business account and returns its ID.
func (c *Client) CreateFlow(ctx context.Context, payload CreateFlowPayload) (string, error) {
	if c.businessAccountID == "" {
		return "", fmt.Errorf("meta client not configured: missing business account id")
	}

	var out CreateFlowResponse
	if err := c.doJSON(ctx, http.MethodPost, c.flowsURL(), payload, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("graph api: %s (code %d)", out.Error.Message, out.Error.Code)
	}
	return out.ID, nil
}

// ListFlows fetches the flows attached to the business account.
func (c *Client) ListFlows(ctx context.Context, limit int) (json.RawMessage, error) {
	listURL := c.flowsURL()
	if limit > 0 {
		listURL += "?limit=" + strconv.Itoa(limit)
	}
	return c.rawGet(ctx, listURL)
}

// GetFlow fetches one flow's details.
func (c *Client) GetFlow(ctx context.Context, flowID string) (json.RawMessage, error) {
	return c.rawGet(ctx, fmt.Sprintf("%s/%s", c.flowsURL(), flowID))
}

// UpdateFlow renames or recategorizes a flow.
func (c *Client) UpdateFlow(ctx context.Context, flowID string, payload UpdateFlowPayload) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%s", c.flowsURL(), flowID), payload, nil)
}

// PublishFlow moves a draft flow to published. Published flows cannot be
// edited, only cloned.
func (c *Client) PublishFlow(ctx context.Context, flowID string) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%s/publish", c.flowsURL(), flowID), nil, nil)
}

// UploadFlowJSON replaces a draft flow's screen definition.
func (c *Client) UploadFlowJSON(ctx context.Context, flowID string, flowJSON json.RawMessage) (json.RawMessage, error) {
	payload := map[string]json.RawMessage{"flow_json": flowJSON}
	var out json.RawMessage
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%s/flow_json", c.flowsURL(), flowID), payload, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetFlowPreview fetches a flow's web preview URL. Invalidate forces a fresh
// preview link.
func (c *Client) GetFlowPreview(ctx context.Context, flowID string, invalidate bool) (json.RawMessage, error) {
	previewURL := fmt.Sprintf("%s/%s/preview", c.flowsURL(), flowID)
	if invalidate {
		previewURL += "?invalidate=true"
	}
	return c.rawGet(ctx, previewURL)
}

// MigrateFlows copies flows from another WABA into this one.
func (c *Client) MigrateFlows(ctx context.Context, payload MigrateFlowsPayload) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.doJSON(ctx, http.MethodPost, c.flowsURL()+"/migrate", payload, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetFlowMetrics reads endpoint request metrics for a flow.
func (c *Client) GetFlowMetrics(ctx context.Context, flowID string, query FlowMetricsQuery) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("metric_name", query.MetricName)
	params.Set("granularity", query.Granularity)
	if query.Since != "" {
		params.Set("since", query.Since)
	}
	if query.Until != "" {
		params.Set("until", query.Until)
	}
	metricsURL := fmt.Sprintf("%s/%s/metrics?%s", c.flowsURL(), flowID, params.Encode())
	return c.rawGet(ctx, metricsURL)
}

// rawGet forwards a GET and hands the body back untouched; listing
// endpoints are passthrough, the gateway adds nothing to them.
func (c *Client) rawGet(ctx context.Context, rawURL string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, rawURL, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
