package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTemplateNotFound  = errors.New("template record not found")
	ErrMessageNotFound   = errors.New("message log not found")
	ErrDuplicateTemplate = errors.New("template with this name and language already exists")
)

// Template lifecycle on Meta's side, mirrored locally via webhook updates.
const (
	TemplateStatusPending  = "PENDING"
	TemplateStatusApproved = "APPROVED"
	TemplateStatusRejected = "REJECTED"
)

// Outbound message lifecycle inside the gateway.
const (
	MessageStatusQueued    = "QUEUED"
	MessageStatusSent      = "SENT"
	MessageStatusDelivered = "DELIVERED"
	MessageStatusRead      = "READ"
	MessageStatusFailed    = "FAILED"
)

// TemplateRecord is one template submitted through the gateway. Status
// follows Meta's review via webhook events.
type TemplateRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Language  string    `json:"language"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTemplateRecord(name, category, language string) *TemplateRecord {
	now := time.Now()
	return &TemplateRecord{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  category,
		Language:  language,
		Status:    TemplateStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MessageLog is one outbound message accepted by the gateway. ProviderID is
// the wamid returned by the Cloud API once the dispatch worker delivers it.
type MessageLog struct {
	ID         string    `json:"id"`
	To         string    `json:"to"`
	Kind       string    `json:"kind"`
	Payload    string    `json:"payload"`
	Status     string    `json:"status"`
	ProviderID string    `json:"provider_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewMessageLog(to, kind, payload string) *MessageLog {
	now := time.Now()
	return &MessageLog{
		ID:        uuid.New().String(),
		To:        to,
		Kind:      kind,
		Payload:   payload,
		Status:    MessageStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
