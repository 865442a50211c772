package database

import (
	"context"
	"database/sql"
	"log"

	"github.com/canalzap/waba-gateway/internal/entity"
)

type MessageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *entity.MessageLog) error {
	query := `
		INSERT INTO message_logs (id, to_number, kind, payload, status, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.DB.ExecContext(ctx, query,
		msg.ID,
		msg.To,
		msg.Kind,
		msg.Payload,
		msg.Status,
		msg.ProviderID,
		msg.CreatedAt,
		msg.UpdatedAt,
	)
	if err != nil {
		log.Printf("message repository: insert failed: %v", err)
	}
	return err
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*entity.MessageLog, error) {
	query := `
		SELECT id, to_number, kind, payload, status, provider_id, created_at, updated_at
		FROM message_logs
		WHERE id = $1
	`

	var msg entity.MessageLog
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.To,
		&msg.Kind,
		&msg.Payload,
		&msg.Status,
		&msg.ProviderID,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// MarkSent records the provider message ID handed back by the Cloud API.
func (r *MessageRepository) MarkSent(ctx context.Context, id, providerID string) error {
	query := `
		UPDATE message_logs
		SET status = $1, provider_id = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.DB.ExecContext(ctx, query, entity.MessageStatusSent, providerID, id)
	return err
}

func (r *MessageRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE message_logs SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, id)
	return err
}

func (r *MessageRepository) UpdateStatusByProviderID(ctx context.Context, providerID, status string) error {
	query := `UPDATE message_logs SET status = $1, updated_at = NOW() WHERE provider_id = $2`

	result, err := r.DB.ExecContext(ctx, query, status, providerID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return entity.ErrMessageNotFound
	}

	return nil
}
