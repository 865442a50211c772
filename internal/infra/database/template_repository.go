package database

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/lib/pq"

	"github.com/canalzap/waba-gateway/internal/entity"
)

type TemplateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func (r *TemplateRepository) Create(ctx context.Context, rec *entity.TemplateRecord) error {
	query := `
		INSERT INTO template_records (id, name, category, language, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		rec.Category,
		rec.Language,
		rec.Status,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrDuplicateTemplate
		}
		log.Printf("template repository: insert failed: %v", err)
		return err
	}

	return nil
}

func (r *TemplateRepository) FindByNameAndLanguage(ctx context.Context, name, language string) (*entity.TemplateRecord, error) {
	query := `
		SELECT id, name, category, language, status, created_at, updated_at
		FROM template_records
		WHERE name = $1 AND language = $2
	`

	var rec entity.TemplateRecord
	err := r.DB.QueryRowContext(ctx, query, name, language).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Category,
		&rec.Language,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *TemplateRepository) UpdateStatusByNameAndLanguage(ctx context.Context, name, language, status string) error {
	query := `
		UPDATE template_records
		SET status = $1, updated_at = NOW()
		WHERE name = $2 AND language = $3
	`

	result, err := r.DB.ExecContext(ctx, query, status, name, language)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return entity.ErrTemplateNotFound
	}

	return nil
}
