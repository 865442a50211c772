package worker

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// StaleMessageWorker fails message_logs rows stuck in QUEUED, which happens
// when the broker accepted a job but the dispatch worker never resolved it
// (crash between publish and ack).
type StaleMessageWorker struct {
	db           *sql.DB
	staleWindow  time.Duration
	tickInterval time.Duration
}

func NewStaleMessageWorker(db *sql.DB) *StaleMessageWorker {
	return &StaleMessageWorker{
		db:           db,
		staleWindow:  30 * time.Minute,
		tickInterval: 1 * time.Minute,
	}
}

func (w *StaleMessageWorker) Start(ctx context.Context) {
	log.Println("stale message worker: started (30min window)")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.failStaleMessages(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("stale message worker: stopped")
			return
		case <-ticker.C:
			w.failStaleMessages(ctx)
		}
	}
}

func (w *StaleMessageWorker) failStaleMessages(ctx context.Context) {
	query := `
		UPDATE message_logs
		SET
			status = 'FAILED',
			updated_at = NOW()
		WHERE
			status = 'QUEUED'
			AND created_at < NOW() - INTERVAL '30 minutes'
		RETURNING id, to_number, created_at
	`

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		log.Printf("stale message worker: query failed: %v", err)
		return
	}
	defer rows.Close()

	failed := 0
	for rows.Next() {
		var id, to string
		var createdAt time.Time

		if err := rows.Scan(&id, &to, &createdAt); err != nil {
			log.Printf("stale message worker: scan failed: %v", err)
			continue
		}

		log.Printf("stale message worker: message=%s to=%s queued for %s, marking FAILED",
			id, to, time.Since(createdAt).Round(time.Minute))
		failed++
	}

	if failed > 0 {
		log.Printf("stale message worker: %d message(s) marked FAILED", failed)
	}
}
