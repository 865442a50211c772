package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/canalzap/waba-gateway/internal/entity"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
)

// MessageSender is the slice of the Graph API client the worker needs.
type MessageSender interface {
	SendMessage(ctx context.Context, payload meta.MessagePayload) (string, error)
}

// MessageStore is the slice of the message repository the worker needs.
type MessageStore interface {
	MarkSent(ctx context.Context, id, providerID string) error
	UpdateStatus(ctx context.Context, id, status string) error
}

// Worker drains the dispatch queue and performs the actual Cloud API sends.
type Worker struct {
	Channel *amqp.Channel
	Sender  MessageSender
	Store   MessageStore
}

func NewWorker(ch *amqp.Channel, sender MessageSender, store MessageStore) *Worker {
	return &Worker{Channel: ch, Sender: sender, Store: store}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("dispatch worker: consume failed: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job DispatchJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Printf("dispatch worker: malformed job, dropping: %s", err)
				// Malformed payload goes straight to the DLQ.
				d.Nack(false, false)
				continue
			}

			if err := w.dispatch(context.Background(), job); err != nil {
				log.Printf("dispatch worker: send failed for %s: %s", job.LogID, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf("dispatch worker: waiting on queue %q", queueName)
	<-forever
}

func (w *Worker) dispatch(ctx context.Context, job DispatchJob) error {
	var payload meta.MessagePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return err
	}

	providerID, err := w.Sender.SendMessage(ctx, payload)
	if err != nil {
		if updErr := w.Store.UpdateStatus(ctx, job.LogID, entity.MessageStatusFailed); updErr != nil {
			log.Printf("dispatch worker: status update failed for %s: %s", job.LogID, updErr)
		}
		return err
	}

	if err := w.Store.MarkSent(ctx, job.LogID, providerID); err != nil {
		// The message went out; a bookkeeping miss must not requeue it.
		log.Printf("dispatch worker: mark sent failed for %s: %s", job.LogID, err)
	}

	log.Printf("dispatch worker: %s message %s sent as %s", job.Kind, job.LogID, providerID)
	return nil
}
