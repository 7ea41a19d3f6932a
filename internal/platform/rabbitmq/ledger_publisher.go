package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"scholarchat/internal/model"
)

// LedgerPublisher emits point-transaction audit events to a durable queue.
// The balance change itself has already been committed; these events feed the
// asynchronous ledger worker.
type LedgerPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewLedgerPublisher(conn *amqp.Connection, queueName string) *LedgerPublisher {
	return &LedgerPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *LedgerPublisher) Publish(ctx context.Context, entry model.PointTransaction) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare ledger queue failed: %w", err)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ledger entry failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish ledger entry failed: %w", err)
	}
	return nil
}
