package worker

import (
	"TeleVault/config"
	"TeleVault/internal/mq"
	"TeleVault/internal/service"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
)

type dlqMessage struct {
	NotificationID uint64    `json:"notification_id"`
	Attempt        int       `json:"attempt"`
	Error          string    `json:"error"`
	FailedAt       time.Time `json:"failed_at"`
}

// RunNotifyWorker consumes notification deliveries from RabbitMQ and sends
// them through the transport. Blocks until ctx is cancelled.
func RunNotifyWorker(ctx context.Context, sender service.Sender) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := config.AppConfig.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(mq.QueueNotify, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("notify worker: delivery channel closed")
			}
			handleNotifyMessage(ctx, client, sender, delivery)
		}
	}
}

func handleNotifyMessage(ctx context.Context, client *mq.Client, sender service.Sender, delivery amqp.Delivery) {
	var msg mq.NotifyMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		log.Printf("notify worker: invalid message: %v", err)
		_ = delivery.Ack(false)
		return
	}

	err := service.DeliverNotification(ctx, sender, msg.NotificationID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = delivery.Nack(false, true)
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// row was deleted, nothing left to deliver
			_ = delivery.Ack(false)
			return
		}
		if err := scheduleRetry(ctx, client, msg, err); err != nil {
			log.Printf("notify worker: retry schedule failed: %v", err)
			_ = delivery.Nack(false, true)
			return
		}
	}

	_ = delivery.Ack(false)
}

func scheduleRetry(ctx context.Context, client *mq.Client, msg mq.NotifyMessage, procErr error) error {
	maxRetry := config.AppConfig.NotifyRetryMax
	if maxRetry < 0 {
		maxRetry = 0
	}
	nextAttempt := msg.Attempt + 1
	if maxRetry == 0 || nextAttempt > maxRetry {
		return parkInDLQ(ctx, client, msg, procErr)
	}

	msg.Attempt = nextAttempt
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	delay := config.AppConfig.NotifyRetryDelay * time.Duration(nextAttempt)
	return client.PublishRetry(ctx, body, delay)
}

func parkInDLQ(ctx context.Context, client *mq.Client, msg mq.NotifyMessage, procErr error) error {
	log.Printf("notify worker: giving up on notification %d after %d attempts: %v",
		msg.NotificationID, msg.Attempt, procErr)
	dlq := dlqMessage{
		NotificationID: msg.NotificationID,
		Attempt:        msg.Attempt,
		Error:          procErr.Error(),
		FailedAt:       time.Now(),
	}
	body, err := json.Marshal(dlq)
	if err != nil {
		return err
	}
	return client.PublishDLQ(ctx, body)
}
