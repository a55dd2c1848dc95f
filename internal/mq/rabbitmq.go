package mq

import (
	"TeleVault/config"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeNotify = "notify.exchange"
	ExchangeRetry  = "notify.retry.exchange"
	ExchangeDLQ    = "notify.dlq.exchange"

	QueueNotify = "notify.queue"
	QueueRetry  = "notify.retry.queue"
	QueueDLQ    = "notify.dlq.queue"

	RoutingNotify = "notify"
	RoutingRetry  = "notify.retry"
	RoutingDLQ    = "notify.dlq"
)

// NotifyMessage is the queue payload; the notification row holds the
// content, the message only carries its id and the attempt counter.
type NotifyMessage struct {
	NotificationID uint64 `json:"notification_id"`
	Attempt        int    `json:"attempt"`
}

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

var publisherMu sync.Mutex
var publisher *Client

func Dial() (*Client, error) {
	conn, err := amqp.Dial(config.AppConfig.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

// GetPublisher returns a shared publisher client, redialing if the cached
// connection went away.
func GetPublisher() (*Client, error) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		if !publisher.Conn.IsClosed() && !publisher.Channel.IsClosed() {
			return publisher, nil
		}
		publisher.Close()
		publisher = nil
	}
	client, err := Dial()
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	publisher = client
	return publisher, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// DeclareTopology sets up the notify, retry and dead-letter layout. The
// retry queue dead-letters back into the notify exchange, so a delayed
// message re-enters the main queue when its TTL expires.
func (c *Client) DeclareTopology() error {
	if err := c.Channel.ExchangeDeclare(ExchangeNotify, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.Channel.ExchangeDeclare(ExchangeRetry, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.Channel.ExchangeDeclare(ExchangeDLQ, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(QueueNotify, true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(QueueRetry, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    ExchangeNotify,
		"x-dead-letter-routing-key": RoutingNotify,
	}); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(QueueDLQ, true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.Channel.QueueBind(QueueNotify, RoutingNotify, ExchangeNotify, false, nil); err != nil {
		return err
	}
	if err := c.Channel.QueueBind(QueueRetry, RoutingRetry, ExchangeRetry, false, nil); err != nil {
		return err
	}
	return c.Channel.QueueBind(QueueDLQ, RoutingDLQ, ExchangeDLQ, false, nil)
}

// PublishNotification enqueues one notification id for delivery. Implements
// the service publisher boundary.
func (c *Client) PublishNotification(id uint64) error {
	body, err := json.Marshal(NotifyMessage{NotificationID: id})
	if err != nil {
		return err
	}
	return c.publish(context.Background(), ExchangeNotify, RoutingNotify, body, "")
}

func (c *Client) PublishRetry(ctx context.Context, body []byte, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	expiration := fmt.Sprintf("%d", delay.Milliseconds())
	return c.publish(ctx, ExchangeRetry, RoutingRetry, body, expiration)
}

func (c *Client) PublishDLQ(ctx context.Context, body []byte) error {
	return c.publish(ctx, ExchangeDLQ, RoutingDLQ, body, "")
}

func (c *Client) publish(ctx context.Context, exchange, key string, body []byte, expiration string) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	if expiration != "" {
		msg.Expiration = expiration
	}
	return c.Channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}
