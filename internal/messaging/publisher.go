package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Routing keys on the auth exchange.
const (
	ResetRequestedKey = "password.reset.requested"
)

// ResetRequestedEvent is consumed by the mailer worker, which turns it
// into the reset email. The token never appears in server logs.
type ResetRequestedEvent struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	URLPath   string `json:"url_path"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher emits auth lifecycle events.
type Publisher struct {
	rmq *RabbitMQ
}

// NewPublisher creates a publisher over an established connection.
func NewPublisher(rmq *RabbitMQ) *Publisher {
	return &Publisher{rmq: rmq}
}

// PublishResetRequested emits a reset-requested event. Callers must treat
// failures as non-fatal: the HTTP response may not depend on delivery.
func (p *Publisher) PublishResetRequested(ctx context.Context, email, token, urlPath string) error {
	event := ResetRequestedEvent{
		Email:     email,
		Token:     token,
		URLPath:   urlPath,
		Timestamp: time.Now().Unix(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reset event: %w", err)
	}

	return p.rmq.Publish(ctx, ResetRequestedKey, body)
}
