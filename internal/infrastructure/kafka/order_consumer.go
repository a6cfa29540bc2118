package kafka

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/begintolern/linkmint-core/internal/domain"
	"github.com/begintolern/linkmint-core/internal/usecase/commission"
)

// orderEventPayload is the inbound wire shape. Upstream trackers disagree on
// amount field names, so the full payload is kept for amount resolution.
type orderEventPayload struct {
	SubID     string    `json:"sub_id"`
	OrderID   string    `json:"order_id"`
	RuleID    string    `json:"rule_id"`
	Status    string    `json:"status"`
	Currency  string    `json:"currency"`
	OrderAt   time.Time `json:"order_at"`
	Cancelled bool      `json:"cancelled"`
}

// OrderEventConsumer drains the order-events topic into commission
// ingestion. Malformed messages are logged and dropped; ingestion errors do
// not stop the loop.
type OrderEventConsumer struct {
	Subscriber  domain.SubscriberPort
	Commissions commission.CommissionUsecase
	Topic       string
	GroupID     string
}

func NewOrderEventConsumer(sub domain.SubscriberPort, uc commission.CommissionUsecase, topic, groupID string) *OrderEventConsumer {
	return &OrderEventConsumer{
		Subscriber:  sub,
		Commissions: uc,
		Topic:       topic,
		GroupID:     groupID,
	}
}

// Run blocks until the subscription channel closes.
func (c *OrderEventConsumer) Run() error {
	msgs, err := c.Subscriber.Subscribe(c.Topic, c.GroupID)
	if err != nil {
		return err
	}
	for msg := range msgs {
		c.handle(msg)
	}
	return nil
}

func (c *OrderEventConsumer) handle(msg domain.Message) {
	var payload orderEventPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		slog.Error("dropping malformed order event", "error", err)
		return
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		slog.Error("dropping malformed order event", "order_id", payload.OrderID, "error", err)
		return
	}

	result, err := c.Commissions.Ingest(&commission.OrderEventInput{
		SubID:       payload.SubID,
		OrderID:     payload.OrderID,
		RuleID:      payload.RuleID,
		Status:      payload.Status,
		Currency:    payload.Currency,
		OrderAt:     payload.OrderAt,
		IsCancelled: payload.Cancelled,
		RawFields:   raw,
	})
	if err != nil {
		slog.Error("order event ingestion failed",
			"order_id", payload.OrderID,
			"sub_id", payload.SubID,
			"error", err)
		return
	}
	if result.Skipped {
		slog.Info("order event skipped",
			"order_id", payload.OrderID,
			"reason", result.SkipReason)
	}
}
