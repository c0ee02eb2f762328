package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelLedgerEvents = "ledger_events"
)

// 账本事件类型
const (
	EventSubscriptionCreated = "subscription_created"
	EventSubscriptionChanged = "subscription_changed"
	EventDonationCreated     = "donation_created"
	EventSeatGranted         = "seat_granted"
	EventDonationReclaimed   = "donation_reclaimed"
	EventGiftClaimed         = "gift_claimed"
	EventCreditChanged       = "credit_changed"
	EventOrderPaid           = "order_paid"
)

// LedgerEvent 账本变更事件，推送给在线的管理员和相关用户
type LedgerEvent struct {
	Type           string    `json:"type"`
	UserID         int64     `json:"user_id,omitempty"`
	WorkshopID     int64     `json:"workshop_id,omitempty"`
	SubscriptionID int64     `json:"subscription_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	Amount         float64   `json:"amount,omitempty"`
	Balance        *float64  `json:"balance,omitempty"`
	Message        string    `json:"message,omitempty"`
	At             time.Time `json:"at"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 发布账本事件
func (p *Publisher) Publish(ctx context.Context, event *LedgerEvent) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	return p.client.Publish(ctx, ChannelLedgerEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅账本事件，阻塞直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*LedgerEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelLedgerEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event LedgerEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
