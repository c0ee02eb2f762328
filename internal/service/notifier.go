package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/workshop_server/internal/pkg/pubsub"
	"github.com/qs3c/workshop_server/internal/pkg/queue"
)

// EventPublisher 账本事件发布
type EventPublisher interface {
	Publish(ctx context.Context, event *pubsub.LedgerEvent) error
}

// NotificationQueue 通知任务入队
type NotificationQueue interface {
	Push(ctx context.Context, job *queue.NotificationJob) error
}

// Notifier 事务提交后的事件与通知出口，失败只记录日志
type Notifier struct {
	events EventPublisher
	jobs   NotificationQueue
}

func NewNotifier(events EventPublisher, jobs NotificationQueue) *Notifier {
	return &Notifier{events: events, jobs: jobs}
}

func (n *Notifier) publish(ctx context.Context, event *pubsub.LedgerEvent) {
	if n == nil || n.events == nil {
		return
	}
	if err := n.events.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", event.Type).Msg("failed to publish ledger event")
	}
}

func (n *Notifier) enqueue(ctx context.Context, job *queue.NotificationJob) {
	if n == nil || n.jobs == nil {
		return
	}
	if job.Email == "" {
		return
	}
	if err := n.jobs.Push(ctx, job); err != nil {
		log.Warn().Err(err).Str("kind", job.Kind).Int64("user_id", job.UserID).Msg("failed to enqueue notification")
	}
}
