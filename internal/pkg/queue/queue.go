package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 通知类型
const (
	KindEnrollment    = "enrollment"
	KindGiftSent      = "gift_sent"
	KindGiftClaimed   = "gift_claimed"
	KindSeatGranted   = "seat_granted"
	KindCreditChanged = "credit_changed"
	KindRefund        = "refund"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// NotificationJob 由 worker 异步发送的通知
type NotificationJob struct {
	Kind           string  `json:"kind"`
	UserID         int64   `json:"user_id,omitempty"`
	Email          string  `json:"email,omitempty"`
	Name           string  `json:"name,omitempty"`
	WorkshopID     int64   `json:"workshop_id,omitempty"`
	WorkshopTitle  string  `json:"workshop_title,omitempty"`
	SubscriptionID int64   `json:"subscription_id,omitempty"`
	GiftCode       string  `json:"gift_code,omitempty"`
	GifterName     string  `json:"gifter_name,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	Balance        float64 `json:"balance,omitempty"`
	Note           string  `json:"note,omitempty"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将通知加入队列
func (q *Queue) Push(ctx context.Context, job *NotificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取通知（阻塞）
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*NotificationJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 超时，无任务
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var job NotificationJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	return &job, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
