package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/workshop_server/internal/pkg/metrics"
	"github.com/qs3c/workshop_server/internal/pkg/queue"
)

// Mailer 通知邮件发送，生产环境为 email.Service
type Mailer interface {
	SendEnrollment(to, name, workshopTitle string) error
	SendGiftNotice(to, recipientName, gifterName, workshopTitle, code string) error
	SendGiftClaimed(to, name, gifterName, workshopTitle string) error
	SendSeatGranted(to, name, workshopTitle string) error
	SendCreditChanged(to, name string, amount, balance float64, note string) error
	SendRefund(to, name, workshopTitle string, amount float64, method string) error
}

// JobSource 通知队列
type JobSource interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.NotificationJob, error)
}

// Processor 通知处理器
type Processor struct {
	mailer Mailer
}

func NewProcessor(mailer Mailer) *Processor {
	return &Processor{mailer: mailer}
}

// Process 按类型发送一条通知
func (p *Processor) Process(ctx context.Context, job *queue.NotificationJob) error {
	err := p.send(job)

	result := "sent"
	if err != nil {
		result = "failed"
	}
	metrics.NotificationsTotal.WithLabelValues(job.Kind, result).Inc()
	return err
}

func (p *Processor) send(job *queue.NotificationJob) error {
	if job.Email == "" {
		return fmt.Errorf("notification %s for user %d has no email", job.Kind, job.UserID)
	}

	switch job.Kind {
	case queue.KindEnrollment:
		return p.mailer.SendEnrollment(job.Email, job.Name, job.WorkshopTitle)
	case queue.KindGiftSent:
		return p.mailer.SendGiftNotice(job.Email, job.Name, job.GifterName, job.WorkshopTitle, job.GiftCode)
	case queue.KindGiftClaimed:
		return p.mailer.SendGiftClaimed(job.Email, job.Name, job.GifterName, job.WorkshopTitle)
	case queue.KindSeatGranted:
		return p.mailer.SendSeatGranted(job.Email, job.Name, job.WorkshopTitle)
	case queue.KindCreditChanged:
		return p.mailer.SendCreditChanged(job.Email, job.Name, job.Amount, job.Balance, job.Note)
	case queue.KindRefund:
		return p.mailer.SendRefund(job.Email, job.Name, job.WorkshopTitle, job.Amount, job.Note)
	default:
		return fmt.Errorf("unknown notification kind %q", job.Kind)
	}
}

// Run 启动 workers 个消费协程，阻塞到 ctx 取消且所有协程退出
func (p *Processor) Run(ctx context.Context, source JobSource, workers int, pollTimeout time.Duration) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, source, workerID, pollTimeout)
		}(i)
	}
	wg.Wait()
}

func (p *Processor) loop(ctx context.Context, source JobSource, workerID int, pollTimeout time.Duration) {
	logger := log.With().Int("worker", workerID).Logger()
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("worker shutting down")
			return
		default:
		}

		job, err := source.Pop(ctx, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("failed to pop notification")
			continue
		}
		if job == nil {
			continue // 超时，继续等待
		}

		if err := p.Process(ctx, job); err != nil {
			logger.Warn().Err(err).
				Str("kind", job.Kind).
				Int64("user_id", job.UserID).
				Msg("notification failed")
			continue
		}
		logger.Info().
			Str("kind", job.Kind).
			Int64("user_id", job.UserID).
			Msg("notification sent")
	}
}
