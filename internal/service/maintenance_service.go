package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/workshop_server/internal/pkg/metrics"
	"github.com/qs3c/workshop_server/internal/repository"
)

// SnapshotUploader 快照存储，生产环境为 OSS
type SnapshotUploader interface {
	UploadSnapshot(at time.Time, data []byte) (string, error)
}

// PurgeReport 一次回收站清理的结果
type PurgeReport struct {
	Subscriptions      int `json:"subscriptions"`
	PendingGifts       int `json:"pending_gifts"`
	CreditTransactions int `json:"credit_transactions"`
	Skipped            int `json:"skipped"`
}

type MaintenanceService struct {
	store    *repository.Store
	credits  *CreditService
	uploader SnapshotUploader
	now      func() time.Time
}

func NewMaintenanceService(store *repository.Store, credits *CreditService, uploader SnapshotUploader) *MaintenanceService {
	return &MaintenanceService{
		store:    store,
		credits:  credits,
		uploader: uploader,
		now:      time.Now,
	}
}

// Reconcile 全量对账
func (s *MaintenanceService) Reconcile(ctx context.Context) (int, error) {
	start := s.now()
	corrected, err := s.credits.ReconcileAll(ctx)
	if err != nil {
		return corrected, err
	}
	log.Info().
		Int("corrected", corrected).
		Dur("elapsed", time.Since(start)).
		Msg("credit reconciliation finished")
	return corrected, nil
}

// PurgeExpired 永久删除在回收站中超过 retentionDays 天的记录；
// 仍有余额的捐赠记录跳过
func (s *MaintenanceService) PurgeExpired(ctx context.Context, retentionDays int) (*PurgeReport, error) {
	report := &PurgeReport{}
	if retentionDays <= 0 {
		return report, nil
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)
	store := s.store.WithContext(ctx)

	subs, err := store.Subscriptions.ListDeletedBefore(cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired subscriptions: %w", err)
	}
	for _, sub := range subs {
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			return purgeSubscription(tx, sub)
		})
		if errors.Is(err, ErrDonationBalanceRemaining) {
			report.Skipped++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("purge subscription %d: %w", sub.ID, err)
		}
		report.Subscriptions++
	}

	gifts, err := store.Gifts.ListDeletedBefore(cutoff)
	if err != nil {
		return report, fmt.Errorf("list expired gifts: %w", err)
	}
	for _, gift := range gifts {
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			return purgeGift(tx, gift)
		})
		if err != nil {
			return report, fmt.Errorf("purge gift %d: %w", gift.ID, err)
		}
		report.PendingGifts++
	}

	txs, err := store.Credits.ListDeletedBefore(cutoff)
	if err != nil {
		return report, fmt.Errorf("list expired credit transactions: %w", err)
	}
	for _, entry := range txs {
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			if err := tx.Credits.Purge(entry.ID); err != nil {
				return err
			}
			_, err := recomputeCredit(tx, entry.UserID)
			return err
		})
		if err != nil {
			return report, fmt.Errorf("purge credit transaction %d: %w", entry.ID, err)
		}
		metrics.TrashPurgedTotal.WithLabelValues("credit_transaction").Inc()
		report.CreditTransactions++
	}

	log.Info().
		Int("subscriptions", report.Subscriptions).
		Int("pending_gifts", report.PendingGifts).
		Int("credit_transactions", report.CreditTransactions).
		Int("skipped", report.Skipped).
		Int("retention_days", retentionDays).
		Msg("trash purge finished")
	return report, nil
}

// BuildSnapshot 导出账本 JSON
func (s *MaintenanceService) BuildSnapshot(ctx context.Context) ([]byte, error) {
	var snap *repository.Snapshot
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		snap, err = tx.Snapshot()
		return err
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

// ExportSnapshot 导出账本并上传，返回对象路径
func (s *MaintenanceService) ExportSnapshot(ctx context.Context) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("snapshot uploader not configured")
	}

	data, err := s.BuildSnapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("build snapshot: %w", err)
	}

	key, err := s.uploader.UploadSnapshot(s.now(), data)
	metrics.ObserveOp("export_snapshot", err)
	if err != nil {
		return "", err
	}

	log.Info().Str("key", key).Int("bytes", len(data)).Msg("ledger snapshot exported")
	return key, nil
}
