package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/pkg/metrics"
	"github.com/qs3c/workshop_server/internal/service"
)

// jobTimeout 单次任务的最长执行时间
const jobTimeout = 10 * time.Minute

// Maintenance 定时任务依赖的账本维护操作
type Maintenance interface {
	Reconcile(ctx context.Context) (int, error)
	PurgeExpired(ctx context.Context, retentionDays int) (*service.PurgeReport, error)
	ExportSnapshot(ctx context.Context) (string, error)
}

type Service struct {
	cron        *cron.Cron
	maintenance Maintenance
	cfg         config.LedgerConfig
}

func NewService(maintenance Maintenance, cfg config.LedgerConfig) *Service {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	))

	return &Service{
		cron:        c,
		maintenance: maintenance,
		cfg:         cfg,
	}
}

// Start 注册任务并启动调度；表达式为空的任务不注册
func (s *Service) Start() {
	s.schedule("reconcile", s.cfg.ReconcileSchedule, s.reconcile)
	s.schedule("purge", s.cfg.PurgeSchedule, s.purge)
	s.schedule("snapshot", s.cfg.SnapshotSchedule, s.snapshot)

	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("cron service started")
}

// Stop 停止调度，返回的 context 在运行中的任务结束后关闭
func (s *Service) Stop() context.Context {
	ctx := s.cron.Stop()
	log.Info().Msg("cron service stopped")
	return ctx
}

func (s *Service) schedule(name, spec string, job func()) {
	if spec == "" {
		log.Info().Str("job", name).Msg("cron job disabled")
		return
	}
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		log.Error().Err(err).Str("job", name).Str("schedule", spec).Msg("failed to schedule cron job")
		return
	}
	log.Info().Str("job", name).Str("schedule", spec).Msg("scheduled cron job")
}

func (s *Service) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	_, err := s.maintenance.Reconcile(ctx)
	metrics.ObserveOp("cron_reconcile", err)
	if err != nil {
		log.Error().Err(err).Msg("scheduled reconciliation failed")
	}
}

func (s *Service) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	_, err := s.maintenance.PurgeExpired(ctx, s.cfg.TrashRetentionDay)
	metrics.ObserveOp("cron_purge", err)
	if err != nil {
		log.Error().Err(err).Msg("scheduled trash purge failed")
	}
}

func (s *Service) snapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	_, err := s.maintenance.ExportSnapshot(ctx)
	metrics.ObserveOp("cron_snapshot", err)
	if err != nil {
		log.Error().Err(err).Msg("scheduled snapshot export failed")
	}
}

// cronLogger 把 cron 内部日志接到 zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	withFields(log.Debug(), keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	withFields(log.Error().Err(err), keysAndValues).Msg(msg)
}

func withFields(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, keysAndValues[i+1])
	}
	return e
}
