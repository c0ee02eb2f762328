package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/service"
)

type fakeMaintenance struct {
	reconciled int
	purgedDays []int
	exported   int
	exportErr  error
}

func (f *fakeMaintenance) Reconcile(ctx context.Context) (int, error) {
	f.reconciled++
	return 0, nil
}

func (f *fakeMaintenance) PurgeExpired(ctx context.Context, retentionDays int) (*service.PurgeReport, error) {
	f.purgedDays = append(f.purgedDays, retentionDays)
	return &service.PurgeReport{}, nil
}

func (f *fakeMaintenance) ExportSnapshot(ctx context.Context) (string, error) {
	f.exported++
	return "ledger-snapshots/x.json", f.exportErr
}

func TestService_StartRegistersConfiguredJobs(t *testing.T) {
	svc := NewService(&fakeMaintenance{}, config.LedgerConfig{
		ReconcileSchedule: "0 3 * * *",
		PurgeSchedule:     "30 3 * * *",
		SnapshotSchedule:  "",
	})

	svc.Start()
	defer svc.Stop()

	assert.Len(t, svc.cron.Entries(), 2)
}

func TestService_InvalidScheduleSkipped(t *testing.T) {
	svc := NewService(&fakeMaintenance{}, config.LedgerConfig{
		ReconcileSchedule: "not a schedule",
		SnapshotSchedule:  "@daily",
	})

	svc.Start()
	defer svc.Stop()

	assert.Len(t, svc.cron.Entries(), 1)
}

func TestService_Jobs(t *testing.T) {
	fake := &fakeMaintenance{}
	svc := NewService(fake, config.LedgerConfig{TrashRetentionDay: 30})

	svc.reconcile()
	svc.purge()
	svc.snapshot()

	assert.Equal(t, 1, fake.reconciled)
	require.Len(t, fake.purgedDays, 1)
	assert.Equal(t, 30, fake.purgedDays[0])
	assert.Equal(t, 1, fake.exported)
}

func TestService_JobErrorDoesNotPanic(t *testing.T) {
	fake := &fakeMaintenance{exportErr: errors.New("oss unavailable")}
	svc := NewService(fake, config.LedgerConfig{})

	assert.NotPanics(t, svc.snapshot)
}
