package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/repository"
	"github.com/qs3c/workshop_server/internal/testutil"
)

type memUploader struct {
	at   time.Time
	data []byte
}

func (u *memUploader) UploadSnapshot(at time.Time, data []byte) (string, error) {
	u.at = at
	u.data = data
	return "ledger-snapshots/test.json", nil
}

func TestMaintenanceService_PurgeExpired(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := testutil.TestUser(t, env.db)
	workshop := testutil.TestWorkshop(t, env.db)

	old := time.Now().AddDate(0, 0, -40)
	recent := time.Now().AddDate(0, 0, -5)

	expiredSub := testutil.TestSubscription(t, env.db, user.ID, workshop.ID)
	require.NoError(t, env.store.Subscriptions.SoftDelete(expiredSub.ID, old))

	recentSub := testutil.TestSubscription(t, env.db, user.ID, workshop.ID)
	require.NoError(t, env.store.Subscriptions.SoftDelete(recentSub.ID, recent))

	donor := testutil.TestUser(t, env.db)
	donation := testutil.TestSubscription(t, env.db, donor.ID, workshop.ID, testutil.AsDonation(100))
	require.NoError(t, env.store.Subscriptions.SoftDelete(donation.ID, old))

	gift := testutil.TestPendingGift(t, env.db, workshop.ID)
	require.NoError(t, env.store.Gifts.SoftDelete(gift.ID, old))

	entry := testutil.TestCreditTx(t, env.db, user.ID, model.CreditAddition, 10)
	require.NoError(t, env.store.Credits.SoftDelete(entry.ID, old))

	report, err := env.maintenance.PurgeExpired(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Subscriptions)
	assert.Equal(t, 1, report.PendingGifts)
	assert.Equal(t, 1, report.CreditTransactions)
	assert.Equal(t, 1, report.Skipped)

	_, err = env.store.Subscriptions.GetByID(expiredSub.ID)
	assert.Error(t, err)
	assert.True(t, env.reloadSub(t, recentSub.ID).IsDeleted)
	assert.True(t, env.reloadSub(t, donation.ID).IsDeleted)

	t.Run("zero retention disables purging", func(t *testing.T) {
		report, err := env.maintenance.PurgeExpired(ctx, 0)
		require.NoError(t, err)
		assert.Zero(t, report.Subscriptions)
	})
}

func TestMaintenanceService_ExportSnapshot(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	uploader := &memUploader{}
	env.maintenance = NewMaintenanceService(env.store, env.credits, uploader)
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	env.maintenance.now = fixedClock(at)

	user := testutil.TestUser(t, env.db)
	workshop := testutil.TestWorkshop(t, env.db)
	testutil.TestPackage(t, env.db, workshop.ID, 100, nil)
	testutil.TestSubscription(t, env.db, user.ID, workshop.ID)
	_, err := env.credits.AddCredit(ctx, user.ID, 25, "")
	require.NoError(t, err)

	key, err := env.maintenance.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ledger-snapshots/test.json", key)
	assert.True(t, uploader.at.Equal(at))

	var snap repository.Snapshot
	require.NoError(t, json.Unmarshal(uploader.data, &snap))
	assert.Len(t, snap.Users, 1)
	require.Len(t, snap.Workshops, 1)
	assert.Len(t, snap.Workshops[0].Packages, 1)
	assert.Len(t, snap.Subscriptions, 1)
	assert.Len(t, snap.CreditTransactions, 1)
}

func TestMaintenanceService_ExportWithoutUploader(t *testing.T) {
	env := setupEnv(t)

	_, err := env.maintenance.ExportSnapshot(context.Background())
	assert.Error(t, err)
}

func TestMaintenanceService_Reconcile(t *testing.T) {
	env := setupEnv(t)
	user := testutil.TestUser(t, env.db)
	testutil.TestCreditTx(t, env.db, user.ID, model.CreditAddition, 12)

	corrected, err := env.maintenance.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)
	assert.Equal(t, 12.0, env.reloadUser(t, user.ID).InternalCredit)
}
