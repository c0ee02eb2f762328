package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/testutil"
)

func TestSubscriptionRepository_ExistsLive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	workshop := testutil.TestWorkshop(t, db)

	exists, err := repo.ExistsLive(user.ID, workshop.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	sub := testutil.TestSubscription(t, db, user.ID, workshop.ID)
	exists, err = repo.ExistsLive(user.ID, workshop.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.SoftDelete(sub.ID, time.Now()))
	exists, err = repo.ExistsLive(user.ID, workshop.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubscriptionRepository_ExistsLive_IgnoresDonationsAndClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	workshop := testutil.TestWorkshop(t, db)

	testutil.TestSubscription(t, db, user.ID, workshop.ID, testutil.AsDonation(700))
	testutil.TestSubscription(t, db, user.ID, workshop.ID, testutil.WithStatus(model.StatusRefunded))

	exists, err := repo.ExistsLive(user.ID, workshop.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubscriptionRepository_ListOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	workshop := testutil.TestWorkshop(t, db)

	testutil.TestSubscription(t, db, user.ID, workshop.ID)
	testutil.TestSubscription(t, db, user.ID, workshop.ID, testutil.WithStatus(model.StatusPending))
	testutil.TestSubscription(t, db, user.ID, workshop.ID, testutil.WithStatus(model.StatusTransferred))
	testutil.TestSubscription(t, db, user.ID, workshop.ID, testutil.AsDonation(100))

	subs, err := repo.ListOpen()
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	for _, s := range subs {
		require.NotNil(t, s.Workshop)
		assert.Equal(t, workshop.ID, s.Workshop.ID)
	}
}

func TestSubscriptionRepository_ConsumeDonation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	donor := testutil.TestUser(t, db)
	workshop := testutil.TestWorkshop(t, db)
	donation := testutil.TestSubscription(t, db, donor.ID, workshop.ID, testutil.AsDonation(700))

	ok, err := repo.ConsumeDonation(donation.ID, 350)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeDonation(donation.ID, 400)
	require.NoError(t, err)
	assert.False(t, ok, "insufficient remaining must not be consumed")

	found, err := repo.GetByID(donation.ID)
	require.NoError(t, err)
	assert.InDelta(t, 350, found.DonationRemaining, 0.001)

	ok, err = repo.ConsumeDonation(donation.ID, 350)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err = repo.GetByID(donation.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0, found.DonationRemaining, 0.001)
}

func TestSubscriptionRepository_Save_DoesNotTouchDonationRemaining(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	donor := testutil.TestUser(t, db)
	workshop := testutil.TestWorkshop(t, db)
	donation := testutil.TestSubscription(t, db, donor.ID, workshop.ID, testutil.AsDonation(700))

	donation.DonationRemaining = 0
	donation.Notes = "edited"
	require.NoError(t, repo.Save(donation))

	found, err := repo.GetByID(donation.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", found.Notes)
	assert.InDelta(t, 700, found.DonationRemaining, 0.001)
}

func TestSubscriptionRepository_RecordingOverrides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	workshop := testutil.TestWorkshop(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, workshop.ID)

	until := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sub.RecordingAccess = datatypes.NewJSONType(model.RecordingOverrides{"rec-1": {To: &until}})
	require.NoError(t, repo.Save(sub))

	found, err := repo.GetByID(sub.ID)
	require.NoError(t, err)
	window, ok := found.RecordingAccess.Data()["rec-1"]
	require.True(t, ok)
	require.NotNil(t, window.To)
	assert.True(t, window.To.Equal(until))
}

func TestSubscriptionRepository_CompareAndSetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	workshop := testutil.TestWorkshop(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, workshop.ID)

	ok, err := repo.CompareAndSetStatus(sub.ID, model.StatusActive, model.StatusRefunded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompareAndSetStatus(sub.ID, model.StatusActive, model.StatusTransferred)
	require.NoError(t, err)
	assert.False(t, ok, "stale from-status must not match")

	found, err := repo.GetByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRefunded, found.Status)
}
