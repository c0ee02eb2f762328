package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/pkg/pubsub"
	"github.com/qs3c/workshop_server/internal/pkg/queue"
	"github.com/qs3c/workshop_server/internal/repository"
	"github.com/qs3c/workshop_server/internal/testutil"
)

// recorder 记录发布的事件与入队的通知
type recorder struct {
	mu     sync.Mutex
	events []*pubsub.LedgerEvent
	jobs   []*queue.NotificationJob
}

func (r *recorder) Publish(ctx context.Context, event *pubsub.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) Push(ctx context.Context, job *queue.NotificationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *recorder) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

func (r *recorder) jobKinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, 0, len(r.jobs))
	for _, j := range r.jobs {
		kinds = append(kinds, j.Kind)
	}
	return kinds
}

type testEnv struct {
	db    *gorm.DB
	store *repository.Store
	rec   *recorder

	subs        *SubscriptionService
	donations   *DonationService
	gifts       *GiftService
	credits     *CreditService
	orders      *OrderService
	workshops   *WorkshopService
	users       *UserService
	auth        *AuthService
	maintenance *MaintenanceService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	store := repository.NewStore(db)
	rec := &recorder{}
	notifier := NewNotifier(rec, rec)

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
	}

	env := &testEnv{
		db:        db,
		store:     store,
		rec:       rec,
		subs:      NewSubscriptionService(store, notifier),
		donations: NewDonationService(store, notifier),
		gifts:     NewGiftService(store, notifier),
		credits:   NewCreditService(store, notifier),
		orders:    NewOrderService(store, notifier),
		workshops: NewWorkshopService(store),
		users:     NewUserService(store),
	}
	env.auth = NewAuthService(store, env.gifts, cfg)
	env.maintenance = NewMaintenanceService(store, env.credits, nil)
	return env
}

func (e *testEnv) reloadUser(t *testing.T, id int64) *model.User {
	t.Helper()
	user, err := e.store.Users.GetByID(id)
	if err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	return user
}

func (e *testEnv) reloadSub(t *testing.T, id int64) *model.Subscription {
	t.Helper()
	sub, err := e.store.Subscriptions.GetByID(id)
	if err != nil {
		t.Fatalf("Failed to reload subscription: %v", err)
	}
	return sub
}

func (e *testEnv) reloadWorkshop(t *testing.T, id int64) *model.Workshop {
	t.Helper()
	w, err := e.store.Workshops.GetByID(id)
	if err != nil {
		t.Fatalf("Failed to reload workshop: %v", err)
	}
	return w
}

func (e *testEnv) countSubs(t *testing.T, userID int64) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&model.Subscription{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count subscriptions: %v", err)
	}
	return n
}

// fixedClock 固定服务的当前时间
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func ptr[T any](v T) *T {
	return &v
}
