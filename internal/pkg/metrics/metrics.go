package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 账本操作
	LedgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_ledger_operations_total",
			Help: "Total number of ledger operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	CreditMovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_credit_moved_total",
			Help: "Total internal credit moved by direction",
		},
		[]string{"type"}, // addition, subtraction
	)

	// 对账时缓存余额与流水不一致的用户数
	CreditDriftTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workshop_credit_drift_corrected_total",
			Help: "Total number of cached balances corrected by reconciliation",
		},
	)

	GiftsClaimedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_gifts_claimed_total",
			Help: "Total number of gifts claimed by channel",
		},
		[]string{"channel"}, // manual, signup
	)

	SeatsGrantedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workshop_pay_it_forward_seats_granted_total",
			Help: "Total number of seats funded from pay-it-forward donations",
		},
	)

	TrashPurgedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_trash_purged_total",
			Help: "Total number of records permanently removed from trash",
		},
		[]string{"entity"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workshop_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_notifications_total",
			Help: "Total notifications processed by kind and result",
		},
		[]string{"kind", "result"},
	)
)

// ObserveOp 记录一次账本操作结果
func ObserveOp(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	LedgerOperationsTotal.WithLabelValues(operation, result).Inc()
}
