package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Total number of order status updates by lifecycle event",
	}, []string{"event"})

	OrderIDCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_id_collisions_total",
		Help: "Total number of generated order IDs rejected as duplicates",
	})

	OrderCommentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_comments_total",
		Help: "Total number of comments added to orders",
	})

	RefundUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_refund_updates_total",
		Help: "Total number of refund summary updates",
	})

	DocumentUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_document_uploads_total",
		Help: "Total number of store document uploads",
	}, []string{"result"})

	ObjectUploadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "object_upload_latency_seconds",
		Help:    "Latency of object storage uploads",
		Buckets: prometheus.DefBuckets,
	})

	AuthorizationDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authorization_denied_total",
		Help: "Total number of operations denied by the access policy",
	}, []string{"permission", "role"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	DashboardCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_total",
		Help: "Dashboard stats cache lookups",
	}, []string{"result"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_published_total",
		Help: "Total number of domain events published",
	}, []string{"type", "result"})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_consumed_total",
		Help: "Total number of domain events consumed by the worker",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
