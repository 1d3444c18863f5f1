package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Database
	// ============================================
	DBConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_db_connection_status",
		Help: "Database connection status (1=healthy, 0=unhealthy)",
	})

	DBConnectionActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_db_connection_active",
		Help: "Number of active database connections",
	})

	DBConnectionIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_db_connection_idle",
		Help: "Number of idle database connections",
	})

	// ============================================
	// Operations
	// ============================================
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_operations_total",
			Help: "Hub operations by name and result code",
		},
		[]string{"operation", "code"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hub_operation_duration_seconds",
			Help:    "Hub operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	InvariantViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_invariant_violations_total",
			Help: "Arithmetic overflows in counters that must never overflow",
		},
		[]string{"operation"},
	)

	// ============================================
	// Ledger totals
	// ============================================
	BridgeVolume = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_bridge_volume_total",
			Help: "Gross amount bridged out, by target chain",
		},
		[]string{"target_chain"},
	)

	BridgeFeesAccrued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_bridge_fees_accrued_total",
		Help: "Fees booked on outbound bridges",
	})

	BridgeCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_bridge_completions_total",
			Help: "Inbound completions recorded, by source chain",
		},
		[]string{"source_chain"},
	)

	HubPaused = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_paused",
		Help: "Hub pause flag (1=paused, 0=running)",
	})

	PactsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_pacts_closed_total",
			Help: "Pacts leaving Open, by terminal status",
		},
		[]string{"status"},
	)

	// ============================================
	// NATS
	// ============================================
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	NATSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_nats_messages_received_total",
			Help: "Total number of NATS messages received",
		},
		[]string{"event_type"},
	)

	NATSMessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_nats_messages_processed_total",
			Help: "Total number of NATS messages processed successfully",
		},
		[]string{"event_type"},
	)

	NATSMessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_nats_messages_failed_total",
			Help: "Total number of NATS messages failed to process",
		},
		[]string{"event_type", "error_type"},
	)

	NATSSubscriptionStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_nats_subscription_status",
			Help: "NATS subscription status (1=active, 0=inactive)",
		},
		[]string{"subject"},
	)

	// ============================================
	// Notifications
	// ============================================
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_notifications_published_total",
			Help: "Notifications delivered, by sink",
		},
		[]string{"sink"},
	)

	NotificationsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_notifications_pending",
		Help: "Notifications not yet marked published",
	})

	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_websocket_clients",
		Help: "Connected websocket clients",
	})

	SweeperRefunds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_sweeper_refunds_total",
			Help: "Expired pacts processed by the deadline sweeper, by result",
		},
		[]string{"result"},
	)
)
