package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bot-level metrics: one counter/histogram pair per chat command, plus the
// broadcast fan-out outcomes.
var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of chat commands processed.",
		},
		[]string{"command", "status"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_command_duration_seconds",
			Help:    "Chat command handling latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	broadcastDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Broadcast delivery attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Init registers the bot metrics in the default registry.
func Init() {
	prometheus.MustRegister(commandsTotal, commandDuration, broadcastDeliveries)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCommand records one handled command.
func ObserveCommand(command, status string, d time.Duration) {
	commandsTotal.WithLabelValues(command, status).Inc()
	commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// CountDelivery records one broadcast delivery attempt.
// Outcome is "delivered", "failed" or "evicted".
func CountDelivery(outcome string) {
	broadcastDeliveries.WithLabelValues(outcome).Inc()
}
