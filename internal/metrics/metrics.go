package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "venuehub",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venuehub",
		Name:      "booking_transitions_total",
		Help:      "Booking state transitions applied, by resulting state.",
	}, []string{"transition"})

	PaymentCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venuehub",
		Name:      "payment_callbacks_total",
		Help:      "Payment gateway callbacks by outcome and result.",
	}, []string{"outcome", "result"})

	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venuehub",
		Name:      "notifications_dispatched_total",
		Help:      "Domain events handled by the notification dispatcher.",
	}, []string{"subject", "result"})

	DashboardRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "venuehub",
		Name:      "dashboard_recomputes_total",
		Help:      "Owner dashboard recomputations by result.",
	}, []string{"result"})
)

// Result labels
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultNoop  = "noop"

	// ResultMismatch counts charges whose amount or currency did not match the booking.
	ResultMismatch = "mismatch"
)

// ResultOf maps an error onto a result label.
func ResultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func Handler() http.Handler {
	return promhttp.Handler()
}
