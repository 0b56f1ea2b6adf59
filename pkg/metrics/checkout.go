package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts checkout session and payment webhook outcomes.
type CheckoutMetrics struct {
	sessionsCreated prometheus.Counter
	sessionFailures prometheus.Counter
	webhookEvents   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the counters on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	sessionsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_created_total",
		Help: "Checkout sessions successfully created with the payment processor.",
	})
	sessionFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_session_failures_total",
		Help: "Checkout session creation attempts that failed.",
	})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook deliveries by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(sessionsCreated, sessionFailures, webhookEvents)
	return &CheckoutMetrics{
		sessionsCreated: sessionsCreated,
		sessionFailures: sessionFailures,
		webhookEvents:   webhookEvents,
	}
}

// IncSessionCreated increments the created-session counter.
func (m *CheckoutMetrics) IncSessionCreated() {
	if m == nil || m.sessionsCreated == nil {
		return
	}
	m.sessionsCreated.Inc()
}

// IncSessionFailure increments the failed-session counter.
func (m *CheckoutMetrics) IncSessionFailure() {
	if m == nil || m.sessionFailures == nil {
		return
	}
	m.sessionFailures.Inc()
}

// IncWebhook records one webhook delivery outcome
// (processed, ignored, duplicate, rejected, dead_letter).
func (m *CheckoutMetrics) IncWebhook(outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.webhookEvents.WithLabelValues(outcome).Inc()
}
