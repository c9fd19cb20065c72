package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Creativesource-Sys/synapsys/core/actor"
	"github.com/Creativesource-Sys/synapsys/core/metrics"
)

// executorMetrics implements actor.ExecutorMetrics using Prometheus.
type executorMetrics struct {
	messageDuration prometheus.Histogram
	messagesTotal   *prometheus.CounterVec
	panicTotal      prometheus.Counter
	mailboxDepth    *prometheus.GaugeVec
}

// NewExecutorMetrics creates a new Prometheus implementation of ExecutorMetrics.
func NewExecutorMetrics(reg prometheus.Registerer) actor.ExecutorMetrics {
	m := &executorMetrics{
		messageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "synapsys_actor_message_duration_seconds",
			Help:    "Message handling time in seconds",
			Buckets: defaultBuckets,
		}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synapsys_actor_messages_total",
			Help: "Total number of messages processed",
		}, []string{"success"}),

		panicTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "synapsys_actor_panics_total",
			Help: "Total number of receive panics",
		}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "synapsys_actor_mailbox_depth",
			Help: "Current mailbox queue depth",
		}, []string{"actor_id"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.mailboxDepth,
	)

	return m
}

func (m *executorMetrics) MessageDuration() metrics.Timer {
	return newTimer(m.messageDuration)
}

func (m *executorMetrics) MessageProcessed(success bool) {
	m.messagesTotal.WithLabelValues(boolToStr(success)).Inc()
}

func (m *executorMetrics) MessagePanic() {
	m.panicTotal.Inc()
}

func (m *executorMetrics) MailboxDepth(actorID string, depth int) {
	m.mailboxDepth.WithLabelValues(actorID).Set(float64(depth))
}

var _ actor.ExecutorMetrics = (*executorMetrics)(nil)
