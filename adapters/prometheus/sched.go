package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Creativesource-Sys/synapsys/core/sched"
)

// schedulerMetrics implements sched.SchedulerMetrics using Prometheus.
type schedulerMetrics struct {
	queueDepth        *prometheus.GaugeVec
	workStolen        *prometheus.CounterVec
	episodesTotal     *prometheus.CounterVec
	episodeMessages   prometheus.Histogram
	episodeReductions prometheus.Histogram
}

// NewSchedulerMetrics creates a new Prometheus implementation of SchedulerMetrics.
func NewSchedulerMetrics(reg prometheus.Registerer) sched.SchedulerMetrics {
	m := &schedulerMetrics{
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "synapsys_sched_queue_depth",
			Help: "Current depth of one worker queue",
		}, []string{"worker"}),

		workStolen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synapsys_sched_work_stolen_total",
			Help: "Total executors obtained by stealing from another queue",
		}, []string{"worker"}),

		episodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synapsys_sched_episodes_total",
			Help: "Total processing episodes, partitioned by whether the executor was re-enqueued",
		}, []string{"requeued"}),

		episodeMessages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "synapsys_sched_episode_messages",
			Help:    "Messages processed in one episode",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		episodeReductions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "synapsys_sched_episode_reductions",
			Help:    "Reductions charged in one episode",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
	}

	reg.MustRegister(
		m.queueDepth,
		m.workStolen,
		m.episodesTotal,
		m.episodeMessages,
		m.episodeReductions,
	)

	return m
}

func (m *schedulerMetrics) QueueDepth(worker int, depth int) {
	m.queueDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(depth))
}

func (m *schedulerMetrics) WorkStolen(thief int) {
	m.workStolen.WithLabelValues(strconv.Itoa(thief)).Inc()
}

func (m *schedulerMetrics) Episode(messages, reductions int, requeued bool) {
	m.episodesTotal.WithLabelValues(boolToStr(requeued)).Inc()
	m.episodeMessages.Observe(float64(messages))
	m.episodeReductions.Observe(float64(reductions))
}

var _ sched.SchedulerMetrics = (*schedulerMetrics)(nil)
