package actor

import "github.com/Creativesource-Sys/synapsys/core/metrics"

// ExecutorMetrics instruments message processing. All methods are
// thread-safe.
type ExecutorMetrics interface {
	MessageDuration() metrics.Timer
	MessageProcessed(success bool)
	MessagePanic()
	MailboxDepth(actorID string, depth int)
}

type nopExecutorMetrics struct{}

func (nopExecutorMetrics) MessageDuration() metrics.Timer { return metrics.NopTimer() }
func (nopExecutorMetrics) MessageProcessed(bool)          {}
func (nopExecutorMetrics) MessagePanic()                  {}
func (nopExecutorMetrics) MailboxDepth(string, int)       {}

// NopExecutorMetrics returns a no-op ExecutorMetrics implementation.
func NopExecutorMetrics() ExecutorMetrics { return nopExecutorMetrics{} }
