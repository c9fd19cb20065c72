// Package sched implements the synapsys scheduler: a preemptive,
// reduction-counted, work-stealing scheduler in the style of the BEAM.
//
// The scheduler owns one executor queue per worker. Enqueue places an
// executor on a uniformly random queue; each worker drains its own queue,
// steals from the others when idle, and sleeps briefly when there is
// nothing to steal.
//
// A popped executor is run for one processing episode: messages are
// dequeued and processed one at a time, and each message is charged
// reductions. Cheap messages cost one reduction; a message whose wall time
// exceeds the configured threshold is surcharged proportionally, so a slow
// actor burns its budget faster. When messages remain after the episode
// (typically because the budget ran out), the executor is suspended and
// re-enqueued on a fresh random queue; when the mailbox drained it goes
// dormant until the next post, even if the last message used up the
// budget.
package sched
