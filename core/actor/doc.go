// Package actor provides the per-actor runtime pieces of synapsys: the
// mailbox and the executor.
//
// An actor is user code with private state and a single receive function.
// The runtime never looks inside state, messages, or replies; it only moves
// them around:
//
//   - [Mailbox] is an unbounded multi-producer/single-consumer FIFO of
//     pending messages.
//   - [Executor] binds one actor to one mailbox plus the scheduling flags
//     the scheduler operates on (active, suspended, alive, scheduled).
//
// Executors are driven by core/sched; user code normally interacts with
// actors through core/system and never touches this package directly.
//
// # Failure containment
//
// A receive function that returns an error or panics loses that one message:
// the executor logs the fault, keeps the previous state, and stays
// scheduled. One bad message never takes an actor down.
package actor
