// Package system is the front door of the synapsys runtime. It owns the
// actor registry, wires executors to the scheduler, and binds the optional
// collaborators (state store, codec, reply sink, metrics).
//
// Typical use:
//
//	sys := system.New(system.Config{})
//	defer sys.Shutdown(context.Background())
//
//	sys.Register(ctx, "counter-1", system.Receive(
//	    func(msg Add, st CounterState) (CounterState, any, error) {
//	        st.Count += msg.N
//	        return st, nil, nil
//	    },
//	))
//
//	sys.Post(ctx, "counter-1", Add{N: 1})
//
// Posting to a dormant actor re-enqueues it; the scheduled flag on the
// executor guarantees it lands in at most one worker queue.
package system
