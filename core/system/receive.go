package system

import (
	"fmt"

	"github.com/Creativesource-Sys/synapsys/core/actor"
	"github.com/Creativesource-Sys/synapsys/internal/reflector"
)

// Receive adapts a typed receive function to the untyped actor contract.
// A message or state of an unexpected type is rejected with an error, which
// the executor absorbs and logs like any other handler fault.
//
// A nil reply is not delivered to the sink; fire-and-forget actors use an
// any-typed reply and return nil. A typed nil pointer reply is a non-nil
// interface value and is delivered.
func Receive[S, M, R any](fn func(msg M, st S) (S, R, error)) actor.Receiver {
	return actor.ReceiverFunc(func(msg any, st any) (any, any, error) {
		m, ok := msg.(M)
		if !ok {
			return st, nil, fmt.Errorf("unexpected message type %s", reflector.TypeInfoOf(msg).Name)
		}

		var cur S
		if st != nil {
			cur, ok = st.(S)
			if !ok {
				return st, nil, fmt.Errorf("unexpected state type %s", reflector.TypeInfoOf(st).Name)
			}
		}

		next, reply, err := fn(m, cur)
		if err != nil {
			return st, nil, err
		}
		return next, reply, nil
	})
}

// Router dispatches messages to per-type receive functions sharing one
// untyped state. Build it with [NewRouter] and [On]:
//
//	recv := system.NewRouter(
//	    system.On(func(msg Add, st any) (any, any, error) { ... }),
//	    system.On(func(msg Get, st any) (any, any, error) { ... }),
//	)
type Router struct {
	routes   map[string]func(msg any, st any) (any, any, error)
	fallback func(msg any, st any) (any, any, error)
}

// Route registers one dispatch entry on a Router.
type Route func(*Router)

// NewRouter builds a Receiver that routes by message type name. Messages
// without a matching route hit the fallback, which defaults to an error.
func NewRouter(routes ...Route) *Router {
	r := &Router{
		routes: make(map[string]func(msg any, st any) (any, any, error)),
		fallback: func(msg any, st any) (any, any, error) {
			return st, nil, fmt.Errorf("no route for message type %s", reflector.TypeInfoOf(msg).Name)
		},
	}
	for _, route := range routes {
		route(r)
	}
	return r
}

func (r *Router) OnReceive(msg any, st any) (any, any, error) {
	h, ok := r.routes[reflector.TypeInfoOf(msg).Name]
	if !ok {
		return r.fallback(msg, st)
	}
	return h(msg, st)
}

// On registers a route for message type M.
func On[M any](fn func(msg M, st any) (any, any, error)) Route {
	name := reflector.TypeInfoFor[M]().Name
	return func(r *Router) {
		r.routes[name] = func(msg any, st any) (any, any, error) {
			m, ok := msg.(M)
			if !ok {
				return st, nil, fmt.Errorf("route %s: unexpected message %T", name, msg)
			}
			return fn(m, st)
		}
	}
}

// Fallback overrides the default unmatched-message behavior.
func Fallback(fn func(msg any, st any) (any, any, error)) Route {
	return func(r *Router) {
		r.fallback = fn
	}
}

var _ actor.Receiver = (*Router)(nil)
