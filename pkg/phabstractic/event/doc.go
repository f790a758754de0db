// Package event routes events through filters to prioritized handlers.
//
// # Overview
//
// An Event records a state change: where it came from (target, function,
// class, namespace), how it is classified (tags, categories) and what it
// carries (data). Events flow through these receivers, all of which
// implement observer.Observer so they compose freely:
//
//   - Handler: invokes one callable with the event
//   - HandlerPriorityQueue: runs observers in ascending priority order
//   - Actor: one Filter guarding one handler
//   - Conduit: many Filters, each with its own queue, fanned out
//   - Aggregator: many publishers funneled through a head Filter to many observers
//
// # Filters
//
// A Filter matches an event against an event-shaped pattern, loosely (any
// field matches) or strictly (every field matches), or delegates to a
// Predicate:
//
//	urgent := event.NewFilter(event.PatternTags("urgent"))
//	orders := event.NewFilter(event.PatternClass("Order"), event.PatternTags("paid"), event.Strict())
//	custom := event.NewFilter(event.WithPredicate(event.And(event.ByNamespace("billing"), event.ByTag("retry"))))
//
// # Stopping propagation
//
// A handler may call Stop on the event. Queues check the event before every
// handler and skip the rest once it is stopped, unless it was made
// unstoppable with Force:
//
//	q := event.NewHandlerPriorityQueue()
//	q.Insert(validate, 1)  // runs first
//	q.Insert(persist, 5)
//	q.Insert(notify, 10)   // skipped if validate or persist calls Stop
//
// # Dispatch model
//
// Dispatch is synchronous: NotifyObserver returns once every matching queue
// has run. An *Event is shared by every handler it passes through and is
// not safe for concurrent mutation. Registration sets are safe for
// concurrent use and may change during dispatch.
package event
