// Package saturation implements the clause containers, the given-clause
// main loop, and the AVATAR splitter with its SAT-driven branch selector.
package saturation

import "github.com/crillab/gopherprove/fol"

// clauseEvent is a subscribable add/remove notification list. Handlers
// fire synchronously in subscription order.
type clauseEvent struct {
	handlers []eventHandler
	nextID   int
}

type eventHandler struct {
	id int
	f  func(*fol.Clause)
}

func (e *clauseEvent) subscribe(f func(*fol.Clause)) int {
	id := e.nextID
	e.nextID++
	e.handlers = append(e.handlers, eventHandler{id, f})
	return id
}

func (e *clauseEvent) unsubscribe(id int) {
	for i, h := range e.handlers {
		if h.id == id {
			e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
			return
		}
	}
}

func (e *clauseEvent) fire(c *fol.Clause) {
	for _, h := range e.handlers {
		h.f(c)
	}
}

// events implements the index.ClauseStream surface shared by all
// containers.
type events struct {
	added   clauseEvent
	removed clauseEvent
}

// SubscribeAdded registers a handler for clause additions.
func (e *events) SubscribeAdded(f func(*fol.Clause)) int { return e.added.subscribe(f) }

// UnsubscribeAdded removes an addition handler.
func (e *events) UnsubscribeAdded(id int) { e.added.unsubscribe(id) }

// SubscribeRemoved registers a handler for clause removals.
func (e *events) SubscribeRemoved(f func(*fol.Clause)) int { return e.removed.subscribe(f) }

// UnsubscribeRemoved removes a removal handler.
func (e *events) UnsubscribeRemoved(id int) { e.removed.unsubscribe(id) }

// Unprocessed is the FIFO of freshly generated clauses awaiting forward
// simplification.
type Unprocessed struct {
	events
	queue []*fol.Clause
}

// NewUnprocessed creates an empty FIFO.
func NewUnprocessed() *Unprocessed { return &Unprocessed{} }

// Add enqueues a clause.
func (u *Unprocessed) Add(c *fol.Clause) {
	c.IncRef()
	c.SetStore(fol.StoreUnprocessed)
	u.queue = append(u.queue, c)
	u.added.fire(c)
}

// Pop dequeues the oldest clause, or nil when empty.
func (u *Unprocessed) Pop() *fol.Clause {
	if len(u.queue) == 0 {
		return nil
	}
	c := u.queue[0]
	u.queue = u.queue[1:]
	c.SetStore(fol.StoreNone)
	u.removed.fire(c)
	c.DecRef()
	return c
}

// Remove deletes a clause wherever it sits in the FIFO.
func (u *Unprocessed) Remove(c *fol.Clause) {
	for i, q := range u.queue {
		if q == c {
			u.queue = append(u.queue[:i], u.queue[i+1:]...)
			c.SetStore(fol.StoreNone)
			u.removed.fire(c)
			c.DecRef()
			return
		}
	}
}

// Empty reports whether the FIFO holds no clause.
func (u *Unprocessed) Empty() bool { return len(u.queue) == 0 }

// Len returns the number of queued clauses.
func (u *Unprocessed) Len() int { return len(u.queue) }
