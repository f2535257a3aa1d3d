package saturation

import "github.com/crillab/gopherprove/fol"

// Active is the live working set: a set with iteration order compatible
// with insertion.
type Active struct {
	events
	order   []*fol.Clause
	members map[*fol.Clause]bool
}

// NewActive creates an empty active set.
func NewActive() *Active {
	return &Active{members: make(map[*fol.Clause]bool)}
}

// Add inserts a clause into the active set.
func (a *Active) Add(c *fol.Clause) {
	if a.members[c] {
		return
	}
	c.IncRef()
	c.SetStore(fol.StoreActive)
	a.members[c] = true
	a.order = append(a.order, c)
	a.added.fire(c)
}

// Remove deletes a clause from the active set if present.
func (a *Active) Remove(c *fol.Clause) {
	if !a.members[c] {
		return
	}
	delete(a.members, c)
	for i, m := range a.order {
		if m == c {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	c.SetStore(fol.StoreNone)
	a.removed.fire(c)
	c.DecRef()
}

// Contains reports membership.
func (a *Active) Contains(c *fol.Clause) bool { return a.members[c] }

// Len returns the number of active clauses.
func (a *Active) Len() int { return len(a.order) }

// Each calls f on every active clause in insertion order, over a
// snapshot so that f may mutate the set.
func (a *Active) Each(f func(*fol.Clause)) {
	snapshot := make([]*fol.Clause, len(a.order))
	copy(snapshot, a.order)
	for _, c := range snapshot {
		if a.members[c] {
			f(c)
		}
	}
}
