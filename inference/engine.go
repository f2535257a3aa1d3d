// Package inference implements the literal selectors and the generating
// and simplifying inference engines of the saturation loop. Engines are
// small capability sets: every engine attaches to the running algorithm
// (acquiring the indexes it needs) and detaches at teardown; generating
// engines produce lazy clause sequences, simplifying engines rewrite or
// delete single clauses.
package inference

import (
	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/index"
	"github.com/crillab/gopherprove/order"
)

// Context is what an engine sees of the saturation algorithm.
type Context struct {
	Env      *env.Env
	Sharing  *fol.Sharing
	Ordering *order.KBO
	Indexes  *index.Manager
}

// Engine is the shared attach/detach lifecycle. Attach acquires indexes
// through the manager; Detach must release every acquired index on all
// paths.
type Engine interface {
	Attach(*Context) error
	Detach() error
}

// ClauseIterator is a pull-based sequence of derived clauses. Each stage
// stores its resumption state explicitly; Err reports a budget error that
// interrupted production.
type ClauseIterator interface {
	Next() bool
	Clause() *fol.Clause
	Err() error
}

// Generating engines derive new clauses from a premise with already
// selected literals.
type Generating interface {
	Engine
	Generate(premise *fol.Clause) ClauseIterator
}

// SimplifyKind says what a forward simplification decided.
type SimplifyKind byte

const (
	// Keep means the clause passed unchanged.
	Keep = SimplifyKind(iota)
	// Replace means the clause is superseded by Replacement.
	Replace
	// Delete means the clause is redundant and must be dropped.
	Delete
)

// SimplifyResult reports a forward simplification together with the
// premises used, for proof recording.
type SimplifyResult struct {
	Kind        SimplifyKind
	Replacement *fol.Clause
	Premises    []*fol.Clause
}

// ForwardSimplifier engines reduce a clause against the active set.
type ForwardSimplifier interface {
	Engine
	Simplify(c *fol.Clause) (SimplifyResult, error)
}

// BackwardResult is one victim of a backward simplification; a nil
// Replacement means plain deletion.
type BackwardResult struct {
	Victim      *fol.Clause
	Replacement *fol.Clause
}

// BackwardSimplifier engines reduce the active set against a newly
// activated premise.
type BackwardSimplifier interface {
	Engine
	Perform(premise *fol.Clause) ([]BackwardResult, error)
}

// sliceIter adapts an eagerly computed clause slice to ClauseIterator.
type sliceIter struct {
	clauses []*fol.Clause
	pos     int
	err     error
}

func (it *sliceIter) Next() bool {
	if it.err != nil || it.pos >= len(it.clauses) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIter) Clause() *fol.Clause { return it.clauses[it.pos-1] }
func (it *sliceIter) Err() error          { return it.err }

// childSplits is the split set a derived clause inherits: the union of
// its parents' split sets.
func childSplits(s *fol.Sharing, parents ...*fol.Clause) *fol.SplitSet {
	ss := s.EmptySplitSet()
	for _, p := range parents {
		ss = s.SplitUnion(ss, p.SplitSet())
	}
	return ss
}
