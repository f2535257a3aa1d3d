package index

import (
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/order"
)

// ClauseStream is the event surface of a clause container. Indexes
// subscribe so that every clause entering or leaving the stream updates
// the retrieval keys it contributed.
type ClauseStream interface {
	SubscribeAdded(func(*fol.Clause)) int
	UnsubscribeAdded(int)
	SubscribeRemoved(func(*fol.Clause)) int
	UnsubscribeRemoved(int)
}

// Index is the common lifecycle of all typed indexes.
type Index interface {
	Attach(ClauseStream)
	Detach()
}

type attachment struct {
	stream    ClauseStream
	addedID   int
	removedID int
}

func (a *attachment) attach(stream ClauseStream, handle func(*fol.Clause, bool)) {
	a.stream = stream
	a.addedID = stream.SubscribeAdded(func(c *fol.Clause) { handle(c, true) })
	a.removedID = stream.SubscribeRemoved(func(c *fol.Clause) { handle(c, false) })
}

func (a *attachment) detach() {
	if a.stream == nil {
		return
	}
	a.stream.UnsubscribeAdded(a.addedID)
	a.stream.UnsubscribeRemoved(a.removedID)
	a.stream = nil
}

// LiteralIndex stores (clause, literal) bindings for the literals chosen
// by its selection policy.
type LiteralIndex struct {
	sharing *fol.Sharing
	tree    *SubstTree
	pick    func(*fol.Clause) []*fol.Literal
	attachment
}

func newLiteralIndex(s *fol.Sharing, pick func(*fol.Clause) []*fol.Literal) *LiteralIndex {
	return &LiteralIndex{sharing: s, tree: NewSubstTree(), pick: pick}
}

// Attach subscribes the index to a clause stream.
func (ix *LiteralIndex) Attach(stream ClauseStream) {
	ix.attachment.attach(stream, ix.handleClause)
}

// Detach unsubscribes the index.
func (ix *LiteralIndex) Detach() { ix.attachment.detach() }

func (ix *LiteralIndex) handleClause(c *fol.Clause, adding bool) {
	for _, l := range ix.pick(c) {
		e := Entry{Clause: c, Literal: l}
		if adding {
			ix.tree.InsertLiteral(l, e)
		} else {
			ix.tree.RemoveLiteral(l, e)
		}
	}
}

// Size returns the number of stored bindings.
func (ix *LiteralIndex) Size() int { return ix.tree.Size() }

// Unifications iterates over stored literals unifiable with l.
func (ix *LiteralIndex) Unifications(l *fol.Literal) *Iter {
	return ix.tree.RetrieveLiteral(ix.sharing, retrUnify, l)
}

// Generalizations iterates over stored literals of which l is an
// instance.
func (ix *LiteralIndex) Generalizations(l *fol.Literal) *Iter {
	return ix.tree.RetrieveLiteral(ix.sharing, retrGeneralizations, l)
}

// Instances iterates over stored literals that are instances of l.
func (ix *LiteralIndex) Instances(l *fol.Literal) *Iter {
	return ix.tree.RetrieveLiteral(ix.sharing, retrInstances, l)
}

// TermIndex stores (clause, literal, position) bindings keyed by terms.
type TermIndex struct {
	sharing *fol.Sharing
	tree    *SubstTree
	extract func(*fol.Clause) []Entry
	attachment
}

func newTermIndex(s *fol.Sharing, extract func(*fol.Clause) []Entry) *TermIndex {
	return &TermIndex{sharing: s, tree: NewSubstTree(), extract: extract}
}

// Attach subscribes the index to a clause stream.
func (ix *TermIndex) Attach(stream ClauseStream) {
	ix.attachment.attach(stream, ix.handleClause)
}

// Detach unsubscribes the index.
func (ix *TermIndex) Detach() { ix.attachment.detach() }

func (ix *TermIndex) handleClause(c *fol.Clause, adding bool) {
	for _, e := range ix.extract(c) {
		if adding {
			ix.tree.InsertTerm(e.Term, e)
		} else {
			ix.tree.RemoveTerm(e.Term, e)
		}
	}
}

// Size returns the number of stored bindings.
func (ix *TermIndex) Size() int { return ix.tree.Size() }

// Unifications iterates over stored terms unifiable with t.
func (ix *TermIndex) Unifications(t *fol.Term) *Iter {
	return ix.tree.RetrieveTerm(ix.sharing, retrUnify, t)
}

// Generalizations iterates over stored terms of which t is an instance.
func (ix *TermIndex) Generalizations(t *fol.Term) *Iter {
	return ix.tree.RetrieveTerm(ix.sharing, retrGeneralizations, t)
}

// Instances iterates over stored terms that are instances of t.
func (ix *TermIndex) Instances(t *fol.Term) *Iter {
	return ix.tree.RetrieveTerm(ix.sharing, retrInstances, t)
}

// nonVarSubterms collects every non-variable subterm entry of the picked
// literals of c.
func nonVarSubterms(c *fol.Clause, lits []*fol.Literal) []Entry {
	var acc []Entry
	for _, l := range lits {
		for argIdx, arg := range l.Args() {
			argIdx := argIdx
			fol.VisitSubterms(arg, func(sub *fol.Term, pos []int) bool {
				if sub.IsVar() {
					return true
				}
				full := append([]int{argIdx}, pos...)
				acc = append(acc, Entry{Clause: c, Literal: l, Term: sub, Pos: full})
				return true
			})
		}
	}
	return acc
}

// equationSides returns the indexable left-hand sides of a positive
// equality literal: each side not smaller than the other, skipping
// variables. When oriented is true only the strictly greater side
// qualifies.
func equationSides(ord *order.KBO, l *fol.Literal, oriented bool) []*fol.Term {
	if !l.IsEquality() || !l.Positive() {
		return nil
	}
	s, t := l.Args()[0], l.Args()[1]
	cmp := ord.Compare(s, t)
	var sides []*fol.Term
	switch cmp {
	case order.Greater:
		sides = []*fol.Term{s}
	case order.Less:
		sides = []*fol.Term{t}
	case order.Incomparable:
		if !oriented {
			sides = []*fol.Term{s, t}
		}
	}
	out := sides[:0]
	for _, side := range sides {
		if !side.IsVar() {
			out = append(out, side)
		}
	}
	return out
}
