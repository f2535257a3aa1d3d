package index

import (
	"github.com/pkg/errors"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/order"
)

// IndexType names the purpose of a shared index.
type IndexType byte

const (
	// GeneratingLiteral indexes the selected literals of the generation
	// stream, for resolution and factoring partners.
	GeneratingLiteral = IndexType(iota)
	// SimplifyingLiteral indexes every literal of the simplification
	// stream, for backward subsumption candidates.
	SimplifyingLiteral
	// SimplifyingAtomicClause indexes the literals of unit clauses of the
	// simplification stream, for forward unit subsumption.
	SimplifyingAtomicClause
	// SuperpositionSubterm indexes non-variable subterms of selected
	// literals of the generation stream.
	SuperpositionSubterm
	// SuperpositionLHS indexes usable equation sides of selected positive
	// equalities of the generation stream.
	SuperpositionLHS
	// DemodulationSubterm indexes non-variable subterms of every literal
	// of the simplification stream.
	DemodulationSubterm
	// DemodulationLHS indexes oriented unit equation sides of the
	// simplification stream.
	DemodulationLHS
)

func (t IndexType) String() string {
	switch t {
	case GeneratingLiteral:
		return "GENERATING_LITERAL"
	case SimplifyingLiteral:
		return "SIMPLIFYING_LITERAL"
	case SimplifyingAtomicClause:
		return "SIMPLIFYING_ATOMIC_CLAUSE"
	case SuperpositionSubterm:
		return "SUPERPOSITION_SUBTERM"
	case SuperpositionLHS:
		return "SUPERPOSITION_LHS"
	case DemodulationSubterm:
		return "DEMODULATION_SUBTERM"
	case DemodulationLHS:
		return "DEMODULATION_LHS"
	default:
		return "UNKNOWN"
	}
}

type managerEntry struct {
	index  Index
	refCnt int
}

// Manager is a typed reference-counted cache of indexes. Each index is
// created on first request, attached to the clause stream its type calls
// for, and destroyed when the last client releases it.
type Manager struct {
	sharing    *fol.Sharing
	ordering   *order.KBO
	genStream  ClauseStream
	simpStream ClauseStream
	store      map[IndexType]*managerEntry
}

// NewManager creates a manager wiring indexes to the generation and
// simplification clause streams.
func NewManager(s *fol.Sharing, ord *order.KBO, gen, simp ClauseStream) *Manager {
	return &Manager{
		sharing:    s,
		ordering:   ord,
		genStream:  gen,
		simpStream: simp,
		store:      make(map[IndexType]*managerEntry),
	}
}

// Request returns the shared index of type t, creating and attaching it
// on first request.
func (m *Manager) Request(t IndexType) (Index, error) {
	if e, ok := m.store[t]; ok {
		e.refCnt++
		return e.index, nil
	}
	ix, err := m.create(t)
	if err != nil {
		return nil, err
	}
	m.store[t] = &managerEntry{index: ix, refCnt: 1}
	return ix, nil
}

// Release decrements the reference count of t; at zero the index is
// detached and dropped.
func (m *Manager) Release(t IndexType) error {
	e, ok := m.store[t]
	if !ok {
		return errors.Wrapf(env.ErrInvalidOperation, "release of unrequested index %v", t)
	}
	e.refCnt--
	if e.refCnt == 0 {
		e.index.Detach()
		delete(m.store, t)
	}
	return nil
}

// Contains reports whether an index of type t is live.
func (m *Manager) Contains(t IndexType) bool {
	_, ok := m.store[t]
	return ok
}

func (m *Manager) create(t IndexType) (Index, error) {
	switch t {
	case GeneratingLiteral:
		ix := newLiteralIndex(m.sharing, func(c *fol.Clause) []*fol.Literal {
			return c.SelectedLits()
		})
		ix.Attach(m.genStream)
		return ix, nil
	case SimplifyingLiteral:
		ix := newLiteralIndex(m.sharing, func(c *fol.Clause) []*fol.Literal {
			return c.Lits
		})
		ix.Attach(m.simpStream)
		return ix, nil
	case SimplifyingAtomicClause:
		ix := newLiteralIndex(m.sharing, func(c *fol.Clause) []*fol.Literal {
			if c.Len() != 1 {
				return nil
			}
			return c.Lits
		})
		ix.Attach(m.simpStream)
		return ix, nil
	case SuperpositionSubterm:
		ix := newTermIndex(m.sharing, func(c *fol.Clause) []Entry {
			return nonVarSubterms(c, c.SelectedLits())
		})
		ix.Attach(m.genStream)
		return ix, nil
	case SuperpositionLHS:
		ord := m.ordering
		ix := newTermIndex(m.sharing, func(c *fol.Clause) []Entry {
			var acc []Entry
			for _, l := range c.SelectedLits() {
				for _, side := range equationSides(ord, l, false) {
					acc = append(acc, Entry{Clause: c, Literal: l, Term: side})
				}
			}
			return acc
		})
		ix.Attach(m.genStream)
		return ix, nil
	case DemodulationSubterm:
		ix := newTermIndex(m.sharing, func(c *fol.Clause) []Entry {
			return nonVarSubterms(c, c.Lits)
		})
		ix.Attach(m.simpStream)
		return ix, nil
	case DemodulationLHS:
		ord := m.ordering
		ix := newTermIndex(m.sharing, func(c *fol.Clause) []Entry {
			if c.Len() != 1 {
				return nil
			}
			var acc []Entry
			for _, side := range equationSides(ord, c.Lits[0], true) {
				acc = append(acc, Entry{Clause: c, Literal: c.Lits[0], Term: side})
			}
			return acc
		})
		ix.Attach(m.simpStream)
		return ix, nil
	default:
		return nil, errors.Wrapf(env.ErrInvalidOperation, "unsupported index type %d", t)
	}
}
