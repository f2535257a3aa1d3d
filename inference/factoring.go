package inference

import (
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/index"
)

// Factoring unifies two selected literals of the same polarity, keeping
// one of them.
type Factoring struct {
	ctx *Context
}

// NewFactoring creates the engine.
func NewFactoring() *Factoring { return &Factoring{} }

// Attach stores the context; factoring needs no index.
func (f *Factoring) Attach(ctx *Context) error {
	f.ctx = ctx
	return nil
}

// Detach is a no-op.
func (f *Factoring) Detach() error { return nil }

// Generate produces the factors of the premise.
func (f *Factoring) Generate(premise *fol.Clause) ClauseIterator {
	sel := premise.SelectedLits()
	var out []*fol.Clause
	for i := 0; i < len(sel); i++ {
		for j := i + 1; j < len(sel); j++ {
			u := unifySameClause(f.ctx.Sharing, sel[i], sel[j])
			if u == nil {
				continue
			}
			lits := make([]*fol.Literal, 0, premise.Len()-1)
			for _, l := range premise.Lits {
				if l == sel[j] {
					continue
				}
				lits = append(lits, u.ApplyLit(l, index.QueryBank))
			}
			c := fol.NewClause(f.ctx.Sharing, lits, fol.Inference{
				Rule:    fol.RuleFactoring,
				Parents: []*fol.Clause{premise},
			})
			c.SetSplitSet(childSplits(f.ctx.Sharing, premise))
			f.ctx.Env.Statistics.Factoring++
			out = append(out, c)
		}
	}
	return &sliceIter{clauses: out}
}

// unifySameClause unifies two literals of one clause (both in the query
// bank), trying both argument orders for equalities.
func unifySameClause(s *fol.Sharing, l1, l2 *fol.Literal) *index.Substitution {
	if l1.Positive() != l2.Positive() || l1.Pred() != l2.Pred() || l1 == l2 {
		return nil
	}
	u := index.NewSubstitution(s)
	if u.UnifyLiterals(l1, index.QueryBank, l2, index.QueryBank) {
		return u
	}
	if l1.IsEquality() {
		u = index.NewSubstitution(s)
		if u.Unify(l1.Args()[0], index.QueryBank, l2.Args()[1], index.QueryBank) &&
			u.Unify(l1.Args()[1], index.QueryBank, l2.Args()[0], index.QueryBank) {
			return u
		}
	}
	return nil
}

// EqualityResolution resolves a selected negative equality s != t whose
// sides unify.
type EqualityResolution struct {
	ctx *Context
}

// NewEqualityResolution creates the engine.
func NewEqualityResolution() *EqualityResolution { return &EqualityResolution{} }

// Attach stores the context; no index is needed.
func (e *EqualityResolution) Attach(ctx *Context) error {
	e.ctx = ctx
	return nil
}

// Detach is a no-op.
func (e *EqualityResolution) Detach() error { return nil }

// Generate produces the equality resolvents of the premise.
func (e *EqualityResolution) Generate(premise *fol.Clause) ClauseIterator {
	var out []*fol.Clause
	for _, sel := range premise.SelectedLits() {
		if !sel.IsEquality() || sel.Positive() {
			continue
		}
		u := index.NewSubstitution(e.ctx.Sharing)
		if !u.Unify(sel.Args()[0], index.QueryBank, sel.Args()[1], index.QueryBank) {
			continue
		}
		lits := make([]*fol.Literal, 0, premise.Len()-1)
		for _, l := range premise.Lits {
			if l == sel {
				continue
			}
			lits = append(lits, u.ApplyLit(l, index.QueryBank))
		}
		c := fol.NewClause(e.ctx.Sharing, lits, fol.Inference{
			Rule:    fol.RuleEqualityResolution,
			Parents: []*fol.Clause{premise},
		})
		c.SetSplitSet(childSplits(e.ctx.Sharing, premise))
		e.ctx.Env.Statistics.EqualityResolution++
		out = append(out, c)
	}
	return &sliceIter{clauses: out}
}
