package inference

import (
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/index"
	"github.com/crillab/gopherprove/order"
)

// ForwardDemodulation rewrites a clause with oriented unit equations
// from the active set.
type ForwardDemodulation struct {
	ctx *Context
	lhs *index.TermIndex
}

// NewForwardDemodulation creates the engine.
func NewForwardDemodulation() *ForwardDemodulation { return &ForwardDemodulation{} }

// Attach acquires the demodulation LHS index.
func (d *ForwardDemodulation) Attach(ctx *Context) error {
	ix, err := ctx.Indexes.Request(index.DemodulationLHS)
	if err != nil {
		return err
	}
	d.ctx = ctx
	d.lhs = ix.(*index.TermIndex)
	return nil
}

// Detach releases the index.
func (d *ForwardDemodulation) Detach() error {
	d.lhs = nil
	return d.ctx.Indexes.Release(index.DemodulationLHS)
}

// Simplify rewrites the first reducible subterm of c, if any.
func (d *ForwardDemodulation) Simplify(c *fol.Clause) (SimplifyResult, error) {
	for _, lit := range c.Lits {
		for argIdx, arg := range lit.Args() {
			var res *SimplifyResult
			argIdx := argIdx
			lit := lit
			fol.VisitSubterms(arg, func(sub *fol.Term, pos []int) bool {
				if sub.IsVar() {
					return true
				}
				it := d.lhs.Generalizations(sub)
				for it.Next() {
					m := it.Match()
					if m.Entry.Clause == c {
						continue
					}
					rhs := otherSide(m.Entry.Literal, m.Entry.Term)
					repl := m.Subst.ApplyRigid(rhs, index.IndexBank)
					if d.ctx.Ordering.Compare(sub, repl) != order.Greater {
						continue
					}
					full := append([]int{argIdx}, pos...)
					lits := make([]*fol.Literal, 0, c.Len())
					for _, l := range c.Lits {
						if l == lit {
							lits = append(lits, fol.ReplaceInLiteral(d.ctx.Sharing, l, full, repl))
						} else {
							lits = append(lits, l)
						}
					}
					nc := fol.NewClause(d.ctx.Sharing, lits, fol.Inference{
						Rule:    fol.RuleDemodulation,
						Parents: []*fol.Clause{c, m.Entry.Clause},
					})
					nc.SetSplitSet(childSplits(d.ctx.Sharing, c, m.Entry.Clause))
					d.ctx.Env.Statistics.ForwardDemodulations++
					res = &SimplifyResult{
						Kind:        Replace,
						Replacement: nc,
						Premises:    []*fol.Clause{m.Entry.Clause},
					}
					return false
				}
				return true
			})
			if res != nil {
				return *res, nil
			}
		}
	}
	return SimplifyResult{Kind: Keep}, nil
}

// BackwardDemodulation rewrites active clauses with a newly activated
// oriented unit equation.
type BackwardDemodulation struct {
	ctx     *Context
	subterm *index.TermIndex
}

// NewBackwardDemodulation creates the engine.
func NewBackwardDemodulation() *BackwardDemodulation { return &BackwardDemodulation{} }

// Attach acquires the demodulation subterm index.
func (d *BackwardDemodulation) Attach(ctx *Context) error {
	ix, err := ctx.Indexes.Request(index.DemodulationSubterm)
	if err != nil {
		return err
	}
	d.ctx = ctx
	d.subterm = ix.(*index.TermIndex)
	return nil
}

// Detach releases the index.
func (d *BackwardDemodulation) Detach() error {
	d.subterm = nil
	return d.ctx.Indexes.Release(index.DemodulationSubterm)
}

// Perform finds active clauses reducible by the premise when it is an
// oriented unit equation.
func (d *BackwardDemodulation) Perform(premise *fol.Clause) ([]BackwardResult, error) {
	if premise.Len() != 1 || !premise.Lits[0].IsEquality() || !premise.Lits[0].Positive() {
		return nil, nil
	}
	eq := premise.Lits[0]
	s, t := eq.Args()[0], eq.Args()[1]
	var lhs, rhs *fol.Term
	switch d.ctx.Ordering.Compare(s, t) {
	case order.Greater:
		lhs, rhs = s, t
	case order.Less:
		lhs, rhs = t, s
	default:
		return nil, nil
	}
	if lhs.IsVar() {
		return nil, nil
	}

	var out []BackwardResult
	seen := make(map[*fol.Clause]bool)
	it := d.subterm.Instances(lhs)
	for it.Next() {
		m := it.Match()
		victim := m.Entry.Clause
		if victim == premise || seen[victim] {
			continue
		}
		repl := m.Subst.ApplyRigid(rhs, index.QueryBank)
		if d.ctx.Ordering.Compare(m.Entry.Term, repl) != order.Greater {
			continue
		}
		seen[victim] = true
		lits := make([]*fol.Literal, 0, victim.Len())
		for _, l := range victim.Lits {
			if l == m.Entry.Literal {
				lits = append(lits, fol.ReplaceInLiteral(d.ctx.Sharing, l, m.Entry.Pos, repl))
			} else {
				lits = append(lits, l)
			}
		}
		nc := fol.NewClause(d.ctx.Sharing, lits, fol.Inference{
			Rule:    fol.RuleDemodulation,
			Parents: []*fol.Clause{victim, premise},
		})
		nc.SetSplitSet(childSplits(d.ctx.Sharing, victim, premise))
		d.ctx.Env.Statistics.BackwardDemodulations++
		out = append(out, BackwardResult{Victim: victim, Replacement: nc})
	}
	return out, nil
}
