package inference

import (
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/index"
	"github.com/crillab/gopherprove/order"
)

// Superposition rewrites with positive equalities under the ordering, in
// both directions: equations of the premise into active clauses (via the
// subterm index) and active equations into the premise (via the LHS
// index). Rewriting happens only at non-variable positions and requires
// the instantiated left side to be greater than the right side.
type Superposition struct {
	ctx     *Context
	subterm *index.TermIndex
	lhs     *index.TermIndex
}

// NewSuperposition creates the engine.
func NewSuperposition() *Superposition { return &Superposition{} }

// Attach acquires the subterm and LHS indexes.
func (sp *Superposition) Attach(ctx *Context) error {
	sub, err := ctx.Indexes.Request(index.SuperpositionSubterm)
	if err != nil {
		return err
	}
	lhs, err := ctx.Indexes.Request(index.SuperpositionLHS)
	if err != nil {
		ctx.Indexes.Release(index.SuperpositionSubterm)
		return err
	}
	sp.ctx = ctx
	sp.subterm = sub.(*index.TermIndex)
	sp.lhs = lhs.(*index.TermIndex)
	return nil
}

// Detach releases both indexes.
func (sp *Superposition) Detach() error {
	sp.subterm = nil
	sp.lhs = nil
	if err := sp.ctx.Indexes.Release(index.SuperpositionSubterm); err != nil {
		return err
	}
	return sp.ctx.Indexes.Release(index.SuperpositionLHS)
}

// Generate lazily produces all superposition conclusions involving the
// premise.
func (sp *Superposition) Generate(premise *fol.Clause) ClauseIterator {
	return &superpositionIter{sp: sp, premise: premise, selected: premise.SelectedLits()}
}

// superpositionIter runs two stages: the premise as equation (forward),
// then the premise as rewritten clause (backward). Each stage keeps its
// resumption state in plain fields.
type superpositionIter struct {
	sp       *Superposition
	premise  *fol.Clause
	selected []*fol.Literal

	stage   int // 0: premise equation into active; 1: active equations into premise
	litPos  int
	sidePos int
	subPos  []subtermRef
	subIdx  int
	inner   *index.Iter
	cur     *fol.Clause
}

type subtermRef struct {
	lit  *fol.Literal
	term *fol.Term
	pos  []int
}

func (it *superpositionIter) Next() bool {
	for {
		if it.inner != nil {
			for it.inner.Next() {
				m := it.inner.Match()
				var c *fol.Clause
				if it.stage == 0 {
					c = it.sp.forward(it.premise, it.selected[it.litPos], it.sidePos, m)
				} else {
					ref := it.subPos[it.subIdx]
					c = it.sp.backward(it.premise, ref, m)
				}
				if c != nil {
					it.cur = c
					return true
				}
			}
			it.inner = nil
			if it.stage == 0 {
				it.sidePos++
			} else {
				it.subIdx++
			}
		}
		if it.stage == 0 {
			if it.litPos >= len(it.selected) {
				it.stage = 1
				it.subPos = selectedSubterms(it.selected)
				it.subIdx = 0
				continue
			}
			sides := usableSides(it.sp.ctx.Ordering, it.selected[it.litPos])
			if it.sidePos >= len(sides) {
				it.litPos++
				it.sidePos = 0
				continue
			}
			it.inner = it.sp.subterm.Unifications(sides[it.sidePos])
			continue
		}
		if it.subIdx >= len(it.subPos) {
			return false
		}
		it.inner = it.sp.lhs.Unifications(it.subPos[it.subIdx].term)
	}
}

func (it *superpositionIter) Clause() *fol.Clause { return it.cur }
func (it *superpositionIter) Err() error          { return nil }

// usableSides lists the sides of a positive equality that may act as the
// rewriting left-hand side.
func usableSides(ord *order.KBO, l *fol.Literal) []*fol.Term {
	if !l.IsEquality() || !l.Positive() {
		return nil
	}
	s, t := l.Args()[0], l.Args()[1]
	switch ord.Compare(s, t) {
	case order.Greater:
		if s.IsVar() {
			return nil
		}
		return []*fol.Term{s}
	case order.Less:
		if t.IsVar() {
			return nil
		}
		return []*fol.Term{t}
	case order.Incomparable:
		out := make([]*fol.Term, 0, 2)
		if !s.IsVar() {
			out = append(out, s)
		}
		if !t.IsVar() {
			out = append(out, t)
		}
		return out
	default:
		return nil
	}
}

// selectedSubterms lists the non-variable subterms of the selected
// literals, the positions where active equations may rewrite the premise.
func selectedSubterms(lits []*fol.Literal) []subtermRef {
	var acc []subtermRef
	for _, l := range lits {
		for argIdx, arg := range l.Args() {
			argIdx := argIdx
			lit := l
			fol.VisitSubterms(arg, func(sub *fol.Term, pos []int) bool {
				if sub.IsVar() {
					return true
				}
				full := append([]int{argIdx}, pos...)
				acc = append(acc, subtermRef{lit: lit, term: sub, pos: full})
				return true
			})
		}
	}
	return acc
}

// otherSide returns the right-hand side matching the given left side of
// an equality literal.
func otherSide(l *fol.Literal, lhs *fol.Term) *fol.Term {
	if l.Args()[0] == lhs {
		return l.Args()[1]
	}
	return l.Args()[0]
}

// forward superposes the premise equation into the matched active clause
// subterm. The premise lives in the query bank, the victim in the index
// bank.
func (sp *Superposition) forward(premise *fol.Clause, eqLit *fol.Literal, sidePos int, m index.Match) *fol.Clause {
	sides := usableSides(sp.ctx.Ordering, eqLit)
	lhs := sides[sidePos]
	rhs := otherSide(eqLit, lhs)
	u := m.Subst

	// the instantiated equation must still be oriented
	if sp.ctx.Ordering.Compare(u.Apply(lhs, index.QueryBank), u.Apply(rhs, index.QueryBank)) != order.Greater {
		return nil
	}

	victim := m.Entry.Clause
	lits := make([]*fol.Literal, 0, premise.Len()+victim.Len()-1)
	lits = append(lits, sp.rewriteLit(u, m.Entry.Literal, index.IndexBank, m.Entry.Pos, rhs, index.QueryBank))
	for _, l := range victim.Lits {
		if l == m.Entry.Literal {
			continue
		}
		lits = append(lits, u.ApplyLit(l, index.IndexBank))
	}
	for _, l := range premise.Lits {
		if l == eqLit {
			continue
		}
		lits = append(lits, u.ApplyLit(l, index.QueryBank))
	}
	c := fol.NewClause(sp.ctx.Sharing, lits, fol.Inference{
		Rule:    fol.RuleSuperposition,
		Parents: []*fol.Clause{premise, victim},
	})
	c.SetSplitSet(childSplits(sp.ctx.Sharing, premise, victim))
	sp.ctx.Env.Statistics.ForwardSuperposition++
	return c
}

// backward superposes a matched active equation into the premise
// subterm. The premise lives in the query bank, the equation clause in
// the index bank.
func (sp *Superposition) backward(premise *fol.Clause, ref subtermRef, m index.Match) *fol.Clause {
	eqClause := m.Entry.Clause
	eqLit := m.Entry.Literal
	lhs := m.Entry.Term
	rhs := otherSide(eqLit, lhs)
	u := m.Subst

	if sp.ctx.Ordering.Compare(u.Apply(lhs, index.IndexBank), u.Apply(rhs, index.IndexBank)) != order.Greater {
		return nil
	}

	lits := make([]*fol.Literal, 0, premise.Len()+eqClause.Len()-1)
	lits = append(lits, sp.rewriteLit(u, ref.lit, index.QueryBank, ref.pos, rhs, index.IndexBank))
	for _, l := range premise.Lits {
		if l == ref.lit {
			continue
		}
		lits = append(lits, u.ApplyLit(l, index.QueryBank))
	}
	for _, l := range eqClause.Lits {
		if l == eqLit {
			continue
		}
		lits = append(lits, u.ApplyLit(l, index.IndexBank))
	}
	c := fol.NewClause(sp.ctx.Sharing, lits, fol.Inference{
		Rule:    fol.RuleSuperposition,
		Parents: []*fol.Clause{eqClause, premise},
	})
	c.SetSplitSet(childSplits(sp.ctx.Sharing, premise, eqClause))
	sp.ctx.Env.Statistics.BackwardSuperposition++
	return c
}

// rewriteLit applies the substitution to a literal while replacing the
// subterm at pos (in litBank) by the substituted repl (in replBank).
func (sp *Superposition) rewriteLit(u *index.Substitution, lit *fol.Literal, litBank int, pos []int, repl *fol.Term, replBank int) *fol.Literal {
	replApplied := u.Apply(repl, replBank)
	args := make([]*fol.Term, len(lit.Args()))
	for i, a := range lit.Args() {
		if i == pos[0] {
			args[i] = sp.rewriteTerm(u, a, litBank, pos[1:], replApplied)
		} else {
			args[i] = u.Apply(a, litBank)
		}
	}
	return sp.ctx.Sharing.Literal(lit.Pred(), lit.Positive(), args...)
}

func (sp *Superposition) rewriteTerm(u *index.Substitution, t *fol.Term, bank int, pos []int, replApplied *fol.Term) *fol.Term {
	if len(pos) == 0 {
		return replApplied
	}
	args := make([]*fol.Term, len(t.Args()))
	for i, a := range t.Args() {
		if i == pos[0] {
			args[i] = sp.rewriteTerm(u, a, bank, pos[1:], replApplied)
		} else {
			args[i] = u.Apply(a, bank)
		}
	}
	return sp.ctx.Sharing.App(t.Functor(), args...)
}
