package inference

import (
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/index"
)

// BinaryResolution resolves a selected literal of the premise against a
// complementary selected literal of an active clause.
type BinaryResolution struct {
	ctx *Context
	idx *index.LiteralIndex
}

// NewBinaryResolution creates the engine.
func NewBinaryResolution() *BinaryResolution { return &BinaryResolution{} }

// Attach acquires the generating literal index.
func (r *BinaryResolution) Attach(ctx *Context) error {
	ix, err := ctx.Indexes.Request(index.GeneratingLiteral)
	if err != nil {
		return err
	}
	r.ctx = ctx
	r.idx = ix.(*index.LiteralIndex)
	return nil
}

// Detach releases the index.
func (r *BinaryResolution) Detach() error {
	r.idx = nil
	return r.ctx.Indexes.Release(index.GeneratingLiteral)
}

// Generate lazily produces all resolvents of the premise with the active
// set.
func (r *BinaryResolution) Generate(premise *fol.Clause) ClauseIterator {
	return &resolutionIter{r: r, premise: premise, selected: premise.SelectedLits()}
}

// resolutionIter walks the selected literals; for each it drains the
// index iterator over unifiable complements.
type resolutionIter struct {
	r        *BinaryResolution
	premise  *fol.Clause
	selected []*fol.Literal
	litPos   int
	inner    *index.Iter
	cur      *fol.Clause
}

func (it *resolutionIter) Next() bool {
	for {
		if it.inner == nil {
			if it.litPos >= len(it.selected) {
				return false
			}
			query := it.r.ctx.Sharing.Complement(it.selected[it.litPos])
			it.inner = it.r.idx.Unifications(query)
		}
		for it.inner.Next() {
			m := it.inner.Match()
			if c := it.r.resolvent(it.premise, it.selected[it.litPos], m); c != nil {
				it.cur = c
				return true
			}
		}
		it.inner = nil
		it.litPos++
	}
}

func (it *resolutionIter) Clause() *fol.Clause { return it.cur }
func (it *resolutionIter) Err() error          { return nil }

// resolvent builds the conclusion clause for one match.
func (r *BinaryResolution) resolvent(premise *fol.Clause, resolved *fol.Literal, m index.Match) *fol.Clause {
	other := m.Entry.Clause
	u := m.Subst
	lits := make([]*fol.Literal, 0, premise.Len()+other.Len()-2)
	for _, l := range premise.Lits {
		if l == resolved {
			continue
		}
		lits = append(lits, u.ApplyLit(l, index.QueryBank))
	}
	for _, l := range other.Lits {
		if l == m.Entry.Literal {
			continue
		}
		lits = append(lits, u.ApplyLit(l, index.IndexBank))
	}
	c := fol.NewClause(r.ctx.Sharing, lits, fol.Inference{
		Rule:    fol.RuleResolution,
		Parents: []*fol.Clause{premise, other},
	})
	c.SetSplitSet(childSplits(r.ctx.Sharing, premise, other))
	r.ctx.Env.Statistics.Resolution++
	return c
}
