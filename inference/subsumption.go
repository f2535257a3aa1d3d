package inference

import (
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/index"
)

// subsumes reports whether subsumer σ-subsumes subsumee: some
// substitution maps the subsumer's literals injectively onto literals of
// the subsumee.
func subsumes(s *fol.Sharing, subsumer, subsumee *fol.Clause) bool {
	if subsumer.Len() > subsumee.Len() {
		return false
	}
	used := make([]bool, subsumee.Len())
	return matchRest(s, subsumer.Lits, subsumee.Lits, used, index.NewSubstitution(s))
}

// matchRest extends u so that every remaining subsumer literal matches a
// distinct unused subsumee literal, backtracking over choices.
func matchRest(s *fol.Sharing, rest []*fol.Literal, target []*fol.Literal, used []bool, u *index.Substitution) bool {
	if len(rest) == 0 {
		return true
	}
	pat := rest[0]
	for i, cand := range target {
		if used[i] {
			continue
		}
		trial := u.Clone()
		if !tryMatchLits(trial, pat, cand) {
			continue
		}
		used[i] = true
		if matchRest(s, rest[1:], target, used, trial) {
			// propagate the successful bindings
			*u = *trial
			return true
		}
		used[i] = false
	}
	return false
}

// tryMatchLits matches pattern against cand (both orders for equality).
func tryMatchLits(u *index.Substitution, pattern, cand *fol.Literal) bool {
	if pattern.Positive() != cand.Positive() || pattern.Pred() != cand.Pred() {
		return false
	}
	saved := u.Clone()
	if u.MatchLiterals(pattern, index.QueryBank, cand, index.IndexBank) {
		return true
	}
	*u = *saved
	if pattern.IsEquality() {
		if u.Match(pattern.Args()[0], index.QueryBank, cand.Args()[1], index.IndexBank) &&
			u.Match(pattern.Args()[1], index.QueryBank, cand.Args()[0], index.IndexBank) {
			return true
		}
		*u = *saved
	}
	return false
}

// resolvedLiteral finds a literal of the subsumee that can be removed by
// subsumption resolution with the subsumer: one subsumer literal matches
// its complement and the rest match into the remaining literals.
func resolvedLiteral(s *fol.Sharing, subsumer, subsumee *fol.Clause) *fol.Literal {
	if subsumer.Len() > subsumee.Len() {
		return nil
	}
	for mi, m := range subsumer.Lits {
		for di, dl := range subsumee.Lits {
			u := index.NewSubstitution(s)
			if !tryMatchLits(u, m, s.Complement(dl)) {
				continue
			}
			rest := make([]*fol.Literal, 0, subsumer.Len()-1)
			rest = append(rest, subsumer.Lits[:mi]...)
			rest = append(rest, subsumer.Lits[mi+1:]...)
			used := make([]bool, subsumee.Len())
			used[di] = true
			if matchRest(s, rest, subsumee.Lits, used, u) {
				return dl
			}
		}
	}
	return nil
}

// ForwardSubsumption deletes clauses subsumed by an active clause and
// applies forward subsumption resolution.
type ForwardSubsumption struct {
	ctx    *Context
	lits   *index.LiteralIndex
	atomic *index.LiteralIndex
}

// NewForwardSubsumption creates the engine.
func NewForwardSubsumption() *ForwardSubsumption { return &ForwardSubsumption{} }

// Attach acquires the simplifying literal indexes.
func (f *ForwardSubsumption) Attach(ctx *Context) error {
	lits, err := ctx.Indexes.Request(index.SimplifyingLiteral)
	if err != nil {
		return err
	}
	atomic, err := ctx.Indexes.Request(index.SimplifyingAtomicClause)
	if err != nil {
		ctx.Indexes.Release(index.SimplifyingLiteral)
		return err
	}
	f.ctx = ctx
	f.lits = lits.(*index.LiteralIndex)
	f.atomic = atomic.(*index.LiteralIndex)
	return nil
}

// Detach releases both indexes.
func (f *ForwardSubsumption) Detach() error {
	f.lits = nil
	f.atomic = nil
	if err := f.ctx.Indexes.Release(index.SimplifyingLiteral); err != nil {
		return err
	}
	return f.ctx.Indexes.Release(index.SimplifyingAtomicClause)
}

// Simplify checks c against active subsumers; subsumption deletes c,
// subsumption resolution shortens it.
func (f *ForwardSubsumption) Simplify(c *fol.Clause) (SimplifyResult, error) {
	// unit subsumers first, they are cheap and frequent
	for _, l := range c.Lits {
		it := f.atomic.Generalizations(l)
		for it.Next() {
			subsumer := it.Match().Entry.Clause
			if subsumer != c {
				f.ctx.Env.Statistics.ForwardSubsumed++
				return SimplifyResult{Kind: Delete, Premises: []*fol.Clause{subsumer}}, nil
			}
		}
	}

	tried := make(map[*fol.Clause]bool)
	for _, l := range c.Lits {
		it := f.lits.Generalizations(l)
		for it.Next() {
			subsumer := it.Match().Entry.Clause
			if subsumer == c || tried[subsumer] {
				continue
			}
			tried[subsumer] = true
			if subsumer.Len() <= c.Len() && subsumes(f.ctx.Sharing, subsumer, c) {
				f.ctx.Env.Statistics.ForwardSubsumed++
				return SimplifyResult{Kind: Delete, Premises: []*fol.Clause{subsumer}}, nil
			}
		}
	}

	// subsumption resolution: look for subsumers reaching c through one
	// complementary literal
	tried = make(map[*fol.Clause]bool)
	for _, l := range c.Lits {
		it := f.lits.Generalizations(f.ctx.Sharing.Complement(l))
		for it.Next() {
			subsumer := it.Match().Entry.Clause
			if subsumer == c || tried[subsumer] {
				continue
			}
			tried[subsumer] = true
			dl := resolvedLiteral(f.ctx.Sharing, subsumer, c)
			if dl == nil {
				continue
			}
			lits := make([]*fol.Literal, 0, c.Len()-1)
			for _, cl := range c.Lits {
				if cl != dl {
					lits = append(lits, cl)
				}
			}
			nc := fol.NewClause(f.ctx.Sharing, lits, fol.Inference{
				Rule:    fol.RuleSubsumptionResolution,
				Parents: []*fol.Clause{c, subsumer},
			})
			nc.SetSplitSet(childSplits(f.ctx.Sharing, c, subsumer))
			f.ctx.Env.Statistics.ForwardSubsumptionResolution++
			return SimplifyResult{Kind: Replace, Replacement: nc, Premises: []*fol.Clause{subsumer}}, nil
		}
	}
	return SimplifyResult{Kind: Keep}, nil
}

// BackwardSubsumption removes active clauses subsumed by a newly
// activated premise and applies backward subsumption resolution.
type BackwardSubsumption struct {
	ctx  *Context
	lits *index.LiteralIndex
}

// NewBackwardSubsumption creates the engine.
func NewBackwardSubsumption() *BackwardSubsumption { return &BackwardSubsumption{} }

// Attach acquires the simplifying literal index.
func (b *BackwardSubsumption) Attach(ctx *Context) error {
	ix, err := ctx.Indexes.Request(index.SimplifyingLiteral)
	if err != nil {
		return err
	}
	b.ctx = ctx
	b.lits = ix.(*index.LiteralIndex)
	return nil
}

// Detach releases the index.
func (b *BackwardSubsumption) Detach() error {
	b.lits = nil
	return b.ctx.Indexes.Release(index.SimplifyingLiteral)
}

// Perform sweeps the active set for clauses the premise subsumes or
// shortens by subsumption resolution.
func (b *BackwardSubsumption) Perform(premise *fol.Clause) ([]BackwardResult, error) {
	if premise.Len() == 0 {
		return nil, nil
	}
	var out []BackwardResult
	handled := make(map[*fol.Clause]bool)

	it := b.lits.Instances(premise.Lits[0])
	for it.Next() {
		victim := it.Match().Entry.Clause
		if victim == premise || handled[victim] {
			continue
		}
		handled[victim] = true
		if premise.Len() <= victim.Len() && subsumes(b.ctx.Sharing, premise, victim) {
			b.ctx.Env.Statistics.BackwardSubsumed++
			out = append(out, BackwardResult{Victim: victim})
		}
	}

	srIt := b.lits.Instances(b.ctx.Sharing.Complement(premise.Lits[0]))
	for srIt.Next() {
		victim := srIt.Match().Entry.Clause
		if victim == premise || handled[victim] {
			continue
		}
		handled[victim] = true
		dl := resolvedLiteral(b.ctx.Sharing, premise, victim)
		if dl == nil {
			continue
		}
		lits := make([]*fol.Literal, 0, victim.Len()-1)
		for _, vl := range victim.Lits {
			if vl != dl {
				lits = append(lits, vl)
			}
		}
		nc := fol.NewClause(b.ctx.Sharing, lits, fol.Inference{
			Rule:    fol.RuleSubsumptionResolution,
			Parents: []*fol.Clause{victim, premise},
		})
		nc.SetSplitSet(childSplits(b.ctx.Sharing, victim, premise))
		out = append(out, BackwardResult{Victim: victim, Replacement: nc})
	}
	return out, nil
}
