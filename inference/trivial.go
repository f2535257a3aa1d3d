package inference

import "github.com/crillab/gopherprove/fol"

// TautologyDeletion drops clauses that are propositional or equational
// tautologies.
type TautologyDeletion struct {
	ctx *Context
}

// NewTautologyDeletion creates the engine.
func NewTautologyDeletion() *TautologyDeletion { return &TautologyDeletion{} }

// Attach stores the context; no index is needed.
func (t *TautologyDeletion) Attach(ctx *Context) error {
	t.ctx = ctx
	return nil
}

// Detach is a no-op.
func (t *TautologyDeletion) Detach() error { return nil }

// Simplify deletes c when it contains a literal and its complement, or a
// trivially true equation.
func (t *TautologyDeletion) Simplify(c *fol.Clause) (SimplifyResult, error) {
	for _, l := range c.Lits {
		if l.IsEquality() && l.Positive() && l.Args()[0] == l.Args()[1] {
			t.ctx.Env.Statistics.EquationalTautologies++
			return SimplifyResult{Kind: Delete}, nil
		}
	}
	seen := make(map[*fol.Literal]bool, c.Len())
	for _, l := range c.Lits {
		seen[l] = true
	}
	for _, l := range c.Lits {
		if seen[t.ctx.Sharing.Complement(l)] {
			t.ctx.Env.Statistics.SimpleTautologies++
			return SimplifyResult{Kind: Delete}, nil
		}
	}
	return SimplifyResult{Kind: Keep}, nil
}

// DuplicateLiteralRemoval removes repeated literal occurrences.
type DuplicateLiteralRemoval struct {
	ctx *Context
}

// NewDuplicateLiteralRemoval creates the engine.
func NewDuplicateLiteralRemoval() *DuplicateLiteralRemoval { return &DuplicateLiteralRemoval{} }

// Attach stores the context.
func (d *DuplicateLiteralRemoval) Attach(ctx *Context) error {
	d.ctx = ctx
	return nil
}

// Detach is a no-op.
func (d *DuplicateLiteralRemoval) Detach() error { return nil }

// Simplify collapses duplicate literals, which are identical pointers
// thanks to sharing.
func (d *DuplicateLiteralRemoval) Simplify(c *fol.Clause) (SimplifyResult, error) {
	seen := make(map[*fol.Literal]bool, c.Len())
	lits := make([]*fol.Literal, 0, c.Len())
	for _, l := range c.Lits {
		if !seen[l] {
			seen[l] = true
			lits = append(lits, l)
		}
	}
	if len(lits) == c.Len() {
		return SimplifyResult{Kind: Keep}, nil
	}
	d.ctx.Env.Statistics.DuplicateLiterals += c.Len() - len(lits)
	nc := fol.NewClause(d.ctx.Sharing, lits, fol.Inference{
		Rule:    fol.RuleDuplicateLiterals,
		Parents: []*fol.Clause{c},
	})
	nc.SetSplitSet(childSplits(d.ctx.Sharing, c))
	return SimplifyResult{Kind: Replace, Replacement: nc}, nil
}

// TrivialInequalityRemoval drops literals of the shape s != s.
type TrivialInequalityRemoval struct {
	ctx *Context
}

// NewTrivialInequalityRemoval creates the engine.
func NewTrivialInequalityRemoval() *TrivialInequalityRemoval { return &TrivialInequalityRemoval{} }

// Attach stores the context.
func (t *TrivialInequalityRemoval) Attach(ctx *Context) error {
	t.ctx = ctx
	return nil
}

// Detach is a no-op.
func (t *TrivialInequalityRemoval) Detach() error { return nil }

// Simplify removes every s != s literal from c.
func (t *TrivialInequalityRemoval) Simplify(c *fol.Clause) (SimplifyResult, error) {
	lits := make([]*fol.Literal, 0, c.Len())
	removed := 0
	for _, l := range c.Lits {
		if l.IsEquality() && !l.Positive() && l.Args()[0] == l.Args()[1] {
			removed++
			continue
		}
		lits = append(lits, l)
	}
	if removed == 0 {
		return SimplifyResult{Kind: Keep}, nil
	}
	t.ctx.Env.Statistics.TrivialInequalities += removed
	nc := fol.NewClause(t.ctx.Sharing, lits, fol.Inference{
		Rule:    fol.RuleTrivialInequality,
		Parents: []*fol.Clause{c},
	})
	nc.SetSplitSet(childSplits(t.ctx.Sharing, c))
	return SimplifyResult{Kind: Replace, Replacement: nc}, nil
}
