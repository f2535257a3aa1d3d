package saturation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/order"
)

func newTestAlgorithm(t *testing.T) *Algorithm {
	t.Helper()
	alg, err := NewAlgorithm(env.New(env.Options{}), fol.NewSharing(fol.NewSignature()), order.New(), 2)
	require.NoError(t, err)
	return alg
}

func TestComponents(t *testing.T) {
	alg := newTestAlgorithm(t)
	s := alg.sharing
	sig := s.Signature()
	p := sig.Intern("p", 1)
	q := sig.Intern("q", 2)
	a := s.App(sig.Intern("a", 0))

	// p(X) | q(X, Y) | p(Z) | p(a): the first two share X, the rest are
	// their own components
	c := fol.NewClause(s, []*fol.Literal{
		s.Literal(p, true, s.Var(0)),
		s.Literal(q, true, s.Var(0), s.Var(1)),
		s.Literal(p, true, s.Var(2)),
		s.Literal(p, true, a),
	}, fol.Inference{Rule: fol.RuleInput})

	comps := components(c)
	require.Len(t, comps, 3)
	assert.Len(t, comps[0], 2)
	assert.Len(t, comps[1], 1)
	assert.Len(t, comps[2], 1)
}

func TestComponentsSingle(t *testing.T) {
	alg := newTestAlgorithm(t)
	s := alg.sharing
	sig := s.Signature()
	p := sig.Intern("p", 2)

	c := fol.NewClause(s, []*fol.Literal{
		s.Literal(p, true, s.Var(0), s.Var(1)),
		s.Literal(p, false, s.Var(1), s.Var(2)),
	}, fol.Inference{Rule: fol.RuleInput})
	assert.Len(t, components(c), 1)

	split, err := alg.splitter.DoSplitting(c)
	require.NoError(t, err)
	assert.False(t, split, "a connected clause is not splittable")
}

func TestComponentNameReuse(t *testing.T) {
	alg := newTestAlgorithm(t)
	sp := alg.splitter
	s := alg.sharing
	sig := s.Signature()
	p := sig.Intern("p", 1)
	q := sig.Intern("q", 1)

	orig := fol.NewClause(s, nil, fol.Inference{Rule: fol.RuleInput})
	// p(X) twice under renaming gets one name; q(X) gets a fresh pair
	n1 := sp.nameComponent([]*fol.Literal{s.Literal(p, true, s.Var(0))}, orig)
	n2 := sp.nameComponent([]*fol.Literal{s.Literal(p, true, s.Var(7))}, orig)
	n3 := sp.nameComponent([]*fol.Literal{s.Literal(q, true, s.Var(0))}, orig)

	assert.Equal(t, n1, n2)
	assert.NotEqual(t, n1, n3)
	assert.Zero(t, n1%2, "component names start at even levels")
	assert.True(t, sp.isUsedName(n1))
	assert.NotNil(t, sp.componentClause(n1))
}

func TestGroundComplementSharesVariable(t *testing.T) {
	alg := newTestAlgorithm(t)
	sp := alg.splitter
	s := alg.sharing
	sig := s.Signature()
	p := sig.Intern("p", 1)
	a := s.App(sig.Intern("a", 0))

	orig := fol.NewClause(s, nil, fol.Inference{Rule: fol.RuleInput})
	pos := sp.nameComponent([]*fol.Literal{s.Literal(p, true, a)}, orig)
	neg := sp.nameComponent([]*fol.Literal{s.Literal(p, false, a)}, orig)
	assert.Equal(t, pos+1, neg, "a ground literal and its negation form an even/odd pair")
	assert.Equal(t, LevelLit(pos).Var(), LevelLit(neg).Var())
	assert.False(t, LevelLit(neg).IsPositive())
}

func TestPolarityAdviceFirstWins(t *testing.T) {
	alg := newTestAlgorithm(t)
	bs := alg.splitter.branch

	bs.ConsiderPolarityAdvice(SatVar(0).SignedLit(false))
	bs.ConsiderPolarityAdvice(SatVar(0).SignedLit(true))
	assert.Equal(t, SatVar(0).SignedLit(false), bs.advice[SatVar(0)])
}

func TestZeroImpliedReporting(t *testing.T) {
	alg := newTestAlgorithm(t)
	sp := alg.splitter
	s := alg.sharing
	sig := s.Signature()
	p := sig.Intern("p", 1)
	a := s.App(sig.Intern("a", 0))

	orig := fol.NewClause(s, nil, fol.Inference{Rule: fol.RuleInput})
	lvl := sp.nameComponent([]*fol.Literal{s.Literal(p, true, a)}, orig)

	// a unit name clause forces the level
	require.NoError(t, sp.AddSatClause([]SatLit{LevelLit(lvl)}, false))
	_, _, ok, err := sp.branch.RecomputeModel()
	require.NoError(t, err)
	require.True(t, ok)

	implied := sp.branch.GetNewZeroImpliedSplits()
	require.Contains(t, implied, lvl)
	assert.Empty(t, sp.branch.GetNewZeroImpliedSplits(), "levels are reported once")
}

func TestHandleEmptyClause(t *testing.T) {
	alg := newTestAlgorithm(t)
	sp := alg.splitter
	s := alg.sharing

	unconditional := fol.NewClause(s, nil, fol.Inference{Rule: fol.RuleResolution})
	handled, err := sp.HandleEmptyClause(unconditional)
	require.NoError(t, err)
	assert.False(t, handled, "an unconditional empty clause is the caller's refutation")

	conditional := fol.NewClause(s, nil, fol.Inference{Rule: fol.RuleResolution})
	// name a component so the level is backed by a record
	sig := s.Signature()
	p := sig.Intern("p", 1)
	lvl := sp.nameComponent([]*fol.Literal{s.Literal(p, true, s.Var(0))}, conditional)
	conditional.SetSplitSet(s.SplitSetOf(lvl))

	handled, err = sp.HandleEmptyClause(conditional)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Same(t, conditional, sp.Refutation())
}
