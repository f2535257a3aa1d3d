package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gopherprove/fol"
)

func setup() (*fol.Sharing, *fol.Signature) {
	sig := fol.NewSignature()
	return fol.NewSharing(sig), sig
}

func TestUnifyBasics(t *testing.T) {
	s, sig := setup()
	f := sig.Intern("f", 1)
	a := s.App(sig.Intern("a", 0))

	u := NewSubstitution(s)
	require.True(t, u.Unify(s.Var(0), QueryBank, a, IndexBank))
	assert.Same(t, a, u.Apply(s.Var(0), QueryBank))

	// occurs check
	u = NewSubstitution(s)
	assert.False(t, u.Unify(s.Var(0), QueryBank, s.App(f, s.Var(0)), QueryBank))

	// same index, different banks: distinct variables
	u = NewSubstitution(s)
	require.True(t, u.Unify(s.Var(0), QueryBank, s.App(f, s.Var(0)), IndexBank))
}

func TestMatchOneSided(t *testing.T) {
	s, sig := setup()
	f := sig.Intern("f", 2)
	a := s.App(sig.Intern("a", 0))
	b := s.App(sig.Intern("b", 0))

	pattern := s.App(f, s.Var(0), s.Var(0))
	u := NewSubstitution(s)
	assert.True(t, u.Match(pattern, IndexBank, s.App(f, a, a), QueryBank))

	u = NewSubstitution(s)
	assert.False(t, u.Match(pattern, IndexBank, s.App(f, a, b), QueryBank))

	// instance variables are rigid
	u = NewSubstitution(s)
	assert.False(t, u.Match(a, IndexBank, s.Var(0), QueryBank))
}

func TestTreeRoundTrip(t *testing.T) {
	s, sig := setup()
	p := sig.Intern("p", 1)
	a := s.App(sig.Intern("a", 0))

	tree := NewSubstTree()
	c := fol.NewClause(s, []*fol.Literal{s.Literal(p, true, a)}, fol.Inference{Rule: fol.RuleInput})
	lit := c.Lits[0]
	e := Entry{Clause: c, Literal: lit}

	tree.InsertLiteral(lit, e)
	assert.Equal(t, 1, tree.Size())

	it := tree.RetrieveLiteral(s, retrUnify, lit)
	require.True(t, it.Next())
	m := it.Match()
	assert.Same(t, c, m.Entry.Clause)
	assert.True(t, m.Subst.IsIdentityOn(QueryBank), "querying with the key itself must give the identity")
	assert.False(t, it.Next())

	tree.RemoveLiteral(lit, e)
	assert.Equal(t, 0, tree.Size())
	it = tree.RetrieveLiteral(s, retrUnify, lit)
	assert.False(t, it.Next(), "after removal no query may return the entry")
}

func TestTreeRetrievalModes(t *testing.T) {
	s, sig := setup()
	p := sig.Intern("p", 1)
	f := sig.Intern("f", 1)
	a := s.App(sig.Intern("a", 0))

	tree := NewSubstTree()
	general := s.Literal(p, true, s.Var(0))      // p(X)
	groundLit := s.Literal(p, true, s.App(f, a)) // p(f(a))
	cg := fol.NewClause(s, []*fol.Literal{general}, fol.Inference{Rule: fol.RuleInput})
	ci := fol.NewClause(s, []*fol.Literal{groundLit}, fol.Inference{Rule: fol.RuleInput})
	tree.InsertLiteral(general, Entry{Clause: cg, Literal: general})
	tree.InsertLiteral(groundLit, Entry{Clause: ci, Literal: groundLit})

	count := func(it *Iter) int {
		n := 0
		for it.Next() {
			n++
		}
		return n
	}

	// p(f(X)) unifies with both entries
	query := s.Literal(p, true, s.App(f, s.Var(3)))
	assert.Equal(t, 2, count(tree.RetrieveLiteral(s, retrUnify, query)))
	// only p(X) generalizes p(f(X))
	assert.Equal(t, 1, count(tree.RetrieveLiteral(s, retrGeneralizations, query)))
	// only p(f(a)) is an instance of p(f(X))
	assert.Equal(t, 1, count(tree.RetrieveLiteral(s, retrInstances, query)))
}

func TestTermTreeRetrieval(t *testing.T) {
	s, sig := setup()
	f := sig.Intern("f", 1)
	g := sig.Intern("g", 2)
	a := s.App(sig.Intern("a", 0))
	b := s.App(sig.Intern("b", 0))

	tree := NewSubstTree()
	keys := []*fol.Term{
		s.App(f, a),
		s.App(f, s.Var(0)),
		s.App(g, a, b),
	}
	for _, k := range keys {
		tree.InsertTerm(k, Entry{Term: k})
	}

	it := tree.RetrieveTerm(s, retrUnify, s.App(f, b))
	var matched []*fol.Term
	for it.Next() {
		matched = append(matched, it.Match().Entry.Term)
	}
	require.Len(t, matched, 1)
	assert.Same(t, keys[1], matched[0])

	it = tree.RetrieveTerm(s, retrInstances, s.App(f, s.Var(5)))
	n := 0
	for it.Next() {
		n++
	}
	assert.Equal(t, 2, n, "f(a) and f(X) are instances of f(Y)")
}

func TestIteratorInvalidation(t *testing.T) {
	s, sig := setup()
	p := sig.Intern("p", 1)
	a := s.App(sig.Intern("a", 0))

	tree := NewSubstTree()
	lit := s.Literal(p, true, a)
	c := fol.NewClause(s, []*fol.Literal{lit}, fol.Inference{Rule: fol.RuleInput})
	tree.InsertLiteral(lit, Entry{Clause: c, Literal: lit})

	it := tree.RetrieveLiteral(s, retrUnify, lit)
	tree.InsertLiteral(s.Literal(p, false, a), Entry{Clause: c, Literal: s.Literal(p, false, a)})
	assert.Panics(t, func() { it.Next() }, "mutation must invalidate live iterators")
}
