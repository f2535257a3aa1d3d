package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crillab/gopherprove/fol"
)

func TestCompareGround(t *testing.T) {
	s := fol.NewSharing(fol.NewSignature())
	sig := s.Signature()
	f := sig.Intern("f", 1)
	a := s.App(sig.Intern("a", 0))
	b := s.App(sig.Intern("b", 0))
	o := New()

	assert.Equal(t, Equal, o.Compare(a, a))
	assert.Equal(t, Greater, o.Compare(s.App(f, a), a))
	assert.Equal(t, Less, o.Compare(a, s.App(f, a)))
	// same weight, precedence on the symbol number decides; ground terms
	// are always comparable
	cmp := o.Compare(a, b)
	assert.NotEqual(t, Incomparable, cmp)
	assert.Equal(t, cmp.Reverse(), o.Compare(b, a))
}

func TestCompareVariables(t *testing.T) {
	s := fol.NewSharing(fol.NewSignature())
	sig := s.Signature()
	f := sig.Intern("f", 1)
	g := sig.Intern("g", 1)
	x, y := s.Var(0), s.Var(1)
	o := New()

	assert.Equal(t, Incomparable, o.Compare(x, y))
	assert.Equal(t, Greater, o.Compare(s.App(f, x), x))
	assert.Equal(t, Less, o.Compare(x, s.App(f, x)))
	// f(X) and g(Y) share no variables, so neither dominates
	assert.Equal(t, Incomparable, o.Compare(s.App(f, x), s.App(g, y)))
}

func TestVariableCondition(t *testing.T) {
	s := fol.NewSharing(fol.NewSignature())
	sig := s.Signature()
	f := sig.Intern("f", 2)
	a := s.App(sig.Intern("a", 0))
	x, y := s.Var(0), s.Var(1)
	o := New()

	// f(X, X) vs f(X, a): equal weight and f(X, X) has enough variables,
	// but the differing arguments X and a are incomparable
	t1 := s.App(f, x, x)
	t2 := s.App(f, x, a)
	assert.Equal(t, Incomparable, o.Compare(t1, t2))

	// f(X, Y) is heavier than X and contains it
	assert.Equal(t, Greater, o.Compare(s.App(f, x, y), x))
}

func TestCompareLiterals(t *testing.T) {
	s := fol.NewSharing(fol.NewSignature())
	sig := s.Signature()
	p := sig.Intern("p", 1)
	a := s.App(sig.Intern("a", 0))
	f := sig.Intern("f", 1)
	o := New()

	small := s.Literal(p, true, a)
	big := s.Literal(p, true, s.App(f, a))
	assert.Equal(t, Greater, o.CompareLiterals(big, small))
	assert.Equal(t, Equal, o.CompareLiterals(small, small))
	// negative beats positive at equal weight and predicate
	neg := s.Literal(p, false, a)
	assert.Equal(t, Greater, o.CompareLiterals(neg, small))
}
