package saturation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gopherprove/fol"
)

func TestCongruenceClosureTransitive(t *testing.T) {
	s := fol.NewSharing(fol.NewSignature())
	sig := s.Signature()
	a := s.App(sig.Intern("a", 0))
	b := s.App(sig.Intern("b", 0))
	c := s.App(sig.Intern("c", 0))

	cc := newCongruenceClosure()
	cc.AssertEqual(a, b, 0)
	cc.AssertEqual(b, c, 2)
	assert.True(t, cc.Equal(a, c))
	assert.Nil(t, cc.Conflict())
}

func TestCongruenceClosureCongruence(t *testing.T) {
	s := fol.NewSharing(fol.NewSignature())
	sig := s.Signature()
	f := sig.Intern("f", 1)
	a := s.App(sig.Intern("a", 0))
	b := s.App(sig.Intern("b", 0))

	cc := newCongruenceClosure()
	cc.AssertDistinct(s.App(f, a), s.App(f, b), 1)
	require.Nil(t, cc.Conflict())

	// a = b forces f(a) = f(b), violating the disequality
	cc.AssertEqual(a, b, 0)
	conflict := cc.Conflict()
	require.NotNil(t, conflict)
	assert.Contains(t, conflict, fol.SplitLevel(0))
	assert.Contains(t, conflict, fol.SplitLevel(1))
}

func TestCongruenceClosureReset(t *testing.T) {
	s := fol.NewSharing(fol.NewSignature())
	sig := s.Signature()
	a := s.App(sig.Intern("a", 0))
	b := s.App(sig.Intern("b", 0))

	cc := newCongruenceClosure()
	cc.AssertEqual(a, b, 0)
	cc.AssertDistinct(a, b, 1)
	require.NotNil(t, cc.Conflict())
	cc.reset()
	assert.Nil(t, cc.Conflict())
	assert.False(t, cc.Equal(a, b))
}
