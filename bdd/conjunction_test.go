package bdd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConjunctionAggregatorLatchesUnsat(t *testing.T) {
	b := newTestBDD()
	c := NewConjunction(b)

	c.AddNode(b.Atomic(0, true))
	assert.False(t, c.Unsat())
	c.AddNode(b.Atomic(0, false))
	assert.True(t, c.Unsat())
}

func TestConjunctionAggregatorConstants(t *testing.T) {
	b := newTestBDD()
	c := NewConjunction(b)

	c.AddNode(b.True())
	assert.False(t, c.Unsat())
	c.AddNode(b.False())
	assert.True(t, c.Unsat())
}

func TestConjunctionAggregatorSatisfiable(t *testing.T) {
	b := newTestBDD()
	c := NewConjunction(b)

	c.AddNode(b.Atomic(0, true))
	c.AddNode(b.Atomic(1, false))
	c.AddNode(b.Atomic(2, true))
	require.False(t, c.Unsat())
	assert.True(t, c.Assignment(0))
	assert.False(t, c.Assignment(1))
	assert.True(t, c.Assignment(2))
}

func TestConjunctionAggregatorRepair(t *testing.T) {
	b := newTestBDD()
	c := NewConjunction(b)

	// x0 | x1 is first satisfied with both false... it cannot be, so the
	// walk flips one decision point; then ~x0 forces x1.
	disj, err := b.Disjunction(b.Atomic(0, true), b.Atomic(1, true))
	require.NoError(t, err)
	c.AddNode(disj)
	require.False(t, c.Unsat())

	c.AddNode(b.Atomic(0, false))
	require.False(t, c.Unsat())
	assert.False(t, c.Assignment(0))
	assert.True(t, c.Assignment(1))
}

func TestConjunctionAggregatorConflictAcrossNodes(t *testing.T) {
	b := newTestBDD()
	c := NewConjunction(b)

	x0 := b.Atomic(0, true)
	x1 := b.Atomic(1, true)
	nx0 := b.Atomic(0, false)
	nx1 := b.Atomic(1, false)

	// (x0 | x1) & (~x0 | x1) & (x0 | ~x1) is satisfied only by x0 & x1
	c1, err := b.Disjunction(x0, x1)
	require.NoError(t, err)
	c2, err := b.Disjunction(nx0, x1)
	require.NoError(t, err)
	c3, err := b.Disjunction(x0, nx1)
	require.NoError(t, err)

	c.AddNode(c1)
	c.AddNode(c2)
	c.AddNode(c3)
	require.False(t, c.Unsat())
	assert.True(t, c.Assignment(0))
	assert.True(t, c.Assignment(1))

	// adding ~x0 | ~x1 exhausts the search space
	c4, err := b.Disjunction(nx0, nx1)
	require.NoError(t, err)
	c.AddNode(c4)
	assert.True(t, c.Unsat())
}
