package inference

import (
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/order"
)

// Selector chooses the selected literals of a clause: it reorders the
// clause's literal list so that the selected ones come first and records
// their count. Selection is a pure function of the literal list and the
// ordering; re-selection yields the same set.
type Selector interface {
	Select(c *fol.Clause)
}

// NewSelector returns the selector named by a strategy number, matching
// the conventional numbering: 0 selects everything, 1 selects the
// maximal literals, 2 prefers a single negative literal.
func NewSelector(n int, ord *order.KBO) Selector {
	switch n {
	case 1:
		return &MaximalSelector{ord: ord}
	case 2:
		return &NegativeSelector{ord: ord}
	default:
		return TotalSelector{}
	}
}

// TotalSelector selects every literal.
type TotalSelector struct{}

// Select marks all literals selected.
func (TotalSelector) Select(c *fol.Clause) {
	c.SetSelected(c.Len())
}

// MaximalSelector selects the literals maximal under the ordering.
type MaximalSelector struct {
	ord *order.KBO
}

// Select moves the maximal literals to the front and marks them.
func (s *MaximalSelector) Select(c *fol.Clause) {
	n := partitionMaximal(s.ord, c.Lits)
	c.SetSelected(n)
}

// NegativeSelector selects a single best negative literal when one
// exists, and the maximal literals otherwise. Preferring one negative
// literal keeps resolution focused.
type NegativeSelector struct {
	ord *order.KBO
}

// Select moves the chosen literal(s) to the front and marks them.
func (s *NegativeSelector) Select(c *fol.Clause) {
	best := -1
	for i, l := range c.Lits {
		if l.Positive() {
			continue
		}
		if best < 0 || betterNegative(s.ord, l, c.Lits[best]) {
			best = i
		}
	}
	if best < 0 {
		c.SetSelected(partitionMaximal(s.ord, c.Lits))
		return
	}
	c.Lits[0], c.Lits[best] = c.Lits[best], c.Lits[0]
	c.SetSelected(1)
}

// betterNegative prefers heavier literals, breaking ties by interning
// number so the choice is stable.
func betterNegative(ord *order.KBO, l, best *fol.Literal) bool {
	switch ord.CompareLiterals(l, best) {
	case order.Greater:
		return true
	case order.Less:
		return false
	default:
		return l.ID() < best.ID()
	}
}

// partitionMaximal moves the maximal literals of lits to the front and
// returns their count. A literal is maximal when no other literal is
// strictly greater.
func partitionMaximal(ord *order.KBO, lits []*fol.Literal) int {
	n := 0
	for i := 0; i < len(lits); i++ {
		maximal := true
		for j := 0; j < len(lits); j++ {
			if i != j && ord.CompareLiterals(lits[j], lits[i]) == order.Greater {
				maximal = false
				break
			}
		}
		if maximal {
			lits[n], lits[i] = lits[i], lits[n]
			n++
		}
	}
	if n == 0 {
		// every literal is below some other; fall back to selecting all
		return len(lits)
	}
	return n
}
