package saturation

import (
	"github.com/go-air/gini/z"

	"github.com/crillab/gopherprove/fol"
)

// SatVar numbers propositional variables from 0.
type SatVar int32

// SatLit encodes a propositional literal as 2*var, with the sign in the
// last bit.
type SatLit int32

// Lit returns the positive literal of v.
func (v SatVar) Lit() SatLit { return SatLit(v * 2) }

// SignedLit returns the literal of v, negated if signed.
func (v SatVar) SignedLit(signed bool) SatLit {
	if signed {
		return SatLit(v*2) + 1
	}
	return SatLit(v * 2)
}

// Var returns the variable of l.
func (l SatLit) Var() SatVar { return SatVar(l / 2) }

// IsPositive reports the sign of l.
func (l SatLit) IsPositive() bool { return l%2 == 0 }

// Negation returns the complementary literal.
func (l SatLit) Negation() SatLit { return l ^ 1 }

// Gini converts l to the solver's literal type. Solver variables start
// at 1.
func (l SatLit) Gini() z.Lit {
	v := z.Var(l.Var() + 1)
	if l.IsPositive() {
		return v.Pos()
	}
	return v.Neg()
}

// LevelLit maps a split level to its SAT literal: level pairs (2k, 2k+1)
// share variable k, the even level positively.
func LevelLit(lvl fol.SplitLevel) SatLit {
	return SatVar(lvl / 2).SignedLit(lvl%2 == 1)
}

// LitLevel maps a SAT literal back to the split level it names.
func LitLevel(l SatLit) fol.SplitLevel {
	lvl := fol.SplitLevel(l.Var()) * 2
	if !l.IsPositive() {
		lvl++
	}
	return lvl
}
