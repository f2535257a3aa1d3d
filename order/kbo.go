// Package order provides the simplification ordering consumed by the
// inference engines: a Knuth-Bendix ordering with unit symbol weights and
// precedence by symbol number. The ordering is total on ground terms.
package order

import "github.com/crillab/gopherprove/fol"

// Comparison is the result of comparing two terms or literals.
type Comparison byte

const (
	// Incomparable means neither term is greater under the ordering.
	Incomparable = Comparison(iota)
	// Greater means the first term is strictly greater.
	Greater
	// Less means the first term is strictly smaller.
	Less
	// Equal means the terms are identical.
	Equal
)

func (c Comparison) String() string {
	switch c {
	case Greater:
		return "GREATER"
	case Less:
		return "LESS"
	case Equal:
		return "EQUAL"
	case Incomparable:
		return "INCOMPARABLE"
	default:
		panic("invalid comparison")
	}
}

// Reverse flips Greater and Less.
func (c Comparison) Reverse() Comparison {
	switch c {
	case Greater:
		return Less
	case Less:
		return Greater
	default:
		return c
	}
}

// KBO compares terms by weight first, then by symbol precedence and
// lexicographic argument comparison. Every symbol has weight 1.
type KBO struct{}

// New creates the ordering.
func New() *KBO { return &KBO{} }

// varBalance counts variable occurrences of t1 minus those of t2.
func varBalance(t1, t2 *fol.Term) map[int]int {
	bal := make(map[int]int)
	count := func(t *fol.Term, delta int) {
		fol.VisitSubterms(t, func(sub *fol.Term, _ []int) bool {
			if sub.IsVar() {
				bal[sub.VarIdx()] += delta
			}
			return true
		})
	}
	count(t1, 1)
	count(t2, -1)
	return bal
}

// Compare compares t1 and t2 under the ordering.
func (o *KBO) Compare(t1, t2 *fol.Term) Comparison {
	if t1 == t2 {
		return Equal
	}
	if t1.IsVar() {
		if occursIn(t1, t2) {
			return Less
		}
		return Incomparable
	}
	if t2.IsVar() {
		if occursIn(t2, t1) {
			return Greater
		}
		return Incomparable
	}
	// KBO variable condition: s > t requires every variable to occur at
	// least as often in s as in t.
	bal := varBalance(t1, t2)
	geq, leq := true, true
	for _, d := range bal {
		if d < 0 {
			geq = false
		}
		if d > 0 {
			leq = false
		}
	}
	w1, w2 := t1.Weight(), t2.Weight()
	if w1 > w2 {
		if geq {
			return Greater
		}
		return Incomparable
	}
	if w1 < w2 {
		if leq {
			return Less
		}
		return Incomparable
	}
	// Equal weights: precedence on the top symbol, then lexicographic.
	if t1.Functor() != t2.Functor() {
		switch {
		case t1.Functor() > t2.Functor() && geq:
			return Greater
		case t1.Functor() < t2.Functor() && leq:
			return Less
		default:
			return Incomparable
		}
	}
	for i := range t1.Args() {
		cmp := o.Compare(t1.Args()[i], t2.Args()[i])
		if cmp == Equal {
			continue
		}
		if cmp == Greater && geq {
			return Greater
		}
		if cmp == Less && leq {
			return Less
		}
		return Incomparable
	}
	return Equal
}

func occursIn(v, t *fol.Term) bool {
	found := false
	fol.VisitSubterms(t, func(sub *fol.Term, _ []int) bool {
		if sub == v {
			found = true
			return false
		}
		return true
	})
	return found
}

// CompareLiterals compares literals: by predicate weight and arguments,
// with negative literals greater than their positive counterparts.
func (o *KBO) CompareLiterals(l1, l2 *fol.Literal) Comparison {
	if l1 == l2 {
		return Equal
	}
	if l1.Weight() > l2.Weight() {
		return Greater
	}
	if l1.Weight() < l2.Weight() {
		return Less
	}
	if l1.Pred() != l2.Pred() {
		if l1.Pred() > l2.Pred() {
			return Greater
		}
		return Less
	}
	if l1.Positive() != l2.Positive() {
		if !l1.Positive() {
			return Greater
		}
		return Less
	}
	for i := range l1.Args() {
		cmp := o.Compare(l1.Args()[i], l2.Args()[i])
		if cmp != Equal {
			return cmp
		}
	}
	return Equal
}
