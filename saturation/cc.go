package saturation

import "github.com/crillab/gopherprove/fol"

// congruenceClosure decides conjunctions of ground equalities and
// disequalities between SAT rounds, catching conflicts the propositional
// solver cannot see. Each assertion is tagged with the split level that
// contributed it, so a conflict can be fed back as a learned clause.
type congruenceClosure struct {
	parent  map[*fol.Term]*fol.Term
	terms   []*fol.Term
	known   map[*fol.Term]bool
	eqLvls  []fol.SplitLevel
	diseqs  []ccDiseq
}

type ccDiseq struct {
	a, b  *fol.Term
	level fol.SplitLevel
}

func newCongruenceClosure() *congruenceClosure {
	return &congruenceClosure{
		parent: make(map[*fol.Term]*fol.Term),
		known:  make(map[*fol.Term]bool),
	}
}

func (cc *congruenceClosure) reset() {
	cc.parent = make(map[*fol.Term]*fol.Term)
	cc.terms = cc.terms[:0]
	cc.known = make(map[*fol.Term]bool)
	cc.eqLvls = cc.eqLvls[:0]
	cc.diseqs = cc.diseqs[:0]
}

func (cc *congruenceClosure) find(t *fol.Term) *fol.Term {
	root := t
	for {
		p, ok := cc.parent[root]
		if !ok || p == root {
			return root
		}
		root = p
	}
}

func (cc *congruenceClosure) union(a, b *fol.Term) {
	ra, rb := cc.find(a), cc.find(b)
	if ra != rb {
		cc.parent[ra] = rb
	}
}

func (cc *congruenceClosure) addTerm(t *fol.Term) {
	if cc.known[t] {
		return
	}
	cc.known[t] = true
	cc.terms = append(cc.terms, t)
	for _, a := range t.Args() {
		cc.addTerm(a)
	}
}

// AssertEqual merges the classes of two ground terms.
func (cc *congruenceClosure) AssertEqual(a, b *fol.Term, level fol.SplitLevel) {
	cc.addTerm(a)
	cc.addTerm(b)
	cc.eqLvls = append(cc.eqLvls, level)
	cc.union(a, b)
	cc.propagate()
}

// AssertDistinct records a ground disequality.
func (cc *congruenceClosure) AssertDistinct(a, b *fol.Term, level fol.SplitLevel) {
	cc.addTerm(a)
	cc.addTerm(b)
	cc.diseqs = append(cc.diseqs, ccDiseq{a, b, level})
}

// propagate closes the relation under congruence: applications with
// equal functors and pairwise-equal argument classes are merged, to a
// fixpoint. The term universe here is small (selected ground
// components), so the quadratic sweep is fine.
func (cc *congruenceClosure) propagate() {
	for {
		merged := false
		for i := 0; i < len(cc.terms); i++ {
			for j := i + 1; j < len(cc.terms); j++ {
				t1, t2 := cc.terms[i], cc.terms[j]
				if t1.IsVar() || t2.IsVar() || t1.Functor() != t2.Functor() ||
					t1.Arity() != t2.Arity() || cc.find(t1) == cc.find(t2) {
					continue
				}
				congruent := true
				for k := range t1.Args() {
					if cc.find(t1.Args()[k]) != cc.find(t2.Args()[k]) {
						congruent = false
						break
					}
				}
				if congruent {
					cc.union(t1, t2)
					merged = true
				}
			}
		}
		if !merged {
			return
		}
	}
}

// Equal reports whether two ground terms are in the same class.
func (cc *congruenceClosure) Equal(a, b *fol.Term) bool {
	if !cc.known[a] || !cc.known[b] {
		return a == b
	}
	return cc.find(a) == cc.find(b)
}

// Conflict returns the split levels of a violated disequality together
// with every asserted equality level, or nil when the state is
// consistent. The explanation is sound but not minimal.
func (cc *congruenceClosure) Conflict() []fol.SplitLevel {
	for _, d := range cc.diseqs {
		if cc.find(d.a) == cc.find(d.b) {
			levels := make([]fol.SplitLevel, 0, len(cc.eqLvls)+1)
			levels = append(levels, cc.eqLvls...)
			levels = append(levels, d.level)
			return levels
		}
	}
	return nil
}
