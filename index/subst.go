// Package index provides unification-based retrieval of literals and
// terms through substitution trees, the typed index clients built on
// them, and the reference-counted index manager.
package index

import "github.com/crillab/gopherprove/fol"

// Bank numbers keep query and stored variables apart without renaming.
const (
	// QueryBank holds the variables of retrieval queries.
	QueryBank = 0
	// IndexBank holds the variables of stored entries.
	IndexBank = 1
)

// VarKey is a variable together with its bank.
type VarKey struct {
	Bank int
	Idx  int
}

type binding struct {
	t    *fol.Term
	bank int
}

// Substitution is a banked substitution: variables from different banks
// with the same index are distinct. Bindings map banked variables to
// banked terms; Apply resolves them into a single result variable space.
type Substitution struct {
	s       *fol.Sharing
	bind    map[VarKey]binding
	out     map[VarKey]int
	nextOut int
}

// NewSubstitution creates an empty substitution over the sharing table.
func NewSubstitution(s *fol.Sharing) *Substitution {
	return &Substitution{
		s:    s,
		bind: make(map[VarKey]binding),
		out:  make(map[VarKey]int),
	}
}

// deref follows bindings until an unbound variable or an application.
func (u *Substitution) deref(t *fol.Term, bank int) (*fol.Term, int) {
	for t.IsVar() {
		b, ok := u.bind[VarKey{bank, t.VarIdx()}]
		if !ok {
			return t, bank
		}
		t, bank = b.t, b.bank
	}
	return t, bank
}

func (u *Substitution) occurs(vk VarKey, t *fol.Term, bank int) bool {
	t, bank = u.deref(t, bank)
	if t.IsVar() {
		return VarKey{bank, t.VarIdx()} == vk
	}
	for _, a := range t.Args() {
		if u.occurs(vk, a, bank) {
			return true
		}
	}
	return false
}

// Unify attempts to unify t1 in bank b1 with t2 in bank b2, extending the
// substitution. On failure the substitution is left in an undefined state
// and must be discarded.
func (u *Substitution) Unify(t1 *fol.Term, b1 int, t2 *fol.Term, b2 int) bool {
	t1, b1 = u.deref(t1, b1)
	t2, b2 = u.deref(t2, b2)
	if t1 == t2 && b1 == b2 {
		return true
	}
	if t1.IsVar() {
		vk := VarKey{b1, t1.VarIdx()}
		if u.occurs(vk, t2, b2) {
			return false
		}
		u.bind[vk] = binding{t2, b2}
		return true
	}
	if t2.IsVar() {
		vk := VarKey{b2, t2.VarIdx()}
		if u.occurs(vk, t1, b1) {
			return false
		}
		u.bind[vk] = binding{t1, b1}
		return true
	}
	if t1.Functor() != t2.Functor() {
		return false
	}
	for i := range t1.Args() {
		if !u.Unify(t1.Args()[i], b1, t2.Args()[i], b2) {
			return false
		}
	}
	return true
}

// UnifyLiterals unifies two literals argument-wise. Predicates and
// polarities must already agree (or be complementary, which the caller
// decides by picking the literals).
func (u *Substitution) UnifyLiterals(l1 *fol.Literal, b1 int, l2 *fol.Literal, b2 int) bool {
	if l1.Pred() != l2.Pred() || len(l1.Args()) != len(l2.Args()) {
		return false
	}
	for i := range l1.Args() {
		if !u.Unify(l1.Args()[i], b1, l2.Args()[i], b2) {
			return false
		}
	}
	return true
}

// Match binds pattern variables to instance subterms; instance variables
// are rigid. Pattern and instance live in their respective banks.
func (u *Substitution) Match(pattern *fol.Term, pb int, inst *fol.Term, ib int) bool {
	if pattern.IsVar() {
		vk := VarKey{pb, pattern.VarIdx()}
		if b, ok := u.bind[vk]; ok {
			return b.t == inst && b.bank == ib
		}
		u.bind[vk] = binding{inst, ib}
		return true
	}
	if inst.IsVar() {
		return false
	}
	if pattern.Functor() != inst.Functor() {
		return false
	}
	for i := range pattern.Args() {
		if !u.Match(pattern.Args()[i], pb, inst.Args()[i], ib) {
			return false
		}
	}
	return true
}

// MatchLiterals matches pattern literal arguments against instance
// literal arguments.
func (u *Substitution) MatchLiterals(pattern *fol.Literal, pb int, inst *fol.Literal, ib int) bool {
	if pattern.Pred() != inst.Pred() || pattern.Positive() != inst.Positive() ||
		len(pattern.Args()) != len(inst.Args()) {
		return false
	}
	for i := range pattern.Args() {
		if !u.Match(pattern.Args()[i], pb, inst.Args()[i], ib) {
			return false
		}
	}
	return true
}

// Apply resolves t under the substitution into the output variable space.
// Unbound variables are mapped to fresh output indexes, so applying to
// both premises of an inference yields variable-disjoint-correct results.
func (u *Substitution) Apply(t *fol.Term, bank int) *fol.Term {
	t, bank = u.deref(t, bank)
	if t.IsVar() {
		vk := VarKey{bank, t.VarIdx()}
		idx, ok := u.out[vk]
		if !ok {
			idx = u.nextOut
			u.nextOut++
			u.out[vk] = idx
		}
		return u.s.Var(idx)
	}
	if t.Ground() {
		return t
	}
	args := make([]*fol.Term, len(t.Args()))
	for i, a := range t.Args() {
		args[i] = u.Apply(a, bank)
	}
	return u.s.App(t.Functor(), args...)
}

// ApplyRigid resolves t under the substitution while keeping unbound
// variables at their own index. It is meant for matching-based rewriting,
// where the instance side's variables must survive unchanged.
func (u *Substitution) ApplyRigid(t *fol.Term, bank int) *fol.Term {
	t, bank = u.deref(t, bank)
	if t.IsVar() {
		return u.s.Var(t.VarIdx())
	}
	if t.Ground() {
		return t
	}
	args := make([]*fol.Term, len(t.Args()))
	for i, a := range t.Args() {
		args[i] = u.ApplyRigid(a, bank)
	}
	return u.s.App(t.Functor(), args...)
}

// ApplyLit resolves a literal under the substitution.
func (u *Substitution) ApplyLit(l *fol.Literal, bank int) *fol.Literal {
	if l.Ground() {
		return l
	}
	args := make([]*fol.Term, len(l.Args()))
	for i, a := range l.Args() {
		args[i] = u.Apply(a, bank)
	}
	return u.s.Literal(l.Pred(), l.Positive(), args...)
}

// Clone returns an independent copy of the substitution, for
// backtracking searches.
func (u *Substitution) Clone() *Substitution {
	c := &Substitution{
		s:       u.s,
		bind:    make(map[VarKey]binding, len(u.bind)),
		out:     make(map[VarKey]int, len(u.out)),
		nextOut: u.nextOut,
	}
	for k, v := range u.bind {
		c.bind[k] = v
	}
	for k, v := range u.out {
		c.out[k] = v
	}
	return c
}

// IsIdentityOn reports whether the substitution leaves every variable of
// the given bank unbound.
func (u *Substitution) IsIdentityOn(bank int) bool {
	for vk := range u.bind {
		if vk.Bank == bank {
			return false
		}
	}
	return true
}
