package fol

import (
	"fmt"
	"strings"
)

// Rule names the inference rule that produced a clause.
type Rule string

// Inference rule names appearing in proofs.
const (
	RuleInput                 = Rule("input")
	RuleResolution            = Rule("resolution")
	RuleFactoring             = Rule("factoring")
	RuleEqualityResolution    = Rule("equality_resolution")
	RuleSuperposition         = Rule("superposition")
	RuleDemodulation          = Rule("demodulation")
	RuleDuplicateLiterals     = Rule("duplicate_literals_removal")
	RuleTrivialInequality     = Rule("trivial_inequality_removal")
	RuleSubsumptionResolution = Rule("subsumption_resolution")
	RuleSplitting             = Rule("splitting")
)

// Inference records how a clause came to be.
type Inference struct {
	Rule    Rule
	Parents []*Clause
}

// Store says which container currently holds a clause.
type Store byte

const (
	// StoreNone means the clause is in no container.
	StoreNone = Store(iota)
	// StoreUnprocessed means the clause awaits forward simplification.
	StoreUnprocessed
	// StorePassive means the clause waits in the priority queue.
	StorePassive
	// StoreActive means the clause is in the live working set.
	StoreActive
)

// A Clause is an ordered multiset of literals together with its search
// metadata. Literal order is significant: after selection the first
// Selected() literals are the selected ones.
type Clause struct {
	Lits []*Literal
	Inf  Inference

	number    int
	age       int
	weight    int
	refCnt    int
	splits    *SplitSet
	store     Store
	selected  int
	redTstamp uint
	frozen    int
}

// NewClause builds a clause over lits with the given inference record.
// The split set starts empty; the caller assigns it before the clause
// enters any container.
func NewClause(s *Sharing, lits []*Literal, inf Inference) *Clause {
	weight := 0
	for _, l := range lits {
		weight += l.Weight()
	}
	return &Clause{
		Lits:   lits,
		Inf:    inf,
		weight: weight,
		splits: s.EmptySplitSet(),
	}
}

// Number is the display identifier assigned on first insertion.
func (c *Clause) Number() int { return c.number }

// SetNumber assigns the display identifier.
func (c *Clause) SetNumber(n int) { c.number = n }

// Age is the insertion generation of the clause.
func (c *Clause) Age() int { return c.age }

// SetAge records the insertion generation.
func (c *Clause) SetAge(age int) { c.age = age }

// Weight is the size measure of the clause.
func (c *Clause) Weight() int { return c.weight }

// Len returns the number of literals.
func (c *Clause) Len() int { return len(c.Lits) }

// IsEmpty reports whether the clause has no literals.
func (c *Clause) IsEmpty() bool { return len(c.Lits) == 0 }

// SplitSet returns the component names the clause depends on.
func (c *Clause) SplitSet() *SplitSet { return c.splits }

// SetSplitSet assigns the clause's split set.
func (c *Clause) SetSplitSet(ss *SplitSet) { c.splits = ss }

// Store returns the container currently holding the clause.
func (c *Clause) Store() Store { return c.store }

// SetStore records the container holding the clause.
func (c *Clause) SetStore(st Store) { c.store = st }

// IncRef acquires a reference to the clause.
func (c *Clause) IncRef() { c.refCnt++ }

// DecRef releases a reference. Clauses are garbage collected by the Go
// runtime; the count only guards against premature recycling of numbers
// and split records.
func (c *Clause) DecRef() {
	if c.refCnt > 0 {
		c.refCnt--
	}
}

// RefCnt returns the current reference count.
func (c *Clause) RefCnt() int { return c.refCnt }

// Selected returns how many leading literals are selected; 0 means
// selection has not run yet.
func (c *Clause) Selected() int { return c.selected }

// SetSelected marks the first n literals as selected. The selector is
// responsible for having moved them to the front.
func (c *Clause) SetSelected(n int) { c.selected = n }

// SelectedLits returns the selected literal prefix, or all literals when
// selection has not run.
func (c *Clause) SelectedLits() []*Literal {
	if c.selected == 0 {
		return c.Lits
	}
	return c.Lits[:c.selected]
}

// ReductionTimestamp returns the clause's conditional-reduction clock.
func (c *Clause) ReductionTimestamp() uint { return c.redTstamp }

// InvalidateReductions bumps the reduction clock, discarding pending
// reduction records that mention the old value.
func (c *Clause) InvalidateReductions() { c.redTstamp++ }

// Freeze marks the clause reduced-but-retained pending reactivation.
func (c *Clause) Freeze() { c.frozen++ }

// Thaw undoes one Freeze.
func (c *Clause) Thaw() {
	if c.frozen > 0 {
		c.frozen--
	}
}

// Frozen reports whether the clause is currently frozen.
func (c *Clause) Frozen() bool { return c.frozen > 0 }

// Ground reports whether no literal contains a variable.
func (c *Clause) Ground() bool {
	for _, l := range c.Lits {
		if !l.Ground() {
			return false
		}
	}
	return true
}

// Vars returns the distinct variable indexes occurring in the clause.
func (c *Clause) Vars() []int {
	var acc []int
	for _, l := range c.Lits {
		acc = LiteralVars(l, acc)
	}
	return acc
}

// String renders the clause for proofs and logs.
func (c *Clause) String(sig *Signature) string {
	if len(c.Lits) == 0 {
		return "$false"
	}
	parts := make([]string, len(c.Lits))
	for i, l := range c.Lits {
		parts[i] = l.String(sig)
	}
	return strings.Join(parts, " | ")
}

// DescribeInference renders the inference record for proof output.
func (c *Clause) DescribeInference() string {
	if len(c.Inf.Parents) == 0 {
		return string(c.Inf.Rule)
	}
	parts := make([]string, len(c.Inf.Parents))
	for i, p := range c.Inf.Parents {
		parts[i] = fmt.Sprintf("%d", p.Number())
	}
	return fmt.Sprintf("%s %s", c.Inf.Rule, strings.Join(parts, ","))
}

// Unit is an input unit: a named clause delivered by the parser.
type Unit struct {
	Name   string
	Clause *Clause
}
