package env

import (
	"fmt"
	"io"
)

// TerminationReason describes why saturation stopped.
type TerminationReason byte

const (
	// Unknown means saturation terminated but the strategy was incomplete.
	Unknown = TerminationReason(iota)
	// Refutation means the empty clause was derived.
	Refutation
	// Satisfiable means a saturated set was built by a complete strategy.
	Satisfiable
	// TimeLimit means the deadline was hit.
	TimeLimit
	// MemoryLimit means the memory budget was hit.
	MemoryLimit
)

func (r TerminationReason) String() string {
	switch r {
	case Refutation:
		return "REFUTATION"
	case Satisfiable:
		return "SATISFIABLE"
	case Unknown:
		return "UNKNOWN"
	case TimeLimit:
		return "TIME_LIMIT"
	case MemoryLimit:
		return "MEMORY_LIMIT"
	default:
		panic("invalid termination reason")
	}
}

// Statistics are proof-search counters. They are provided for information
// purpose only.
type Statistics struct {
	// Input
	InputClauses   int
	InitialClauses int

	// Generating inferences
	Factoring             int
	Resolution            int
	EqualityResolution    int
	ForwardSuperposition  int
	BackwardSuperposition int

	// Simplifying inferences
	DuplicateLiterals     int
	TrivialInequalities   int
	ForwardDemodulations  int
	BackwardDemodulations int

	// Deletion inferences
	SimpleTautologies             int
	EquationalTautologies         int
	ForwardSubsumed               int
	BackwardSubsumed              int
	ForwardSubsumptionResolution  int

	// Saturation
	GeneratedClauses int
	PassiveClauses   int
	ActiveClauses    int

	// Splitting
	SplitComponents int
	SatSplits       int

	// BDD
	BDDTimeMs int64

	TerminationReason TerminationReason
}

// Print writes the statistics block in the human output format.
func (s *Statistics) Print(w io.Writer) {
	fmt.Fprintf(w, "Input clauses: %d\n", s.InputClauses)
	fmt.Fprintf(w, "Initial clauses: %d\n", s.InitialClauses)
	fmt.Fprintf(w, "Generated clauses: %d\n", s.GeneratedClauses)
	fmt.Fprintf(w, "Passive clauses: %d\n", s.PassiveClauses)
	fmt.Fprintf(w, "Active clauses: %d\n", s.ActiveClauses)
	fmt.Fprintf(w, "Resolutions: %d\n", s.Resolution)
	fmt.Fprintf(w, "Factorings: %d\n", s.Factoring)
	fmt.Fprintf(w, "Equality resolutions: %d\n", s.EqualityResolution)
	fmt.Fprintf(w, "Forward superpositions: %d\n", s.ForwardSuperposition)
	fmt.Fprintf(w, "Backward superpositions: %d\n", s.BackwardSuperposition)
	fmt.Fprintf(w, "Duplicate literals removed: %d\n", s.DuplicateLiterals)
	fmt.Fprintf(w, "Trivial inequalities removed: %d\n", s.TrivialInequalities)
	fmt.Fprintf(w, "Simple tautologies: %d\n", s.SimpleTautologies)
	fmt.Fprintf(w, "Equational tautologies: %d\n", s.EquationalTautologies)
	fmt.Fprintf(w, "Forward demodulations: %d\n", s.ForwardDemodulations)
	fmt.Fprintf(w, "Backward demodulations: %d\n", s.BackwardDemodulations)
	fmt.Fprintf(w, "Forward subsumed: %d\n", s.ForwardSubsumed)
	fmt.Fprintf(w, "Backward subsumed: %d\n", s.BackwardSubsumed)
	fmt.Fprintf(w, "Forward subsumption resolutions: %d\n", s.ForwardSubsumptionResolution)
	fmt.Fprintf(w, "Split components: %d\n", s.SplitComponents)
	fmt.Fprintf(w, "SAT splits: %d\n", s.SatSplits)
	fmt.Fprintf(w, "BDD time: %dms\n", s.BDDTimeMs)
}
