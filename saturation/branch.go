package saturation

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/crillab/gopherprove/bdd"
	"github.com/crillab/gopherprove/fol"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// branchSelector decides which split levels are currently selected. It
// runs a propositional solver over component names and diffs successive
// models into added/removed level stacks. Between SAT rounds a
// congruence-closure pass catches ground equality conflicts; a second
// instance in model mode is fed only positive equalities but is not
// consulted. The positive ground equalities of each model are recorded
// as polarity advice, which biases later models toward keeping them.
type branchSelector struct {
	parent *Splitter

	solver  *gini.Gini
	maxVar  SatVar
	refuted bool

	// the name clauses are mirrored as a conjunction of BDDs; its
	// incremental satisfiability check catches propositional conflicts
	// before the solver runs
	bdd  *bdd.BDD
	conj *bdd.Conjunction

	dp      *congruenceClosure
	dpModel *congruenceClosure

	// options
	handleZeroImplied bool

	selected      map[fol.SplitLevel]bool
	trueInCCModel map[*fol.Literal]bool

	// preferred value per solver variable; first advice wins
	advice map[SatVar]SatLit

	// levels already reported as forced by the name clauses alone
	zeroImplied    map[fol.SplitLevel]bool
	newZeroImplied []fol.SplitLevel
}

func newBranchSelector(parent *Splitter, engine *bdd.BDD) *branchSelector {
	return &branchSelector{
		parent:            parent,
		solver:            gini.New(),
		bdd:               engine,
		conj:              bdd.NewConjunction(engine),
		dp:                newCongruenceClosure(),
		dpModel:           newCongruenceClosure(),
		handleZeroImplied: true,
		selected:          make(map[fol.SplitLevel]bool),
		trueInCCModel:     make(map[*fol.Literal]bool),
		advice:            make(map[SatVar]SatLit),
		zeroImplied:       make(map[fol.SplitLevel]bool),
	}
}

// ConsiderPolarityAdvice records the preferred value of a variable. The
// next model computations first try to satisfy all advised literals and
// fall back to an unconstrained model when they conflict.
func (bs *branchSelector) ConsiderPolarityAdvice(l SatLit) {
	if _, ok := bs.advice[l.Var()]; !ok {
		bs.advice[l.Var()] = l
	}
}

// solveWithAdvice solves under the advised polarities first, dropping
// the advice wholesale when it is not jointly satisfiable.
func (bs *branchSelector) solveWithAdvice() bool {
	if len(bs.advice) > 0 {
		assumed := make([]z.Lit, 0, len(bs.advice))
		for v := SatVar(0); v <= bs.maxVar; v++ {
			if l, ok := bs.advice[v]; ok {
				assumed = append(assumed, l.Gini())
			}
		}
		bs.solver.Assume(assumed...)
		if bs.solver.Solve() == satisfiable {
			return true
		}
	}
	return bs.solver.Solve() == satisfiable
}

// Selected reports whether a level is in the current model.
func (bs *branchSelector) Selected(lvl fol.SplitLevel) bool { return bs.selected[lvl] }

// AddSatClause feeds a component-name clause to the solver and mirrors
// it into the BDD conjunction. A refutation clause marks the branch
// refuted so that the splitter parks new splittable clauses until the
// next model.
func (bs *branchSelector) AddSatClause(lits []SatLit, refutation bool) error {
	node := bs.bdd.False()
	for _, l := range lits {
		if l.Var() > bs.maxVar {
			bs.maxVar = l.Var()
		}
		bs.solver.Add(l.Gini())
		atom := bs.bdd.Atomic(int(l.Var()), l.IsPositive())
		var err error
		node, err = bs.bdd.Disjunction(node, atom)
		if err != nil {
			return err
		}
	}
	bs.solver.Add(z.LitNull)
	bs.conj.AddNode(node)
	if refutation {
		bs.refuted = true
	}
	bs.parent.env.Statistics.SatSplits++
	return nil
}

// RecomputeModel solves for a new component selection and returns the
// levels to activate and deactivate. ok is false when the name clauses
// themselves are unsatisfiable, which refutes the whole problem.
func (bs *branchSelector) RecomputeModel() (added, removed []fol.SplitLevel, ok bool, err error) {
	if bs.conj.Unsat() {
		return nil, nil, false, nil
	}
	if !bs.solveWithAdvice() {
		return nil, nil, false, nil
	}
	dpOK, err := bs.processDPConflicts()
	if err != nil {
		return nil, nil, false, err
	}
	if !dpOK {
		return nil, nil, false, nil
	}
	bs.refuted = false

	values := make([]bool, bs.maxVar+1)
	next := make(map[fol.SplitLevel]bool)
	for v := SatVar(0); v <= bs.maxVar; v++ {
		values[v] = bs.solver.Value(v.Lit().Gini())
		var lvl fol.SplitLevel
		if values[v] {
			lvl = LitLevel(v.Lit())
		} else {
			lvl = LitLevel(v.Lit().Negation())
		}
		if bs.parent.isUsedName(lvl) {
			next[lvl] = true
		}
	}
	if bs.handleZeroImplied {
		bs.probeZeroImplied(values)
	}
	for lvl := range next {
		if !bs.selected[lvl] {
			added = append(added, lvl)
		}
	}
	for lvl := range bs.selected {
		if !next[lvl] {
			removed = append(removed, lvl)
		}
	}
	bs.selected = next
	return added, removed, true, nil
}

// probeZeroImplied finds variables forced by the name clauses alone:
// assuming the opposite of the current value is unsatisfiable exactly
// when the value is implied. Newly implied levels are reported once
// through GetNewZeroImpliedSplits. The probe solves under assumptions
// and may leave the solver on a different model, so it runs only after
// the current model has been read out.
func (bs *branchSelector) probeZeroImplied(values []bool) {
	for v := SatVar(0); v <= bs.maxVar; v++ {
		lit := v.SignedLit(!values[v])
		lvl := LitLevel(lit)
		if bs.zeroImplied[lvl] || !bs.parent.isUsedName(lvl) {
			continue
		}
		bs.solver.Assume(lit.Negation().Gini())
		if bs.solver.Solve() == unsatisfiable {
			bs.zeroImplied[lvl] = true
			bs.newZeroImplied = append(bs.newZeroImplied, lvl)
		}
	}
}

// GetNewZeroImpliedSplits drains the levels newly found to be forced.
func (bs *branchSelector) GetNewZeroImpliedSplits() []fol.SplitLevel {
	res := bs.newZeroImplied
	bs.newZeroImplied = nil
	return res
}

// processDPConflicts runs the congruence-closure pass over the ground
// (dis)equality components of the current model, learning a clause per
// conflict and re-solving, until the model is congruence-consistent. It
// returns false when the solver becomes unsatisfiable.
func (bs *branchSelector) processDPConflicts() (bool, error) {
	for {
		bs.dp.reset()
		bs.dpModel.reset()
		for v := SatVar(0); v <= bs.maxVar; v++ {
			var lvl fol.SplitLevel
			if bs.solver.Value(v.Lit().Gini()) {
				lvl = LitLevel(v.Lit())
			} else {
				lvl = LitLevel(v.Lit().Negation())
			}
			comp := bs.parent.componentClause(lvl)
			if comp == nil || comp.Len() != 1 {
				continue
			}
			lit := comp.Lits[0]
			if !lit.IsEquality() || !lit.Ground() {
				continue
			}
			if lit.Positive() {
				bs.dp.AssertEqual(lit.Args()[0], lit.Args()[1], lvl)
				bs.dpModel.AssertEqual(lit.Args()[0], lit.Args()[1], lvl)
				bs.trueInCCModel[lit] = true
				// bias future models toward congruence-consistent picks
				bs.ConsiderPolarityAdvice(LevelLit(lvl))
			} else {
				bs.dp.AssertDistinct(lit.Args()[0], lit.Args()[1], lvl)
			}
		}
		conflict := bs.dp.Conflict()
		if conflict == nil {
			return true, nil
		}
		lits := make([]SatLit, 0, len(conflict))
		for _, lvl := range conflict {
			lits = append(lits, LevelLit(lvl).Negation())
		}
		if err := bs.AddSatClause(lits, false); err != nil {
			return false, err
		}
		if bs.conj.Unsat() || !bs.solveWithAdvice() {
			return false, nil
		}
	}
}
