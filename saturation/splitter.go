package saturation

import (
	"github.com/crillab/gopherprove/bdd"
	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
)

// reductionRecord remembers a conditionally reduced clause together with
// the reduction clock value at freeze time, for backtracking undo.
type reductionRecord struct {
	clause    *fol.Clause
	timestamp uint
}

// splitRecord holds everything attached to one split level: the
// component clause that defines it, the clauses depending on it (thrown
// away on backtracking), the conditional reductions to replay, and the
// active flag.
type splitRecord struct {
	component *fol.Clause
	children  []*fol.Clause
	reduced   []reductionRecord
	active    bool
}

// Splitter decomposes generated clauses into variable-disjoint
// components, names the components as SAT variables, and keeps the
// clause universe consistent with the branch selector's model.
// Level parity: even levels name positive ground literals and non-ground
// components, odd levels name ground negations only.
type Splitter struct {
	alg *Algorithm
	env *env.Env

	branch *branchSelector

	db        []*splitRecord
	compNames map[string]fol.SplitLevel

	clausesAdded         bool
	haveBranchRefutation bool
	fastRestart          bool
	fastClauses          []*fol.Clause

	refutation *fol.Clause
}

// NewSplitter creates a splitter wired to the algorithm.
func NewSplitter(alg *Algorithm, fastRestart bool) *Splitter {
	sp := &Splitter{
		alg:         alg,
		env:         alg.env,
		compNames:   make(map[string]fol.SplitLevel),
		fastRestart: fastRestart,
	}
	sp.branch = newBranchSelector(sp, bdd.New(alg.env))
	return sp
}

func (sp *Splitter) isUsedName(lvl fol.SplitLevel) bool {
	return int(lvl) < len(sp.db) && sp.db[lvl] != nil
}

func (sp *Splitter) componentClause(lvl fol.SplitLevel) *fol.Clause {
	if !sp.isUsedName(lvl) {
		return nil
	}
	return sp.db[lvl].component
}

// LevelActive reports whether a level is active in the current model.
func (sp *Splitter) LevelActive(lvl fol.SplitLevel) bool {
	return sp.isUsedName(lvl) && sp.db[lvl].active
}

// Refutation returns the conditional empty clause that closed the last
// branch, once the selector ran out of models.
func (sp *Splitter) Refutation() *fol.Clause { return sp.refutation }

// components partitions the clause literals into maximal groups sharing
// no variables; ground literals are singleton groups.
func components(cl *fol.Clause) [][]*fol.Literal {
	n := cl.Len()
	group := make([]int, n)
	for i := range group {
		group[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for group[i] != i {
			i = group[i]
		}
		return i
	}
	union := func(i, j int) { group[find(i)] = find(j) }

	varsOf := make([][]int, n)
	for i, l := range cl.Lits {
		varsOf[i] = fol.LiteralVars(l, nil)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sharesVar(varsOf[i], varsOf[j]) {
				union(i, j)
			}
		}
	}
	byRoot := make(map[int][]*fol.Literal)
	var order []int
	for i, l := range cl.Lits {
		r := find(i)
		if _, ok := byRoot[r]; !ok {
			order = append(order, r)
		}
		byRoot[r] = append(byRoot[r], l)
	}
	out := make([][]*fol.Literal, 0, len(order))
	for _, r := range order {
		out = append(out, byRoot[r])
	}
	return out
}

func sharesVar(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// DoSplitting decomposes cl; it returns true when the clause was taken
// over by the splitter (named and delegated to the SAT layer) and must
// not enter the passive queue itself.
func (sp *Splitter) DoSplitting(cl *fol.Clause) (bool, error) {
	comps := components(cl)
	if len(comps) < 2 {
		return false, nil
	}
	if sp.fastRestart && sp.haveBranchRefutation {
		// a refutation is pending; the model is about to change, so park
		// the clause until the next recomputation
		cl.IncRef()
		sp.fastClauses = append(sp.fastClauses, cl)
		return true, nil
	}

	satLits := make([]SatLit, 0, len(comps)+cl.SplitSet().Len())
	for _, dep := range cl.SplitSet().Levels() {
		satLits = append(satLits, LevelLit(dep).Negation())
	}
	for _, comp := range comps {
		name := sp.nameComponent(comp, cl)
		satLits = append(satLits, LevelLit(name))
		sp.env.Statistics.SplitComponents++
	}
	if err := sp.AddSatClause(satLits, false); err != nil {
		return false, err
	}
	return true, nil
}

// nameComponent returns the split level naming the component, reusing a
// variant-equal component when one was seen before.
func (sp *Splitter) nameComponent(lits []*fol.Literal, orig *fol.Clause) fol.SplitLevel {
	key := fol.VariantKey(sp.alg.sharing, lits)
	if name, ok := sp.compNames[key]; ok {
		return name
	}

	var name fol.SplitLevel
	ground := len(lits) == 1 && lits[0].Ground()
	if ground && !lits[0].Positive() {
		// a negative ground literal is the odd name of its complement
		posKey := fol.VariantKey(sp.alg.sharing, []*fol.Literal{sp.alg.sharing.Complement(lits[0])})
		if posName, ok := sp.compNames[posKey]; ok {
			name = posName + 1
		} else {
			name = sp.allocatePair()
			sp.buildComponent(name, []*fol.Literal{sp.alg.sharing.Complement(lits[0])}, orig)
			sp.compNames[posKey] = name
			name++
		}
		sp.buildComponent(name, lits, orig)
		sp.compNames[key] = name
		return name
	}

	name = sp.allocatePair()
	sp.buildComponent(name, lits, orig)
	sp.compNames[key] = name
	if ground {
		// pre-name the complement so both polarities share the variable,
		// and advise the solver to prefer the literal as it appeared
		negKey := fol.VariantKey(sp.alg.sharing, []*fol.Literal{sp.alg.sharing.Complement(lits[0])})
		sp.compNames[negKey] = name + 1
		sp.buildComponent(name+1, []*fol.Literal{sp.alg.sharing.Complement(lits[0])}, orig)
		sp.branch.ConsiderPolarityAdvice(LevelLit(name))
	}
	return name
}

// allocatePair grows the level database by an even/odd pair and returns
// the even level.
func (sp *Splitter) allocatePair() fol.SplitLevel {
	name := fol.SplitLevel(len(sp.db))
	sp.db = append(sp.db, nil, nil)
	return name
}

// buildComponent creates the component clause and its split record.
func (sp *Splitter) buildComponent(name fol.SplitLevel, lits []*fol.Literal, orig *fol.Clause) {
	r := fol.NewRenaming(sp.alg.sharing)
	normalized := make([]*fol.Literal, len(lits))
	for i, l := range lits {
		normalized[i] = r.Literal(l)
	}
	comp := fol.NewClause(sp.alg.sharing, normalized, fol.Inference{
		Rule:    fol.RuleSplitting,
		Parents: []*fol.Clause{orig},
	})
	comp.SetSplitSet(sp.alg.sharing.SplitSetOf(name))
	comp.IncRef()
	sp.db[name] = &splitRecord{component: comp}
}

// AddSatClause forwards a name clause to the branch selector and flags
// that a model recomputation is due.
func (sp *Splitter) AddSatClause(lits []SatLit, refutation bool) error {
	if err := sp.branch.AddSatClause(lits, refutation); err != nil {
		return err
	}
	sp.clausesAdded = true
	if refutation {
		sp.haveBranchRefutation = true
	}
	return nil
}

// OnNewClause registers a clause as a child of every level it depends
// on, so that backtracking can discard it.
func (sp *Splitter) OnNewClause(cl *fol.Clause) {
	for _, lvl := range cl.SplitSet().Levels() {
		if sp.isUsedName(lvl) {
			cl.IncRef()
			sp.db[lvl].children = append(sp.db[lvl].children, cl)
		}
	}
}

// OnClauseReduction freezes cl when the reduction depended on clauses
// from split levels cl itself does not carry; undoing those levels must
// bring cl back.
func (sp *Splitter) OnClauseReduction(cl *fol.Clause, premises []*fol.Clause, replacement *fol.Clause) {
	diff := sp.alg.sharing.EmptySplitSet()
	for _, p := range premises {
		diff = sp.alg.sharing.SplitUnion(diff, p.SplitSet())
	}
	if replacement != nil {
		diff = sp.alg.sharing.SplitUnion(diff, replacement.SplitSet())
	}
	conditional := false
	for _, lvl := range diff.Levels() {
		if !cl.SplitSet().Contains(lvl) {
			conditional = true
			break
		}
	}
	if !conditional {
		return
	}
	cl.Freeze()
	cl.IncRef()
	rec := reductionRecord{clause: cl, timestamp: cl.ReductionTimestamp()}
	for _, lvl := range diff.Levels() {
		if !cl.SplitSet().Contains(lvl) && sp.isUsedName(lvl) {
			sp.db[lvl].reduced = append(sp.db[lvl].reduced, rec)
		}
	}
}

// HandleEmptyClause consumes an empty clause with a non-empty split set:
// the clause refutes the current branch, expressed as a SAT conflict
// over the component names it depends on.
func (sp *Splitter) HandleEmptyClause(cl *fol.Clause) (bool, error) {
	if cl.SplitSet().Empty() {
		return false, nil
	}
	lits := make([]SatLit, 0, cl.SplitSet().Len())
	for _, lvl := range cl.SplitSet().Levels() {
		lits = append(lits, LevelLit(lvl).Negation())
	}
	sp.refutation = cl
	cl.IncRef()
	if err := sp.AddSatClause(lits, true); err != nil {
		return false, err
	}
	return true, nil
}

// OnAllProcessed recomputes the model when SAT clauses arrived, applies
// the component delta, and drains parked clauses. It returns false when
// the name clauses became unsatisfiable: the whole problem is refuted.
func (sp *Splitter) OnAllProcessed() (bool, error) {
	if !sp.clausesAdded {
		return true, nil
	}
	sp.clausesAdded = false
	added, removed, ok, err := sp.branch.RecomputeModel()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	sp.haveBranchRefutation = false
	sp.removeComponents(removed)
	sp.addComponents(added)
	sp.processNewZeroImplied(sp.branch.GetNewZeroImpliedSplits())

	fast := sp.fastClauses
	sp.fastClauses = nil
	for _, cl := range fast {
		cl.DecRef()
		sp.alg.enqueue(cl)
	}
	return true, nil
}

// addComponents activates levels: the component clause enters the clause
// stream.
func (sp *Splitter) addComponents(toAdd []fol.SplitLevel) {
	for _, lvl := range toAdd {
		rec := sp.db[lvl]
		if rec == nil {
			continue
		}
		rec.active = true
		sp.alg.enqueue(rec.component)
	}
}

// removeComponents deactivates levels: every dependent clause leaves the
// containers and conditional reductions are replayed in reverse order to
// thaw their victims.
func (sp *Splitter) removeComponents(toRemove []fol.SplitLevel) {
	for _, lvl := range toRemove {
		rec := sp.db[lvl]
		if rec == nil {
			continue
		}
		rec.active = false
		for _, child := range rec.children {
			if child.SplitSet().Contains(lvl) && child.Store() != fol.StoreNone {
				sp.alg.removeFromContainers(child)
			}
			child.DecRef()
		}
		rec.children = nil

		for i := len(rec.reduced) - 1; i >= 0; i-- {
			r := rec.reduced[i]
			victim := r.clause
			if victim.ReductionTimestamp() == r.timestamp && victim.Frozen() {
				victim.Thaw()
				if !victim.Frozen() && sp.allLevelsActive(victim.SplitSet()) {
					victim.InvalidateReductions()
					sp.alg.enqueue(victim)
				}
			}
			victim.DecRef()
		}
		rec.reduced = nil
	}
}

// processNewZeroImplied handles levels the name clauses force: such a
// level can never be backtracked, so its reductions become unconditional
// and its children no longer need discard bookkeeping.
func (sp *Splitter) processNewZeroImplied(levels []fol.SplitLevel) {
	for _, lvl := range levels {
		rec := sp.db[lvl]
		if rec == nil {
			continue
		}
		sp.env.Log.WithField("level", lvl).Info("split level zero implied")
		for _, r := range rec.reduced {
			if r.clause.ReductionTimestamp() == r.timestamp && r.clause.Frozen() {
				r.clause.Thaw()
			}
			r.clause.DecRef()
		}
		rec.reduced = nil
		for _, child := range rec.children {
			child.DecRef()
		}
		rec.children = nil
	}
}

func (sp *Splitter) allLevelsActive(ss *fol.SplitSet) bool {
	return ss.SubsetOf(func(lvl fol.SplitLevel) bool { return sp.LevelActive(lvl) })
}
