package saturation

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/index"
	"github.com/crillab/gopherprove/inference"
	"github.com/crillab/gopherprove/order"
)

// Defaults for the passive queue priority combination.
const (
	defaultWeightFactor = 5
	defaultAgeFactor    = 1
)

// activationLogPeriod is how many activations pass between progress log
// lines.
const activationLogPeriod = 500

// Algorithm is the given-clause saturation loop. It owns the three
// clause containers and the index manager, coordinates the selector and
// the inference engines, and consults the splitter after every round.
type Algorithm struct {
	env      *env.Env
	sharing  *fol.Sharing
	ordering *order.KBO

	unprocessed *Unprocessed
	passive     *Passive
	active      *Active

	indexes  *index.Manager
	ctx      *inference.Context
	selector inference.Selector

	generators []inference.Generating
	forward    []inference.ForwardSimplifier
	backward   []inference.BackwardSimplifier

	splitter *Splitter

	nextNumber int
	nextAge    int
	refutation *fol.Clause
	complete   bool
	attached   bool
}

// NewAlgorithm assembles the full saturation stack: containers, index
// manager, the default engine set, selector and splitter.
func NewAlgorithm(e *env.Env, sharing *fol.Sharing, ord *order.KBO, selectorStrategy int) (*Algorithm, error) {
	a := &Algorithm{
		env:         e,
		sharing:     sharing,
		ordering:    ord,
		unprocessed: NewUnprocessed(),
		passive:     NewPassive(defaultWeightFactor, defaultAgeFactor),
		active:      NewActive(),
		nextNumber:  1,
		complete:    true,
	}
	// the generation and simplification streams are both fed by the
	// active set; the manager keeps them as distinct attachment points
	a.indexes = index.NewManager(sharing, ord, a.active, a.active)
	a.ctx = &inference.Context{
		Env:      e,
		Sharing:  sharing,
		Ordering: ord,
		Indexes:  a.indexes,
	}
	a.selector = inference.NewSelector(selectorStrategy, ord)
	a.splitter = NewSplitter(a, true)

	a.generators = []inference.Generating{
		inference.NewBinaryResolution(),
		inference.NewFactoring(),
		inference.NewEqualityResolution(),
		inference.NewSuperposition(),
	}
	a.forward = []inference.ForwardSimplifier{
		inference.NewDuplicateLiteralRemoval(),
		inference.NewTrivialInequalityRemoval(),
		inference.NewTautologyDeletion(),
		inference.NewForwardDemodulation(),
		inference.NewForwardSubsumption(),
	}
	a.backward = []inference.BackwardSimplifier{
		inference.NewBackwardDemodulation(),
		inference.NewBackwardSubsumption(),
	}

	if err := a.attachAll(); err != nil {
		a.detachAll()
		return nil, err
	}
	return a, nil
}

func (a *Algorithm) attachAll() error {
	for _, g := range a.generators {
		if err := g.Attach(a.ctx); err != nil {
			return err
		}
	}
	for _, f := range a.forward {
		if err := f.Attach(a.ctx); err != nil {
			return err
		}
	}
	for _, b := range a.backward {
		if err := b.Attach(a.ctx); err != nil {
			return err
		}
	}
	a.attached = true
	return nil
}

// detachAll releases every engine; it is called on every exit path of
// Saturate.
func (a *Algorithm) detachAll() {
	if !a.attached {
		return
	}
	a.attached = false
	for _, g := range a.generators {
		_ = g.Detach()
	}
	for _, f := range a.forward {
		_ = f.Detach()
	}
	for _, b := range a.backward {
		_ = b.Detach()
	}
}

// Refutation returns the empty clause once one was derived.
func (a *Algorithm) Refutation() *fol.Clause { return a.refutation }

// Splitter exposes the splitter, mainly to tests.
func (a *Algorithm) Splitter() *Splitter { return a.splitter }

// register assigns a number and age on a clause's first appearance.
func (a *Algorithm) register(c *fol.Clause) {
	if c.Number() != 0 {
		return
	}
	c.SetNumber(a.nextNumber)
	a.nextNumber++
	c.SetAge(a.nextAge)
	a.nextAge++
}

// enqueue routes a clause into the unprocessed FIFO and records its
// split dependencies; a clause re-entering after backtracking registers
// its dependencies again because deactivation dropped them.
func (a *Algorithm) enqueue(c *fol.Clause) {
	a.register(c)
	a.splitter.OnNewClause(c)
	a.env.Statistics.GeneratedClauses++
	a.unprocessed.Add(c)
}

// removeFromContainers takes a clause out of whichever container holds
// it.
func (a *Algorithm) removeFromContainers(c *fol.Clause) {
	switch c.Store() {
	case fol.StoreUnprocessed:
		a.unprocessed.Remove(c)
	case fol.StorePassive:
		a.passive.Remove(c)
	case fol.StoreActive:
		a.active.Remove(c)
	}
}

// AddInputClauses feeds the parsed units into the loop.
func (a *Algorithm) AddInputClauses(units []fol.Unit) {
	for _, u := range units {
		a.env.Statistics.InputClauses++
		a.env.Statistics.InitialClauses++
		a.enqueue(u.Clause)
	}
	a.env.Log.WithField("clauses", len(units)).Info("input loaded")
}

// forwardSimplify runs the forward pipeline until a fixpoint: a
// replacement restarts the pipeline, a deletion stops it. It returns the
// surviving clause, or keep == false.
func (a *Algorithm) forwardSimplify(cl *fol.Clause) (*fol.Clause, bool, error) {
	for {
		replaced := false
		for _, fs := range a.forward {
			res, err := fs.Simplify(cl)
			if err != nil {
				return nil, false, err
			}
			switch res.Kind {
			case inference.Delete:
				a.splitter.OnClauseReduction(cl, res.Premises, nil)
				return nil, false, nil
			case inference.Replace:
				a.splitter.OnClauseReduction(cl, res.Premises, res.Replacement)
				a.register(res.Replacement)
				a.splitter.OnNewClause(res.Replacement)
				cl = res.Replacement
				replaced = true
			}
			if replaced {
				break
			}
		}
		if !replaced {
			return cl, true, nil
		}
	}
}

// handleEmpty deals with a derived empty clause: a refutation when its
// split set is empty, a branch conflict otherwise.
func (a *Algorithm) handleEmpty(cl *fol.Clause) error {
	if cl.SplitSet().Empty() {
		a.refutation = cl
		return nil
	}
	_, err := a.splitter.HandleEmptyClause(cl)
	return err
}

// drainUnprocessed forward-simplifies every queued clause and moves the
// survivors to passive, splitting them on the way.
func (a *Algorithm) drainUnprocessed() error {
	for !a.unprocessed.Empty() {
		if err := a.env.CheckDeadline(); err != nil {
			return err
		}
		cl := a.unprocessed.Pop()
		cl.IncRef()
		simplified, keep, err := a.forwardSimplify(cl)
		cl.DecRef()
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		if simplified.IsEmpty() {
			if err := a.handleEmpty(simplified); err != nil {
				return err
			}
			if a.refutation != nil {
				return nil
			}
			continue
		}
		split, err := a.splitter.DoSplitting(simplified)
		if err != nil {
			return err
		}
		if split {
			continue
		}
		a.passive.Add(simplified)
		a.env.Statistics.PassiveClauses++
	}
	return nil
}

// processGiven activates one clause and draws every inference around it.
func (a *Algorithm) processGiven(given *fol.Clause) error {
	given.IncRef()
	defer given.DecRef()

	cl, keep, err := a.forwardSimplify(given)
	if err != nil || !keep {
		return err
	}
	if cl.IsEmpty() {
		return a.handleEmpty(cl)
	}

	a.selector.Select(cl)
	a.active.Add(cl)
	a.env.Statistics.ActiveClauses++

	for _, g := range a.generators {
		it := g.Generate(cl)
		for it.Next() {
			a.enqueue(it.Clause())
		}
		if err := it.Err(); err != nil {
			return err
		}
	}

	for _, bw := range a.backward {
		results, err := bw.Perform(cl)
		if err != nil {
			return err
		}
		for _, r := range results {
			a.removeFromContainers(r.Victim)
			a.splitter.OnClauseReduction(r.Victim, []*fol.Clause{cl}, r.Replacement)
			if r.Replacement != nil {
				a.enqueue(r.Replacement)
			}
		}
	}
	return nil
}

// run is the main loop; it returns nil on refutation or saturation and a
// budget error when a limit was hit.
func (a *Algorithm) run() error {
	for {
		if err := a.env.CheckDeadline(); err != nil {
			return err
		}
		if err := a.env.CheckMemory(); err != nil {
			return err
		}
		if err := a.drainUnprocessed(); err != nil {
			return err
		}
		if a.refutation != nil {
			return nil
		}
		ok, err := a.splitter.OnAllProcessed()
		if err != nil {
			return err
		}
		if !ok {
			a.refutation = a.splitter.Refutation()
			if a.refutation == nil {
				// the name clauses alone are contradictory
				a.refutation = fol.NewClause(a.sharing, nil, fol.Inference{Rule: fol.RuleSplitting})
				a.register(a.refutation)
			}
			return nil
		}
		if !a.unprocessed.Empty() {
			continue
		}
		given := a.passive.SelectNext()
		if given == nil {
			return nil
		}
		if n := a.env.Statistics.ActiveClauses; n > 0 && n%activationLogPeriod == 0 {
			a.env.Log.WithFields(logrus.Fields{
				"active":  n,
				"passive": a.passive.Len(),
			}).Info("saturation progress")
		}
		if err := a.processGiven(given); err != nil {
			return err
		}
		if a.refutation != nil {
			return nil
		}
	}
}

// Saturate drives the loop to termination and reports the reason. Only
// budget errors are absorbed; anything else propagates.
func (a *Algorithm) Saturate() (env.TerminationReason, error) {
	defer a.detachAll()
	if err := a.run(); err != nil {
		switch {
		case errors.Is(err, env.ErrTimeLimit):
			a.env.Statistics.TerminationReason = env.TimeLimit
			return env.TimeLimit, nil
		case errors.Is(err, env.ErrMemoryLimit):
			a.env.Statistics.TerminationReason = env.MemoryLimit
			return env.MemoryLimit, nil
		default:
			a.env.Statistics.TerminationReason = env.Unknown
			return env.Unknown, err
		}
	}
	if a.refutation != nil {
		a.env.Statistics.TerminationReason = env.Refutation
		return env.Refutation, nil
	}
	if a.complete {
		a.env.Statistics.TerminationReason = env.Satisfiable
		return env.Satisfiable, nil
	}
	a.env.Statistics.TerminationReason = env.Unknown
	return env.Unknown, nil
}
