package saturation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/order"
	"github.com/crillab/gopherprove/tptp"
)

// prove runs the full stack over a cnf problem text.
func prove(t *testing.T, problem string) (env.TerminationReason, *Algorithm, *env.Env) {
	t.Helper()
	e := env.New(env.Options{TimeLimit: 30 * time.Second})
	sharing := fol.NewSharing(fol.NewSignature())
	units, err := tptp.Parse(strings.NewReader(problem), sharing)
	require.NoError(t, err)

	alg, err := NewAlgorithm(e, sharing, order.New(), 2)
	require.NoError(t, err)
	alg.AddInputClauses(units)
	reason, err := alg.Saturate()
	require.NoError(t, err)
	return reason, alg, e
}

func TestRefutationDirect(t *testing.T) {
	reason, alg, _ := prove(t, `
cnf(ax1, axiom, p(a)).
cnf(ax2, axiom, ~p(a)).
`)
	assert.Equal(t, env.Refutation, reason)
	require.NotNil(t, alg.Refutation())
	steps := collectProof(alg.Refutation())
	// one subsumption resolution step: two axioms plus the empty clause
	assert.Len(t, steps, 3)
}

func TestRefutationWithUnification(t *testing.T) {
	reason, alg, _ := prove(t, `
cnf(ax1, axiom, p(X)).
cnf(ax2, axiom, ~p(a) | q(a)).
cnf(ax3, axiom, ~q(a)).
`)
	assert.Equal(t, env.Refutation, reason)
	require.NotNil(t, alg.Refutation())
}

func TestRefutationEquality(t *testing.T) {
	reason, _, _ := prove(t, `
cnf(ax1, axiom, a = b).
cnf(ax2, axiom, f(a) != f(b)).
`)
	assert.Equal(t, env.Refutation, reason)
}

func TestSatisfiable(t *testing.T) {
	reason, _, _ := prove(t, `
cnf(ax1, axiom, p(a)).
cnf(ax2, axiom, q(a)).
`)
	assert.Equal(t, env.Satisfiable, reason)
}

func TestSplittingRefutation(t *testing.T) {
	reason, alg, e := prove(t, `
cnf(ax1, axiom, p(a) | q(b)).
cnf(ax2, axiom, ~p(a)).
cnf(ax3, axiom, ~q(b)).
`)
	assert.Equal(t, env.Refutation, reason)
	require.NotNil(t, alg.Refutation())
	assert.Positive(t, e.Statistics.SplitComponents)
}

func TestSplittingSatisfiable(t *testing.T) {
	reason, _, _ := prove(t, `
cnf(ax1, axiom, p(a) | q(b)).
cnf(ax2, axiom, r(c)).
`)
	assert.Equal(t, env.Satisfiable, reason)
}

// every derived clause must name premises derived earlier
func TestProofIsWellFounded(t *testing.T) {
	_, alg, _ := prove(t, `
cnf(ax1, axiom, p(X)).
cnf(ax2, axiom, ~p(a) | q(a)).
cnf(ax3, axiom, ~q(a)).
`)
	require.NotNil(t, alg.Refutation())
	for _, step := range collectProof(alg.Refutation()) {
		for _, parent := range step.Inf.Parents {
			assert.Less(t, parent.Number(), step.Number(),
				"premises must be older than their conclusion")
		}
	}
}

func TestTimeLimit(t *testing.T) {
	e := env.New(env.Options{TimeLimit: time.Nanosecond})
	sharing := fol.NewSharing(fol.NewSignature())
	units, err := tptp.Parse(strings.NewReader("cnf(ax1, axiom, p(a)).\n"), sharing)
	require.NoError(t, err)
	alg, err := NewAlgorithm(e, sharing, order.New(), 2)
	require.NoError(t, err)
	alg.AddInputClauses(units)
	time.Sleep(time.Millisecond)
	reason, err := alg.Saturate()
	require.NoError(t, err)
	assert.Equal(t, env.TimeLimit, reason)
	assert.Equal(t, env.TimeLimit, e.Statistics.TerminationReason)
}

// after saturation every clause left in the active set and the passive
// queue depends only on active levels
func TestSplitterContainerInvariant(t *testing.T) {
	_, alg, _ := prove(t, `
cnf(ax1, axiom, p(a) | q(b)).
cnf(ax2, axiom, ~p(a) | r(c)).
cnf(ax3, axiom, s(d)).
`)
	sp := alg.Splitter()
	check := func(c *fol.Clause) {
		assert.True(t, sp.allLevelsActive(c.SplitSet()),
			"clause %s depends on an inactive level", c.String(alg.sharing.Signature()))
	}
	alg.active.Each(check)
	for _, c := range alg.passive.content {
		check(c)
	}
}
