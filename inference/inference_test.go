package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
	"github.com/crillab/gopherprove/index"
	"github.com/crillab/gopherprove/order"
)

// testStream is a minimal clause stream driving the indexes in tests.
type testStream struct {
	added   map[int]func(*fol.Clause)
	removed map[int]func(*fol.Clause)
	next    int
}

func newTestStream() *testStream {
	return &testStream{added: map[int]func(*fol.Clause){}, removed: map[int]func(*fol.Clause){}}
}

func (t *testStream) SubscribeAdded(fn func(*fol.Clause)) int {
	t.next++
	t.added[t.next] = fn
	return t.next
}

func (t *testStream) UnsubscribeAdded(id int) { delete(t.added, id) }

func (t *testStream) SubscribeRemoved(fn func(*fol.Clause)) int {
	t.next++
	t.removed[t.next] = fn
	return t.next
}

func (t *testStream) UnsubscribeRemoved(id int) { delete(t.removed, id) }

func (t *testStream) activate(c *fol.Clause) {
	for _, fn := range t.added {
		fn(c)
	}
}

type harness struct {
	ctx    *Context
	stream *testStream
	s      *fol.Sharing
	sig    *fol.Signature
}

func newHarness() *harness {
	sig := fol.NewSignature()
	s := fol.NewSharing(sig)
	stream := newTestStream()
	e := env.New(env.Options{})
	ord := order.New()
	return &harness{
		ctx: &Context{
			Env:      e,
			Sharing:  s,
			Ordering: ord,
			Indexes:  index.NewManager(s, ord, stream, stream),
		},
		stream: stream,
		s:      s,
		sig:    sig,
	}
}

// clause builds a clause with all literals selected.
func (h *harness) clause(lits ...*fol.Literal) *fol.Clause {
	c := fol.NewClause(h.s, lits, fol.Inference{Rule: fol.RuleInput})
	c.SetSelected(len(lits))
	return c
}

func drain(t *testing.T, it ClauseIterator) []*fol.Clause {
	t.Helper()
	var out []*fol.Clause
	for it.Next() {
		out = append(out, it.Clause())
	}
	require.NoError(t, it.Err())
	return out
}

func TestBinaryResolutionGround(t *testing.T) {
	h := newHarness()
	p := h.sig.Intern("p", 1)
	a := h.s.App(h.sig.Intern("a", 0))

	r := NewBinaryResolution()
	require.NoError(t, r.Attach(h.ctx))
	defer r.Detach()

	pos := h.clause(h.s.Literal(p, true, a))
	neg := h.clause(h.s.Literal(p, false, a))
	h.stream.activate(pos)

	children := drain(t, r.Generate(neg))
	require.Len(t, children, 1)
	assert.True(t, children[0].IsEmpty(), "p(a) against ~p(a) resolves to the empty clause")
	assert.Equal(t, fol.RuleResolution, children[0].Inf.Rule)
	require.Len(t, children[0].Inf.Parents, 2)
	assert.Same(t, neg, children[0].Inf.Parents[0])
	assert.Same(t, pos, children[0].Inf.Parents[1])
}

func TestBinaryResolutionUnifies(t *testing.T) {
	h := newHarness()
	p := h.sig.Intern("p", 1)
	q := h.sig.Intern("q", 1)
	a := h.s.App(h.sig.Intern("a", 0))

	r := NewBinaryResolution()
	require.NoError(t, r.Attach(h.ctx))
	defer r.Detach()

	// p(X) active; premise ~p(a) | q(a)
	px := h.clause(h.s.Literal(p, true, h.s.Var(0)))
	h.stream.activate(px)
	premise := h.clause(h.s.Literal(p, false, a), h.s.Literal(q, true, a))

	children := drain(t, r.Generate(premise))
	require.Len(t, children, 1)
	require.Equal(t, 1, children[0].Len())
	assert.Same(t, h.s.Literal(q, true, a), children[0].Lits[0])
}

func TestResolutionInheritsSplitSets(t *testing.T) {
	h := newHarness()
	p := h.sig.Intern("p", 1)
	a := h.s.App(h.sig.Intern("a", 0))

	r := NewBinaryResolution()
	require.NoError(t, r.Attach(h.ctx))
	defer r.Detach()

	pos := h.clause(h.s.Literal(p, true, a))
	pos.SetSplitSet(h.s.SplitSetOf(0))
	neg := h.clause(h.s.Literal(p, false, a))
	neg.SetSplitSet(h.s.SplitSetOf(2))
	h.stream.activate(pos)

	children := drain(t, r.Generate(neg))
	require.Len(t, children, 1)
	assert.Same(t, h.s.SplitSetOf(0, 2), children[0].SplitSet())
}

func TestFactoring(t *testing.T) {
	h := newHarness()
	p := h.sig.Intern("p", 1)
	a := h.s.App(h.sig.Intern("a", 0))

	f := NewFactoring()
	require.NoError(t, f.Attach(h.ctx))

	// p(X) | p(a) factors into p(a)
	c := h.clause(h.s.Literal(p, true, h.s.Var(0)), h.s.Literal(p, true, a))
	children := drain(t, f.Generate(c))
	require.Len(t, children, 1)
	require.Equal(t, 1, children[0].Len())
	assert.Same(t, h.s.Literal(p, true, a), children[0].Lits[0])
}

func TestEqualityResolution(t *testing.T) {
	h := newHarness()
	q := h.sig.Intern("q", 1)
	f := h.sig.Intern("f", 1)

	e := NewEqualityResolution()
	require.NoError(t, e.Attach(h.ctx))

	// f(X) != f(Y) | q(X) resolves to q(Y')
	c := h.clause(
		h.s.Literal(fol.Equality, false, h.s.App(f, h.s.Var(0)), h.s.App(f, h.s.Var(1))),
		h.s.Literal(q, true, h.s.Var(0)),
	)
	children := drain(t, e.Generate(c))
	require.Len(t, children, 1)
	require.Equal(t, 1, children[0].Len())
	assert.Equal(t, q, children[0].Lits[0].Pred())
}

func TestSuperposition(t *testing.T) {
	h := newHarness()
	f := h.sig.Intern("f", 1)
	a := h.s.App(h.sig.Intern("a", 0))
	b := h.s.App(h.sig.Intern("b", 0))

	sp := NewSuperposition()
	require.NoError(t, sp.Attach(h.ctx))
	defer sp.Detach()

	// active clause f(a) != f(b); premise a = b rewrites inside it
	victim := h.clause(h.s.Literal(fol.Equality, false, h.s.App(f, a), h.s.App(f, b)))
	h.stream.activate(victim)

	eq := h.clause(h.s.Literal(fol.Equality, true, a, b))
	children := drain(t, sp.Generate(eq))
	require.NotEmpty(t, children)
	// one conclusion must be f(t) != f(t) for some t
	var trivial *fol.Clause
	for _, c := range children {
		if c.Len() == 1 && c.Lits[0].IsEquality() && !c.Lits[0].Positive() &&
			c.Lits[0].Args()[0] == c.Lits[0].Args()[1] {
			trivial = c
		}
	}
	require.NotNil(t, trivial, "rewriting one side must produce a trivial inequality")
}

func TestSelectorsDeterministic(t *testing.T) {
	h := newHarness()
	p := h.sig.Intern("p", 1)
	q := h.sig.Intern("q", 2)
	a := h.s.App(h.sig.Intern("a", 0))

	lits := []*fol.Literal{
		h.s.Literal(p, true, a),
		h.s.Literal(q, false, a, a),
	}
	for _, strategy := range []int{0, 1, 2} {
		sel := NewSelector(strategy, h.ctx.Ordering)
		c1 := fol.NewClause(h.s, append([]*fol.Literal{}, lits...), fol.Inference{Rule: fol.RuleInput})
		c2 := fol.NewClause(h.s, append([]*fol.Literal{}, lits...), fol.Inference{Rule: fol.RuleInput})
		sel.Select(c1)
		sel.Select(c2)
		require.Positive(t, c1.Selected(), "strategy %d must select something", strategy)
		assert.Equal(t, c1.Selected(), c2.Selected())
		assert.Equal(t, c1.SelectedLits(), c2.SelectedLits())
	}
}

func TestNegativeSelectorPrefersNegative(t *testing.T) {
	h := newHarness()
	p := h.sig.Intern("p", 1)
	q := h.sig.Intern("q", 1)
	a := h.s.App(h.sig.Intern("a", 0))

	sel := NewSelector(2, h.ctx.Ordering)
	c := fol.NewClause(h.s, []*fol.Literal{
		h.s.Literal(p, true, a),
		h.s.Literal(q, false, a),
	}, fol.Inference{Rule: fol.RuleInput})
	sel.Select(c)
	require.Equal(t, 1, c.Selected())
	assert.False(t, c.SelectedLits()[0].Positive())
}
