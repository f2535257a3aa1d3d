package index

import (
	"github.com/pkg/errors"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
)

// Entry associates a clause with the retrieval key it contributed.
// Literal entries leave Term nil; term entries record the term and its
// position (argument index followed by the path inside the argument).
type Entry struct {
	Clause  *fol.Clause
	Literal *fol.Literal
	Term    *fol.Term
	Pos     []int
}

func (e Entry) same(o Entry) bool {
	if e.Clause != o.Clause || e.Literal != o.Literal || e.Term != o.Term ||
		len(e.Pos) != len(o.Pos) {
		return false
	}
	for i := range e.Pos {
		if e.Pos[i] != o.Pos[i] {
			return false
		}
	}
	return true
}

// edge labels a child branch: a function (or predicate-with-polarity)
// symbol of known arity, or the variable wildcard.
type edge struct {
	isVar bool
	code  int32
	arity int
}

type treeNode struct {
	children map[edge]*treeNode
	entries  []Entry
}

func newTreeNode() *treeNode {
	return &treeNode{children: make(map[edge]*treeNode)}
}

// SubstTree stores term or literal keys position by position on function
// symbols, with a wildcard branch per variable position. Leaves hold the
// entries. Iterators are lazy and become invalid when the tree mutates.
type SubstTree struct {
	root     *treeNode
	size     int
	modCount uint64
}

// NewSubstTree creates an empty tree.
func NewSubstTree() *SubstTree {
	return &SubstTree{root: newTreeNode()}
}

// Size returns the number of stored entries.
func (t *SubstTree) Size() int { return t.size }

type keyElem struct {
	isVar bool
	code  int32
	arity int
}

func (k keyElem) edge() edge { return edge{k.isVar, k.code, k.arity} }

func flattenTerm(t *fol.Term, acc []keyElem) []keyElem {
	if t.IsVar() {
		return append(acc, keyElem{isVar: true})
	}
	acc = append(acc, keyElem{code: int32(t.Functor()), arity: t.Arity()})
	for _, a := range t.Args() {
		acc = flattenTerm(a, acc)
	}
	return acc
}

func litHead(l *fol.Literal) keyElem {
	code := int32(l.Pred()) << 1
	if l.Positive() {
		code |= 1
	}
	return keyElem{code: code, arity: len(l.Args())}
}

func flattenLiteral(l *fol.Literal) []keyElem {
	acc := []keyElem{litHead(l)}
	for _, a := range l.Args() {
		acc = flattenTerm(a, acc)
	}
	return acc
}

// subtermEnds computes, for each key position, the index just past the
// subterm starting there.
func subtermEnds(key []keyElem) []int {
	ends := make([]int, len(key))
	var walk func(i int) int
	walk = func(i int) int {
		j := i + 1
		for a := 0; a < key[i].arity; a++ {
			j = walk(j)
		}
		ends[i] = j
		return j
	}
	for i := 0; i < len(key); {
		i = walk(i)
	}
	return ends
}

// insert adds an entry under the given key.
func (t *SubstTree) insert(key []keyElem, e Entry) {
	n := t.root
	for _, k := range key {
		child, ok := n.children[k.edge()]
		if !ok {
			child = newTreeNode()
			n.children[k.edge()] = child
		}
		n = child
	}
	n.entries = append(n.entries, e)
	t.size++
	t.modCount++
}

// remove deletes an entry stored under the given key; missing entries are
// ignored. Emptied branches are pruned.
func (t *SubstTree) remove(key []keyElem, e Entry) {
	path := make([]*treeNode, 0, len(key)+1)
	n := t.root
	path = append(path, n)
	for _, k := range key {
		child, ok := n.children[k.edge()]
		if !ok {
			return
		}
		n = child
		path = append(path, n)
	}
	for i, stored := range n.entries {
		if stored.same(e) {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			t.size--
			t.modCount++
			break
		}
	}
	for i := len(path) - 1; i > 0; i-- {
		if len(path[i].entries) > 0 || len(path[i].children) > 0 {
			break
		}
		delete(path[i-1].children, key[i-1].edge())
	}
}

// InsertLiteral stores a literal-keyed entry.
func (t *SubstTree) InsertLiteral(l *fol.Literal, e Entry) {
	t.insert(flattenLiteral(l), e)
}

// RemoveLiteral removes a literal-keyed entry.
func (t *SubstTree) RemoveLiteral(l *fol.Literal, e Entry) {
	t.remove(flattenLiteral(l), e)
}

// InsertTerm stores a term-keyed entry.
func (t *SubstTree) InsertTerm(term *fol.Term, e Entry) {
	t.insert(flattenTerm(term, nil), e)
}

// RemoveTerm removes a term-keyed entry.
func (t *SubstTree) RemoveTerm(term *fol.Term, e Entry) {
	t.remove(flattenTerm(term, nil), e)
}

type retrievalMode byte

const (
	retrUnify = retrievalMode(iota)
	retrGeneralizations
	retrInstances
)

// Match is one retrieval result: the stored entry and the substitution
// witnessing the relation with the query.
type Match struct {
	Entry Entry
	Subst *Substitution
}

type iterState struct {
	node *treeNode
	qpos int
}

// Iter lazily enumerates matching entries. Each matching entry is yielded
// at most once; the tree must not be mutated while an iterator is live.
type Iter struct {
	tree    *SubstTree
	sharing *fol.Sharing
	mod     uint64
	mode    retrievalMode

	qkey  []keyElem
	qends []int
	qlit  *fol.Literal
	qterm *fol.Term

	stack   []iterState
	pending []Entry
	cur     Match
}

func (t *SubstTree) newIter(s *fol.Sharing, mode retrievalMode, key []keyElem, qlit *fol.Literal, qterm *fol.Term) *Iter {
	return &Iter{
		tree:    t,
		sharing: s,
		mod:     t.modCount,
		mode:    mode,
		qkey:    key,
		qends:   subtermEnds(key),
		qlit:    qlit,
		qterm:   qterm,
		stack:   []iterState{{t.root, 0}},
	}
}

// RetrieveLiteral returns an iterator over stored literals in the given
// relation to the query literal.
func (t *SubstTree) RetrieveLiteral(s *fol.Sharing, mode retrievalMode, l *fol.Literal) *Iter {
	return t.newIter(s, mode, flattenLiteral(l), l, nil)
}

// RetrieveTerm returns an iterator over stored terms in the given
// relation to the query term.
func (t *SubstTree) RetrieveTerm(s *fol.Sharing, mode retrievalMode, term *fol.Term) *Iter {
	return t.newIter(s, mode, flattenTerm(term, nil), nil, term)
}

// collectSkip gathers every node reachable from n by consuming exactly
// one whole stored subterm.
func collectSkip(n *treeNode, count int, acc []*treeNode) []*treeNode {
	if count == 0 {
		return append(acc, n)
	}
	for e, child := range n.children {
		extra := 0
		if !e.isVar {
			extra = e.arity
		}
		acc = collectSkip(child, count-1+extra, acc)
	}
	return acc
}

// Next advances to the next verified match. It returns false when the
// iteration is exhausted.
func (it *Iter) Next() bool {
	if it.mod != it.tree.modCount {
		panic(errors.Wrap(env.ErrInvalidOperation, "substitution tree mutated during iteration"))
	}
	for {
		for len(it.pending) > 0 {
			e := it.pending[0]
			it.pending = it.pending[1:]
			if sub := it.verify(e); sub != nil {
				it.cur = Match{Entry: e, Subst: sub}
				return true
			}
		}
		if len(it.stack) == 0 {
			return false
		}
		st := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		if st.qpos == len(it.qkey) {
			it.pending = st.node.entries
			continue
		}
		it.expand(st)
	}
}

// Match returns the current result; valid after Next returned true.
func (it *Iter) Match() Match { return it.cur }

func (it *Iter) expand(st iterState) {
	k := it.qkey[st.qpos]
	if k.isVar {
		for e, child := range st.node.children {
			switch {
			case e.isVar:
				it.stack = append(it.stack, iterState{child, st.qpos + 1})
			case it.mode != retrGeneralizations:
				// the query variable swallows a whole stored subterm
				for _, n := range collectSkip(child, e.arity, nil) {
					it.stack = append(it.stack, iterState{n, st.qpos + 1})
				}
			}
		}
		return
	}
	if child, ok := st.node.children[k.edge()]; ok {
		it.stack = append(it.stack, iterState{child, st.qpos + 1})
	}
	if it.mode != retrInstances {
		// a stored wildcard swallows the whole query subterm
		if child, ok := st.node.children[edge{isVar: true}]; ok {
			it.stack = append(it.stack, iterState{child, it.qends[st.qpos]})
		}
	}
}

// verify checks a candidate entry with a real unification or matching and
// returns the witnessing substitution, or nil.
func (it *Iter) verify(e Entry) *Substitution {
	if it.qlit != nil {
		switch it.mode {
		case retrUnify:
			return UnifyLiteralsFresh(it.sharing, it.qlit, e.Literal)
		case retrGeneralizations:
			return MatchLiteralsFresh(it.sharing, e.Literal, IndexBank, it.qlit, QueryBank)
		default:
			return MatchLiteralsFresh(it.sharing, it.qlit, QueryBank, e.Literal, IndexBank)
		}
	}
	key := e.Term
	switch it.mode {
	case retrUnify:
		u := NewSubstitution(it.sharing)
		if u.Unify(it.qterm, QueryBank, key, IndexBank) {
			return u
		}
	case retrGeneralizations:
		u := NewSubstitution(it.sharing)
		if u.Match(key, IndexBank, it.qterm, QueryBank) {
			return u
		}
	default:
		u := NewSubstitution(it.sharing)
		if u.Match(it.qterm, QueryBank, key, IndexBank) {
			return u
		}
	}
	return nil
}

// UnifyLiteralsFresh unifies two literals of equal polarity on a fresh
// substitution, trying both argument orders for equality literals. It
// returns nil when they do not unify.
func UnifyLiteralsFresh(s *fol.Sharing, l1, l2 *fol.Literal) *Substitution {
	if l1.Positive() != l2.Positive() || l1.Pred() != l2.Pred() {
		return nil
	}
	u := NewSubstitution(s)
	if u.UnifyLiterals(l1, QueryBank, l2, IndexBank) {
		return u
	}
	if l1.IsEquality() {
		u = NewSubstitution(s)
		if u.Unify(l1.Args()[0], QueryBank, l2.Args()[1], IndexBank) &&
			u.Unify(l1.Args()[1], QueryBank, l2.Args()[0], IndexBank) {
			return u
		}
	}
	return nil
}

// MatchLiteralsFresh matches a pattern literal against an instance
// literal on a fresh substitution, trying both argument orders for
// equality literals. It returns nil when there is no match.
func MatchLiteralsFresh(s *fol.Sharing, pattern *fol.Literal, pb int, inst *fol.Literal, ib int) *Substitution {
	if pattern.Positive() != inst.Positive() || pattern.Pred() != inst.Pred() {
		return nil
	}
	u := NewSubstitution(s)
	if u.MatchLiterals(pattern, pb, inst, ib) {
		return u
	}
	if pattern.IsEquality() {
		u = NewSubstitution(s)
		if u.Match(pattern.Args()[0], pb, inst.Args()[1], ib) &&
			u.Match(pattern.Args()[1], pb, inst.Args()[0], ib) {
			return u
		}
	}
	return nil
}
