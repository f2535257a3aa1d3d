// Package bdd implements a canonical ordered binary decision diagram engine
// over propositional variables numbered from 0, together with an
// incremental conjunction-satisfiability aggregator. Node uniqueness is the
// engine's core invariant: two nodes denote the same Boolean function iff
// they are the same pointer.
package bdd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/crillab/gopherprove/env"
)

// A Node is either a leaf (the true or false node) or an internal decision
// node on a variable. Internal nodes always have pos != neg, and child
// variable numbers are strictly lower than the parent's.
type Node struct {
	varNum   int
	pos, neg *Node
}

// Var returns the decision variable; -1 for leaves.
func (n *Node) Var() int { return n.varNum }

type nodeKey struct {
	varNum   int
	pos, neg *Node
}

// BDD is the node table and operation engine. It owns every node it hands
// out; node lifetime is the lifetime of the engine.
type BDD struct {
	env       *env.Env
	trueNode  Node
	falseNode Node
	nodes     map[nodeKey]*Node
	newVar    int
}

// Cooperation knobs: how often the binary operation loops consult the
// wall clock and the shared deadline. Tuning values, not contracts.
const (
	clockCheckPeriod    = 500
	deadlineCheckPeriod = 50000
)

// cacheFreq controls how often intermediate results enter the per-call
// memoization table. Inserting every 4th result bounds the table size; the
// exact ratio is a heuristic carried over from the original engine.
const cacheFreq = 4

// New creates an engine bound to the environment's deadline and BDD time
// accounting.
func New(e *env.Env) *BDD {
	b := &BDD{env: e, nodes: make(map[nodeKey]*Node)}
	b.trueNode.varNum = -1
	b.falseNode.varNum = -1
	return b
}

// True returns the true leaf.
func (b *BDD) True() *Node { return &b.trueNode }

// False returns the false leaf.
func (b *BDD) False() *Node { return &b.falseNode }

// IsTrue reports whether n is the true leaf.
func (b *BDD) IsTrue(n *Node) bool { return n == &b.trueNode }

// IsFalse reports whether n is the false leaf.
func (b *BDD) IsFalse(n *Node) bool { return n == &b.falseNode }

// IsConstant reports whether n is a leaf.
func (b *BDD) IsConstant(n *Node) bool { return n.varNum < 0 }

// Atomic returns the node testing a single variable with the given
// polarity.
func (b *BDD) Atomic(varNum int, positive bool) *Node {
	if varNum >= b.newVar {
		b.newVar = varNum + 1
	}
	if positive {
		return b.getNode(varNum, b.True(), b.False())
	}
	return b.getNode(varNum, b.False(), b.True())
}

// getNode returns the unique node for (varNum, pos, neg), collapsing the
// redundant-test case pos == neg.
func (b *BDD) getNode(varNum int, pos, neg *Node) *Node {
	if pos == neg {
		return pos
	}
	key := nodeKey{varNum, pos, neg}
	if n, ok := b.nodes[key]; ok {
		return n
	}
	n := &Node{varNum: varNum, pos: pos, neg: neg}
	b.nodes[key] = n
	return n
}

// NodeCount returns the number of internal nodes allocated so far.
func (b *BDD) NodeCount() int { return len(b.nodes) }

// binOp returns the result when it is determined by the two inputs alone,
// nil otherwise. It must not return nil when both inputs are leaves.
type binOp func(n1, n2 *Node) *Node

func (b *BDD) conjunctionOp(n1, n2 *Node) *Node {
	if b.IsFalse(n1) || b.IsFalse(n2) {
		return b.False()
	}
	if b.IsTrue(n1) {
		return n2
	}
	if b.IsTrue(n2) {
		return n1
	}
	return nil
}

func (b *BDD) disjunctionOp(n1, n2 *Node) *Node {
	if b.IsTrue(n1) || b.IsTrue(n2) {
		return b.True()
	}
	if b.IsFalse(n1) {
		return n2
	}
	if b.IsFalse(n2) {
		return n1
	}
	return nil
}

func (b *BDD) xOrNonYOp(n1, n2 *Node) *Node {
	if b.IsTrue(n1) || b.IsFalse(n2) {
		return b.True()
	}
	if b.IsTrue(n2) {
		return n1
	}
	return nil
}

// Conjunction returns the node for n1 AND n2.
func (b *BDD) Conjunction(n1, n2 *Node) (*Node, error) {
	return b.binaryFnResult(n1, n2, b.conjunctionOp)
}

// Disjunction returns the node for n1 OR n2.
func (b *BDD) Disjunction(n1, n2 *Node) (*Node, error) {
	return b.binaryFnResult(n1, n2, b.disjunctionOp)
}

// XOrNonY returns the node for x OR NOT y.
func (b *BDD) XOrNonY(x, y *Node) (*Node, error) {
	return b.binaryFnResult(x, y, b.xOrNonYOp)
}

// IsXOrNonYConstant reports whether x OR NOT y is the constant with truth
// value resValue, without building the result node.
func (b *BDD) IsXOrNonYConstant(x, y *Node, resValue bool) (bool, error) {
	return b.hasConstantResult(x, y, resValue, b.xOrNonYOp)
}

type nodePair struct{ n1, n2 *Node }

// binaryFnResult applies fn to n1 and n2 iteratively. The results stack
// holds nils and proper pointers and can be viewed as a prefix of an
// expression in prefix notation with nil being a binary node and non-nils
// constants; the expression is simplified every time a well formed
// subexpression (a nil followed by two non-nils) appears.
func (b *BDD) binaryFnResult(n1, n2 *Node, fn binOp) (*Node, error) {
	var (
		toDo    []*Node
		results []*Node
		vars    []int
	)
	cache := make(map[nodePair]*Node)

	counter := 0
	var initTime time.Time
	defer func() {
		if !initTime.IsZero() {
			b.env.Statistics.BDDTimeMs += time.Since(initTime).Milliseconds()
		}
	}()

	for {
		counter++
		if counter == clockCheckPeriod && initTime.IsZero() {
			initTime = time.Now()
		}
		if counter == deadlineCheckPeriod {
			counter = 0
			if err := b.env.CheckDeadline(); err != nil {
				return nil, err
			}
		}
		res := fn(n1, n2)
		if res == nil {
			if c, ok := cache[nodePair{n1, n2}]; ok {
				res = c
			}
		}
		if res != nil {
			for len(results) > 0 && results[len(results)-1] != nil {
				pos := results[len(results)-1]
				neg := res
				results = results[:len(results)-1]
				splitVar := vars[len(vars)-1]
				vars = vars[:len(vars)-1]
				res = b.getNode(splitVar, pos, neg)
				// pop the nil sentinel and the remembered arguments
				results = results[:len(results)-1]
				arg1 := results[len(results)-1]
				arg2 := results[len(results)-2]
				results = results[:len(results)-2]
				if counter%cacheFreq == 0 {
					cache[nodePair{arg1, arg2}] = res
				}
			}
			results = append(results, res)
		} else {
			// split at the variable with the higher number first
			splitVar := n1.varNum
			if n2.varNum > splitVar {
				splitVar = n2.varNum
			}
			pick := func(n *Node, pos bool) *Node {
				if n.varNum != splitVar {
					return n
				}
				if pos {
					return n.pos
				}
				return n.neg
			}
			toDo = append(toDo, pick(n2, false), pick(n1, false), pick(n2, true), pick(n1, true))
			results = append(results, n2, n1, nil)
			vars = append(vars, splitVar)
		}

		if len(toDo) == 0 {
			break
		}
		n1 = toDo[len(toDo)-1]
		n2 = toDo[len(toDo)-2]
		toDo = toDo[:len(toDo)-2]
	}
	return results[0], nil
}

// hasConstantResult reports whether applying fn to n1 and n2 yields the
// constant with truth value resValue. It explores the same recursion as
// binaryFnResult but never builds nodes.
func (b *BDD) hasConstantResult(n1, n2 *Node, resValue bool, fn binOp) (bool, error) {
	var toDo []*Node
	cache := make(map[nodePair]bool)

	counter := 0
	var initTime time.Time
	defer func() {
		if !initTime.IsZero() {
			b.env.Statistics.BDDTimeMs += time.Since(initTime).Milliseconds()
		}
	}()

	for {
		counter++
		if counter == clockCheckPeriod && initTime.IsZero() {
			initTime = time.Now()
		}
		if counter == deadlineCheckPeriod {
			counter = 0
			if err := b.env.CheckDeadline(); err != nil {
				return false, err
			}
		}
		if res := fn(n1, n2); res != nil {
			if (resValue && !b.IsTrue(res)) || (!resValue && !b.IsFalse(res)) {
				return false, nil
			}
		} else if !cache[nodePair{n1, n2}] {
			splitVar := n1.varNum
			if n2.varNum > splitVar {
				splitVar = n2.varNum
			}
			pick := func(n *Node, pos bool) *Node {
				if n.varNum != splitVar {
					return n
				}
				if pos {
					return n.pos
				}
				return n.neg
			}
			toDo = append(toDo, pick(n2, false), pick(n1, false), pick(n2, true), pick(n1, true))
			if counter%cacheFreq == 0 {
				cache[nodePair{n1, n2}] = true
			}
		}

		if len(toDo) == 0 {
			break
		}
		n1 = toDo[len(toDo)-1]
		n2 = toDo[len(toDo)-2]
		toDo = toDo[:len(toDo)-2]
	}
	return true, nil
}

// String renders the node in a prefix if-then-else notation.
func (b *BDD) String(node *Node) string {
	res := ""
	stack := []*Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch {
		case n == nil:
			res += ") "
		case b.IsTrue(n):
			res += "$true "
		case b.IsFalse(n):
			res += "$false "
		default:
			res += "( " + strconv.Itoa(n.varNum) + " ? "
			stack = append(stack, nil, n.neg, n.pos)
		}
	}
	return res
}

// TPTPString renders the node as a TPTP formula over bddPredN atoms.
func (b *BDD) TPTPString(node *Node) string {
	if b.IsTrue(node) {
		return "$true"
	}
	if b.IsFalse(node) {
		return "$false"
	}
	return fmt.Sprintf("( ( bddPred%d => %s) & ( ~bddPred%d => %s ) )",
		node.varNum, b.TPTPString(node.pos), node.varNum, b.TPTPString(node.neg))
}
