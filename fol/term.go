// Package fol defines the shared first-order data model: hash-consed terms
// and literals, clauses and split sets. All terms and literals are interned
// through a Sharing table, so equality is pointer identity.
package fol

import (
	"fmt"
	"strings"
)

// Symbol identifies a function or predicate symbol in a Signature.
type Symbol int32

// Signature maps symbol names to identifiers and records arities.
// Symbol 0 is always the equality predicate.
type Signature struct {
	names   []string
	arities []int
	byName  map[string]Symbol
}

// Equality is the predicate symbol of the built-in equality.
const Equality = Symbol(0)

// NewSignature creates a signature holding only the equality predicate.
func NewSignature() *Signature {
	sig := &Signature{byName: make(map[string]Symbol)}
	sig.Intern("=", 2)
	return sig
}

// Intern returns the symbol for the given name, creating it on first use.
// Re-interning with a different arity is rejected at parse time, not here.
func (sig *Signature) Intern(name string, arity int) Symbol {
	if s, ok := sig.byName[name]; ok {
		return s
	}
	s := Symbol(len(sig.names))
	sig.names = append(sig.names, name)
	sig.arities = append(sig.arities, arity)
	sig.byName[name] = s
	return s
}

// Name returns the name of s.
func (sig *Signature) Name(s Symbol) string { return sig.names[s] }

// Arity returns the arity of s.
func (sig *Signature) Arity(s Symbol) int { return sig.arities[s] }

// Len returns the number of interned symbols.
func (sig *Signature) Len() int { return len(sig.names) }

// A Term is either a variable or a function application. Terms are
// immutable and hash-consed: two structurally equal terms are the same
// pointer.
type Term struct {
	id      uint32
	functor Symbol
	varIdx  int
	args    []*Term
	isVar   bool
	weight  int
	ground  bool
}

// IsVar reports whether t is a variable.
func (t *Term) IsVar() bool { return t.isVar }

// VarIdx returns the variable index; only valid when IsVar.
func (t *Term) VarIdx() int { return t.varIdx }

// Functor returns the top function symbol; only valid when !IsVar.
func (t *Term) Functor() Symbol { return t.functor }

// Args returns the argument list; callers must not mutate it.
func (t *Term) Args() []*Term { return t.args }

// Arity returns the number of arguments.
func (t *Term) Arity() int { return len(t.args) }

// Weight is the size measure of t: 1 per symbol and variable occurrence.
func (t *Term) Weight() int { return t.weight }

// Ground reports whether t contains no variables.
func (t *Term) Ground() bool { return t.ground }

// ID is the stable interning number of t.
func (t *Term) ID() uint32 { return t.id }

// String renders t using the signature for symbol names.
func (t *Term) String(sig *Signature) string {
	if t.isVar {
		return fmt.Sprintf("X%d", t.varIdx)
	}
	if len(t.args) == 0 {
		return sig.Name(t.functor)
	}
	parts := make([]string, len(t.args))
	for i, a := range t.args {
		parts[i] = a.String(sig)
	}
	return fmt.Sprintf("%s(%s)", sig.Name(t.functor), strings.Join(parts, ","))
}

// VisitSubterms calls f on every subterm of t in preorder, with its
// position path. Traversal uses an explicit stack. If f returns false the
// walk stops.
func VisitSubterms(t *Term, f func(sub *Term, pos []int) bool) {
	type frame struct {
		t   *Term
		pos []int
	}
	stack := []frame{{t, nil}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !f(fr.t, fr.pos) {
			return
		}
		for i := len(fr.t.args) - 1; i >= 0; i-- {
			pos := make([]int, len(fr.pos)+1)
			copy(pos, fr.pos)
			pos[len(fr.pos)] = i
			stack = append(stack, frame{fr.t.args[i], pos})
		}
	}
}

// CollectVars appends the distinct variable indexes of t to acc and
// returns it.
func CollectVars(t *Term, acc []int) []int {
	VisitSubterms(t, func(sub *Term, _ []int) bool {
		if sub.isVar {
			for _, v := range acc {
				if v == sub.varIdx {
					return true
				}
			}
			acc = append(acc, sub.varIdx)
		}
		return true
	})
	return acc
}

// SubtermAt returns the subterm of t at the given position path.
func SubtermAt(t *Term, pos []int) *Term {
	for _, i := range pos {
		t = t.args[i]
	}
	return t
}
