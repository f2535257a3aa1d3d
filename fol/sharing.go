package fol

// Sharing owns the hash-cons tables for terms, literals and split sets.
// It is single-threaded, like the rest of the engine.
type Sharing struct {
	sig    *Signature
	vars   map[int]*Term
	apps   map[uint64][]*Term
	lits   map[uint64][]*Literal
	splits map[string]*SplitSet

	nextTermID uint32
	nextLitID  uint32
	emptySplit *SplitSet
}

// NewSharing creates a sharing table over the given signature.
func NewSharing(sig *Signature) *Sharing {
	s := &Sharing{
		sig:    sig,
		vars:   make(map[int]*Term),
		apps:   make(map[uint64][]*Term),
		lits:   make(map[uint64][]*Literal),
		splits: make(map[string]*SplitSet),
	}
	s.emptySplit = &SplitSet{}
	s.splits[""] = s.emptySplit
	return s
}

// Signature returns the signature the table interns against.
func (s *Sharing) Signature() *Signature { return s.sig }

// Var returns the canonical term for variable index i.
func (s *Sharing) Var(i int) *Term {
	if t, ok := s.vars[i]; ok {
		return t
	}
	t := &Term{id: s.nextTermID, varIdx: i, isVar: true, weight: 1}
	s.nextTermID++
	s.vars[i] = t
	return t
}

const hashSeed = 2166136261

func hashStep(h uint64, v uint64) uint64 {
	return (h ^ v) * 16777619
}

// App returns the canonical term for the application of f to args.
// The args must themselves be canonical.
func (s *Sharing) App(f Symbol, args ...*Term) *Term {
	h := hashStep(hashSeed, uint64(f))
	for _, a := range args {
		h = hashStep(h, uint64(a.id))
	}
	for _, t := range s.apps[h] {
		if t.functor == f && sameArgs(t.args, args) {
			return t
		}
	}
	weight := 1
	ground := true
	for _, a := range args {
		weight += a.weight
		ground = ground && a.ground
	}
	owned := make([]*Term, len(args))
	copy(owned, args)
	t := &Term{
		id:      s.nextTermID,
		functor: f,
		args:    owned,
		weight:  weight,
		ground:  ground,
	}
	s.nextTermID++
	s.apps[h] = append(s.apps[h], t)
	return t
}

func sameArgs(a, b []*Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
