package fol

import (
	"sort"
	"strconv"
	"strings"
)

// SplitLevel names a clause component. Even levels are positive or
// non-ground components, odd levels their ground negations.
type SplitLevel int

// A SplitSet is a hash-consed sorted set of SplitLevels. Sets obtained
// from the same Sharing table compare by pointer identity.
type SplitSet struct {
	levels []SplitLevel
}

// Levels returns the sorted member slice; callers must not mutate it.
func (ss *SplitSet) Levels() []SplitLevel { return ss.levels }

// Empty reports whether the set has no members.
func (ss *SplitSet) Empty() bool { return len(ss.levels) == 0 }

// Len returns the number of members.
func (ss *SplitSet) Len() int { return len(ss.levels) }

// Contains reports membership of lvl.
func (ss *SplitSet) Contains(lvl SplitLevel) bool {
	i := sort.Search(len(ss.levels), func(i int) bool { return ss.levels[i] >= lvl })
	return i < len(ss.levels) && ss.levels[i] == lvl
}

func (ss *SplitSet) String() string {
	parts := make([]string, len(ss.levels))
	for i, l := range ss.levels {
		parts[i] = strconv.Itoa(int(l))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func splitKey(levels []SplitLevel) string {
	var b strings.Builder
	for i, l := range levels {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(l)))
	}
	return b.String()
}

// EmptySplitSet returns the canonical empty set.
func (s *Sharing) EmptySplitSet() *SplitSet { return s.emptySplit }

// SplitSetOf returns the canonical set holding the given levels.
func (s *Sharing) SplitSetOf(levels ...SplitLevel) *SplitSet {
	sorted := make([]SplitLevel, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	dedup := sorted[:0]
	for i, l := range sorted {
		if i == 0 || sorted[i-1] != l {
			dedup = append(dedup, l)
		}
	}
	return s.internSplit(dedup)
}

func (s *Sharing) internSplit(sorted []SplitLevel) *SplitSet {
	key := splitKey(sorted)
	if ss, ok := s.splits[key]; ok {
		return ss
	}
	owned := make([]SplitLevel, len(sorted))
	copy(owned, sorted)
	ss := &SplitSet{levels: owned}
	s.splits[key] = ss
	return ss
}

// SplitUnion returns the canonical union of a and b.
func (s *Sharing) SplitUnion(a, b *SplitSet) *SplitSet {
	if a == b || b.Empty() {
		return a
	}
	if a.Empty() {
		return b
	}
	merged := make([]SplitLevel, 0, len(a.levels)+len(b.levels))
	i, j := 0, 0
	for i < len(a.levels) && j < len(b.levels) {
		switch {
		case a.levels[i] < b.levels[j]:
			merged = append(merged, a.levels[i])
			i++
		case a.levels[i] > b.levels[j]:
			merged = append(merged, b.levels[j])
			j++
		default:
			merged = append(merged, a.levels[i])
			i++
			j++
		}
	}
	merged = append(merged, a.levels[i:]...)
	merged = append(merged, b.levels[j:]...)
	return s.internSplit(merged)
}

// SplitWithout returns the canonical set a minus lvl.
func (s *Sharing) SplitWithout(a *SplitSet, lvl SplitLevel) *SplitSet {
	if !a.Contains(lvl) {
		return a
	}
	out := make([]SplitLevel, 0, len(a.levels)-1)
	for _, l := range a.levels {
		if l != lvl {
			out = append(out, l)
		}
	}
	return s.internSplit(out)
}

// SubsetOf reports whether every member of ss satisfies active.
func (ss *SplitSet) SubsetOf(active func(SplitLevel) bool) bool {
	for _, l := range ss.levels {
		if !active(l) {
			return false
		}
	}
	return true
}
