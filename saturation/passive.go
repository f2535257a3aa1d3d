/******************************************************************************************[Heap.h]
Copyright (c) 2003-2006, Niklas Een, Niklas Sorensson
Copyright (c) 2007-2010, Niklas Sorensson

Permission is hereby granted, free of charge, to any person obtaining a copy of this software and
associated documentation files (the "Software"), to deal in the Software without restriction,
including without limitation the rights to use, copy, modify, merge, publish, distribute,
sublicense, and/or sell copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all copies or
substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT
NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM,
DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT
OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
**************************************************************************************************/

package saturation

import "github.com/crillab/gopherprove/fol"

// Passive is the priority queue of clauses awaiting selection, ordered by
// a weight/age combination with ties broken by insertion order. The heap
// with position tracking is strongly inspired from Minisat's mtl/Heap.h.
type Passive struct {
	events
	weightFactor int
	ageFactor    int

	content []*fol.Clause
	indices map[*fol.Clause]int
	seq     map[*fol.Clause]int
	nextSeq int
}

// NewPassive creates an empty queue with the given priority factors.
func NewPassive(weightFactor, ageFactor int) *Passive {
	return &Passive{
		weightFactor: weightFactor,
		ageFactor:    ageFactor,
		indices:      make(map[*fol.Clause]int),
		seq:          make(map[*fol.Clause]int),
	}
}

func (p *Passive) score(c *fol.Clause) int {
	return c.Weight()*p.weightFactor + c.Age()*p.ageFactor
}

func (p *Passive) lt(a, b *fol.Clause) bool {
	sa, sb := p.score(a), p.score(b)
	if sa != sb {
		return sa < sb
	}
	return p.seq[a] < p.seq[b]
}

func left(i int) int   { return i*2 + 1 }
func right(i int) int  { return (i + 1) * 2 }
func parent(i int) int { return (i - 1) >> 1 }

func (p *Passive) percolateUp(i int) {
	x := p.content[i]
	pa := parent(i)
	for i != 0 && p.lt(x, p.content[pa]) {
		p.content[i] = p.content[pa]
		p.indices[p.content[pa]] = i
		i = pa
		pa = parent(pa)
	}
	p.content[i] = x
	p.indices[x] = i
}

func (p *Passive) percolateDown(i int) {
	x := p.content[i]
	for left(i) < len(p.content) {
		var child int
		if right(i) < len(p.content) && p.lt(p.content[right(i)], p.content[left(i)]) {
			child = right(i)
		} else {
			child = left(i)
		}
		if !p.lt(p.content[child], x) {
			break
		}
		p.content[i] = p.content[child]
		p.indices[p.content[i]] = i
		i = child
	}
	p.content[i] = x
	p.indices[x] = i
}

// Add inserts a clause into the queue.
func (p *Passive) Add(c *fol.Clause) {
	c.IncRef()
	c.SetStore(fol.StorePassive)
	p.seq[c] = p.nextSeq
	p.nextSeq++
	p.indices[c] = len(p.content)
	p.content = append(p.content, c)
	p.percolateUp(p.indices[c])
	p.added.fire(c)
}

// SelectNext removes and returns the best clause, or nil when empty.
func (p *Passive) SelectNext() *fol.Clause {
	if len(p.content) == 0 {
		return nil
	}
	x := p.content[0]
	p.removeAt(0)
	return x
}

// Remove deletes a clause from the queue if present.
func (p *Passive) Remove(c *fol.Clause) {
	i, ok := p.indices[c]
	if !ok {
		return
	}
	p.removeAt(i)
}

func (p *Passive) removeAt(i int) {
	x := p.content[i]
	last := len(p.content) - 1
	p.content[i] = p.content[last]
	p.indices[p.content[i]] = i
	p.content = p.content[:last]
	delete(p.indices, x)
	delete(p.seq, x)
	if i < len(p.content) {
		moved := p.content[i]
		p.percolateDown(i)
		p.percolateUp(p.indices[moved])
	}
	x.SetStore(fol.StoreNone)
	p.removed.fire(x)
	x.DecRef()
}

// Contains reports queue membership.
func (p *Passive) Contains(c *fol.Clause) bool {
	_, ok := p.indices[c]
	return ok
}

// Empty reports whether the queue holds no clause.
func (p *Passive) Empty() bool { return len(p.content) == 0 }

// Len returns the number of queued clauses.
func (p *Passive) Len() int { return len(p.content) }
