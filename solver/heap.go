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

package solver

// A heap with support for decrease/increase key, strongly inspired by
// Minisat's mtl/Heap.h. Variables are ordered first by their decision
// priority, then by their VSIDS activity.

type varHeap struct {
	activity []float64 // Activity of each variable. This is the solver's slice, not a copy.
	priority []int32   // Decision priority of each variable. The solver's slice too.
	content  []int     // Actual content.
	indices  []int     // Reverse heap, i.e position of each item in content; -1 means absence.
}

func newVarHeap(activity []float64, priority []int32) varHeap {
	h := varHeap{
		activity: activity,
		priority: priority,
	}
	for i := range h.activity {
		h.insert(i)
	}
	return h
}

func (h *varHeap) lt(i, j int) bool {
	if h.priority[i] != h.priority[j] {
		return h.priority[i] > h.priority[j]
	}
	return h.activity[i] > h.activity[j]
}

// Traversal functions.
func heapLeft(i int) int   { return i*2 + 1 }
func heapRight(i int) int  { return (i + 1) * 2 }
func heapParent(i int) int { return (i - 1) >> 1 }

func (h *varHeap) percolateUp(i int) {
	x := h.content[i]
	p := heapParent(i)
	for i != 0 && h.lt(x, h.content[p]) {
		h.content[i] = h.content[p]
		h.indices[h.content[p]] = i
		i = p
		p = heapParent(p)
	}
	h.content[i] = x
	h.indices[x] = i
}

func (h *varHeap) percolateDown(i int) {
	x := h.content[i]
	for heapLeft(i) < len(h.content) {
		var child int
		if heapRight(i) < len(h.content) && h.lt(h.content[heapRight(i)], h.content[heapLeft(i)]) {
			child = heapRight(i)
		} else {
			child = heapLeft(i)
		}
		if !h.lt(h.content[child], x) {
			break
		}
		h.content[i] = h.content[child]
		h.indices[h.content[i]] = i
		i = child
	}
	h.content[i] = x
	h.indices[x] = i
}

func (h *varHeap) empty() bool {
	return len(h.content) == 0
}

func (h *varHeap) contains(n int) bool {
	return n < len(h.indices) && h.indices[n] >= 0
}

func (h *varHeap) grow(n int) {
	for len(h.indices) < n {
		h.indices = append(h.indices, -1)
	}
}

func (h *varHeap) insert(n int) {
	h.grow(n + 1)
	if h.contains(n) {
		return
	}
	h.indices[n] = len(h.content)
	h.content = append(h.content, n)
	h.percolateUp(h.indices[n])
}

func (h *varHeap) decrease(n int) {
	h.percolateUp(h.indices[n])
}

func (h *varHeap) removeMin() int {
	x := h.content[0]
	h.content[0] = h.content[len(h.content)-1]
	h.indices[h.content[0]] = 0
	h.indices[x] = -1
	h.content = h.content[:len(h.content)-1]
	if len(h.content) > 1 {
		h.percolateDown(0)
	}
	return x
}

// build rebuilds the heap from the given elements.
func (h *varHeap) build(ns []int) {
	for _, n := range h.content {
		h.indices[n] = -1
	}
	h.content = h.content[:0]
	for i, n := range ns {
		h.indices[n] = i
		h.content = append(h.content, n)
	}
	for i := len(h.content)/2 - 1; i >= 0; i-- {
		h.percolateDown(i)
	}
}
