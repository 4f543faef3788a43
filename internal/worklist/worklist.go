// Package worklist implements the generation bounded queues of addresses to process.
package worklist

import (
	"github.com/retroenv/retrogolib/set"
)

// Queue is an insertion ordered set of addresses that is drained in generations.
// Addresses queued before a generation starts belong to that generation,
// addresses added while it is processed belong to the next one.
type Queue struct {
	items []int
	added set.Set[int]

	position   int
	generation int
	boundary   int // position at which the next generation starts
	sealed     bool
}

// New returns a new empty queue.
func New() *Queue {
	return &Queue{
		added: set.New[int](),
	}
}

// Add queues an address unless it has been queued before.
func (q *Queue) Add(addr int) bool {
	if q.added.Contains(addr) {
		return false
	}
	q.added.Add(addr)
	q.items = append(q.items, addr)
	return true
}

// Contains returns whether the address has ever been queued.
func (q *Queue) Contains(addr int) bool {
	return q.added.Contains(addr)
}

// Seal ends the initial generation, all later additions belong to generation 1 or higher.
func (q *Queue) Seal() {
	if q.sealed {
		return
	}
	q.sealed = true
	q.boundary = len(q.items)
}

// Next returns the next address to process as long as its generation does
// not exceed maxGeneration.
func (q *Queue) Next(maxGeneration int) (int, bool) {
	q.Seal()
	if q.position >= len(q.items) {
		return 0, false
	}

	if q.position == q.boundary {
		q.generation++
		q.boundary = len(q.items)
	}
	if q.generation > maxGeneration {
		return 0, false
	}

	addr := q.items[q.position]
	q.position++
	return addr, true
}

// Generation returns the generation of the last address returned by Next.
func (q *Queue) Generation() int {
	return q.generation
}

// Len returns the number of addresses ever queued.
func (q *Queue) Len() int {
	return len(q.items)
}

// Remaining returns the queued addresses that have not been processed.
func (q *Queue) Remaining() []int {
	return q.items[q.position:]
}
