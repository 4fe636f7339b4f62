package apportionment

import (
	"container/heap"
	"math/big"
)

// quotient is an exact rational priority. Comparison cross-multiplies with
// big.Int arithmetic so the ordering is bit-identical on every independent
// re-execution, which floating point would not guarantee.
type quotient struct {
	numerator   *big.Int
	denominator uint64
}

func newQuotient(numerator *big.Int, denominator uint64) quotient {
	return quotient{
		numerator:   numerator,
		denominator: denominator,
	}
}

func (q quotient) compare(other quotient) int {
	left := new(big.Int).Mul(q.numerator, new(big.Int).SetUint64(other.denominator))
	right := new(big.Int).Mul(other.numerator, new(big.Int).SetUint64(q.denominator))

	return left.Cmp(right)
}

type queueEntry struct {
	priority   quotient
	tieBreaker uint64
	node       int
}

// higherPriorityThan defines the queue ordering: the strictly greater rational
// priority wins, equal priorities fall back to the greater tie breaker.
func (entry *queueEntry) higherPriorityThan(other *queueEntry) bool {
	comparison := entry.priority.compare(other.priority)
	if comparison != 0 {
		return comparison > 0
	}

	return entry.tieBreaker > other.tieBreaker
}

type entriesHeap []*queueEntry

func (h entriesHeap) Len() int { return len(h) }

func (h entriesHeap) Less(i, j int) bool {
	return h[i].higherPriorityThan(h[j])
}

func (h entriesHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *entriesHeap) Push(x interface{}) {
	*h = append(*h, x.(*queueEntry))
}

func (h *entriesHeap) Pop() interface{} {
	// Standard code when storing the heap in a slice:
	// https://pkg.go.dev/container/heap
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// apportionmentQueue is a max-heap over (quotient, tie breaker) entries, used
// by the highest-averages loop to always pick the node with the best claim to
// the next shard.
type apportionmentQueue struct {
	entries entriesHeap
}

func newApportionmentQueue() *apportionmentQueue {
	queue := &apportionmentQueue{
		entries: make(entriesHeap, 0),
	}
	heap.Init(&queue.entries)

	return queue
}

func (queue *apportionmentQueue) insert(priority quotient, tieBreaker uint64, node int) {
	heap.Push(&queue.entries, &queueEntry{
		priority:   priority,
		tieBreaker: tieBreaker,
		node:       node,
	})
}

// popMax removes and returns the entry with the highest priority.
func (queue *apportionmentQueue) popMax() (*queueEntry, error) {
	if queue.entries.Len() == 0 {
		return nil, ErrPopFromEmptyHeap
	}

	return heap.Pop(&queue.entries).(*queueEntry), nil
}

func (queue *apportionmentQueue) len() int {
	return queue.entries.Len()
}
