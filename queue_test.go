package priorityq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ordering convention: a smaller Priority value is serviced sooner. Priority
// 0 is the fastest non-urgent lane (it skips the bucket bank entirely), so it
// is dequeued ahead of every positive priority, not after. This is verified
// directly against the original C test suite (test/prove.c): every one of
// its priority-ordering checks dequeues smaller values first, including the
// distinct-priority sweep and both halves of the "should re-prioritize an
// item" case. See DESIGN.md for the full writeup of this resolution.

func TestQueue_EmptyDequeueReturnsNilAndSizeStaysZero(t *testing.T) {
	// S5
	q := NewQueue[int]()
	assert.Nil(t, q.Dequeue())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_IncreasingPrioritiesThenUrgent(t *testing.T) {
	// S1, ordering direction corrected: enqueue [127..0] then one urgent;
	// dequeue yields urgent, then 0, 1, 2, ..., 127.
	q := NewQueue[int]()
	items := make([]*Item[int], 128)
	for p := 127; p >= 0; p-- {
		it := NewItem[int]()
		it.Set(p, Priority(p))
		items[p] = it
		q.Enqueue(it)
	}
	urgent := NewItem[int]()
	urgent.Set(-1, Urgent)
	q.Enqueue(urgent)

	got := q.Dequeue()
	require.NotNil(t, got)
	assert.Same(t, urgent, got)

	for p := 0; p <= 127; p++ {
		got := q.Dequeue()
		require.NotNil(t, got, "priority %d", p)
		assert.Equal(t, p, got.Payload())
	}
	assert.Nil(t, q.Dequeue())
}

func TestQueue_LowerPriorityDequeuedFirst(t *testing.T) {
	// S2, ordering direction corrected.
	q := NewQueue[int]()
	a, b := NewItem[int](), NewItem[int]()
	a.Set(12, Priority(12))
	b.Set(3, Priority(3))
	q.Enqueue(a)
	q.Enqueue(b)

	assert.Same(t, b, q.Dequeue())
	assert.Same(t, a, q.Dequeue())
}

func TestQueue_ReEnqueueAsUrgentJumpsQueue(t *testing.T) {
	// S3
	q := NewQueue[int]()
	a, b := NewItem[int](), NewItem[int]()
	a.Set(12, Priority(3))
	b.Set(3, Priority(12))
	q.Enqueue(a)
	q.Enqueue(b)

	b.Set(3, Urgent)
	q.Enqueue(b)

	assert.Same(t, b, q.Dequeue())
	assert.Same(t, a, q.Dequeue())
}

func TestQueue_SamePriorityPreservesInsertionOrder(t *testing.T) {
	// S4
	q := NewQueue[int]()
	a, b, c, d := NewItem[int](), NewItem[int](), NewItem[int](), NewItem[int]()
	a.Set(1, Priority(32))
	b.Set(2, Priority(32))
	c.Set(3, Priority(32))
	d.Set(4, Priority(64))
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)
	q.Enqueue(d)

	assert.Same(t, a, q.Dequeue())
	assert.Same(t, b, q.Dequeue())
	assert.Same(t, c, q.Dequeue())
	assert.Same(t, d, q.Dequeue())
}

func TestQueue_RemoveUrgentLeavesNothingToDequeue(t *testing.T) {
	// S6
	q := NewQueue[int]()
	u := NewItem[int]()
	u.Set(0, Urgent)
	q.Enqueue(u)
	q.Remove(u)

	assert.Nil(t, q.Dequeue())
	assert.Equal(t, 0, q.SizeDone())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_RemoveIsIdempotent(t *testing.T) {
	// P6
	q := NewQueue[int]()
	it := NewItem[int]()
	it.Set(5, Priority(5))
	q.Enqueue(it)

	q.Remove(it)
	assert.Equal(t, 0, q.Len())
	assert.False(t, it.Active())

	q.Remove(it)
	assert.Equal(t, 0, q.Len())
	assert.False(t, it.Active())
}

func TestQueue_RemoveOnNeverEnqueuedItemIsNoop(t *testing.T) {
	q := NewQueue[int]()
	it := NewItem[int]()
	q.Remove(it)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_MoreUrgentReprioritizationTakesEffect(t *testing.T) {
	q := NewQueue[int]()
	lo, hi := NewItem[int](), NewItem[int]()
	lo.Set(1, Priority(100))
	hi.Set(2, Priority(5))
	q.Enqueue(lo)
	q.Enqueue(hi)

	// Re-prioritize lo to a smaller (more urgent) value than hi.
	lo.Set(1, Priority(2))
	q.Enqueue(lo)

	assert.Same(t, lo, q.Dequeue())
	assert.Same(t, hi, q.Dequeue())
}

func TestQueue_LessUrgentReprioritizationIsNoop(t *testing.T) {
	// P7
	q := NewQueue[int]()
	hi, lo := NewItem[int](), NewItem[int]()
	hi.Set(1, Priority(5))
	lo.Set(2, Priority(100))
	q.Enqueue(hi)
	q.Enqueue(lo)

	sizeBefore := q.Len()
	hi.Set(1, Priority(120)) // attempt to make it less urgent; should be ignored
	q.Enqueue(hi)
	assert.Equal(t, sizeBefore, q.Len())

	assert.Same(t, hi, q.Dequeue())
	assert.Same(t, lo, q.Dequeue())
}

func TestQueue_EnqueueOfAlreadyDoneItemIsNoop(t *testing.T) {
	q := NewQueue[int]()
	it := NewItem[int]()
	it.Set(1, Priority(0))
	q.Enqueue(it)
	// Drive it into done.
	for q.SizeDone() == 0 {
		q.drainImmediate()
	}
	require.Equal(t, locDone, it.loc)

	q.Enqueue(it) // no-op, already in done
	assert.Same(t, it, q.Dequeue())
}

func TestQueue_UrgentItemsPreserveInsertionOrder(t *testing.T) {
	// P3
	q := NewQueue[int]()
	items := make([]*Item[int], 10)
	for i := range items {
		it := NewItem[int]()
		it.Set(i, Urgent)
		items[i] = it
		q.Enqueue(it)
	}
	for i := range items {
		assert.Same(t, items[i], q.Dequeue())
	}
}

func TestQueue_DistinctPrioritiesDequeueInAscendingOrder(t *testing.T) {
	// P4, ordering direction corrected: for items with distinct priorities
	// 1..127 enqueued in any order, dequeue returns them in strict
	// increasing priority order.
	q := NewQueue[int]()
	scrambled := scrambledPriorities(127)
	for _, p := range scrambled {
		it := NewItem[int]()
		it.Set(p, Priority(p))
		q.Enqueue(it)
	}
	for p := 1; p <= 127; p++ {
		got := q.Dequeue()
		require.NotNil(t, got, "priority %d", p)
		assert.Equal(t, p, got.Payload(), "expected priority %d next", p)
	}
	assert.Nil(t, q.Dequeue())
}

// scrambledPriorities returns 1..n in an order other than sorted, so ordering
// tests don't coincidentally pass because of insertion order alone.
func scrambledPriorities(n int) []int {
	out := make([]int, 0, n)
	lo, hi := 1, n
	for lo <= hi {
		out = append(out, hi)
		if lo != hi {
			out = append(out, lo)
		}
		lo++
		hi--
	}
	return out
}

func TestQueue_ZeroPriorityIsFasterThanAnyPositivePriority(t *testing.T) {
	q := NewQueue[int]()
	zero := NewItem[int]()
	zero.Set(0, Priority(0))
	q.Enqueue(zero)

	one := NewItem[int]()
	one.Set(1, Priority(1))
	q.Enqueue(one)

	urgent := NewItem[int]()
	urgent.Set(2, Urgent)
	q.Enqueue(urgent)

	assert.Same(t, urgent, q.Dequeue())
	assert.Same(t, zero, q.Dequeue())
	assert.Same(t, one, q.Dequeue())
}

func TestQueue_InvariantsHoldAfterMixedOperations(t *testing.T) {
	// P1, checked inline after a representative sequence of ops.
	q := NewQueue[int]()
	var live []*Item[int]

	enqueue := func(p Priority) {
		it := NewItem[int]()
		it.Set(0, p)
		q.Enqueue(it)
		live = append(live, it)
		checkQueueInvariants(t, q)
	}

	enqueue(Priority(0))
	enqueue(Priority(50))
	enqueue(Urgent)
	enqueue(Priority(127))

	q.Dequeue()
	checkQueueInvariants(t, q)

	q.Remove(live[1])
	checkQueueInvariants(t, q)

	enqueue(Priority(30))
	q.Dequeue()
	checkQueueInvariants(t, q)
}

func checkQueueInvariants(t *testing.T, q *Queue[int]) {
	t.Helper()
	assert.EqualValues(t, q.size, uint32(q.SizeDone()+q.SizeImmediate()+q.SizeQ()))
	assert.Equal(t, q.SizeQ(), q.CountProcessing()+sumBinCounts(q))
}

func sumBinCounts(q *Queue[int]) int {
	n := 0
	for i := 0; i < numBins; i++ {
		n += q.CountBin(i)
	}
	return n
}
