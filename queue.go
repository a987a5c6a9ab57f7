package priorityq

// Queue is a lazy, starvation-free, bounded-priority scheduling queue. It
// holds Items by reference; it never allocates per-item memory, and it is
// not safe for concurrent use. The zero value is not usable; construct one
// with NewQueue.
type Queue[T any] struct {
	pc          uint8
	counterImed uint32

	size          uint32
	sizeDone      uint32
	sizeImmediate uint32
	sizeQ         uint32

	done       *Item[T]
	immediate  *Item[T]
	processing *Item[T]
	bins       [numBins]*Item[T]
}

// NewQueue returns an empty Queue ready for use.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{
		done:       &Item[T]{},
		immediate:  &Item[T]{},
		processing: &Item[T]{},
	}
	listClear(q.done)
	listClear(q.immediate)
	listClear(q.processing)
	for i := range q.bins {
		q.bins[i] = &Item[T]{}
		listClear(q.bins[i])
	}
	return q
}

// Reset restores the Queue to empty. Items it held are not touched; it is
// the caller's responsibility to have already drained or removed them, or
// to simply discard their references along with the Queue.
func (q *Queue[T]) Reset() {
	*q = *NewQueue[T]()
}

// Destroy resets the Queue to empty. It exists as a named counterpart to
// NewQueue/Reset for callers porting code from the original C interface;
// it does not release anything a Go garbage collector wouldn't already
// reclaim.
func (q *Queue[T]) Destroy() {
	q.Reset()
}

// Len returns the total number of items currently held by the Queue.
func (q *Queue[T]) Len() int {
	return int(q.size)
}

// Enqueue inserts item into the queue, or re-prioritizes it if it is already
// enqueued. Smaller priorities are serviced sooner, so only a re-prioritization
// to a smaller value takes effect; an enqueue that would leave the item no
// more urgent than its current position is a no-op, except that a re-enqueue
// with Urgent always takes effect immediately.
func (q *Queue[T]) Enqueue(item *Item[T]) {
	if item.loc == locDone {
		// Already slated to be returned; don't perturb it.
		return
	}

	if item.Active() {
		if item.urgent {
			nodeUnlinkOnly(item)
			if item.loc == locImmediate {
				q.sizeImmediate--
			} else {
				q.sizeQ--
			}
			item.loc = locDone
			q.sizeDone++
			listPushTail(q.done, item)
			return
		}

		if item.loc == locImmediate || item.absPriority >= item.relPriority-q.pc {
			// Either already draining, or the new priority does not
			// improve the item's position. Equal is ignored too, to
			// defeat adversarial reinsertion starvation.
			return
		}

		nodeUnlinkOnly(item)
		q.sizeQ--
		q.size--
	}

	q.freshEnqueue(item)
}

// freshEnqueue classifies and places an item that is not currently in any
// list (either never enqueued, or just unlinked for upward re-prioritization).
func (q *Queue[T]) freshEnqueue(item *Item[T]) {
	switch {
	case item.absPriority > 0:
		item.relPriority = item.absPriority + q.pc
		item.loc = locQueue
		q.sizeQ++
		q.placeInBucket(item)
	case item.urgent:
		item.relPriority = q.pc
		item.loc = locDone
		q.sizeDone++
		listPushTail(q.done, item)
	default:
		item.relPriority = q.pc
		item.loc = locImmediate
		q.sizeImmediate++
		listPushTail(q.immediate, item)
	}
	q.size++
}

// placeInBucket pushes item onto the bucket selected by its relative
// priority and the queue's current counter.
func (q *Queue[T]) placeInBucket(item *Item[T]) {
	listPushTail(q.bins[bucketIndex(q.pc, item.relPriority)], item)
}

// advanceCounter fires the lowest bucket the counter hasn't yet crossed
// (or the wrap bucket if none qualify), advances pc to the smallest value
// that triggers it, and fires every other bucket whose corresponding bit
// also flipped 0->1 (or, for the top bit, flipped in either direction).
// Invoked only when the processing list is empty but the bucket bank still
// holds items.
func (q *Queue[T]) advanceCounter() {
	pc := q.pc

	index := 0
	msb := uint8(1)
	for index < numBins-1 && !(listHas(q.bins[index]) && pc&msb == 0) {
		index++
		msb <<= 1
	}

	newPC := (pc | (msb - 1)) + 1

	// This bucket always fires, no matter how the counter advances.
	listAppend(q.processing, q.bins[index])
	index++

	// Every relative priority's leading bit is 1 where pc's is 0 (since
	// relative priorities are always greater than pc), except in the
	// wrap-around case, where the reverse can hold for the top bit alone.
	// So 1->0 transitions in the low 7 bits never need to trigger a bin;
	// only 0->1 transitions there, plus either-direction transitions of
	// the top bit, can.
	diffBits := (^relMask & (pc ^ newPC)) | (relMask & (^pc & newPC))
	diffBits >>= index
	for diffBits != 0 {
		if diffBits&1 != 0 {
			listAppend(q.processing, q.bins[index])
		}
		index++
		diffBits >>= 1
	}

	q.pc = newPC
}

// drainProcessing moves items out of the processing list: an item whose
// relative priority now equals pc has arrived and moves to immediate;
// everything else is re-placed into a bucket via placeInBucket. At most
// HighestSetBit(sizeQ)+1 items are handled, bounding work per dequeue.
func (q *Queue[T]) drainProcessing() {
	limit := highBit32(q.sizeQ) + 1
	for {
		item := listPopHeadQuick(q.processing)
		if item.relPriority != q.pc {
			q.placeInBucket(item)
		} else {
			item.loc = locImmediate
			q.sizeQ--
			q.sizeImmediate++
			listPushTail(q.immediate, item)
		}
		limit--
		if limit == 0 || !listHas(q.processing) {
			return
		}
	}
}

// drainImmediate lazily moves items from immediate to done, using a single
// adaptive counter (counterImed) rather than a fixed rate. It amortizes to
// roughly O(log N) drains per item while still emptying immediate in
// bounded time under bursty enqueues.
func (q *Queue[T]) drainImmediate() {
	if q.sizeImmediate == 0 {
		return
	}

	if q.counterImed == 0 {
		q.counterImed = uint32(highBit32(q.sizeImmediate)) + 1
		return
	}

	item := listPopHeadQuick(q.immediate)
	item.loc = locDone
	listPushTail(q.done, item)
	q.sizeImmediate--
	q.sizeDone++

	if q.sizeDone < q.sizeImmediate {
		if q.sizeImmediate%2 == 0 {
			item = listPopHeadQuick(q.immediate)
			item.loc = locDone
			listPushTail(q.done, item)
			q.sizeImmediate--
			q.sizeDone++
			q.counterImed >>= 1
		} else {
			q.counterImed--
		}
	} else {
		q.counterImed >>= 2
	}
}

// Dequeue returns the next item in schedule order, or nil if the queue is
// empty.
func (q *Queue[T]) Dequeue() *Item[T] {
	if q.size == 0 {
		return nil
	}

	var popped *Item[T]
	for popped == nil {
		q.drainImmediate()
		if q.sizeQ > 0 {
			if listHas(q.processing) {
				q.drainProcessing()
			} else {
				q.advanceCounter()
			}
		}
		popped = listPopHead(q.done)
	}

	q.sizeDone--
	q.size--
	popped.loc = locNone
	return popped
}

// Remove detaches item from the queue, wherever it currently sits. It is
// idempotent: removing an item that isn't enqueued is a no-op.
func (q *Queue[T]) Remove(item *Item[T]) {
	if !item.Active() {
		return
	}

	switch item.loc {
	case locDone:
		q.sizeDone--
	case locImmediate:
		q.sizeImmediate--
	default:
		q.sizeQ--
	}

	nodeUnlink(item)
	q.size--
	item.loc = locNone
}

// The following accessors exist for testing: they expose internal counters
// and perform O(n) traversal counts, to check the invariants in spec §3
// against each other without relying only on the maintained size fields.

// Counter returns the queue's current rotating priority counter.
func (q *Queue[T]) Counter() uint8 { return q.pc }

// SizeDone, SizeImmediate and SizeQ return the maintained region counters.
func (q *Queue[T]) SizeDone() int      { return int(q.sizeDone) }
func (q *Queue[T]) SizeImmediate() int { return int(q.sizeImmediate) }
func (q *Queue[T]) SizeQ() int         { return int(q.sizeQ) }

// CountDone, CountImmediate, CountProcessing and CountBin walk the
// corresponding list and return its length, independent of the maintained
// counters above.
func (q *Queue[T]) CountDone() int       { return listCount(q.done) }
func (q *Queue[T]) CountImmediate() int  { return listCount(q.immediate) }
func (q *Queue[T]) CountProcessing() int { return listCount(q.processing) }

func (q *Queue[T]) CountBin(i int) int {
	return listCount(q.bins[i&(numBins-1)])
}

// CountAll walks every list and sums their lengths.
func (q *Queue[T]) CountAll() int {
	n := q.CountDone() + q.CountImmediate() + q.CountProcessing()
	for i := range q.bins {
		n += q.CountBin(i)
	}
	return n
}
