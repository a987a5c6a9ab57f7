package priorityq

// The Queue's four lists are circular, sentinel-headed doubly-linked lists.
// The sentinel is itself an *Item[T], exactly like the items it holds — it
// is simply never returned to a caller and never carries a meaningful
// payload. An item not in any list has nil prev/next; a sentinel always
// points somewhere (at minimum, at itself).

// listClear self-loops a sentinel, making it represent an empty list.
func listClear[T any](head *Item[T]) {
	head.next = head
	head.prev = head
}

// listHas reports whether a sentinel-headed list holds at least one item.
func listHas[T any](head *Item[T]) bool {
	return head.next != head
}

// listCount walks a list and counts its items. O(n); used for diagnostics
// and tests, never on a hot path.
func listCount[T any](head *Item[T]) int {
	n := 0
	for cur := head.next; cur != head; cur = cur.next {
		n++
	}
	return n
}

// listPushTail inserts n at the tail of the list headed by head.
func listPushTail[T any](head, n *Item[T]) {
	n.next = head
	n.prev = head.prev
	head.prev.next = n
	head.prev = n
}

// nodeUnlinkOnly removes n from whatever list it sits in, without clearing
// n's own links. Used when n is about to be relinked elsewhere immediately.
func nodeUnlinkOnly[T any](n *Item[T]) {
	n.next.prev = n.prev
	n.prev.next = n.next
}

// nodeUnlink removes n from its list and clears its links, marking it as
// not present in any list.
func nodeUnlink[T any](n *Item[T]) {
	nodeUnlinkOnly(n)
	n.prev = nil
	n.next = nil
}

// listPopHeadQuick pops the head of a list known to be non-empty. The
// popped node's own links are left dangling (unlinked-only); the caller is
// expected to relink it immediately.
func listPopHeadQuick[T any](head *Item[T]) *Item[T] {
	n := head.next
	nodeUnlinkOnly(n)
	return n
}

// listPopHead pops the head of a list, or returns nil if it is empty. The
// popped node is fully unlinked (nil prev/next).
func listPopHead[T any](head *Item[T]) *Item[T] {
	if head.next == head {
		return nil
	}
	n := head.next
	nodeUnlink(n)
	return n
}

// listAppend splices every item out of src onto the tail of dst, in O(1),
// and leaves src empty.
func listAppend[T any](dst, src *Item[T]) {
	if !listHas(src) {
		return
	}
	src.next.prev = dst.prev
	src.prev.next = dst
	dst.prev.next = src.next
	dst.prev = src.prev
	listClear(src)
}
