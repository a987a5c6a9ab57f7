// Package priorityq implements a lazy, starvation-free, bounded-priority
// scheduling queue. Items are tagged with a priority in [0, 127] or a
// distinguished urgent tag, and are returned in an order that approximates
// strict priority while guaranteeing that no item starves, even under
// adversarial workloads of continuous high-priority arrivals.
//
// The queue is an intrusive data structure: items are linked-list nodes
// owned by the caller, and the queue never allocates per-item memory. It is
// not safe for concurrent use; callers sharing a Queue across goroutines
// must provide their own synchronization.
package priorityq
