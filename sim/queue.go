// Implements the EventQueue, the time-ordered scheduler that drives a run.

package sim

import "container/heap"

// eventEntry wraps an Event with a sequence ID for deterministic FIFO
// tie-breaking when execution times are equal.
type eventEntry struct {
	event Event
	seqID uint64
}

// eventHeap is a min-heap ordered by (Timestamp, seqID).
// Implements heap.Interface.
type eventHeap []eventEntry

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].event.Timestamp() != h[j].event.Timestamp() {
		return h[i].event.Timestamp() < h[j].event.Timestamp()
	}
	return h[i].seqID < h[j].seqID
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(eventEntry))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// EventQueue holds pending events and the simulation clock. Events with the
// same execution time come out in insertion order.
type EventQueue struct {
	events  eventHeap
	clock   float64
	nextSeq uint64
}

// NewEventQueue creates an empty queue with the clock at 0.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make(eventHeap, 0)}
	heap.Init(&q.events)
	return q
}

// Add schedules an event.
func (q *EventQueue) Add(e Event) {
	q.nextSeq++
	heap.Push(&q.events, eventEntry{event: e, seqID: q.nextSeq})
}

// Next removes the earliest event and advances the clock to its time.
// Returns nil if the queue is empty.
func (q *EventQueue) Next() Event {
	if len(q.events) == 0 {
		return nil
	}
	e := heap.Pop(&q.events).(eventEntry).event
	q.clock = e.Timestamp()
	return e
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0].event
}

func (q *EventQueue) HasPending() bool { return len(q.events) > 0 }

func (q *EventQueue) Len() int { return len(q.events) }

// Clock is the execution time of the most recently returned event.
func (q *EventQueue) Clock() float64 { return q.clock }
