package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_Next_ReturnsEarliestAndAdvancesClock(t *testing.T) {
	// GIVEN events added out of time order
	q := NewEventQueue()
	q.Add(NewConsumptionEvent(5, 0, 1))
	q.Add(NewReorderEvent(2, 0, 4))
	q.Add(NewConsumptionEvent(3.5, 1, 2))

	// WHEN they are drained
	var times []float64
	for q.HasPending() {
		e := q.Next()
		times = append(times, e.Timestamp())
		// THEN the clock follows every returned event
		assert.Equal(t, e.Timestamp(), q.Clock())
	}

	assert.Equal(t, []float64{2, 3.5, 5}, times)
}

func TestEventQueue_EqualTimes_AreFIFO(t *testing.T) {
	// GIVEN several events with the same execution time
	q := NewEventQueue()
	for i := 0; i < 5; i++ {
		q.Add(NewConsumptionEvent(1, i, 1))
	}
	q.Add(NewReorderEvent(1, 99, 3))

	// WHEN they are drained
	var order []int
	for q.HasPending() {
		order = append(order, q.Next().Material())
	}

	// THEN they come out in insertion order
	assert.Equal(t, []int{0, 1, 2, 3, 4, 99}, order)
}

func TestEventQueue_Peek_DoesNotMutate(t *testing.T) {
	// GIVEN a queue with two events
	q := NewEventQueue()
	q.Add(NewConsumptionEvent(4, 0, 1))
	q.Add(NewConsumptionEvent(1, 1, 1))

	// WHEN Peek is called
	got := q.Peek()

	// THEN it returns the earliest event without removing it or moving the clock
	require.NotNil(t, got)
	assert.Equal(t, 1.0, got.Timestamp())
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 0.0, q.Clock())
}

func TestEventQueue_Empty_ReturnsNil(t *testing.T) {
	q := NewEventQueue()

	assert.False(t, q.HasPending())
	assert.Nil(t, q.Peek())
	assert.Nil(t, q.Next())
	assert.Equal(t, 0.0, q.Clock())
}

func TestEvent_Kinds(t *testing.T) {
	var c Event = NewConsumptionEvent(0, 3, -1)
	var r Event = NewReorderEvent(2, 3, 7)

	assert.Equal(t, "consumption", c.Kind())
	assert.Equal(t, "order arrival", r.Kind())
	assert.Equal(t, 3, c.Material())
	assert.Equal(t, -1, c.(*ConsumptionEvent).Demand)
	assert.Equal(t, 7, r.(*ReorderEvent).Quantity)
}
