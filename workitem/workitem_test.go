package workitem

import (
	"context"
	"testing"
	"time"

	"github.com/zalgonoise/x/is"
)

func sampleRunnable(context.Context) (any, error) { return nil, nil }

func TestQueuePushBackAndTake(t *testing.T) {
	q := NewQueue()

	a := NewItem(time.Now().Add(time.Second), []float64{1}, 1, sampleRunnable, true)
	b := NewItem(time.Now().Add(2*time.Second), []float64{2}, 1, sampleRunnable, true)

	idA := q.PushBack(a)
	idB := q.PushBack(b)

	is.True(t, idA != idB)
	is.Equal(t, 2, q.Len())

	front, frontID := q.Front()
	is.Equal(t, a, front)
	is.Equal(t, idA, frontID)

	got, ok := q.Take(idB)
	is.True(t, ok)
	is.Equal(t, b, got)
	is.Equal(t, 1, q.Len())

	_, ok = q.Take(idB)
	is.True(t, !ok)
}

func TestQueuePopFrontFIFO(t *testing.T) {
	q := NewQueue()

	first := NewItem(time.Time{}, nil, 1, sampleRunnable, false)
	second := NewItem(time.Time{}, nil, 1, sampleRunnable, false)

	q.PushBack(first)
	q.PushBack(second)

	is.Equal(t, first, q.PopFront())
	is.Equal(t, second, q.PopFront())
	is.True(t, q.PopFront() == nil)
}

func TestTypeOfStableAcrossCalls(t *testing.T) {
	t1 := TypeOf(sampleRunnable)
	t2 := TypeOf(sampleRunnable)

	is.Equal(t, t1, t2)

	other := func(context.Context) (any, error) { return nil, nil }
	is.True(t, TypeOf(other) != t1)
}
