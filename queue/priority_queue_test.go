package queue

import (
	"container/heap"
	"testing"
)

func TestPopOrder(t *testing.T) {
	q := New(NewItem(7, 3.0, -1))
	heap.Push(q, NewItem(2, 1.0, -1))
	heap.Push(q, NewItem(5, 2.0, -1))

	want := []int{2, 5, 7}
	for _, id := range want {
		item := heap.Pop(q).(*Item)
		if item.ItemId != id {
			t.Errorf("Pop() = %d; want %d", item.ItemId, id)
		}
	}
}

func TestPopBreaksTiesByItemId(t *testing.T) {
	q := New(nil)
	heap.Push(q, NewItem(9, 1.0, -1))
	heap.Push(q, NewItem(3, 1.0, -1))
	heap.Push(q, NewItem(6, 1.0, -1))

	want := []int{3, 6, 9}
	for _, id := range want {
		item := heap.Pop(q).(*Item)
		if item.ItemId != id {
			t.Errorf("Pop() = %d; want %d", item.ItemId, id)
		}
	}
}

func TestUpdate(t *testing.T) {
	q := New(nil)
	a := NewItem(1, 5.0, -1)
	b := NewItem(2, 4.0, -1)
	heap.Push(q, a)
	heap.Push(q, b)

	q.Update(a, 1.0, 2)

	item := heap.Pop(q).(*Item)
	if item.ItemId != 1 {
		t.Errorf("Pop() = %d; want 1", item.ItemId)
	}
	if item.Predecessor != 2 {
		t.Errorf("Predecessor = %d; want 2", item.Predecessor)
	}
}
