package queue

import (
	"container/heap"
)

type Item struct {
	ItemId      int     // flattened cell index of this item
	Priority    float64 // estimated total cost through this cell
	Predecessor int     // flattened cell index of the predecessor, -1 for the start
	Index       int     // index of the item in the heap
}

// A Queue implements heap.Interface over Items. Equal priorities pop in
// ascending ItemId so that expansion order is deterministic.
type Queue []*Item

func NewItem(itemId int, priority float64, predecessor int) *Item {
	return &Item{ItemId: itemId, Priority: priority, Predecessor: predecessor, Index: -1}
}

func New(initial *Item) *Queue {
	pq := make(Queue, 0)
	heap.Init(&pq)
	if initial != nil {
		heap.Push(&pq, initial)
	}
	return &pq
}

func (h Queue) Len() int {
	return len(h)
}

func (h Queue) Less(i, j int) bool {
	if h[i].Priority == h[j].Priority {
		return h[i].ItemId < h[j].ItemId
	}
	return h[i].Priority < h[j].Priority
}

func (h Queue) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index, h[j].Index = i, j
}

func (h *Queue) Push(item interface{}) {
	n := len(*h)
	pqItem := item.(*Item)
	pqItem.Index = n
	*h = append(*h, pqItem)
}

func (h *Queue) Pop() interface{} {
	old := *h
	n := len(old)
	pqItem := old[n-1]
	old[n-1] = nil
	pqItem.Index = -1
	*h = old[0 : n-1]
	return pqItem
}

// Update lowers the priority of an item already on the queue.
func (h *Queue) Update(pqItem *Item, priority float64, predecessor int) {
	pqItem.Priority = priority
	pqItem.Predecessor = predecessor
	heap.Fix(h, pqItem.Index)
}
