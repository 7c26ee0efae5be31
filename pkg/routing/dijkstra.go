package routing

import "github.com/paulmach/osm"

// openItem is one A* open-set entry: a search state plus its cost-so-far
// (g) and estimated total cost (f = g + h).
type openItem struct {
	node    uint32
	prevExt osm.NodeID
	hasPrev bool
	g, f    uint32
}

func (a openItem) less(b openItem) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.g < b.g
}

// MinHeap is a concrete-typed min-heap for the A* open set, ordered by
// (f, g). Avoids interface boxing overhead of container/heap.
type MinHeap struct {
	items []openItem
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(item openItem) {
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() openItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].less(h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].less(h.items[smallest]) {
			smallest = left
		}
		if right < n && h.items[right].less(h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
