package firepath

import (
	"cmp"
	"container/heap"
	"slices"
)

// PriorityQueueItem is an A* frontier entry. Seq orders items with equal FCost
// by insertion so the pop order never depends on heap layout.
type PriorityQueueItem struct {
	Node         Coord
	Parent       Coord
	GScore       float64
	FCost        float64
	Seq          uint64
	IndexInQueue int
}

// PriorityQueue is a container/heap min-heap on (FCost, Seq).
type PriorityQueue []*PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	if queue[i].FCost != queue[j].FCost {
		return queue[i].FCost < queue[j].FCost
	}
	return queue[i].Seq < queue[j].Seq
}
func (queue PriorityQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue) Push(x any) {
	item := x.(*PriorityQueueItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}

// openSet pairs the heap with a coordinate index for membership tests and
// decrease-key.
type openSet struct {
	queue PriorityQueue
	items map[Coord]*PriorityQueueItem
	seq   uint64
}

func newOpenSet() *openSet {
	s := &openSet{
		queue: make(PriorityQueue, 0, 16),
		items: make(map[Coord]*PriorityQueueItem),
	}
	heap.Init(&s.queue)
	return s
}

func (s *openSet) Len() int { return s.queue.Len() }

func (s *openSet) get(c Coord) (*PriorityQueueItem, bool) {
	item, ok := s.items[c]
	return item, ok
}

func (s *openSet) push(node, parent Coord, g, f float64) *PriorityQueueItem {
	s.seq++
	item := &PriorityQueueItem{Node: node, Parent: parent, GScore: g, FCost: f, Seq: s.seq}
	heap.Push(&s.queue, item)
	s.items[node] = item
	return item
}

// requeue puts a previously popped item back with its original ordering key.
func (s *openSet) requeue(item *PriorityQueueItem) {
	heap.Push(&s.queue, item)
	s.items[item.Node] = item
}

func (s *openSet) pop() *PriorityQueueItem {
	item := heap.Pop(&s.queue).(*PriorityQueueItem)
	delete(s.items, item.Node)
	return item
}

func (s *openSet) peek() *PriorityQueueItem { return s.queue[0] }

// decrease lowers an item's scores in place and restores heap order. The item
// is treated as newly inserted for tie ordering.
func (s *openSet) decrease(item *PriorityQueueItem, parent Coord, g, f float64) {
	s.seq++
	item.Parent = parent
	item.GScore = g
	item.FCost = f
	item.Seq = s.seq
	heap.Fix(&s.queue, item.IndexInQueue)
}

// snapshot lists the queued coordinates in pop order without mutating the heap.
func (s *openSet) snapshot() []Coord {
	items := slices.Clone([]*PriorityQueueItem(s.queue))
	slices.SortFunc(items, func(a, b *PriorityQueueItem) int {
		if c := cmp.Compare(a.FCost, b.FCost); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	out := make([]Coord, len(items))
	for i, item := range items {
		out[i] = item.Node
	}
	return out
}
