package firepath

import "github.com/zyedidia/generic/mapset"

// frontierEntry is a discovered coordinate together with the node that discovered it.
type frontierEntry struct {
	Node   Coord
	Parent Coord
}

// listFrontier is the DFS stack / BFS queue. A membership set answers
// "already in the frontier" without scanning and without touching the order.
type listFrontier struct {
	lifo    bool
	entries []frontierEntry
	head    int
	members mapset.Set[Coord]
	maxSize int
}

func newStackFrontier() *listFrontier { return newListFrontier(true) }

func newQueueFrontier() *listFrontier { return newListFrontier(false) }

func newListFrontier(lifo bool) *listFrontier {
	return &listFrontier{
		lifo:    lifo,
		entries: make([]frontierEntry, 0, 16),
		members: mapset.New[Coord](),
	}
}

func (f *listFrontier) Len() int { return len(f.entries) - f.head }

// MaxLen is the largest size the frontier reached.
func (f *listFrontier) MaxLen() int { return f.maxSize }

func (f *listFrontier) contains(c Coord) bool { return f.members.Has(c) }

func (f *listFrontier) push(node, parent Coord) {
	f.entries = append(f.entries, frontierEntry{Node: node, Parent: parent})
	f.members.Put(node)
	if n := f.Len(); n > f.maxSize {
		f.maxSize = n
	}
}

// pop removes the next entry: the newest for a stack, the oldest for a queue.
// It must not be called on an empty frontier.
func (f *listFrontier) pop() frontierEntry {
	var e frontierEntry
	if f.lifo {
		last := len(f.entries) - 1
		e = f.entries[last]
		f.entries = f.entries[:last]
	} else {
		e = f.entries[f.head]
		f.head++
		// Reclaim the consumed prefix once it dominates the buffer.
		if f.head > 32 && f.head*2 > len(f.entries) {
			n := copy(f.entries, f.entries[f.head:])
			f.entries = f.entries[:n]
			f.head = 0
		}
	}
	f.members.Remove(e.Node)
	return e
}

// snapshot lists the remaining coordinates in the order they would be popped.
func (f *listFrontier) snapshot() []Coord {
	out := make([]Coord, 0, f.Len())
	if f.lifo {
		for i := len(f.entries) - 1; i >= f.head; i-- {
			out = append(out, f.entries[i].Node)
		}
		return out
	}
	for i := f.head; i < len(f.entries); i++ {
		out = append(out, f.entries[i].Node)
	}
	return out
}
