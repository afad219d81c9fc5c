package mesh

// queueItem is a leaf tetrahedron waiting to be split.
type queueItem struct {
	priority float64
	id       int
}

// tetraQueue is a max-heap of leaves for use with container/heap. Equal
// priorities pop the lower tetrahedron id first so refinement is deterministic.
type tetraQueue []queueItem

func (q tetraQueue) Len() int { return len(q) }

func (q tetraQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].id < q[j].id
}

func (q tetraQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *tetraQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *tetraQueue) Pop() any {
	old := *q
	n := len(old) - 1
	item := old[n]
	*q = old[:n]
	return item
}

// head returns the priority of the next leaf to split, or 0 if the queue is empty.
func (q tetraQueue) head() float64 {
	if len(q) == 0 {
		return 0
	}
	return q[0].priority
}
