package pathgraph

// searchItem is a frontier (or settled) entry of a search.
type searchItem struct {
	node   *Node
	g      float64 // cost from start
	f      float64 // g plus heuristic
	parent *searchItem
	seq    uint64 // insertion order, breaks ties
	index  int    // position in the heap, -1 once popped
}

// frontier implements heap.Interface ordered by f, then insertion order.
type frontier []*searchItem

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q frontier) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *frontier) Push(x any) {
	it := x.(*searchItem)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}
