package cache

// node is an intrusive list element owned by the pool. Every node is
// threaded onto two independent doubly linked lists: the recency list
// (head is MRU, tail is LRU) and the insertion-order list (head is the
// oldest key). A node is a member of both lists exactly as long as its
// key is in the pool map.
type node struct {
	key string
	ent Entry

	// Recency links.
	lruPrev *node
	lruNext *node

	// Insertion-order links. Not touched on update; only add and
	// delete move a node here.
	insPrev *node
	insNext *node
}
