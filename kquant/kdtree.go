package kquant

import "math"

const noNode = -1

type kdNode struct {
	entry       int32
	left, right int32
	dim         uint8
}

// A KDTree answers nearest-neighbor queries over the
// entries of a palette.
//
// The tree refers to palette entries by index, so it must
// be rebuilt with Reset whenever the palette changes.
type KDTree struct {
	palette Palette
	nodes   []kdNode
	root    int32
}

// NewKDTree builds a tree over the palette.
func NewKDTree(p Palette) *KDTree {
	t := &KDTree{}
	t.Reset(p)
	return t
}

// Reset rebuilds the tree for the current contents of p,
// reusing the node storage.
func (t *KDTree) Reset(p Palette) {
	t.palette = p
	if cap(t.nodes) < len(p) {
		t.nodes = make([]kdNode, len(p))
	}
	t.nodes = t.nodes[:len(p)]
	for i := range t.nodes {
		t.nodes[i] = kdNode{entry: int32(i), left: noNode, right: noNode}
	}
	t.root = t.build(0, len(t.nodes), 0)
}

// Len returns the number of palette entries in the tree.
func (t *KDTree) Len() int {
	return len(t.nodes)
}

func (t *KDTree) build(start, end, dim int) int32 {
	if end <= start {
		return noNode
	}
	mid := start + (end-start)/2
	t.selectNth(start, end, mid, dim)
	n := &t.nodes[mid]
	n.dim = uint8(dim)
	next := (dim + 1) % 3
	left := t.build(start, mid, next)
	right := t.build(mid+1, end, next)
	n.left, n.right = left, right
	return int32(mid)
}

func (t *KDTree) key(i, dim int) uint8 {
	return t.palette[t.nodes[i].entry].Channel(dim)
}

// selectNth partially orders nodes[start:end] so that the
// node at n has no greater key to its left and no smaller
// key to its right.
func (t *KDTree) selectNth(start, end, n, dim int) {
	lo, hi := start, end-1
	for lo < hi {
		p := t.partition(lo, hi, dim)
		if p == n {
			return
		} else if p < n {
			lo = p + 1
		} else {
			hi = p - 1
		}
	}
}

// partition uses a median-of-three pivot and returns the
// pivot's final position.
func (t *KDTree) partition(lo, hi, dim int) int {
	mid := lo + (hi-lo)/2
	if t.key(mid, dim) < t.key(lo, dim) {
		t.swap(mid, lo)
	}
	if t.key(hi, dim) < t.key(lo, dim) {
		t.swap(hi, lo)
	}
	if t.key(mid, dim) < t.key(hi, dim) {
		t.swap(mid, hi)
	}
	pivot := t.key(hi, dim)
	store := lo
	for i := lo; i < hi; i++ {
		if t.key(i, dim) < pivot {
			t.swap(i, store)
			store++
		}
	}
	t.swap(store, hi)
	return store
}

func (t *KDTree) swap(i, j int) {
	t.nodes[i], t.nodes[j] = t.nodes[j], t.nodes[i]
}

// Nearest finds the index of the palette entry closest to
// c. It returns -1 only if the tree is empty.
func (t *KDTree) Nearest(c Color) int {
	if t.root == noNode {
		return -1
	}
	s := nearestSearch{query: c, best: noNode, bestDist: math.MaxInt}
	t.search(t.root, &s)
	return int(t.nodes[s.best].entry)
}

type nearestSearch struct {
	query    Color
	best     int32
	bestDist int
}

func (t *KDTree) search(idx int32, s *nearestSearch) {
	n := &t.nodes[idx]
	c := t.palette[n.entry]
	if d := c.DistSquared(s.query); d < s.bestDist {
		s.best = idx
		s.bestDist = d
	}
	if s.bestDist == 0 {
		return
	}

	dim := int(n.dim)
	diff := int(s.query.Channel(dim)) - int(c.Channel(dim))
	near, far := n.right, n.left
	if diff < 0 {
		near, far = n.left, n.right
	}
	if near != noNode {
		t.search(near, s)
	}
	if far != noNode && diff*diff < s.bestDist {
		t.search(far, s)
	}
}
