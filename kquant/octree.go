package kquant

import "sort"

// OctreeDepth is the number of levels below the root of an
// Octree, one per bit of channel precision.
const OctreeDepth = 8

type octreeNode struct {
	group    Group
	children [8]int32
	level    uint8
	leaf     bool

	// alias is set on a leaf that was merged into a
	// sibling; its colors belong to the sibling.
	alias int32
}

// An Octree partitions colors by their channel bits, one
// bit per level, and reduces them to a palette by
// collapsing the least-populated subtrees.
//
// Nodes live in a single slice and refer to each other by
// index. Index 0 is the root, so a zero child means "no
// child". Collapsed nodes are recycled through a free list.
type Octree struct {
	nodes   []octreeNode
	free    []int32
	levels  [OctreeDepth][]int32
	numLeaf int
}

// NewOctree creates an empty octree.
func NewOctree() *Octree {
	o := &Octree{nodes: []octreeNode{{}}}
	o.levels[0] = []int32{0}
	return o
}

// OctreePalette builds a palette of min(k, distinct colors)
// entries from the given pixels.
func OctreePalette(pixels []Color, k int) Palette {
	o := NewOctree()
	for _, c := range pixels {
		o.Add(c)
	}
	return o.Palette(k)
}

// Add routes a color from the root down to its level-8
// leaf, accumulating it into every node on the way.
func (o *Octree) Add(c Color) {
	idx := int32(0)
	for level := 0; level < OctreeDepth; level++ {
		o.nodes[idx].group.Add(c)
		branch := childIndex(c, level)
		child := o.nodes[idx].children[branch]
		if child == 0 {
			child = o.alloc(level + 1)
			o.nodes[idx].children[branch] = child
		}
		idx = child
	}
	o.nodes[idx].group.Add(c)
}

func childIndex(c Color, level int) int {
	shift := 7 - level
	return int((c.R>>shift)&1)<<2 | int((c.G>>shift)&1)<<1 | int((c.B>>shift)&1)
}

func (o *Octree) alloc(level int) int32 {
	node := octreeNode{level: uint8(level), leaf: level == OctreeDepth}
	var idx int32
	if n := len(o.free); n > 0 {
		idx = o.free[n-1]
		o.free = o.free[:n-1]
		o.nodes[idx] = node
	} else {
		idx = int32(len(o.nodes))
		o.nodes = append(o.nodes, node)
	}
	if level < OctreeDepth {
		o.levels[level] = append(o.levels[level], idx)
	} else {
		o.numLeaf++
	}
	return idx
}

// Leaves returns the number of leaf nodes currently in the
// tree.
func (o *Octree) Leaves() int {
	return o.numLeaf
}

// Palette reduces the tree until it has at most k leaves
// and returns the mean color of every remaining leaf.
// Unless the tree holds fewer than k colors, exactly k
// entries are returned.
//
// The tree is modified in place; calling Palette again
// with a larger k does not restore collapsed nodes, and no
// colors may be added afterwards.
func (o *Octree) Palette(k int) Palette {
	for level := OctreeDepth - 1; level >= 0 && o.numLeaf > k; level-- {
		o.reduceLevel(level, k)
	}
	return o.leafColors()
}

// reduceLevel collapses nodes at the given level, least
// populated first, until at most k leaves remain.
//
// Nodes are stably sorted by descending count and popped
// from the tail, so among equal counts the most recently
// created node is collapsed first. When collapsing a whole
// node would leave fewer than k leaves, only some of its
// children are merged instead.
func (o *Octree) reduceLevel(level, k int) {
	queue := o.levels[level]
	sort.SliceStable(queue, func(i, j int) bool {
		return o.nodes[queue[i]].group.N > o.nodes[queue[j]].group.N
	})
	for len(queue) > 0 && o.numLeaf > k {
		idx := queue[len(queue)-1]
		excess := o.numLeaf - k
		if children := o.childCount(idx); children-1 > excess {
			o.mergeChildren(idx, excess)
			break
		}
		queue = queue[:len(queue)-1]
		o.collapse(idx)
	}
	o.levels[level] = queue
}

func (o *Octree) childCount(idx int32) int {
	var n int
	for _, child := range o.nodes[idx].children {
		if child != 0 {
			n++
		}
	}
	return n
}

// mergeChildren removes exactly count leaves below a node
// by folding its count+1 least-populated children into the
// largest of them. Children are stably sorted by descending
// count, so among equal counts the lower branch index is
// kept.
func (o *Octree) mergeChildren(idx int32, count int) {
	var children []int32
	for _, child := range o.nodes[idx].children {
		if child != 0 {
			children = append(children, child)
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return o.nodes[children[i]].group.N > o.nodes[children[j]].group.N
	})
	keep := len(children) - count
	target := children[keep-1]
	for _, child := range children[keep:] {
		node := &o.nodes[child]
		o.nodes[target].group.Merge(&node.group)
		node.group.Clear()
		node.leaf = false
		node.alias = target
		o.numLeaf--
	}
}

// collapse deletes the children of a node and turns it into
// a leaf. The node's own group already holds the sum of its
// subtree, so nothing is merged.
func (o *Octree) collapse(idx int32) {
	node := &o.nodes[idx]
	if node.leaf {
		return
	}
	for i, child := range node.children {
		if child == 0 {
			continue
		}
		o.release(child)
		node.children[i] = 0
	}
	node.leaf = true
	o.numLeaf++
}

// release frees a subtree. Collapsing proceeds bottom-up,
// so by the time a node's parent is collapsed the node is
// normally a leaf; the explicit stack covers the general
// case.
func (o *Octree) release(idx int32) {
	stack := []int32{idx}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &o.nodes[cur]
		if node.leaf {
			o.numLeaf--
		}
		for _, child := range node.children {
			if child != 0 {
				stack = append(stack, child)
			}
		}
		if int(node.level) < OctreeDepth {
			o.unlist(int(node.level), cur)
		}
		o.nodes[cur] = octreeNode{}
		o.free = append(o.free, cur)
	}
}

func (o *Octree) unlist(level int, idx int32) {
	list := o.levels[level]
	for i, x := range list {
		if x == idx {
			o.levels[level] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// leafColors lists the leaves depth-first, visiting
// children in index order.
func (o *Octree) leafColors() Palette {
	var res Palette
	var visit func(idx int32)
	visit = func(idx int32) {
		node := &o.nodes[idx]
		if node.alias != 0 {
			return
		}
		if node.leaf {
			if c, ok := node.group.Mean(); ok {
				res = append(res, c)
			}
			return
		}
		for _, child := range node.children {
			if child != 0 {
				visit(child)
			}
		}
	}
	visit(0)
	return res
}
