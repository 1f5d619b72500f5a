package kquant

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countLeaves walks the tree instead of trusting the
// counter.
func countLeaves(o *Octree) int {
	count := 0
	stack := []int32{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &o.nodes[idx]
		if node.leaf {
			count++
			continue
		}
		for _, child := range node.children {
			if child != 0 {
				stack = append(stack, child)
			}
		}
	}
	return count
}

// leafOf follows a color's path until it reaches a leaf.
func leafOf(o *Octree, c Color) int32 {
	idx := int32(0)
	for level := 0; !o.nodes[idx].leaf; level++ {
		if alias := o.nodes[idx].alias; alias != 0 {
			idx = alias
			continue
		}
		idx = o.nodes[idx].children[childIndex(c, level)]
	}
	return idx
}

func clusteredPixels(r *rand.Rand, n int) []Color {
	centers := randomPalette(r, 12)
	res := make([]Color, n)
	for i := range res {
		c := centers[r.Intn(len(centers))]
		res[i] = c.AddClamped(Vector3{X: r.Intn(41) - 20, Y: r.Intn(41) - 20, Z: r.Intn(41) - 20})
	}
	return res
}

func TestChildIndex(t *testing.T) {
	c := Color{R: 0x80, G: 0x00, B: 0x80}
	assert.Equal(t, 5, childIndex(c, 0))
	assert.Equal(t, 0, childIndex(c, 1))
	assert.Equal(t, 7, childIndex(Color{R: 1, G: 1, B: 1}, 7))
	assert.Equal(t, 2, childIndex(Color{G: 1}, 7))
}

func TestOctreeFewerColorsThanK(t *testing.T) {
	pixels := []Color{{R: 1}, {G: 2}, {B: 3}, {R: 1}, {G: 2}}
	p := OctreePalette(pixels, 10)
	assert.ElementsMatch(t, Palette{{R: 1}, {G: 2}, {B: 3}}, p)
}

func TestOctreeSinglePixel(t *testing.T) {
	p := OctreePalette([]Color{{R: 10, G: 20, B: 30}}, 5)
	assert.Equal(t, Palette{{R: 10, G: 20, B: 30}}, p)
}

func TestOctreeBlackAndWhite(t *testing.T) {
	white := Color{R: 255, G: 255, B: 255}
	p := OctreePalette([]Color{{}, {}, white, white}, 2)
	assert.ElementsMatch(t, Palette{{}, white}, p)
}

func TestOctreeSingleColorPalette(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	pixels := randomPalette(r, 500)
	var g Group
	for _, c := range pixels {
		g.Add(c)
	}
	mean, _ := g.Mean()
	assert.Equal(t, Palette{mean}, OctreePalette(pixels, 1))
}

func TestOctreePaletteProperties(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for trial := 0; trial < 20; trial++ {
		pixels := clusteredPixels(r, 2000)
		distinct := NewDistinctColors(pixels).Len()
		k := r.Intn(64) + 1

		o := NewOctree()
		for _, c := range pixels {
			o.Add(c)
		}
		p := o.Palette(k)

		require.Equal(t, min(k, distinct), len(p))
		require.Equal(t, len(p), o.Leaves())
		require.Equal(t, countLeaves(o), o.Leaves())

		// Every entry is the truncated mean of the pixels
		// routed to its leaf.
		groups := map[int32]*Group{}
		for _, c := range pixels {
			leaf := leafOf(o, c)
			if groups[leaf] == nil {
				groups[leaf] = &Group{}
			}
			groups[leaf].Add(c)
		}
		var means Palette
		for _, g := range groups {
			mean, ok := g.Mean()
			require.True(t, ok)
			means = append(means, mean)
		}
		assert.ElementsMatch(t, means, p)
	}
}

func TestOctreeExactPaletteSize(t *testing.T) {
	r := rand.New(rand.NewSource(23))
	uniform := randomPalette(r, 50000)
	clustered := clusteredPixels(r, 20000)
	for _, pixels := range [][]Color{uniform, clustered} {
		distinct := NewDistinctColors(pixels).Len()
		for _, k := range []int{1, 2, 3, 4, 5, 7, 8, 9, 16, 32, 100, 256} {
			o := NewOctree()
			for _, c := range pixels {
				o.Add(c)
			}
			p := o.Palette(k)
			require.Equal(t, min(k, distinct), len(p), "k=%d", k)
			require.Equal(t, len(p), o.Leaves())
			require.Equal(t, countLeaves(o), o.Leaves())
		}
	}
}

func TestOctreeMergeChildren(t *testing.T) {
	// Four root branches with counts 4, 3, 2 and 1.
	var pixels []Color
	for i, n := range []int{4, 3, 2, 1} {
		c := Color{R: uint8(i>>1) << 7, G: uint8(i&1) << 7}
		for j := 0; j < n; j++ {
			pixels = append(pixels, c)
		}
	}
	o := NewOctree()
	for _, c := range pixels {
		o.Add(c)
	}
	p := o.Palette(2)

	// The two smallest branches fold into the second largest:
	// (3*G128 + 2*R128 + 1*R128G128) / 6.
	assert.Equal(t, Palette{{}, {R: 64, G: 85}}, p)
	assert.Equal(t, 2, o.Leaves())
	assert.Equal(t, 2, countLeaves(o))
	assert.Equal(t, leafOf(o, Color{G: 128}), leafOf(o, Color{R: 128, G: 128}))
	assert.NotEqual(t, leafOf(o, Color{}), leafOf(o, Color{R: 128}))
}

func TestOctreeLeafCountAfterEveryReduction(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	o := NewOctree()
	for _, c := range clusteredPixels(r, 3000) {
		o.Add(c)
	}
	require.Equal(t, countLeaves(o), o.Leaves())

	for level := OctreeDepth - 1; level >= 0; level-- {
		queue := o.levels[level]
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			o.collapse(idx)
			require.Equal(t, countLeaves(o), o.Leaves(), "level %d", level)
		}
		o.levels[level] = queue
	}
	assert.Equal(t, 1, o.Leaves())
}

func TestOctreeNodesRecycled(t *testing.T) {
	o := NewOctree()
	o.Add(Color{R: 255})
	o.Add(Color{B: 255})
	total := len(o.nodes)
	o.Palette(1)
	assert.Len(t, o.free, total-1)
	for level := range o.levels {
		for _, idx := range o.levels[level] {
			assert.NotContains(t, o.free, idx)
		}
	}
}

func TestOctreeDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	pixels := clusteredPixels(r, 5000)
	p1 := OctreePalette(pixels, 16)
	p2 := OctreePalette(pixels, 16)
	assert.Equal(t, p1, p2)
}

func TestOctreeEmpty(t *testing.T) {
	assert.Empty(t, OctreePalette(nil, 4))
}
