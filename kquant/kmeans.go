package kquant

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxKMeansIters is the default maximum number of
// iterations of the k-means algorithm for clustering.
//
// Clustering normally stops as soon as no centroid moves,
// which is guaranteed to happen eventually on integer
// colors unless empty clusters make it oscillate.
const DefaultMaxKMeansIters = 256

// A Seed selects how the initial k-means centroids are
// chosen.
type Seed int

const (
	// SeedOctree uses the palette produced by an Octree.
	SeedOctree Seed = iota

	// SeedSample uses the first k distinct colors of the
	// image, in raster order.
	SeedSample
)

// ParseSeed parses the name of a Seed.
func ParseSeed(s string) (Seed, error) {
	switch strings.ToLower(s) {
	case "octree":
		return SeedOctree, nil
	case "sample":
		return SeedSample, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSeed, s)
	}
}

func (s Seed) String() string {
	switch s {
	case SeedSample:
		return "sample"
	default:
		return "octree"
	}
}

// Clusters is the working state of k-means: the current
// centers, a group per center and the search tree over the
// centers.
type Clusters struct {
	Centers Palette
	Groups  []Group

	// Loss is the sum of squared distances between each
	// pixel and its assigned center in the last iteration.
	Loss int

	// Empty is the number of centers which were assigned no
	// pixels in the last iteration.
	Empty int

	tree *KDTree
}

// NewClusters creates clusters starting from a copy of the
// seed palette.
func NewClusters(seed Palette) *Clusters {
	return &Clusters{
		Centers: append(Palette{}, seed...),
		Groups:  make([]Group, len(seed)),
		tree:    &KDTree{},
	}
}

// Iterate performs a step of k-means and returns the
// largest squared distance moved by any center.
//
// If the result is zero, the process has converged.
// Centers with no pixels keep their previous color.
func (c *Clusters) Iterate(pixels []Color) int {
	for i := range c.Groups {
		c.Groups[i].Clear()
	}
	c.tree.Reset(c.Centers)

	c.Loss = 0
	for _, p := range pixels {
		idx := c.tree.Nearest(p)
		c.Groups[idx].Add(p)
		c.Loss += p.DistSquared(c.Centers[idx])
	}

	shift := 0
	c.Empty = 0
	for i := range c.Groups {
		center, ok := c.Groups[i].Mean()
		if !ok {
			c.Empty++
			continue
		}
		if d := center.DistSquared(c.Centers[i]); d > shift {
			shift = d
		}
		c.Centers[i] = center
	}
	return shift
}

// A RefineResult summarizes a k-means run.
type RefineResult struct {
	Palette    Palette
	Iterations int
	Converged  bool

	// Loss is the total squared error of the final
	// assignment step.
	Loss int
}

// A Refiner runs k-means clustering on pixel colors.
type Refiner struct {
	// MaxIters limits the number of iterations.
	// If it is zero, DefaultMaxKMeansIters is used.
	// If it is negative, iterations are unbounded.
	MaxIters int

	// Seed is used when no initial palette is supplied.
	Seed Seed

	// Logger may be nil to disable logging.
	Logger *zap.Logger
}

// Refine clusters the pixels into k colors, starting from
// the given seed palette. If seed is nil, one is produced
// according to r.Seed. A seed with fewer than k entries is
// padded with unused image colors.
//
// The number of clusters is clamped to the number of
// distinct colors in pixels.
func (r *Refiner) Refine(pixels []Color, seed Palette, k int) (*RefineResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPaletteSize, k)
	}
	if len(pixels) == 0 {
		return nil, ErrEmptyInput
	}
	log := r.logger()

	distinct := NewDistinctColors(pixels)
	if n := distinct.Len(); k > n {
		log.Debug("clamping palette size to distinct colors",
			zap.Int("requested", k), zap.Int("distinct", n))
		k = n
	}
	if seed == nil {
		seed = r.seedPalette(pixels, distinct, k)
	}
	if len(seed) > k {
		seed = seed[:k]
	} else if len(seed) < k {
		seed = padSeed(seed, distinct, k)
	}

	maxIters := r.MaxIters
	if maxIters == 0 {
		maxIters = DefaultMaxKMeansIters
	}

	clusters := NewClusters(seed)
	res := &RefineResult{}
	for {
		shift := clusters.Iterate(pixels)
		res.Iterations++
		log.Debug("kmeans iteration",
			zap.Int("iteration", res.Iterations),
			zap.Int("shift", shift),
			zap.Int("loss", clusters.Loss),
			zap.Int("empty_clusters", clusters.Empty))
		if shift == 0 {
			res.Converged = true
			break
		}
		if maxIters > 0 && res.Iterations >= maxIters {
			log.Warn("kmeans stopped before convergence",
				zap.Int("iterations", res.Iterations),
				zap.Int("shift", shift))
			break
		}
	}
	res.Palette = clusters.Centers
	res.Loss = clusters.Loss
	return res, nil
}

func (r *Refiner) seedPalette(pixels []Color, distinct *DistinctColors, k int) Palette {
	switch r.Seed {
	case SeedSample:
		return append(Palette{}, distinct.First[:k]...)
	default:
		return OctreePalette(pixels, k)
	}
}

// padSeed extends a short seed to k entries with image
// colors it does not already contain, in raster order.
func padSeed(seed Palette, distinct *DistinctColors, k int) Palette {
	used := NewDistinctColors(seed)
	res := append(Palette{}, seed...)
	for _, c := range distinct.First {
		if len(res) == k {
			break
		}
		if !used.Contains(c) {
			res = append(res, c)
		}
	}
	return res
}

func (r *Refiner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
