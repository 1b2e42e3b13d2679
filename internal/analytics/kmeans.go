package analytics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// KMeans partitions points with Lloyd's algorithm and k-means++ seeding.
// The run with the lowest inertia out of NInit is kept.
type KMeans struct {
	NInit     int
	MaxIter   int
	Tolerance float64
}

// NewKMeans returns a KMeans with 10 initializations and 300 iterations
func NewKMeans() *KMeans {
	return &KMeans{NInit: 10, MaxIter: 300, Tolerance: 1e-4}
}

// Partition implements Partitioner. Labels are numbered by first appearance,
// so the first point is always in group 0.
func (km *KMeans) Partition(points [][]float64, k int, seed uint64) ([]int, error) {
	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("kmeans: no points")
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("kmeans: k=%d out of range for %d points", k, n)
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("kmeans: point %d has %d dimensions, want %d", i, len(p), dim)
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("kmeans: point %d is not finite", i)
			}
		}
	}

	nInit := km.NInit
	if nInit < 1 {
		nInit = 1
	}
	maxIter := km.MaxIter
	if maxIter < 1 {
		maxIter = 300
	}

	rng := rand.New(rand.NewPCG(seed, seed))

	var best []int
	bestInertia := math.Inf(1)
	for run := 0; run < nInit; run++ {
		centers := seedCenters(points, k, rng)
		labels, inertia := km.lloyd(points, centers, maxIter)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}

	return renumber(best), nil
}

// seedCenters picks k initial centers with k-means++
func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(points[rng.IntN(n)]))

	dist := make([]float64, n)
	for i, p := range points {
		dist[i] = sqDistance(p, centers[0])
	}

	for len(centers) < k {
		total := floats.Sum(dist)

		next := rng.IntN(n)
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				acc += d
				if acc >= target && d > 0 {
					next = i
					break
				}
			}
		}

		centers = append(centers, clone(points[next]))
		for i, p := range points {
			dist[i] = math.Min(dist[i], sqDistance(p, points[next]))
		}
	}
	return centers
}

// lloyd runs assignment and update steps until labels stop changing or the
// centers move less than the tolerance. Every cluster keeps at least one point.
func (km *KMeans) lloyd(points, centers [][]float64, maxIter int) ([]int, float64) {
	n, k, dim := len(points), len(centers), len(points[0])
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			nearest := nearestCenter(p, centers)
			if nearest != labels[i] {
				labels[i] = nearest
				changed = true
			}
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		relocateEmpty(points, centers, labels, sums, counts)

		shift := 0.0
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDistance(centers[c], sums[c])
			centers[c] = sums[c]
		}

		if !changed || shift <= km.Tolerance*km.Tolerance {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += sqDistance(p, centers[labels[i]])
	}
	return labels, inertia
}

// relocateEmpty moves each empty cluster onto the point farthest from its
// current center, taking it from a cluster that keeps at least one point
func relocateEmpty(points, centers [][]float64, labels []int, sums [][]float64, counts []int) {
	for c := range counts {
		if counts[c] > 0 {
			continue
		}

		far, farDist := -1, -1.0
		for i, p := range points {
			if counts[labels[i]] < 2 {
				continue
			}
			if d := sqDistance(p, centers[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			continue
		}

		old := labels[far]
		floats.Sub(sums[old], points[far])
		counts[old]--
		labels[far] = c
		sums[c] = clone(points[far])
		counts[c] = 1
	}
}

func nearestCenter(p []float64, centers [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDistance(p, center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sqDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(p []float64) []float64 {
	return append([]float64(nil), p...)
}

// renumber relabels groups in order of first appearance
func renumber(labels []int) []int {
	mapping := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		id, ok := mapping[l]
		if !ok {
			id = len(mapping)
			mapping[l] = id
		}
		out[i] = id
	}
	return out
}
