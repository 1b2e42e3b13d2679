package analytics

// Partitioner assigns each point to one of k groups.
// Implementations must be deterministic for a given seed and return
// labels in [0, k).
type Partitioner interface {
	Partition(points [][]float64, k int, seed uint64) ([]int, error)
}
