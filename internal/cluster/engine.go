// Package cluster groups chunk embeddings into a data-driven number of
// semantic clusters. It is used for exploratory grouping of a document's
// chunks, not for the authoritative similarity search.
package cluster

import "math"

// Default engine configuration.
const (
	// DefaultMaxClusters caps the candidate cluster counts evaluated.
	DefaultMaxClusters = 10

	// DefaultRestarts is the number of seeded k-means restarts per
	// candidate k; the lowest-inertia run wins.
	DefaultRestarts = 10

	// DefaultMaxIterations bounds Lloyd iterations per run.
	DefaultMaxIterations = 300
)

// Config configures the cluster engine. The seed is exposed so tests
// can assert exact assignments.
type Config struct {
	MaxClusters   int
	Restarts      int
	MaxIterations int
	Seed          int64
}

// Engine selects a cluster count by silhouette score and assigns
// chunk indices to cluster labels.
type Engine struct {
	cfg Config
}

// New creates an engine, applying defaults for zero-valued fields.
func New(cfg Config) *Engine {
	if cfg.MaxClusters <= 0 {
		cfg.MaxClusters = DefaultMaxClusters
	}
	if cfg.Restarts <= 0 {
		cfg.Restarts = DefaultRestarts
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Engine{cfg: cfg}
}

// Assign maps each embedding index to a cluster label in [0, k), with k
// chosen dynamically. Fewer than two embeddings short-circuit to a
// trivial result without running k-means. For each candidate
// k in [2, min(MaxClusters, n)] a seeded k-means run records inertia
// and, where defined (k <= n-1), the silhouette score; the first k
// maximising silhouette wins. When no candidate has a valid silhouette
// (all candidates equal n) the smallest candidate k is used.
func (e *Engine) Assign(embeddings [][]float32) map[int]int {
	n := len(embeddings)
	labels := make(map[int]int, n)

	if n == 0 {
		return labels
	}
	if n == 1 {
		labels[0] = 0
		return labels
	}

	points := toFloat64(embeddings)

	maxK := e.cfg.MaxClusters
	if maxK > n {
		maxK = n
	}

	bestK := 2
	bestScore := math.Inf(-1)
	assignments := make(map[int][]int, maxK-1)

	for k := 2; k <= maxK; k++ {
		run := e.kmeans(points, k)
		assignments[k] = run.labels

		if k > n-1 {
			// Silhouette is undefined when every cluster is a
			// singleton; skip candidates with k == n.
			continue
		}
		score := silhouette(points, run.labels, k)
		if score > bestScore {
			bestScore = score
			bestK = k
		}
	}

	chosen := assignments[2]
	if !math.IsInf(bestScore, -1) {
		chosen = assignments[bestK]
	}

	for i, label := range chosen {
		labels[i] = label
	}
	return labels
}

func toFloat64(embeddings [][]float32) [][]float64 {
	points := make([][]float64, len(embeddings))
	for i, v := range embeddings {
		row := make([]float64, len(v))
		for j, x := range v {
			row[j] = float64(x)
		}
		points[i] = row
	}
	return points
}

// silhouette computes the mean silhouette score over all points:
// (b-a)/max(a,b) where a is the mean intra-cluster distance and b the
// mean distance to the nearest other cluster. Points in singleton
// clusters score 0.
func silhouette(points [][]float64, labels []int, k int) float64 {
	n := len(points)

	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}

	var total float64
	for i := 0; i < n; i++ {
		if sizes[labels[i]] <= 1 {
			continue // contributes 0
		}

		// Sum of distances from point i to every cluster.
		sums := make([]float64, k)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sums[labels[j]] += euclidean(points[i], points[j])
		}

		own := labels[i]
		a := sums[own] / float64(sizes[own]-1)

		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || sizes[c] == 0 {
				continue
			}
			if mean := sums[c] / float64(sizes[c]); mean < b {
				b = mean
			}
		}

		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}

	return total / float64(n)
}

func euclidean(a, b []float64) float64 {
	return math.Sqrt(squaredDistance(a, b))
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
