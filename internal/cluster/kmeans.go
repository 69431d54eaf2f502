package cluster

import (
	"math"
	"math/rand"
)

// kmeansRun holds the outcome of clustering at a fixed k.
type kmeansRun struct {
	labels  []int
	inertia float64
}

// kmeans clusters points into k groups with Lloyd's algorithm and
// k-means++ seeding, restarting Restarts times from the configured
// seed and keeping the lowest-inertia run. Deterministic for a fixed
// Config.
func (e *Engine) kmeans(points [][]float64, k int) kmeansRun {
	best := kmeansRun{inertia: math.Inf(1)}

	for r := 0; r < e.cfg.Restarts; r++ {
		rng := rand.New(rand.NewSource(e.cfg.Seed + int64(r)))
		run := lloyd(points, k, rng, e.cfg.MaxIterations)
		if run.inertia < best.inertia {
			best = run
		}
	}

	return best
}

func lloyd(points [][]float64, k int, rng *rand.Rand, maxIter int) kmeansRun {
	centroids := seedCentroids(points, k, rng)
	labels := make([]int, len(points))

	var inertia float64
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		inertia = 0

		for i, p := range points {
			label, dist := nearestCentroid(p, centroids)
			if labels[i] != label {
				labels[i] = label
				changed = true
			}
			inertia += dist
		}

		if !changed && iter > 0 {
			break
		}
		recomputeCentroids(points, labels, centroids, rng)
	}

	return kmeansRun{labels: labels, inertia: inertia}
}

// seedCentroids implements k-means++ initialisation: the first centroid
// is uniform, each subsequent one is drawn proportionally to the squared
// distance from the nearest already-chosen centroid.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(len(points))]))

	dists := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			_, d := nearestCentroid(p, centroids)
			dists[i] = d
			total += d
		}

		if total == 0 {
			// All points coincide with a centroid; fall back to uniform.
			centroids = append(centroids, clone(points[rng.Intn(len(points))]))
			continue
		}

		target := rng.Float64() * total
		var acc float64
		chosen := len(points) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clone(points[chosen]))
	}

	return centroids
}

func nearestCentroid(p []float64, centroids [][]float64) (int, float64) {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(p, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best, bestDist
}

// recomputeCentroids moves each centroid to the mean of its members.
// An emptied cluster is re-seeded on a random point to keep k stable.
func recomputeCentroids(points [][]float64, labels []int, centroids [][]float64, rng *rand.Rand) {
	dim := len(points[0])
	counts := make([]int, len(centroids))
	for c := range centroids {
		centroids[c] = make([]float64, dim)
	}

	for i, p := range points {
		c := labels[i]
		counts[c]++
		for j, x := range p {
			centroids[c][j] += x
		}
	}

	for c := range centroids {
		if counts[c] == 0 {
			centroids[c] = clone(points[rng.Intn(len(points))])
			continue
		}
		for j := range centroids[c] {
			centroids[c][j] /= float64(counts[c])
		}
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
