package tsp

import (
	"runtime"

	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/geo"

	"golang.org/x/sync/errgroup"
)

// DistanceMatrix is a symmetric table of pairwise great-circle distances in
// kilometers, indexed by point index. It is built once and read-only afterward:
// the diagonal is zero and d[i][j] == d[j][i] for every pair.
type DistanceMatrix struct {
	d [][]float64
}

// Size returns the number of points the matrix covers.
func (m *DistanceMatrix) Size() int {
	return len(m.d)
}

// At returns the distance between points i and j in kilometers.
func (m *DistanceMatrix) At(i, j int) float64 {
	return m.d[i][j]
}

// BuildDistanceMatrix computes the pairwise Haversine distance matrix for the
// given points. Any finite input is accepted, including empty and singleton
// lists; duplicate coordinates simply yield zero distance between them.
//
// Only the upper triangle is computed, each row on its own goroutine; the
// lower triangle is mirrored. Every cell has exactly one writer, so the result
// is identical to a sequential build.
func BuildDistanceMatrix(points []Point) *DistanceMatrix {
	n := len(points)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}

	g := errgroup.Group{}
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			for j := i + 1; j < n; j++ {
				dist := geo.HaversineDistance(points[i].Lat, points[i].Lon,
					points[j].Lat, points[j].Lon)
				d[i][j] = dist
				d[j][i] = dist
			}
			return nil
		})
	}
	_ = g.Wait() // row workers never fail

	return &DistanceMatrix{d: d}
}

// NewDistanceMatrix wraps a prebuilt table. Intended for tests and callers
// that carry their own metric; the table is used as-is.
func NewDistanceMatrix(d [][]float64) *DistanceMatrix {
	return &DistanceMatrix{d: d}
}
