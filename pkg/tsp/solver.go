// Package tsp solves the symmetric Traveling Salesman Problem over geographic
// points with a Nearest-Neighbor construction followed by Iterated Local
// Search: best-improvement 2-opt sweeps with a double-bridge perturbation to
// escape local optima.
package tsp

import (
	"math/rand"
	"sort"
)

const (
	// maxStagnation stops the search after this many consecutive rounds
	// without a global improvement.
	maxStagnation = 200

	// perturbMinStagnation gates the double-bridge move: the tour is only
	// perturbed once the best tour has been stuck for more than this many rounds.
	perturbMinStagnation = 20

	// perturbPeriod forces a perturbation check every this many rounds even
	// when the local search is still improving.
	perturbPeriod = 50
)

// Solver computes closed tours over a fixed distance matrix. A Solver holds
// only immutable inputs (matrix and names); every Solve call owns its working
// state exclusively, so one Solver may serve concurrent solves.
type Solver struct {
	matrix *DistanceMatrix
	names  []string
}

// NewSolver validates the inputs and returns a solver over them.
// Returns ErrNoCities for an empty name list and ErrDimensionMismatch when the
// matrix is not square over exactly len(names) points.
func NewSolver(matrix *DistanceMatrix, names []string) (*Solver, error) {
	if len(names) == 0 {
		return nil, ErrNoCities
	}
	if matrix == nil || matrix.Size() != len(names) {
		return nil, ErrDimensionMismatch
	}
	return &Solver{matrix: matrix, names: names}, nil
}

// Solve computes a closed tour starting and ending at start.
//
// A single city yields the trivial tour [start, start]. Two cities are solved
// by construction alone, since there is only one cycle. With three or more
// cities the Nearest-Neighbor tour is refined by Iterated Local Search for up
// to maxIterations rounds, stopping early after maxStagnation rounds without
// a global improvement.
//
// rng drives the double-bridge cut selection; nil falls back to the default
// deterministic stream. The same rng seed and inputs reproduce the same tour.
func (s *Solver) Solve(start, maxIterations int, rng *rand.Rand) (*Result, error) {
	n := len(s.names)
	if start < 0 || start >= n {
		return nil, ErrStartOutOfRange
	}
	if rng == nil {
		rng = NewRand(0)
	}

	if n == 1 {
		return &Result{
			Tour:   []int{start, start},
			matrix: s.matrix,
			names:  s.names,
		}, nil
	}

	tour := s.nearestNeighbor(start)
	initial := s.tourLength(tour)

	best, bestDist := tour, initial
	rounds := 0
	if n > 2 {
		best, bestDist, rounds = s.iteratedLocalSearch(tour, initial, maxIterations, rng)
	}

	return &Result{
		Tour:            best,
		TotalDistance:   bestDist,
		InitialDistance: initial,
		Rounds:          rounds,
		matrix:          s.matrix,
		names:           s.names,
	}, nil
}

// nearestNeighbor builds the initial closed tour: from start, repeatedly hop
// to the closest unvisited city, then return to start. Ties on distance are
// broken by the lowest city index so construction is fully deterministic.
func (s *Solver) nearestNeighbor(start int) []int {
	n := len(s.names)
	visited := make([]bool, n)
	tour := make([]int, 0, n+1)

	current := start
	tour = append(tour, current)
	visited[current] = true

	for len(tour) < n {
		next := -1
		for candidate := 0; candidate < n; candidate++ {
			if visited[candidate] {
				continue
			}
			// Strict < keeps the lowest-index candidate on equal distances.
			if next == -1 || s.matrix.At(current, candidate) < s.matrix.At(current, next) {
				next = candidate
			}
		}
		tour = append(tour, next)
		visited[next] = true
		current = next
	}

	return append(tour, start)
}

// iteratedLocalSearch refines a closed tour. Each round runs one
// best-improvement 2-opt sweep, tracks the best tour seen so far, and applies
// a double-bridge perturbation when the sweep stalls (or periodically) while
// the global best has been stagnant for a while. The perturbed tour replaces
// the current one unconditionally; it is an escape move, not a greedy step.
func (s *Solver) iteratedLocalSearch(tour []int, dist float64, maxIterations int, rng *rand.Rand) ([]int, float64, int) {
	// Work on the open tour; the closing edge is implicit until a tour is
	// promoted to best.
	current := append([]int(nil), tour[:len(tour)-1]...)
	currentDist := dist

	best := append([]int(nil), tour...)
	bestDist := dist

	stagnation := 0
	rounds := 0

	for round := 0; round < maxIterations; round++ {
		rounds++
		improved, candidate, candidateDist := s.twoOptSweep(current)

		if candidateDist < currentDist {
			current, currentDist = candidate, candidateDist
			if currentDist < bestDist {
				bestDist = currentDist
				best = closeTour(current)
				stagnation = 0
			} else {
				stagnation++
			}
		} else {
			stagnation++
		}

		// Perturb when the sweep stalled, or on the periodic boundary, but
		// only once the global best has been stuck long enough.
		if (!improved || (round%perturbPeriod == 0 && round > 0)) && stagnation > perturbMinStagnation {
			current = doubleBridge(current, rng)
			currentDist = s.tourLength(closeTour(current))
		}

		if stagnation >= maxStagnation {
			break
		}
	}

	return best, bestDist, rounds
}

// twoOptSweep scans every non-adjacent position pair (i, j) over the open
// tour, reverses the segment between i+1 and j, and keeps the single best
// candidate of the whole sweep. Candidates are always derived from the input
// tour; improved reports whether any candidate strictly beat it.
func (s *Solver) twoOptSweep(open []int) (bool, []int, float64) {
	n := len(open)
	best := append([]int(nil), open...)
	bestDist := s.tourLength(closeTour(open))
	improved := false

	for i := 0; i < n-1; i++ {
		for j := i + 2; j < n; j++ {
			// Reversing the whole tail just relabels the cycle start.
			if i == 0 && j == n-1 {
				continue
			}

			candidate := append([]int(nil), open...)
			reverseSegment(candidate, i+1, j)

			candidateDist := s.tourLength(closeTour(candidate))
			if candidateDist < bestDist {
				bestDist = candidateDist
				best = candidate
				improved = true
			}
		}
	}

	return improved, best, bestDist
}

// doubleBridge applies the 4-opt double-bridge move to an open tour: cut at
// four random positions i<j<k<l and reassemble the five segments as
// s1+s4+s3+s2+s5. The result is unreachable by any sequence of 2-opt moves.
// Tours with fewer than four cities are returned unchanged.
func doubleBridge(open []int, rng *rand.Rand) []int {
	n := len(open)
	if n < 4 {
		return append([]int(nil), open...)
	}

	cuts := rng.Perm(n)[:4]
	sort.Ints(cuts)
	i, j, k, l := cuts[0], cuts[1], cuts[2], cuts[3]

	perturbed := make([]int, 0, n)
	perturbed = append(perturbed, open[:i+1]...)
	perturbed = append(perturbed, open[k+1:l+1]...)
	perturbed = append(perturbed, open[j+1:k+1]...)
	perturbed = append(perturbed, open[i+1:j+1]...)
	perturbed = append(perturbed, open[l+1:]...)

	return perturbed
}

// tourLength sums the edge distances along a sequence of city indices. Pass a
// closed tour (first index repeated at the end) to get the full cycle length.
func (s *Solver) tourLength(seq []int) float64 {
	total := 0.0
	for i := 0; i < len(seq)-1; i++ {
		total += s.matrix.At(seq[i], seq[i+1])
	}
	return total
}

// closeTour copies an open tour and re-appends its first city.
func closeTour(open []int) []int {
	closed := make([]int, 0, len(open)+1)
	closed = append(closed, open...)
	return append(closed, open[0])
}

// reverseSegment reverses seq[from..to] in place, bounds inclusive.
func reverseSegment(seq []int, from, to int) {
	for from < to {
		seq[from], seq[to] = seq[to], seq[from]
		from++
		to--
	}
}
