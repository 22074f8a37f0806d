package tsp

// Leg is one edge of the final tour, expressed with city names.
type Leg struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Distance float64 `json:"distance"`
}

// Result is the outcome of one solve. Tour is the closed cycle of city
// indices: len(Tour) == n+1, Tour[0] == Tour[n], and the first n elements are
// a permutation of 0..n-1. A Result is a fresh value per Solve call and never
// shares mutable state with the Solver or with other results.
type Result struct {
	Tour          []int
	TotalDistance float64

	// InitialDistance is the length of the Nearest-Neighbor tour the search
	// started from, kept for reporting the improvement.
	InitialDistance float64

	// Rounds is the number of local-search rounds actually executed; it is
	// lower than the requested maximum when stagnation stopped the search.
	Rounds int

	matrix *DistanceMatrix
	names  []string
}

// PathWithNames maps the tour onto city names, closing city included.
func (r *Result) PathWithNames() []string {
	path := make([]string, len(r.Tour))
	for i, idx := range r.Tour {
		path[i] = r.names[idx]
	}
	return path
}

// PathDetails expands the tour into per-leg detail, one entry per consecutive
// pair including the closing edge.
func (r *Result) PathDetails() []Leg {
	if len(r.Tour) < 2 {
		return nil
	}
	legs := make([]Leg, 0, len(r.Tour)-1)
	for i := 0; i < len(r.Tour)-1; i++ {
		from, to := r.Tour[i], r.Tour[i+1]
		legs = append(legs, Leg{
			From:     r.names[from],
			To:       r.names[to],
			Distance: r.matrix.At(from, to),
		})
	}
	return legs
}
