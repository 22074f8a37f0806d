package tsp

// Point is one location to visit. Index is the stable position of the point in
// the input list and doubles as its row/column in the distance matrix.
// Population is carried along for presentation layers and plays no part in
// the solve.
type Point struct {
	Index      int
	Name       string
	Lat        float64
	Lon        float64
	Population float64
}

// Names extracts the point names in input order.
func Names(points []Point) []string {
	names := make([]string, len(points))
	for i, p := range points {
		names[i] = p.Name
	}
	return names
}
