package windows

// Point is a plotted sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
