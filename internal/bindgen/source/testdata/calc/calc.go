package calc

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/webbridge/internal/domain/window"
)

// Celsius is a named scalar.
type Celsius float64

type CalcWindow struct {
	window.Base
	history []float64
}

// Add sums two numbers.
//
//bridge:bind
func (w *CalcWindow) Add(a, b float64) float64 {
	return a + b
}

//bridge:bind
func (w *CalcWindow) Points(ctx context.Context, n int) <-chan []Point {
	ch := make(chan []Point, 1)
	ch <- make([]Point, n)
	return ch
}

//bridge:bind name=scale
func (w *CalcWindow) Transform(points []Point, factor Celsius) ([]Point, error) {
	if factor == 0 {
		return nil, errors.New("zero factor")
	}
	return points, nil
}

//bridge:bind
func (w *CalcWindow) Chain(head *Node) Node {
	return *head
}

//bridge:bind global
func (w *CalcWindow) Now() Stamp {
	return Stamp{}
}

//bridge:bind
func (w *CalcWindow) Reset() error {
	w.history = nil
	return nil
}

func (w *CalcWindow) NotBound() {}

// Helper does not embed the base type.
type Helper struct{}

//bridge:bind
func (h *Helper) Ignored() {}
