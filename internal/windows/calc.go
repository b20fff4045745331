package windows

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/GriffinCanCode/webbridge/internal/domain/window"
)

var ErrDivideByZero = errors.New("division by zero")

// MaxPoints caps a Points series; the page chooses n.
const MaxPoints = 1000

// CalcWindow is a calculator with a plotted series.
type CalcWindow struct {
	window.Base
	// SampleDelay paces Points.
	SampleDelay time.Duration
}

// Add sums two numbers.
//
//bridge:bind
func (c *CalcWindow) Add(a, b float64) float64 {
	return a + b
}

// Divide fails for a zero divisor; the fault reaches the page as a
// rejected promise.
//
//bridge:bind
func (c *CalcWindow) Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// Points samples a sine wave.
//
//bridge:bind
func (c *CalcWindow) Points(ctx context.Context, n int) <-chan []Point {
	ch := make(chan []Point, 1)
	go func() {
		defer close(ch)
		select {
		case <-time.After(c.SampleDelay):
		case <-ctx.Done():
			return
		}
		n = min(max(n, 0), MaxPoints)
		points := make([]Point, 0, n)
		for i := range n {
			x := float64(i) / 10
			points = append(points, Point{X: x, Y: math.Sin(x)})
		}
		ch <- points
	}()
	return ch
}

// Scale multiplies every point by factor.
//
//bridge:bind name=scale
func (c *CalcWindow) ScalePoints(points []Point, factor float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: p.X * factor, Y: p.Y * factor}
	}
	return out
}

//bridge:bind global
func (c *CalcWindow) RandomNumber() int {
	return rand.IntN(100)
}
