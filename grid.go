package srtm

import (
	"fmt"
	"math"
)

// A Grid is an in-memory 2-D elevation matrix, row-major.
type Grid struct {
	values [][]float64
}

// NewGrid returns a Grid over values. All rows must have equal length.
func NewGrid(values [][]float64) *Grid {
	return &Grid{values: values}
}

// Rows returns the number of rows in g.
func (g *Grid) Rows() int {
	return len(g.values)
}

// Cols returns the number of columns in g.
func (g *Grid) Cols() int {
	if len(g.values) == 0 {
		return 0
	}
	return len(g.values[0])
}

// Count returns the number of samples in g.
func (g *Grid) Count() int {
	return g.Rows() * g.Cols()
}

// At returns the sample at (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.values[row][col]
}

// Values returns g's samples as nested slices, row-major. The slices are
// shared with g, not copied.
func (g *Grid) Values() [][]float64 {
	return g.values
}

// Slice returns the sub-grid covering w.
func (g *Grid) Slice(w Window) (*Grid, error) {
	if w.RowStart < 0 || w.RowEnd > g.Rows() || w.ColStart < 0 || w.ColEnd > g.Cols() {
		return nil, fmt.Errorf("%w: window rows %d-%d, cols %d-%d in %dx%d grid",
			ErrOutOfBounds, w.RowStart, w.RowEnd, w.ColStart, w.ColEnd, g.Rows(), g.Cols())
	}
	if w.Empty() {
		return NewGrid([][]float64{}), nil
	}
	values := make([][]float64, w.Rows())
	for i := range values {
		values[i] = g.values[w.RowStart+i][w.ColStart:w.ColEnd]
	}
	return NewGrid(values), nil
}

// Downsample returns every stride-th row and column of g, starting at
// offset 0. The result is ceil(rows/stride) x ceil(cols/stride). stride
// must be at least 1.
func (g *Grid) Downsample(stride int) *Grid {
	rows := (g.Rows() + stride - 1) / stride
	cols := (g.Cols() + stride - 1) / stride
	values := make([][]float64, rows)
	for i := range values {
		values[i] = make([]float64, cols)
		for j := range values[i] {
			values[i][j] = g.values[i*stride][j*stride]
		}
	}
	return NewGrid(values)
}

// Min returns the smallest sample in g, or NaN if g is empty.
func (g *Grid) Min() float64 {
	minimum := math.NaN()
	for _, row := range g.values {
		for _, v := range row {
			if math.IsNaN(minimum) || v < minimum {
				minimum = v
			}
		}
	}
	return minimum
}

// Max returns the largest sample in g, or NaN if g is empty.
func (g *Grid) Max() float64 {
	maximum := math.NaN()
	for _, row := range g.values {
		for _, v := range row {
			if math.IsNaN(maximum) || v > maximum {
				maximum = v
			}
		}
	}
	return maximum
}

// Mean returns the mean sample in g, or NaN if g is empty.
func (g *Grid) Mean() float64 {
	if g.Count() == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, row := range g.values {
		for _, v := range row {
			sum += v
		}
	}
	return sum / float64(g.Count())
}

// CountAbove returns the number of samples in g strictly above threshold.
func (g *Grid) CountAbove(threshold float64) int {
	count := 0
	for _, row := range g.values {
		for _, v := range row {
			if v > threshold {
				count++
			}
		}
	}
	return count
}
