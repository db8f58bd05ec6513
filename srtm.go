package srtm

import "errors"

// ErrOutOfBounds is returned when a pixel or window falls outside the
// raster's dimensions.
var ErrOutOfBounds = errors.New("out of bounds")

// Bounds is a geographic bounding box in longitude/latitude.
type Bounds struct {
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
}

// Valid reports whether b spans a non-empty area.
func (b Bounds) Valid() bool {
	return b.LonMin < b.LonMax && b.LatMin < b.LatMax
}

// AeginaBounds is the Aegina + Moni extraction region, from OpenStreetMap.
var AeginaBounds = Bounds{
	LonMin: 23.4174315,
	LonMax: 23.5652998,
	LatMin: 37.6735755,
	LatMax: 37.775114,
}

// DefaultStride is the row/column sampling stride used by the converter.
const DefaultStride = 3

// DefaultOutputFilename is the converter's default output path.
const DefaultOutputFilename = "aegina_elevation.json"

// A Pixel is a raster pixel coordinate.
type Pixel struct {
	Row int
	Col int
}

// A Window is a half-open pixel window: rows [RowStart, RowEnd) and columns
// [ColStart, ColEnd).
type Window struct {
	RowStart int
	RowEnd   int
	ColStart int
	ColEnd   int
}

// Rows returns the number of rows in w.
func (w Window) Rows() int {
	return w.RowEnd - w.RowStart
}

// Cols returns the number of columns in w.
func (w Window) Cols() int {
	return w.ColEnd - w.ColStart
}

// Empty reports whether w contains no pixels.
func (w Window) Empty() bool {
	return w.RowEnd <= w.RowStart || w.ColEnd <= w.ColStart
}

// Raster is random access to elevation samples by pixel coordinate.
type Raster interface {
	Samples(pixels []Pixel) ([]float64, error)
}
