package srtm

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestAffineGeographicToPixel(t *testing.T) {
	// North-up raster: origin at the upper-left corner, rows increase
	// southwards.
	a := Affine{OriginX: 23, OriginY: 38, PixelWidth: 0.25, PixelHeight: -0.25}

	for _, tc := range []struct {
		lon, lat float64
		row, col int
	}{
		{lon: 23, lat: 38, row: 0, col: 0},
		{lon: 23.26, lat: 37.9, row: 0, col: 1},
		{lon: 23.99, lat: 37.01, row: 3, col: 3},
		{lon: 24.6, lat: 36.5, row: 6, col: 6},
		{lon: 22.9, lat: 38.1, row: -1, col: -1},
	} {
		row, col := a.GeographicToPixel(tc.lon, tc.lat)
		assert.Equal(t, tc.row, row)
		assert.Equal(t, tc.col, col)
	}
}

func TestAffinePixelToGeographic(t *testing.T) {
	a := Affine{OriginX: 23, OriginY: 38, PixelWidth: 0.25, PixelHeight: -0.25}

	lon, lat := a.PixelToGeographic(0, 0)
	assert.Equal(t, 23.0, lon)
	assert.Equal(t, 38.0, lat)

	lon, lat = a.PixelToGeographic(4, 2)
	assert.Equal(t, 24.0, lon)
	assert.Equal(t, 37.5, lat)

	// Round trip through the inverse lands in the same pixel.
	row, col := a.GeographicToPixel(lon, lat)
	assert.Equal(t, 2, row)
	assert.Equal(t, 4, col)
}

func TestWindowFromBounds(t *testing.T) {
	bounds := Bounds{LonMin: 23.4, LonMax: 24.6, LatMin: 36.5, LatMax: 37.6}

	for _, tc := range []struct {
		name     string
		affine   Affine
		expected Window
	}{
		{
			name:     "north_up",
			affine:   Affine{OriginX: 23, OriginY: 38, PixelWidth: 0.25, PixelHeight: -0.25},
			expected: Window{RowStart: 1, RowEnd: 6, ColStart: 1, ColEnd: 6},
		},
		{
			// Rows increase northwards: the corner rows come out
			// swapped and must be normalized.
			name:     "south_up",
			affine:   Affine{OriginX: 23, OriginY: 36, PixelWidth: 0.25, PixelHeight: 0.25},
			expected: Window{RowStart: 2, RowEnd: 6, ColStart: 1, ColEnd: 6},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.affine.WindowFromBounds(bounds))
		})
	}
}

func TestWindowDimensions(t *testing.T) {
	w := Window{RowStart: 1, RowEnd: 6, ColStart: 2, ColEnd: 4}
	assert.Equal(t, 5, w.Rows())
	assert.Equal(t, 2, w.Cols())
	assert.False(t, w.Empty())

	assert.True(t, Window{RowStart: 3, RowEnd: 3, ColStart: 0, ColEnd: 4}.Empty())
}
