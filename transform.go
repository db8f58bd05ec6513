package srtm

import (
	"fmt"
	"math"
)

// An Affine is a raster geotransform mapping pixel coordinates to
// geographic coordinates. PixelHeight is negative for north-up rasters.
type Affine struct {
	OriginX     float64
	OriginY     float64
	PixelWidth  float64
	PixelHeight float64
}

// PixelToGeographic returns the geographic coordinate of the upper-left
// corner of the pixel at (col, row). The arguments are float64 so that
// fractional pixel positions map too.
func (a Affine) PixelToGeographic(col, row float64) (lon, lat float64) {
	return a.OriginX + col*a.PixelWidth, a.OriginY + row*a.PixelHeight
}

// GeographicToPixel returns the pixel containing the geographic coordinate
// (lon, lat), flooring as rasterio's rowcol does.
func (a Affine) GeographicToPixel(lon, lat float64) (row, col int) {
	fRow, fCol := a.geographicToFractionalPixel(lon, lat)
	return int(math.Floor(fRow)), int(math.Floor(fCol))
}

// geographicToFractionalPixel is the inverse transform without flooring.
func (a Affine) geographicToFractionalPixel(lon, lat float64) (row, col float64) {
	return (lat - a.OriginY) / a.PixelHeight, (lon - a.OriginX) / a.PixelWidth
}

// WindowFromBounds returns the pixel window covering b. It transforms the
// two opposite corners (LonMin, LatMax) and (LonMax, LatMin) and normalizes
// the result with min/max, so rasters whose rows increase southwards and
// rasters whose rows increase northwards both yield an ordered window.
func (a Affine) WindowFromBounds(b Bounds) Window {
	row0, col0 := a.GeographicToPixel(b.LonMin, b.LatMax)
	row1, col1 := a.GeographicToPixel(b.LonMax, b.LatMin)
	return Window{
		RowStart: min(row0, row1),
		RowEnd:   max(row0, row1),
		ColStart: min(col0, col1),
		ColEnd:   max(col0, col1),
	}
}

func (a Affine) String() string {
	return fmt.Sprintf("origin=(%g, %g) pixel=(%g, %g)", a.OriginX, a.OriginY, a.PixelWidth, a.PixelHeight)
}
