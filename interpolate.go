package srtm

import "math"

// InterpolateBilinear returns bilinearly interpolated samples at the given
// fractional pixel positions, each a (row, col) pair. The four surrounding
// pixels of every position must lie inside the raster.
func InterpolateBilinear(raster Raster, positions [][2]float64) ([]float64, error) {
	pixels := make([]Pixel, 4*len(positions))
	for i, position := range positions {
		row0 := int(math.Floor(position[0]))
		col0 := int(math.Floor(position[1]))
		pixels[4*i+0] = Pixel{Row: row0, Col: col0}
		pixels[4*i+1] = Pixel{Row: row0, Col: col0 + 1}
		pixels[4*i+2] = Pixel{Row: row0 + 1, Col: col0}
		pixels[4*i+3] = Pixel{Row: row0 + 1, Col: col0 + 1}
	}
	samples, err := raster.Samples(pixels)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(positions))
	for i, position := range positions {
		dRow := position[0] - math.Floor(position[0])
		dCol := position[1] - math.Floor(position[1])
		result[i] = 0 +
			samples[4*i+0]*(1-dCol)*(1-dRow) +
			samples[4*i+1]*dCol*(1-dRow) +
			samples[4*i+2]*(1-dCol)*dRow +
			samples[4*i+3]*dCol*dRow
	}
	return result, nil
}
