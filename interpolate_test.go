package srtm_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	srtm "github.com/aeginamap/go-srtm"
)

type testRaster struct {
	samples [][]float64
}

func (t *testRaster) Samples(pixels []srtm.Pixel) ([]float64, error) {
	samples := make([]float64, len(pixels))
	for i, p := range pixels {
		samples[i] = t.samples[p.Row][p.Col]
	}
	return samples, nil
}

func TestInterpolateBilinear(t *testing.T) {
	simpleRaster := &testRaster{
		samples: [][]float64{
			{0, 1, 2},
			{2, 3, 4},
			{4, 5, 6},
		},
	}
	for _, tc := range []struct {
		raster    srtm.Raster
		positions [][2]float64
		expected  []float64
	}{
		{
			raster: simpleRaster,
			positions: [][2]float64{
				{0, 0},
				{0, 1},
				{1, 0},
				{1, 1},
				{0.5, 0.5},
				{0, 0.5},
				{0.5, 0},
				{0.5, 1},
				{1, 0.5},
			},
			expected: []float64{
				0,
				1,
				2,
				3,
				1.5,
				0.5,
				1,
				2,
				2.5,
			},
		},
	} {
		actual, err := srtm.InterpolateBilinear(tc.raster, tc.positions)
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, actual)
	}
}
