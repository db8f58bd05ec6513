package srtm

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// aeginaTestDataset writes a 6x6 synthetic raster whose origin is the
// upper-left corner of the Aegina bounding box, with a distinct value at
// each cell, and opens it.
func aeginaTestDataset(t *testing.T) *Dataset {
	t.Helper()
	f := &testRasterFile{
		values:          testValues6x6(),
		bitsPerSample:   16,
		sampleFormat:    sampleFormatSigned,
		pixelScale:      []float64{0.024, 0.016, 0},
		tiepoint:        []float64{0, 0, 0, AeginaBounds.LonMin, AeginaBounds.LatMax, 0},
		geoKeyDirectory: wgs84GeoKeys,
	}
	fsys, filename := f.write(t)
	ds, err := OpenSRTM(fsys, filename)
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, ds.Close())
	})
	return ds
}

func TestExtractAegina(t *testing.T) {
	ds := aeginaTestDataset(t)

	document, report, err := Extract(ds, AeginaBounds, DefaultStride)
	assert.NoError(t, err)

	// The full 6x6 window, stride 3: cells (0,0), (0,3), (3,0), (3,3).
	assert.Equal(t, Window{RowStart: 0, RowEnd: 6, ColStart: 0, ColEnd: 6}, report.Window)
	assert.Equal(t, 6, report.SubsetRows)
	assert.Equal(t, 6, report.SubsetCols)
	assert.Equal(t, 0.0, report.SubsetMin)
	assert.Equal(t, 55.0, report.SubsetMax)

	assert.Equal(t, AeginaBounds, document.Bounds)
	assert.Equal(t, Resolution{Rows: 2, Cols: 2}, document.Resolution)
	assert.Equal(t, [][]float64{{0, 3}, {30, 33}}, document.Elevations)

	assert.Equal(t, 2, report.SampledRows)
	assert.Equal(t, 2, report.SampledCols)
	assert.Equal(t, 0.0, report.SampledMin)
	assert.Equal(t, 33.0, report.SampledMax)
	assert.Equal(t, 16.5, report.SampledMean)
	assert.Equal(t, 3, report.LandSamples)
	assert.Equal(t, 4, report.TotalSamples)
	assert.Equal(t, 0.75, report.LandFraction())
}

func TestExtractResolutionMatchesElevations(t *testing.T) {
	ds := aeginaTestDataset(t)

	for stride := 1; stride <= 4; stride++ {
		document, _, err := Extract(ds, AeginaBounds, stride)
		assert.NoError(t, err)
		assert.Equal(t, document.Resolution.Rows, len(document.Elevations))
		for _, row := range document.Elevations {
			assert.Equal(t, document.Resolution.Cols, len(row))
		}
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	ds := aeginaTestDataset(t)

	document, _, err := Extract(ds, AeginaBounds, DefaultStride)
	assert.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "aegina_elevation.json")
	byteCount, err := document.WriteFile(filename)
	assert.NoError(t, err)

	data, err := os.ReadFile(filename)
	assert.NoError(t, err)
	assert.Equal(t, byteCount, len(data))

	var decoded Document
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *document, decoded)
}

func TestExtractOutOfBounds(t *testing.T) {
	ds := aeginaTestDataset(t)

	// A box west of the raster produces negative column indices, which
	// must surface as an error, not a truncated extract.
	outside := Bounds{LonMin: 23.0, LonMax: 23.1, LatMin: 37.7, LatMax: 37.77}
	_, _, err := Extract(ds, outside, DefaultStride)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestExtractInvalidArguments(t *testing.T) {
	ds := aeginaTestDataset(t)

	_, _, err := Extract(ds, AeginaBounds, 0)
	assert.Error(t, err)

	inverted := Bounds{LonMin: 23.6, LonMax: 23.4, LatMin: 37.6, LatMax: 37.8}
	_, _, err = Extract(ds, inverted, DefaultStride)
	assert.Error(t, err)
}

func TestDatasetGeometry(t *testing.T) {
	ds := aeginaTestDataset(t)

	width, height := ds.Size()
	assert.Equal(t, 6, width)
	assert.Equal(t, 6, height)

	pixelWidth, pixelHeight := ds.Resolution()
	assert.Equal(t, 0.024, pixelWidth)
	assert.Equal(t, -0.016, pixelHeight)

	bounds := ds.Bounds()
	assert.Equal(t, AeginaBounds.LonMin, bounds.LonMin)
	assert.Equal(t, AeginaBounds.LatMax, bounds.LatMax)
	assert.Equal(t, AeginaBounds.LonMin+6*0.024, bounds.LonMax)
	assert.Equal(t, AeginaBounds.LatMax-6*0.016, bounds.LatMin)

	// OpenSRTM applies the SRTM void value when the file declares none.
	noData, ok := ds.Raster().NoData()
	assert.True(t, ok)
	assert.Equal(t, -32768.0, noData)
}

func TestDatasetElevationAt(t *testing.T) {
	ds := aeginaTestDataset(t)

	lon := AeginaBounds.LonMin + 2.5*0.024
	lat := AeginaBounds.LatMax - 2.5*0.016

	elevation, pixel, err := ds.ElevationAt(lon, lat)
	assert.NoError(t, err)
	assert.Equal(t, Pixel{Row: 2, Col: 2}, pixel)
	assert.Equal(t, 22.0, elevation)

	interpolated, err := ds.ElevationAtBilinear(lon, lat)
	assert.NoError(t, err)
	assert.True(t, math.Abs(interpolated-27.5) < 1e-6)
}
