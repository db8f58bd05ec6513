package srtm

import "fmt"

// A Report carries the diagnostic numbers of one extraction. It is not part
// of the output document.
type Report struct {
	Window       Window
	SubsetRows   int
	SubsetCols   int
	SubsetMin    float64
	SubsetMax    float64
	SampledRows  int
	SampledCols  int
	SampledMin   float64
	SampledMax   float64
	SampledMean  float64
	LandSamples  int
	TotalSamples int
}

// LandFraction returns the fraction of sampled pixels above sea level, or 0
// for an empty sample.
func (r *Report) LandFraction() float64 {
	if r.TotalSamples == 0 {
		return 0
	}
	return float64(r.LandSamples) / float64(r.TotalSamples)
}

// Extract reads ds's elevation band, slices it to the pixel window covering
// bounds, down-samples it with the given stride, and packages the result.
// A window that leaves the raster is an error, not a truncation.
func Extract(ds *Dataset, bounds Bounds, stride int) (*Document, *Report, error) {
	if stride < 1 {
		return nil, nil, fmt.Errorf("invalid stride %d", stride)
	}

	window, err := ds.WindowFor(bounds)
	if err != nil {
		return nil, nil, err
	}

	band, err := ds.Raster().ReadBand()
	if err != nil {
		return nil, nil, err
	}

	subset, err := band.Slice(window)
	if err != nil {
		return nil, nil, err
	}

	sampled := subset.Downsample(stride)

	document := &Document{
		Bounds: bounds,
		Resolution: Resolution{
			Rows: sampled.Rows(),
			Cols: sampled.Cols(),
		},
		Elevations: sampled.Values(),
	}
	report := &Report{
		Window:       window,
		SubsetRows:   subset.Rows(),
		SubsetCols:   subset.Cols(),
		SubsetMin:    subset.Min(),
		SubsetMax:    subset.Max(),
		SampledRows:  sampled.Rows(),
		SampledCols:  sampled.Cols(),
		SampledMin:   sampled.Min(),
		SampledMax:   sampled.Max(),
		SampledMean:  sampled.Mean(),
		LandSamples:  sampled.CountAbove(0),
		TotalSamples: sampled.Count(),
	}
	return document, report, nil
}
