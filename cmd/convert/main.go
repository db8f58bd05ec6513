package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	srtm "github.com/aeginamap/go-srtm"
)

var errUsage = errors.New("syntax: convert <input_file.tif> [output_file.json]")

// Known point near the center of Aegina (Mount Oros area), used as a sanity
// check on the coordinate transform.
const (
	testPointLon = 23.49
	testPointLat = 37.72
)

// probe is a variable so tests can simulate a missing geospatial
// dependency.
var probe = srtm.Probe

func run(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	if err := probe(); err != nil {
		return err
	}

	input := args[0]
	output := srtm.DefaultOutputFilename
	if len(args) == 2 {
		output = args[1]
	}
	return convert(input, output)
}

func convert(input, output string) error {
	fmt.Printf("Reading %s...\n", input)

	ds, err := srtm.OpenSRTM(os.DirFS(filepath.Dir(input)), filepath.Base(input))
	if err != nil {
		return err
	}
	defer ds.Close()

	fileBounds := ds.Bounds()
	width, height := ds.Size()
	pixelWidth, pixelHeight := ds.Resolution()
	fmt.Printf("File bounds: lon %g to %g, lat %g to %g\n", fileBounds.LonMin, fileBounds.LonMax, fileBounds.LatMin, fileBounds.LatMax)
	fmt.Printf("Resolution: %g x %g\n", pixelWidth, math.Abs(pixelHeight))
	fmt.Printf("Size: %d x %d\n", width, height)
	fmt.Printf("Transform: %s\n", ds.Affine())

	region := srtm.AeginaBounds
	fmt.Printf("\nExtracting Aegina region:\n")
	fmt.Printf("  Lon: %g to %g\n", region.LonMin, region.LonMax)
	fmt.Printf("  Lat: %g to %g\n", region.LatMin, region.LatMax)

	document, report, err := srtm.Extract(ds, region, srtm.DefaultStride)
	if err != nil {
		return err
	}

	fmt.Printf("  Pixel range: rows %d-%d, cols %d-%d\n", report.Window.RowStart, report.Window.RowEnd, report.Window.ColStart, report.Window.ColEnd)
	fmt.Printf("  Extracted size: %d x %d\n", report.SubsetRows, report.SubsetCols)
	fmt.Printf("  Elevation range in subset: %g to %g\n", report.SubsetMin, report.SubsetMax)

	testElevation, testPixel, err := ds.ElevationAt(testPointLon, testPointLat)
	if err != nil {
		return err
	}
	fmt.Printf("\nTest point (%g, %g):\n", testPointLon, testPointLat)
	fmt.Printf("  Pixel: row=%d, col=%d\n", testPixel.Row, testPixel.Col)
	fmt.Printf("  Elevation: %gm (should be 200-500m for Aegina)\n", testElevation)

	fmt.Printf("\nSampled size: %d x %d\n", report.SampledRows, report.SampledCols)

	fmt.Printf("\nWriting %s...\n", output)
	byteCount, err := document.WriteFile(output)
	if err != nil {
		return err
	}
	fmt.Printf("Done! Created %s\n", output)
	fmt.Printf("File size: %.1f KB\n", float64(byteCount)/1024)

	fmt.Printf("\nElevation stats (sampled):\n")
	fmt.Printf("  Min: %.1fm\n", report.SampledMin)
	fmt.Printf("  Max: %.1fm\n", report.SampledMax)
	fmt.Printf("  Mean: %.1fm\n", report.SampledMean)
	fmt.Printf("  Land pixels: %d/%d (%.1f%%)\n", report.LandSamples, report.TotalSamples, 100*report.LandFraction())

	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
