package srtm

import (
	"fmt"
	"io/fs"
	"math"

	"github.com/twpayne/go-proj/v10"
)

// sridWGS84 is the CRS of SRTM products and of the extraction bounds.
const sridWGS84 = 4326

// srtmNoData is the nodata value of SRTM products that do not declare one.
const srtmNoData = -32768

// A Dataset is an open elevation raster together with its geotransform and
// CRS. Bounding boxes and lookup coordinates are WGS 84 longitude/latitude;
// they are reprojected into the raster's CRS when it differs.
type Dataset struct {
	raster *GeoTIFF
	pj     *proj.PJ
}

// OpenDataset opens the raster at filename in fsys.
func OpenDataset(fsys fs.FS, filename string, options ...GeoTIFFOption) (*Dataset, error) {
	raster, err := OpenGeoTIFF(fsys, filename, options...)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		raster: raster,
	}, nil
}

// OpenSRTM opens an SRTM tile, applying SRTM conventions: rasters that do
// not declare a nodata value get the SRTM void value -32768.
func OpenSRTM(fsys fs.FS, filename string, options ...GeoTIFFOption) (*Dataset, error) {
	d, err := OpenDataset(fsys, filename, options...)
	if err != nil {
		return nil, err
	}
	if !d.raster.hasNoData {
		d.raster.noData = srtmNoData
		d.raster.hasNoData = true
	}
	return d, nil
}

func (d *Dataset) Close() error {
	return d.raster.Close()
}

// Raster returns the underlying raster.
func (d *Dataset) Raster() *GeoTIFF {
	return d.raster
}

// Size returns the raster's width and height in pixels.
func (d *Dataset) Size() (int, int) {
	return d.raster.Width(), d.raster.Height()
}

// Resolution returns the raster's pixel width and height in CRS units. The
// pixel height is negative for north-up rasters.
func (d *Dataset) Resolution() (float64, float64) {
	return d.raster.affine.PixelWidth, d.raster.affine.PixelHeight
}

// Affine returns the raster's geotransform.
func (d *Dataset) Affine() Affine {
	return d.raster.affine
}

// Bounds returns the raster's bounds in its own CRS.
func (d *Dataset) Bounds() Bounds {
	a := d.raster.affine
	x0, y0 := a.PixelToGeographic(0, 0)
	x1, y1 := a.PixelToGeographic(float64(d.raster.width), float64(d.raster.height))
	return Bounds{
		LonMin: min(x0, x1),
		LonMax: max(x0, x1),
		LatMin: min(y0, y1),
		LatMax: max(y0, y1),
	}
}

// WindowFor returns the pixel window covering the WGS 84 bounding box b.
// The window is derived from the box's two opposite corners and normalized;
// it is not clipped to the raster.
func (d *Dataset) WindowFor(b Bounds) (Window, error) {
	if !b.Valid() {
		return Window{}, fmt.Errorf("invalid bounds: lon %g to %g, lat %g to %g", b.LonMin, b.LonMax, b.LatMin, b.LatMax)
	}
	if d.raster.srid == sridWGS84 {
		return d.raster.affine.WindowFromBounds(b), nil
	}
	x0, y0, err := d.toRasterCRS(b.LonMin, b.LatMax)
	if err != nil {
		return Window{}, err
	}
	x1, y1, err := d.toRasterCRS(b.LonMax, b.LatMin)
	if err != nil {
		return Window{}, err
	}
	row0, col0 := d.raster.affine.GeographicToPixel(x0, y0)
	row1, col1 := d.raster.affine.GeographicToPixel(x1, y1)
	return Window{
		RowStart: min(row0, row1),
		RowEnd:   max(row0, row1),
		ColStart: min(col0, col1),
		ColEnd:   max(col0, col1),
	}, nil
}

// ElevationAt returns the nearest-pixel elevation at the WGS 84 coordinate
// (lon, lat), together with the pixel it resolved to.
func (d *Dataset) ElevationAt(lon, lat float64) (float64, Pixel, error) {
	row, col, err := d.pixelPosition(lon, lat)
	if err != nil {
		return 0, Pixel{}, err
	}
	p := Pixel{Row: int(math.Floor(row)), Col: int(math.Floor(col))}
	sample, err := d.raster.Sample(p)
	if err != nil {
		return 0, Pixel{}, err
	}
	return sample, p, nil
}

// ElevationAtBilinear returns the bilinearly interpolated elevation at the
// WGS 84 coordinate (lon, lat).
func (d *Dataset) ElevationAtBilinear(lon, lat float64) (float64, error) {
	row, col, err := d.pixelPosition(lon, lat)
	if err != nil {
		return 0, err
	}
	samples, err := InterpolateBilinear(d.raster, [][2]float64{{row, col}})
	if err != nil {
		return 0, err
	}
	return samples[0], nil
}

// pixelPosition returns the fractional pixel position of the WGS 84
// coordinate (lon, lat).
func (d *Dataset) pixelPosition(lon, lat float64) (row, col float64, err error) {
	x, y := lon, lat
	if d.raster.srid != sridWGS84 {
		x, y, err = d.toRasterCRS(lon, lat)
		if err != nil {
			return 0, 0, err
		}
	}
	row, col = d.raster.affine.geographicToFractionalPixel(x, y)
	return row, col, nil
}

// toRasterCRS reprojects a WGS 84 coordinate into the raster's CRS. PROJ's
// epsg:4326 axis order is latitude, longitude, so the coordinate is flipped
// on the way in.
func (d *Dataset) toRasterCRS(lon, lat float64) (x, y float64, err error) {
	if d.pj == nil {
		d.pj, err = proj.NewCRSToCRS("epsg:4326", fmt.Sprintf("epsg:%d", d.raster.srid), nil)
		if err != nil {
			return 0, 0, err
		}
	}
	coord, err := d.pj.Forward(proj.NewCoord(lat, lon, 0, 0))
	if err != nil {
		return 0, 0, err
	}
	return coord.X(), coord.Y(), nil
}
