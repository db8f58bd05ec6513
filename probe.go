package srtm

import (
	"fmt"

	"github.com/google/tiff"
	"github.com/twpayne/go-proj/v10"
)

// Probe verifies that the geospatial capabilities the converter needs are
// available: the GeoTIFF tag space must be registered and PROJ must be
// usable. Call it once at startup, before any conversion work.
func Probe() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("GeoTIFF support unavailable: %v", r)
		}
	}()
	if tagSpace := tiff.GetTagSpace("GeoTIFF"); tagSpace == nil {
		return fmt.Errorf("GeoTIFF support unavailable: tag space not registered")
	}
	if _, err := proj.NewCRSToCRS("epsg:4326", "epsg:4326", nil); err != nil {
		return fmt.Errorf("PROJ unavailable: %w (install PROJ, e.g. apt-get install proj-bin proj-data)", err)
	}
	return nil
}
