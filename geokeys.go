package srtm

import "errors"

var errParse = errors.New("parse error")

type geoKey uint16

const (
	geoKeyGTModelType  geoKey = 1024
	geoKeyGeodeticCRS  geoKey = 2048
	geoKeyProjectedCRS geoKey = 3072
)

const (
	modelTypeProjected  = 1
	modelTypeGeographic = 2

	// crsUserDefined marks a CRS that carries no EPSG code.
	crsUserDefined = 32767
)

// geoKeys holds the SHORT-valued entries of a GeoKeyDirectoryTag. Keys whose
// values live in the double or ASCII params tags are not needed for CRS
// discovery and are skipped.
type geoKeys struct {
	params map[geoKey]int
}

func parseGeoKeys(directory []uint16) (*geoKeys, error) {
	if len(directory) < 4 {
		return nil, errParse
	}
	if keyDirectoryVersion := int(directory[0]); keyDirectoryVersion != 1 {
		return nil, errParse
	}
	if keyRevision := int(directory[1]); keyRevision != 1 {
		return nil, errParse
	}
	if minorRevision := int(directory[2]); minorRevision != 0 && minorRevision != 1 {
		return nil, errParse
	}
	numberOfKeys := int(directory[3])
	if len(directory) != 4+4*numberOfKeys {
		return nil, errParse
	}

	keys := &geoKeys{
		params: make(map[geoKey]int),
	}
	for i := 0; i < numberOfKeys; i++ {
		keyValues := directory[4+4*i : 4+4*(i+1)]
		key := geoKey(keyValues[0])
		tiffTagLocation := int(keyValues[1])
		numberOfValues := int(keyValues[2])
		if tiffTagLocation != 0 {
			continue
		}
		if numberOfValues != 1 {
			return nil, errParse
		}
		keys.params[key] = int(keyValues[3])
	}
	return keys, nil
}

// srid returns the EPSG code of the raster's CRS, geographic or projected
// according to the model type.
func (k *geoKeys) srid() (int, error) {
	var code int
	switch k.params[geoKeyGTModelType] {
	case modelTypeGeographic:
		code = k.params[geoKeyGeodeticCRS]
	case modelTypeProjected:
		code = k.params[geoKeyProjectedCRS]
	default:
		return 0, errors.ErrUnsupported
	}
	if code == 0 || code == crsUserDefined {
		return 0, errors.ErrUnsupported
	}
	return code, nil
}
