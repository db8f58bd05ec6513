package srtm

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/image/tiff/lzw"
)

var (
	blockCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "srtm_block_cache_hits_total",
		Help: "The total number of hits on the decoded block cache",
	})
	blockCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "srtm_block_cache_misses_total",
		Help: "The total number of misses on the decoded block cache",
	})
)

var errShortRead = errors.New("short read")

const (
	compressionNone       = 1
	compressionLZW        = 5
	compressionDeflate    = 8
	compressionDeflateOld = 32946
)

const (
	sampleFormatUnsigned = 1
	sampleFormatSigned   = 2
	sampleFormatFloat    = 3
)

const defaultBlockCacheSize = 64

// A GeoTIFF is an open single-band elevation GeoTIFF. Both strip- and
// tile-organized layouts are supported; decoded blocks are kept in an LRU
// cache for random access.
type GeoTIFF struct {
	file          *os.File
	width         int
	height        int
	bitsPerSample int
	sampleFormat  int
	compression   int
	affine        Affine
	srid          int
	noData        float64
	hasNoData     bool

	// Block layout. A strip is a block spanning the full image width.
	blockWidth      int
	blockHeight     int
	blocksAcross    int
	blocksDown      int
	blockOffsets    []uint32
	blockByteCounts []uint32

	blockCacheSize int
	blockCache     *lru.Cache[int, []float64]
}

// A GeoTIFFOption sets an option on a GeoTIFF.
type GeoTIFFOption func(*GeoTIFF)

// WithBlockCacheSize sets the number of decoded blocks kept in memory.
func WithBlockCacheSize(blockCacheSize int) GeoTIFFOption {
	return func(g *GeoTIFF) {
		g.blockCacheSize = blockCacheSize
	}
}

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal
// an IFD.
type geoTIFFIFD struct {
	ImageWidth                uint16    `tiff:"field,tag=256"`
	ImageLength               uint16    `tiff:"field,tag=257"`
	BitsPerSample             uint16    `tiff:"field,tag=258"`
	Compression               uint16    `tiff:"field,tag=259"`
	PhotometricInterpretation uint16    `tiff:"field,tag=262"`
	StripOffsets              []uint32  `tiff:"field,tag=273"`
	SamplesPerPixel           uint16    `tiff:"field,tag=277"`
	RowsPerStrip              uint32    `tiff:"field,tag=278"`
	StripByteCounts           []uint32  `tiff:"field,tag=279"`
	PlanarConfiguration       uint16    `tiff:"field,tag=284"`
	TileWidth                 uint16    `tiff:"field,tag=322"`
	TileLength                uint16    `tiff:"field,tag=323"`
	TileOffsets               []uint32  `tiff:"field,tag=324"`
	TileByteCounts            []uint32  `tiff:"field,tag=325"`
	SampleFormat              uint16    `tiff:"field,tag=339"`
	ModelPixelScaleTag        []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag          []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag        []uint16  `tiff:"field,tag=34735"`
	GDALNoData                string    `tiff:"field,tag=42113"`
}

// OpenGeoTIFF opens the GeoTIFF at filename in fsys. The file handle is
// released on any parse failure.
func OpenGeoTIFF(fsys fs.FS, filename string, options ...GeoTIFFOption) (*GeoTIFF, error) {
	var err error
	ok := false

	g := &GeoTIFF{
		blockCacheSize: defaultBlockCacheSize,
	}
	for _, option := range options {
		option(g)
	}

	file, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	osFile, isOSFile := file.(*os.File)
	if !isOSFile {
		_ = file.Close()
		return nil, errors.ErrUnsupported
	}
	g.file = osFile
	defer func() {
		if !ok {
			_ = g.file.Close()
		}
	}()

	// Only little-endian rasters are in the supported profile.
	var order [2]byte
	if _, err := g.file.ReadAt(order[:], 0); err != nil {
		return nil, err
	}
	if order != [2]byte{'I', 'I'} {
		return nil, errors.ErrUnsupported
	}

	tiffTIFF, err := tiff.Parse(g.file, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}

	if len(tiffTIFF.IFDs()) != 1 {
		return nil, fmt.Errorf("found %d IFDs, expected 1", len(tiffTIFF.IFDs()))
	}

	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	if ifd.SamplesPerPixel != 1 ||
		ifd.PhotometricInterpretation != 1 ||
		(ifd.PlanarConfiguration != 0 && ifd.PlanarConfiguration != 1) {
		return nil, errors.ErrUnsupported
	}

	switch {
	case ifd.BitsPerSample == 16 && (ifd.SampleFormat == sampleFormatUnsigned || ifd.SampleFormat == sampleFormatSigned):
	case ifd.BitsPerSample == 32 && ifd.SampleFormat == sampleFormatFloat:
	default:
		return nil, errors.ErrUnsupported
	}
	g.bitsPerSample = int(ifd.BitsPerSample)
	g.sampleFormat = int(ifd.SampleFormat)

	switch ifd.Compression {
	case 0: // Absent tag: TIFF defaults to uncompressed.
		g.compression = compressionNone
	case compressionNone, compressionLZW, compressionDeflate, compressionDeflateOld:
		g.compression = int(ifd.Compression)
	default:
		return nil, errors.ErrUnsupported
	}

	g.width = int(ifd.ImageWidth)
	g.height = int(ifd.ImageLength)
	if g.width == 0 || g.height == 0 {
		return nil, errors.New("empty raster")
	}

	if ifd.TileWidth != 0 {
		g.blockWidth = int(ifd.TileWidth)
		g.blockHeight = int(ifd.TileLength)
		g.blockOffsets = ifd.TileOffsets
		g.blockByteCounts = ifd.TileByteCounts
	} else {
		rowsPerStrip := int(ifd.RowsPerStrip)
		if rowsPerStrip == 0 {
			rowsPerStrip = g.height
		}
		g.blockWidth = g.width
		g.blockHeight = rowsPerStrip
		g.blockOffsets = ifd.StripOffsets
		g.blockByteCounts = ifd.StripByteCounts
	}
	if g.blockWidth == 0 || g.blockHeight == 0 {
		return nil, errors.ErrUnsupported
	}
	g.blocksAcross = (g.width + g.blockWidth - 1) / g.blockWidth
	g.blocksDown = (g.height + g.blockHeight - 1) / g.blockHeight
	blocksPerImage := g.blocksAcross * g.blocksDown
	if len(g.blockOffsets) != blocksPerImage || len(g.blockByteCounts) != blocksPerImage {
		return nil, errors.New("incorrect number of block byte counts or offsets")
	}

	if len(ifd.ModelPixelScaleTag) != 3 || len(ifd.ModelTiepointTag) != 6 {
		return nil, errors.ErrUnsupported
	}
	scaleX, scaleY, scaleZ := ifd.ModelPixelScaleTag[0], ifd.ModelPixelScaleTag[1], ifd.ModelPixelScaleTag[2]
	if scaleX == 0 || scaleY == 0 || scaleZ != 0 {
		return nil, errors.ErrUnsupported
	}
	i, j, k := ifd.ModelTiepointTag[0], ifd.ModelTiepointTag[1], ifd.ModelTiepointTag[2]
	if i != 0 || j != 0 || k != 0 {
		return nil, errors.ErrUnsupported
	}
	x, y, z := ifd.ModelTiepointTag[3], ifd.ModelTiepointTag[4], ifd.ModelTiepointTag[5]
	if z != 0 {
		return nil, errors.ErrUnsupported
	}
	g.affine = Affine{
		OriginX:     x,
		OriginY:     y,
		PixelWidth:  scaleX,
		PixelHeight: -scaleY,
	}

	if len(ifd.GeoKeyDirectoryTag) == 0 {
		// SRTM products without geokeys are WGS 84.
		g.srid = 4326
	} else {
		keys, err := parseGeoKeys(ifd.GeoKeyDirectoryTag)
		if err != nil {
			return nil, err
		}
		g.srid, err = keys.srid()
		if err != nil {
			return nil, err
		}
	}

	if noDataString := strings.TrimSpace(ifd.GDALNoData); noDataString != "" {
		noData, err := strconv.ParseFloat(noDataString, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid nodata value %q: %w", noDataString, err)
		}
		g.noData = noData
		g.hasNoData = true
	}

	g.blockCache, err = lru.New[int, []float64](g.blockCacheSize)
	if err != nil {
		return nil, err
	}

	ok = true
	return g, nil
}

func (g *GeoTIFF) Close() error {
	return g.file.Close()
}

// Width returns the raster's width in pixels.
func (g *GeoTIFF) Width() int {
	return g.width
}

// Height returns the raster's height in pixels.
func (g *GeoTIFF) Height() int {
	return g.height
}

// Affine returns the raster's geotransform.
func (g *GeoTIFF) Affine() Affine {
	return g.affine
}

// SRID returns the EPSG code of the raster's CRS.
func (g *GeoTIFF) SRID() int {
	return g.srid
}

// NoData returns the raster's nodata value, if declared.
func (g *GeoTIFF) NoData() (float64, bool) {
	return g.noData, g.hasNoData
}

// Sample returns a single sample from g.
func (g *GeoTIFF) Sample(p Pixel) (float64, error) {
	if !g.contains(p) {
		return 0, fmt.Errorf("%w: pixel (%d, %d)", ErrOutOfBounds, p.Row, p.Col)
	}
	blockSamples, err := g.blockSamplesCached(g.blockIndex(p))
	if err != nil {
		return 0, err
	}
	return g.blockSample(blockSamples, p), nil
}

// Samples returns multiple samples from g. Pixels in the same block share
// one decode.
func (g *GeoTIFF) Samples(pixels []Pixel) ([]float64, error) {
	samples := make([]float64, len(pixels))

	// Group indexes by block.
	indexesByBlock := make(map[int][]int)
	for index, p := range pixels {
		if !g.contains(p) {
			return nil, fmt.Errorf("%w: pixel (%d, %d)", ErrOutOfBounds, p.Row, p.Col)
		}
		block := g.blockIndex(p)
		indexesByBlock[block] = append(indexesByBlock[block], index)
	}

	// Populate samples one block at a time.
	for block, indexes := range indexesByBlock {
		blockSamples, err := g.blockSamplesCached(block)
		if err != nil {
			return nil, err
		}
		for _, index := range indexes {
			samples[index] = g.blockSample(blockSamples, pixels[index])
		}
	}

	return samples, nil
}

// ReadBand reads the whole elevation band into memory.
func (g *GeoTIFF) ReadBand() (*Grid, error) {
	values := make([][]float64, g.height)
	for row := range values {
		values[row] = make([]float64, g.width)
	}
	for blockRow := 0; blockRow < g.blocksDown; blockRow++ {
		for blockCol := 0; blockCol < g.blocksAcross; blockCol++ {
			blockSamples, err := g.blockSamplesCached(blockRow*g.blocksAcross + blockCol)
			if err != nil {
				return nil, err
			}
			rowEnd := min((blockRow+1)*g.blockHeight, g.height)
			colEnd := min((blockCol+1)*g.blockWidth, g.width)
			for row := blockRow * g.blockHeight; row < rowEnd; row++ {
				localRow := row - blockRow*g.blockHeight
				for col := blockCol * g.blockWidth; col < colEnd; col++ {
					values[row][col] = blockSamples[localRow*g.blockWidth+col-blockCol*g.blockWidth]
				}
			}
		}
	}
	return NewGrid(values), nil
}

func (g *GeoTIFF) contains(p Pixel) bool {
	return 0 <= p.Row && p.Row < g.height && 0 <= p.Col && p.Col < g.width
}

func (g *GeoTIFF) blockIndex(p Pixel) int {
	return (p.Row/g.blockHeight)*g.blocksAcross + p.Col/g.blockWidth
}

func (g *GeoTIFF) blockSample(blockSamples []float64, p Pixel) float64 {
	return blockSamples[(p.Row%g.blockHeight)*g.blockWidth+p.Col%g.blockWidth]
}

// getBlockData returns the raw block data at blockIndex.
func (g *GeoTIFF) getBlockData(blockIndex int) ([]byte, error) {
	blockByteCount := g.blockByteCounts[blockIndex]
	blockOffset := g.blockOffsets[blockIndex]
	data := make([]byte, blockByteCount)
	switch n, err := g.file.ReadAt(data, int64(blockOffset)); {
	case err != nil:
		return nil, err
	case n != int(blockByteCount):
		return nil, errShortRead
	default:
		return data, nil
	}
}

// decompressBlockData decompresses data according to the raster's
// compression. The final strip of an uncompressed or compressed raster may
// hold fewer than blockHeight rows, so the result may be shorter than
// uncompressedByteCount.
func (g *GeoTIFF) decompressBlockData(data []byte, uncompressedByteCount int) ([]byte, error) {
	var r io.Reader
	switch g.compression {
	case compressionNone:
		return data, nil
	case compressionLZW:
		r = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	case compressionDeflate, compressionDeflateOld:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	default:
		return nil, errors.ErrUnsupported
	}
	blockData := make([]byte, uncompressedByteCount)
	bytesRead := 0
	for bytesRead < uncompressedByteCount {
		n, err := r.Read(blockData[bytesRead:])
		bytesRead += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return blockData[:bytesRead], nil
}

// decodeBlockData decodes blockData into float64 samples. Samples beyond
// the available data are NaN; they can only sit outside the image and are
// trimmed during assembly.
func (g *GeoTIFF) decodeBlockData(blockData []byte) []float64 {
	bytesPerSample := g.bitsPerSample / 8
	available := len(blockData) / bytesPerSample
	blockSamples := make([]float64, g.blockWidth*g.blockHeight)
	for i := range blockSamples {
		if i >= available {
			blockSamples[i] = math.NaN()
			continue
		}
		switch {
		case g.bitsPerSample == 16 && g.sampleFormat == sampleFormatSigned:
			blockSamples[i] = float64(int16(binary.LittleEndian.Uint16(blockData[2*i : 2*i+2])))
		case g.bitsPerSample == 16 && g.sampleFormat == sampleFormatUnsigned:
			blockSamples[i] = float64(binary.LittleEndian.Uint16(blockData[2*i : 2*i+2]))
		default:
			blockSamples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blockData[4*i : 4*i+4])))
		}
	}
	return blockSamples
}

// blockSamples returns the decoded samples of the block at blockIndex.
func (g *GeoTIFF) blockSamples(blockIndex int) ([]float64, error) {
	data, err := g.getBlockData(blockIndex)
	if err != nil {
		return nil, err
	}
	uncompressedByteCount := g.blockWidth * g.blockHeight * g.bitsPerSample / 8
	blockData, err := g.decompressBlockData(data, uncompressedByteCount)
	if err != nil {
		return nil, err
	}
	return g.decodeBlockData(blockData), nil
}

// blockSamplesCached returns the decoded samples of the block at
// blockIndex, using g's cache.
func (g *GeoTIFF) blockSamplesCached(blockIndex int) ([]float64, error) {
	if blockSamples, ok := g.blockCache.Get(blockIndex); ok {
		blockCacheHits.Inc()
		return blockSamples, nil
	}
	blockCacheMisses.Inc()
	blockSamples, err := g.blockSamples(blockIndex)
	if err != nil {
		return nil, err
	}
	g.blockCache.Add(blockIndex, blockSamples)
	return blockSamples, nil
}
