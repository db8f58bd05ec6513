package srtm

import (
	"encoding/json"
	"os"
)

// A Resolution is the row/column count of a sampled grid.
type Resolution struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// A Document is the output of one extraction, in the shape consumed by the
// map front end.
type Document struct {
	Bounds     Bounds      `json:"bounds"`
	Resolution Resolution  `json:"resolution"`
	Elevations [][]float64 `json:"elevations"`
}

// Encode returns d as UTF-8 JSON.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// WriteFile writes d as JSON to filename and returns the number of bytes
// written.
func (d *Document) WriteFile(filename string) (int, error) {
	data, err := d.Encode()
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(filename, data, 0o666); err != nil {
		return 0, err
	}
	return len(data), nil
}
