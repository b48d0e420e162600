package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVector converts a float64 slice to the little-endian blob layout
// used by the SQLite backend: 8 bytes per component, no header.
func EncodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

// DecodeVector converts a blob back to a float64 slice.
func DecodeVector(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("invalid vector blob: %d bytes is not a multiple of 8", len(data))
	}

	v := make([]float64, len(data)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return v, nil
}
