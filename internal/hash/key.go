package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Key computes the xxHash64 of a 3-D coordinate over its 24-byte
// little-endian bit encoding. Equal coordinates always produce equal keys;
// NaN payloads are hashed as-is.
func Key(x, y, z float64) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(y))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(z))

	return xxhash.Sum64(buf[:])
}
