// Package encoding converts individual PCD scalar elements between their
// on-disk representation (packed bytes or ASCII tokens) and float64 values,
// and resolves field names to destination slots ahead of the record loops.
package encoding

import (
	"math"
	"strconv"

	"github.com/arloliu/pcd/endian"
	"github.com/arloliu/pcd/format"
)

var engine = endian.GetLittleEndianEngine()

// UnpackBinaryElement reads one scalar of the given type and size from the
// start of data and widens it to float64.
//
// Supported combinations are (I,1), (I,2), (I,4), (U,1), (U,2), (U,4) and
// (F,4). Any other combination yields 0.0; historical files carry such
// fields and readers are expected to degrade silently rather than fail.
func UnpackBinaryElement(data []byte, typ format.ElementType, size int) float64 {
	switch typ {
	case format.ElementSigned:
		switch size {
		case 1:
			return float64(int8(data[0]))
		case 2:
			return float64(int16(engine.Uint16(data)))
		case 4:
			return float64(int32(engine.Uint32(data)))
		}
	case format.ElementUnsigned:
		switch size {
		case 1:
			return float64(data[0])
		case 2:
			return float64(engine.Uint16(data))
		case 4:
			return float64(engine.Uint32(data))
		}
	case format.ElementFloat:
		if size == 4 {
			return float64(math.Float32frombits(engine.Uint32(data)))
		}
	}

	return 0.0
}

// UnpackBinaryColor reads a 4-byte packed color from the start of data and
// returns the r, g, b channels scaled to [0, 1].
//
// The packed bytes are in BGR-A order: byte 0 is blue, byte 1 green, byte 2
// red, byte 3 alpha (ignored). Sizes other than 4 yield the zero color.
func UnpackBinaryColor(data []byte, typ format.ElementType, size int) [3]float64 {
	if size != 4 {
		return [3]float64{}
	}

	return [3]float64{
		float64(data[2]) / 255.0,
		float64(data[1]) / 255.0,
		float64(data[0]) / 255.0,
	}
}

// UnpackASCIIElement parses one whitespace-free token as a scalar of the
// given type: signed integer for I, unsigned integer for U, decimal float
// for F. Integer tokens accept the usual base prefixes. Parse failure and
// unknown types yield 0.0.
func UnpackASCIIElement(token string, typ format.ElementType, size int) float64 {
	switch typ {
	case format.ElementSigned:
		v, err := strconv.ParseInt(token, 0, 64)
		if err != nil {
			return 0.0
		}

		return float64(v)
	case format.ElementUnsigned:
		v, err := strconv.ParseUint(token, 0, 64)
		if err != nil {
			return 0.0
		}

		return float64(v)
	case format.ElementFloat:
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0.0
		}

		return v
	}

	return 0.0
}

// UnpackASCIIColor parses a token as a 32-bit value of the given type, then
// reinterprets its four little-endian bytes as a BGR-A packed color scaled
// to [0, 1]. Sizes other than 4 yield the zero color.
func UnpackASCIIColor(token string, typ format.ElementType, size int) [3]float64 {
	if size != 4 {
		return [3]float64{}
	}

	var bits uint32
	switch typ {
	case format.ElementSigned:
		v, err := strconv.ParseInt(token, 0, 32)
		if err != nil {
			return [3]float64{}
		}
		bits = uint32(int32(v))
	case format.ElementUnsigned:
		v, err := strconv.ParseUint(token, 0, 32)
		if err != nil {
			return [3]float64{}
		}
		bits = uint32(v)
	case format.ElementFloat:
		v, err := strconv.ParseFloat(token, 32)
		if err != nil {
			return [3]float64{}
		}
		bits = math.Float32bits(float32(v))
	default:
		return [3]float64{}
	}

	var data [4]byte
	engine.PutUint32(data[:], bits)

	return UnpackBinaryColor(data[:], typ, size)
}
