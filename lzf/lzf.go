// Package lzf implements Marc Lehmann's LZF block compression.
//
// LZF is a byte-oriented LZ77-family format with no entropy coding. The
// compressed stream is a sequence of control bytes: values below 32 start a
// literal run of up to 32 verbatim bytes, larger values encode a
// back-reference of 3 to 264 bytes at a distance of 1 to 8192. The format is
// self-delimiting and decompresses about as fast as a copying loop.
//
// The encoder here is wire-compatible with the canonical liblzf
// implementation: anything it produces decompresses with liblzf, and anything
// liblzf produces decompresses here. It is the compression used by the
// binary_compressed data section of PCD files.
//
// Both Compress and Decompress are pure functions of their inputs, keep no
// global state, and are safe for concurrent use. Source and destination
// buffers must not overlap.
package lzf

import "errors"

var (
	// ErrShortBuffer indicates the destination buffer is too small for the
	// produced output.
	ErrShortBuffer = errors.New("lzf: destination buffer too small")

	// ErrCorrupt indicates a malformed compressed stream: a truncated token
	// or a back-reference pointing before the start of the output.
	ErrCorrupt = errors.New("lzf: corrupt compressed data")
)

const (
	hashLog  = 14
	hashSize = 1 << hashLog

	maxLiteral = 1 << 5              // longest literal run a control byte can carry
	maxOffset  = 1 << 13             // furthest back-reference distance
	maxMatch   = (1 << 8) + (1 << 3) // longest match: 7+255+2 = 264 bytes
)

// CompressBound returns a destination capacity that is always sufficient for
// Compress on an input of n bytes. Worst-case LZF expansion is one control
// byte per 32 literals, under 104% of the input.
func CompressBound(n int) int {
	return n + n/16 + 64
}

func hash(a, b, c byte) uint32 {
	h := uint32(a)<<16 | uint32(b)<<8 | uint32(c)
	// Fibonacci-style mix folded down to hashLog bits.
	return (h * 2654435761) >> (32 - hashLog) & (hashSize - 1)
}

// Compress compresses src into dst using the LZF algorithm and returns the
// number of bytes written.
//
// The compressor keeps a 2^14-entry hash table of input positions keyed by a
// 3-byte rolling hash. Candidate positions within 8192 bytes that match at
// least 3 bytes become back-references of up to 264 bytes; everything else
// accumulates into literal runs of up to 32 bytes.
//
// Parameters:
//   - src: Input buffer; an empty input produces no output
//   - dst: Output buffer; CompressBound(len(src)) capacity always suffices
//
// Returns:
//   - int: Number of bytes written to dst
//   - error: ErrShortBuffer if dst cannot hold the output; dst contents are
//     then unspecified
func Compress(src, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	var htab [hashSize]int32
	for i := range htab {
		htab[i] = -1
	}

	op := 0
	litStart := 0 // start of the pending literal run
	ip := 0

	flushLiterals := func(end int) error {
		for litStart < end {
			run := end - litStart
			if run > maxLiteral {
				run = maxLiteral
			}
			if op+1+run > len(dst) {
				return ErrShortBuffer
			}
			dst[op] = byte(run - 1)
			op++
			copy(dst[op:], src[litStart:litStart+run])
			op += run
			litStart += run
		}

		return nil
	}

	for ip < len(src) {
		if ip+2 < len(src) {
			h := hash(src[ip], src[ip+1], src[ip+2])
			ref := htab[h]
			htab[h] = int32(ip)

			if ref >= 0 {
				off := ip - int(ref) - 1
				if off < maxOffset &&
					src[ref] == src[ip] && src[ref+1] == src[ip+1] && src[ref+2] == src[ip+2] {
					length := 3
					limit := len(src) - ip
					if limit > maxMatch {
						limit = maxMatch
					}
					for length < limit && src[int(ref)+length] == src[ip+length] {
						length++
					}

					if err := flushLiterals(ip); err != nil {
						return 0, err
					}
					if err := emitMatch(dst, &op, off, length); err != nil {
						return 0, err
					}

					ip += length
					litStart = ip

					continue
				}
			}
		}

		ip++
	}

	if err := flushLiterals(len(src)); err != nil {
		return 0, err
	}

	return op, nil
}

// emitMatch writes one back-reference token: length is biased by 2 into a
// 3-bit field, with an extension byte when the field saturates at 7, followed
// by the low 8 bits of the offset.
func emitMatch(dst []byte, op *int, off, length int) error {
	l := length - 2
	if l < 7 {
		if *op+2 > len(dst) {
			return ErrShortBuffer
		}
		dst[*op] = byte(l<<5) | byte(off>>8)
		dst[*op+1] = byte(off)
		*op += 2

		return nil
	}

	if *op+3 > len(dst) {
		return ErrShortBuffer
	}
	dst[*op] = 7<<5 | byte(off>>8)
	dst[*op+1] = byte(l - 7)
	dst[*op+2] = byte(off)
	*op += 3

	return nil
}

// Decompress decompresses src into dst and returns the number of bytes
// produced, which for a valid stream equals the original input length.
//
// Every token is bounds-checked: a literal run crossing the end of src, a
// truncated back-reference, or a reference pointing before the start of the
// output fails with ErrCorrupt; a token that would write past the end of dst
// fails with ErrShortBuffer. On failure dst contents are unspecified.
func Decompress(src, dst []byte) (int, error) {
	ip := 0
	op := 0

	for ip < len(src) {
		ctl := int(src[ip])
		ip++

		if ctl < maxLiteral {
			// Literal run of ctl+1 bytes copied verbatim.
			run := ctl + 1
			if ip+run > len(src) {
				return 0, ErrCorrupt
			}
			if op+run > len(dst) {
				return 0, ErrShortBuffer
			}
			copy(dst[op:], src[ip:ip+run])
			ip += run
			op += run

			continue
		}

		// Back-reference: 3-bit length with optional extension byte, then
		// the low byte of the 13-bit offset.
		length := ctl >> 5
		if length == 7 {
			if ip >= len(src) {
				return 0, ErrCorrupt
			}
			length += int(src[ip])
			ip++
		}
		length += 2

		if ip >= len(src) {
			return 0, ErrCorrupt
		}
		ref := op - ((ctl&0x1f)<<8 | int(src[ip])) - 1
		ip++

		if ref < 0 {
			return 0, ErrCorrupt
		}
		if op+length > len(dst) {
			return 0, ErrShortBuffer
		}

		// Byte-at-a-time forward copy: the match may overlap its own output.
		for i := 0; i < length; i++ {
			dst[op] = dst[ref]
			op++
			ref++
		}
	}

	return op, nil
}
