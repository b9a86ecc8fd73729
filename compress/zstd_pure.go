//go:build !cgo

package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

func (ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1), // Single-threaded for predictable performance
	)
	if err != nil {
		return nil, err
	}

	return decoder.IOReadCloser(), nil
}

func (ZstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
}
