package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec wraps streams in the LZ4 frame format (".lz4").
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

func (LZ4Codec) Name() string { return "lz4" }

func (LZ4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (LZ4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}
