// Package compress provides container-level stream compression for PCD
// files. A codec wraps the raw file stream; it is orthogonal to the DATA
// encoding inside the stream, so a binary_compressed PCD can still travel
// inside a gzip container.
//
// Codecs are selected by file extension: ".gz" (gzip), ".zst" (Zstandard),
// ".lz4" (LZ4 frame), ".sz" (S2). Everything else is passed through
// untouched.
package compress

import (
	"io"
	"path/filepath"
)

// Codec wraps a raw byte stream with a compression container.
//
// Implementations are stateless; the returned readers and writers own any
// per-stream state. Closing a writer flushes and terminates the container
// frame but does not close the underlying stream.
type Codec interface {
	// Name returns the codec's short identifier.
	Name() string

	// NewReader wraps r so reads yield the decompressed stream.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter wraps w so writes are compressed into the container format.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

var codecs = map[string]Codec{
	".gz":  GzipCodec{},
	".zst": ZstdCodec{},
	".lz4": LZ4Codec{},
	".sz":  S2Codec{},
}

// ForPath resolves the codec for a file path from its extension. Paths with
// no registered compression extension resolve to the pass-through codec.
func ForPath(path string) Codec {
	if codec, ok := codecs[filepath.Ext(path)]; ok {
		return codec
	}

	return NoOpCodec{}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NoOpCodec passes the stream through untouched. It is the codec for plain
// .pcd paths.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func (NoOpCodec) Name() string { return "none" }

func (NoOpCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (NoOpCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}
