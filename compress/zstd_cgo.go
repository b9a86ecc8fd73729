//go:build cgo

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

type zstdReader struct {
	*gozstd.Reader
}

func (r zstdReader) Close() error {
	r.Release()

	return nil
}

type zstdWriter struct {
	*gozstd.Writer
}

func (w zstdWriter) Close() error {
	err := w.Writer.Close()
	w.Release()

	return err
}

func (ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return zstdReader{gozstd.NewReader(r)}, nil
}

func (ZstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstdWriter{gozstd.NewWriter(w)}, nil
}
