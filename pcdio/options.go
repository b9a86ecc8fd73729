package pcdio

import (
	"fmt"

	"github.com/arloliu/pcd/internal/options"
)

// MaxDataSectionSize bounds the data-section bytes a header may declare
// before the reader allocates scratch for it. Headers declaring more fail
// with errs.ErrHeaderTooLarge instead of driving allocations.
var MaxDataSectionSize = int64(1 << 30) // 1GiB

// ProgressFunc receives completion fractions in [0, 1] and reports whether
// the operation should continue. Returning false aborts the call.
type ProgressFunc func(fraction float64) bool

// ReadOptions configures a read call.
type ReadOptions struct {
	// Format selects the container handling: "auto" resolves a compression
	// codec from the file extension, "pcd" forces the plain stream.
	Format string

	// RemoveNaN drops points with NaN coordinates after a successful read.
	RemoveNaN bool

	// RemoveInfinite drops points with infinite coordinates after a
	// successful read.
	RemoveInfinite bool

	// UpdateProgress, when set, is polled once per point for ASCII and
	// binary reads and once, after decoding, for compressed reads.
	UpdateProgress ProgressFunc
}

// ReadOption represents a functional option for configuring ReadOptions.
type ReadOption = options.Option[*ReadOptions]

// NewReadOptions builds a ReadOptions from defaults plus the given options.
func NewReadOptions(opts ...ReadOption) (ReadOptions, error) {
	cfg := ReadOptions{Format: "auto"}
	if err := options.Apply(&cfg, opts...); err != nil {
		return ReadOptions{}, err
	}

	return cfg, nil
}

// WithFormat forces the container format: "auto" or "pcd".
func WithFormat(fmtName string) ReadOption {
	return options.New(func(o *ReadOptions) error {
		switch fmtName {
		case "auto", "pcd":
			o.Format = fmtName
			return nil
		default:
			return fmt.Errorf("pcdio: unsupported format %q", fmtName)
		}
	})
}

// WithRemoveNaN drops NaN points after reading.
func WithRemoveNaN() ReadOption {
	return options.NoError(func(o *ReadOptions) { o.RemoveNaN = true })
}

// WithRemoveInfinite drops infinite points after reading.
func WithRemoveInfinite() ReadOption {
	return options.NoError(func(o *ReadOptions) { o.RemoveInfinite = true })
}

// WithReadProgress installs a progress callback for the read call.
func WithReadProgress(fn ProgressFunc) ReadOption {
	return options.NoError(func(o *ReadOptions) { o.UpdateProgress = fn })
}

// WriteOptions configures a write call.
type WriteOptions struct {
	// ASCII selects the textual data section. It overrides Compressed.
	ASCII bool

	// Compressed selects the binary_compressed data section when ASCII is
	// not set.
	Compressed bool

	// PrintProgress reports write progress on standard error when no
	// UpdateProgress callback is installed. Advisory.
	PrintProgress bool

	// UpdateProgress, when set, is polled once per point for ASCII and
	// binary writes and once per phase for compressed writes. Returning
	// false aborts the write.
	UpdateProgress ProgressFunc
}

// WriteOption represents a functional option for configuring WriteOptions.
type WriteOption = options.Option[*WriteOptions]

// NewWriteOptions builds a WriteOptions from defaults plus the given
// options. The default is the raw binary encoding.
func NewWriteOptions(opts ...WriteOption) (WriteOptions, error) {
	cfg := WriteOptions{}
	if err := options.Apply(&cfg, opts...); err != nil {
		return WriteOptions{}, err
	}

	return cfg, nil
}

// WithASCII selects the ascii data section.
func WithASCII() WriteOption {
	return options.NoError(func(o *WriteOptions) { o.ASCII = true })
}

// WithCompression selects the binary_compressed data section.
func WithCompression() WriteOption {
	return options.NoError(func(o *WriteOptions) { o.Compressed = true })
}

// WithPrintProgress enables the advisory progress printout.
func WithPrintProgress() WriteOption {
	return options.NoError(func(o *WriteOptions) { o.PrintProgress = true })
}

// WithWriteProgress installs a progress callback for the write call.
func WithWriteProgress(fn ProgressFunc) WriteOption {
	return options.NoError(func(o *WriteOptions) { o.UpdateProgress = fn })
}
