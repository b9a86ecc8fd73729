// Package errs defines the sentinel errors shared across the pcd packages.
//
// Callers can match them with errors.Is even when intermediate layers wrap
// them with additional context via fmt.Errorf("...: %w", err).
package errs

import "errors"

// Header syntax errors reported by the header parser.
var (
	// ErrNoFields indicates a FIELDS directive with no names, or a header
	// that declared no fields before DATA.
	ErrNoFields = errors.New("pcd: header declares no fields")

	// ErrFieldCountMismatch indicates a SIZE, TYPE or COUNT directive whose
	// entry count differs from the preceding FIELDS directive.
	ErrFieldCountMismatch = errors.New("pcd: directive entry count does not match field count")

	// ErrUnknownDataType indicates a DATA directive with an unrecognized tag.
	ErrUnknownDataType = errors.New("pcd: unknown DATA encoding")

	// ErrMissingData indicates the header ended without a DATA directive.
	ErrMissingData = errors.New("pcd: header has no DATA directive")
)

// Header semantics errors reported by header validation.
var (
	// ErrMissingPosition indicates the x, y, z fields are not all present.
	ErrMissingPosition = errors.New("pcd: fields for point data are not complete")

	// ErrNoPoints indicates a non-positive point count.
	ErrNoPoints = errors.New("pcd: header declares no points")

	// ErrZeroStride indicates a non-positive point record width.
	ErrZeroStride = errors.New("pcd: header declares zero point stride")

	// ErrHeaderTooLarge indicates the header-declared data section exceeds
	// the allocation ceiling.
	ErrHeaderTooLarge = errors.New("pcd: declared data section exceeds size limit")

	// ErrBadFieldLayout indicates a field with a non-positive size or count,
	// which would break the record offset arithmetic.
	ErrBadFieldLayout = errors.New("pcd: field has non-positive size or count")
)

// Data section errors.
var (
	// ErrDataTruncated indicates fewer data bytes than the header declared.
	ErrDataTruncated = errors.New("pcd: data section truncated")

	// ErrDecompressSizeMismatch indicates the LZF output size differs from
	// the declared uncompressed size.
	ErrDecompressSizeMismatch = errors.New("pcd: decompressed size does not match header")

	// ErrCompressFailed indicates the LZF compressor could not fit the data
	// into the output buffer.
	ErrCompressFailed = errors.New("pcd: lzf compression failed")
)

// Write-side errors.
var (
	// ErrEmptyCloud indicates an attempt to write a cloud without points.
	ErrEmptyCloud = errors.New("pcd: point cloud has no points")

	// ErrWriteAborted indicates the progress callback requested cancellation.
	ErrWriteAborted = errors.New("pcd: write aborted by progress callback")
)

// Read-side errors.
var (
	// ErrReadAborted indicates the progress callback requested cancellation.
	ErrReadAborted = errors.New("pcd: read aborted by progress callback")
)

// Container-level errors.
var (
	// ErrUnknownFormat indicates a file extension with no registered codec.
	ErrUnknownFormat = errors.New("pcd: unknown container format")
)
