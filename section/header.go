// Package section models the textual PCD header: the typed field list, the
// normalized header record, and the line-oriented parser and emitter that
// convert between the two and the on-disk representation.
package section

import (
	"fmt"

	"github.com/arloliu/pcd/errs"
	"github.com/arloliu/pcd/format"
)

// DefaultViewpoint is the viewpoint emitted on write. The parser stores the
// first token of the incoming viewpoint verbatim but nothing downstream
// interprets it.
const DefaultViewpoint = "0 0 0 1 0 0 0"

// Header is the normalized PCD header record.
//
// It is constructed either by the parser from input lines or by the writer
// from a point cloud, lives for the duration of a single read or write call,
// and is consumed immediately by the corresponding data codec.
type Header struct {
	Version   string
	Fields    []Field
	Width     int
	Height    int
	Points    int
	Viewpoint string
	Data      format.DataType

	// ElementCount is the total scalar elements per point, summed across
	// all fields' counts.
	ElementCount int
	// PointStride is the byte width of one packed point record.
	PointStride int

	HasPosition  bool
	HasIntensity bool
	HasNormals   bool
	HasColors    bool
}

// Recompute rebuilds the field offsets, ElementCount and PointStride from
// the current field sizes and counts.
func (h *Header) Recompute() {
	h.ElementCount, h.PointStride = RecomputeOffsets(h.Fields)
}

// DeriveFlags recomputes the four channel presence flags from field names:
// position requires x, y and z; normals require normal_x, normal_y and
// normal_z; colors accept rgb or rgba.
func (h *Header) DeriveFlags() {
	var hasX, hasY, hasZ bool
	var hasNX, hasNY, hasNZ bool

	h.HasIntensity = false
	h.HasColors = false
	for _, f := range h.Fields {
		switch f.Name {
		case "x":
			hasX = true
		case "y":
			hasY = true
		case "z":
			hasZ = true
		case "intensity":
			h.HasIntensity = true
		case "normal_x":
			hasNX = true
		case "normal_y":
			hasNY = true
		case "normal_z":
			hasNZ = true
		case "rgb", "rgba":
			h.HasColors = true
		}
	}

	h.HasPosition = hasX && hasY && hasZ
	h.HasNormals = hasNX && hasNY && hasNZ
}

// Validate derives the presence flags and checks the header invariants that
// the data codecs rely on.
//
// Returns:
//   - error: ErrNoPoints, ErrZeroStride, ErrNoFields or ErrMissingPosition
func (h *Header) Validate() error {
	if h.Points <= 0 {
		return errs.ErrNoPoints
	}
	if len(h.Fields) == 0 {
		return errs.ErrNoFields
	}
	if h.PointStride <= 0 {
		return errs.ErrZeroStride
	}
	for _, f := range h.Fields {
		if f.Size < 1 || f.Count < 1 {
			return fmt.Errorf("%w: field %q size %d count %d", errs.ErrBadFieldLayout, f.Name, f.Size, f.Count)
		}
	}

	h.DeriveFlags()
	if !h.HasPosition {
		return errs.ErrMissingPosition
	}

	return nil
}
