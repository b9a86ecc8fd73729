package section

import (
	"fmt"

	"github.com/arloliu/pcd/errs"
	"github.com/arloliu/pcd/format"
)

// Field describes one named channel of a point record.
//
// A field contributes Count scalar elements of Size bytes each to every
// point. The two offsets are derived: ElementOffset is the index of the
// field's first element among the flattened scalar elements of a point, and
// ByteOffset is the byte position of the field within a packed point record.
type Field struct {
	Name  string
	Size  int
	Type  format.ElementType
	Count int

	ElementOffset int
	ByteOffset    int
}

// Width returns the packed byte width of the field within one point record.
func (f Field) Width() int {
	return f.Count * f.Size
}

// NewFields builds a field list from parallel name/size/type/count slices and
// computes the derived offsets.
//
// Parameters:
//   - names: Field names, one per field
//   - sizes: Per-field element sizes in bytes
//   - types: Per-field element types
//   - counts: Per-field element repetition, at least 1
//
// Returns:
//   - []Field: Field list with ElementOffset and ByteOffset populated
//   - error: ErrFieldCountMismatch if the slices differ in length
func NewFields(names []string, sizes []int, types []format.ElementType, counts []int) ([]Field, error) {
	n := len(names)
	if len(sizes) != n || len(types) != n || len(counts) != n {
		return nil, fmt.Errorf("%w: %d names, %d sizes, %d types, %d counts",
			errs.ErrFieldCountMismatch, n, len(sizes), len(types), len(counts))
	}

	fields := make([]Field, n)
	for i := range fields {
		fields[i] = Field{
			Name:  names[i],
			Size:  sizes[i],
			Type:  types[i],
			Count: counts[i],
		}
	}
	RecomputeOffsets(fields)

	return fields, nil
}

// RecomputeOffsets rebuilds ElementOffset and ByteOffset for every field from
// the current sizes and counts, and returns the total element count and point
// stride in bytes.
func RecomputeOffsets(fields []Field) (elements, stride int) {
	for i := range fields {
		fields[i].ElementOffset = elements
		fields[i].ByteOffset = stride
		elements += fields[i].Count
		stride += fields[i].Count * fields[i].Size
	}

	return elements, stride
}

// FieldByName returns the first field with the given name.
func FieldByName(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}
