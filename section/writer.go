package section

import (
	"fmt"
	"io"
	"strings"
)

// WriteTo emits the header in the canonical line order, each line terminated
// by '\n', starting with the banner comment. The viewpoint is always emitted
// as DefaultViewpoint regardless of what a parsed header carried.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# .PCD v%s - Point Cloud Data file format\n", h.Version)
	fmt.Fprintf(&sb, "VERSION %s\n", h.Version)

	sb.WriteString("FIELDS")
	for _, f := range h.Fields {
		sb.WriteByte(' ')
		sb.WriteString(f.Name)
	}
	sb.WriteByte('\n')

	sb.WriteString("SIZE")
	for _, f := range h.Fields {
		fmt.Fprintf(&sb, " %d", f.Size)
	}
	sb.WriteByte('\n')

	sb.WriteString("TYPE")
	for _, f := range h.Fields {
		fmt.Fprintf(&sb, " %c", byte(f.Type))
	}
	sb.WriteByte('\n')

	sb.WriteString("COUNT")
	for _, f := range h.Fields {
		fmt.Fprintf(&sb, " %d", f.Count)
	}
	sb.WriteByte('\n')

	fmt.Fprintf(&sb, "WIDTH %d\n", h.Width)
	fmt.Fprintf(&sb, "HEIGHT %d\n", h.Height)
	fmt.Fprintf(&sb, "VIEWPOINT %s\n", DefaultViewpoint)
	fmt.Fprintf(&sb, "POINTS %d\n", h.Points)
	fmt.Fprintf(&sb, "DATA %s\n", h.Data)

	n, err := io.WriteString(w, sb.String())

	return int64(n), err
}
