package section

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/pcd/errs"
	"github.com/arloliu/pcd/format"
)

// ReadHeader consumes header lines from r until the DATA directive and
// returns the validated header record. The reader is left positioned at the
// first byte of the data section.
//
// Lines are tokenized on whitespace; blank lines and lines starting with '#'
// are ignored. Directives are matched by leading prefix, so unknown lines
// that do not resemble a directive are skipped, matching the tolerance of
// the historical format.
//
// Parameters:
//   - r: Buffered reader over the PCD stream
//
// Returns:
//   - *Header: Parsed and validated header
//   - error: Syntax errors (ErrFieldCountMismatch, ErrUnknownDataType,
//     ErrMissingData) or validation errors (ErrMissingPosition, ErrNoPoints,
//     ErrZeroStride, ErrNoFields)
func ReadHeader(r *bufio.Reader) (*Header, error) {
	header := &Header{}
	sawData := false

	for !sawData {
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("section: read header line: %w", err)
		}

		tokens := strings.Fields(line)
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		directive := tokens[0]
		rest := tokens[1:]

		switch {
		case strings.HasPrefix(directive, "VERSION"):
			if len(rest) >= 1 {
				header.Version = rest[0]
			}

		case strings.HasPrefix(directive, "FIELDS"), strings.HasPrefix(directive, "COLUMNS"):
			if len(rest) == 0 {
				return nil, fmt.Errorf("%w: FIELDS declares no names", errs.ErrNoFields)
			}
			header.Fields = make([]Field, len(rest))
			for i, name := range rest {
				header.Fields[i] = Field{Name: name, Size: 4, Type: format.ElementFloat, Count: 1}
			}
			header.Recompute()

		case strings.HasPrefix(directive, "SIZE"):
			if err := parseSizes(header, rest); err != nil {
				return nil, err
			}

		case strings.HasPrefix(directive, "TYPE"):
			if len(rest) != len(header.Fields) {
				return nil, fieldCountErr("TYPE", len(rest), len(header.Fields))
			}
			for i, tok := range rest {
				header.Fields[i].Type = format.ElementType(tok[0])
			}

		case strings.HasPrefix(directive, "COUNT"):
			if err := parseCounts(header, rest); err != nil {
				return nil, err
			}

		case strings.HasPrefix(directive, "WIDTH"):
			if header.Width, err = parseInt("WIDTH", rest); err != nil {
				return nil, err
			}

		case strings.HasPrefix(directive, "HEIGHT"):
			if header.Height, err = parseInt("HEIGHT", rest); err != nil {
				return nil, err
			}
			header.Points = header.Width * header.Height

		case strings.HasPrefix(directive, "VIEWPOINT"):
			if len(rest) >= 1 {
				header.Viewpoint = rest[0]
			}

		case strings.HasPrefix(directive, "POINTS"):
			if header.Points, err = parseInt("POINTS", rest); err != nil {
				return nil, err
			}

		case strings.HasPrefix(directive, "DATA"):
			if len(rest) >= 1 {
				data, ok := format.ParseDataType(rest[0])
				if !ok {
					return nil, fmt.Errorf("%w: %q", errs.ErrUnknownDataType, rest[0])
				}
				header.Data = data
			} else {
				header.Data = format.DataASCII
			}
			sawData = true
		}
	}

	if !sawData {
		return nil, errs.ErrMissingData
	}
	if err := header.Validate(); err != nil {
		return nil, err
	}

	return header, nil
}

// parseSizes applies a SIZE directive. Offsets are rebuilt from sizes alone;
// a later COUNT directive rebuilds them again with counts applied.
func parseSizes(header *Header, rest []string) error {
	if len(rest) != len(header.Fields) {
		return fieldCountErr("SIZE", len(rest), len(header.Fields))
	}

	offset := 0
	for i, tok := range rest {
		size, err := strconv.Atoi(tok)
		if err != nil {
			return fmt.Errorf("section: invalid SIZE entry %q: %w", tok, err)
		}
		header.Fields[i].Size = size
		header.Fields[i].ByteOffset = offset
		offset += size
	}
	header.PointStride = offset

	return nil
}

// parseCounts applies a COUNT directive and rebuilds both offset sets.
func parseCounts(header *Header, rest []string) error {
	if len(rest) != len(header.Fields) {
		return fieldCountErr("COUNT", len(rest), len(header.Fields))
	}

	for i, tok := range rest {
		count, err := strconv.Atoi(tok)
		if err != nil {
			return fmt.Errorf("section: invalid COUNT entry %q: %w", tok, err)
		}
		header.Fields[i].Count = count
	}
	header.Recompute()

	return nil
}

func parseInt(directive string, rest []string) (int, error) {
	if len(rest) < 1 {
		return 0, fmt.Errorf("section: %s directive has no value", directive)
	}
	v, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, fmt.Errorf("section: invalid %s value %q: %w", directive, rest[0], err)
	}

	return v, nil
}

func fieldCountErr(directive string, got, want int) error {
	return fmt.Errorf("%w: %s has %d entries for %d fields", errs.ErrFieldCountMismatch, directive, got, want)
}
