// Package pcdio reads and writes point clouds in the PCD container format:
// a textual header followed by point records in one of three encodings —
// ASCII text, raw binary records, or an LZF-compressed column-major payload.
//
// The package is the codec only. It materializes into and serializes from
// pointcloud.PointCloud; geometry lives with the cloud, file-extension
// container compression lives in the compress package, and the LZF block
// format lives in the lzf package.
//
// Reading:
//
//	cloud, err := pcdio.ReadFile("scan.pcd.gz")
//
// Writing:
//
//	err := pcdio.WriteFile("scan.pcd", cloud, pcdio.WithCompression())
//
// Every call is synchronous and owns its scratch state; independent calls
// may run concurrently from separate goroutines.
package pcdio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arloliu/pcd/compress"
	"github.com/arloliu/pcd/encoding"
	"github.com/arloliu/pcd/endian"
	"github.com/arloliu/pcd/errs"
	"github.com/arloliu/pcd/format"
	"github.com/arloliu/pcd/internal/pool"
	"github.com/arloliu/pcd/lzf"
	"github.com/arloliu/pcd/pointcloud"
	"github.com/arloliu/pcd/section"
)

var engine = endian.GetLittleEndianEngine()

// fieldSlot pairs a header field with its pre-resolved destination, so the
// record loops never compare field names.
type fieldSlot struct {
	field section.Field
	slot  encoding.Slot
}

// buildPlan resolves every header field to a destination slot. A field only
// receives a live slot when the header's presence flags admit its channel;
// a lone normal_x without its siblings is read and discarded.
func buildPlan(header *section.Header) []fieldSlot {
	plan := make([]fieldSlot, len(header.Fields))
	for i, f := range header.Fields {
		slot := encoding.ResolveSlot(f.Name)
		switch slot {
		case encoding.SlotX, encoding.SlotY, encoding.SlotZ:
			if !header.HasPosition {
				slot = encoding.SlotSkip
			}
		case encoding.SlotNormalX, encoding.SlotNormalY, encoding.SlotNormalZ:
			if !header.HasNormals {
				slot = encoding.SlotSkip
			}
		case encoding.SlotColor:
			if !header.HasColors {
				slot = encoding.SlotSkip
			}
		}
		plan[i] = fieldSlot{field: f, slot: slot}
	}

	return plan
}

// presize allocates the cloud channels announced by the header's presence
// flags, each with one entry per point.
func presize(cloud *pointcloud.PointCloud, header *section.Header) {
	cloud.Points = make([]pointcloud.Vector, header.Points)
	if header.HasIntensity {
		cloud.Intensities = make([]float64, header.Points)
	}
	if header.HasNormals {
		cloud.Normals = make([]pointcloud.Vector, header.Points)
	}
	if header.HasColors {
		cloud.Colors = make([]pointcloud.Vector, header.Points)
	}
}

func assignScalar(cloud *pointcloud.PointCloud, slot encoding.Slot, i int, v float64) {
	switch slot {
	case encoding.SlotX:
		cloud.Points[i].X = v
	case encoding.SlotY:
		cloud.Points[i].Y = v
	case encoding.SlotZ:
		cloud.Points[i].Z = v
	case encoding.SlotIntensity:
		cloud.Intensities[i] = v
	case encoding.SlotNormalX:
		cloud.Normals[i].X = v
	case encoding.SlotNormalY:
		cloud.Normals[i].Y = v
	case encoding.SlotNormalZ:
		cloud.Normals[i].Z = v
	}
}

func assignColor(cloud *pointcloud.PointCloud, i int, c [3]float64) {
	cloud.Colors[i] = pointcloud.Vector{X: c[0], Y: c[1], Z: c[2]}
}

// checkSectionSize rejects headers whose declared data section exceeds
// MaxDataSectionSize before any allocation happens.
func checkSectionSize(n int64) error {
	if n < 0 || n > MaxDataSectionSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrHeaderTooLarge, n)
	}

	return nil
}

// Read parses one PCD stream into a point cloud.
//
// The header is consumed up to the DATA directive, the data section is
// decoded through the encoding it announces, and the optional NaN/infinity
// filters run over the result. On any failure the partially read cloud is
// discarded and a nil cloud is returned.
//
// Parameters:
//   - r: Stream positioned at the start of the header
//   - opts: Optional read configuration
//
// Returns:
//   - *pointcloud.PointCloud: Decoded cloud with channels per the header's
//     presence flags
//   - error: Header syntax/semantics errors, truncation, decompression
//     failures, or errs.ErrReadAborted from the progress callback
func Read(r io.Reader, opts ...ReadOption) (*pointcloud.PointCloud, error) {
	cfg, err := NewReadOptions(opts...)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	header, err := section.ReadHeader(br)
	if err != nil {
		return nil, err
	}

	cloud := pointcloud.New()
	if err := readData(br, header, cloud, cfg); err != nil {
		cloud.Clear()
		return nil, err
	}

	cloud.RemoveNonFinite(cfg.RemoveNaN, cfg.RemoveInfinite)

	return cloud, nil
}

// ReadFile opens path, unwraps any container compression implied by its
// extension (unless the format option forces a plain stream) and reads the
// PCD content.
func ReadFile(path string, opts ...ReadOption) (*pointcloud.PointCloud, error) {
	cfg, err := NewReadOptions(opts...)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pcdio: open %s: %w", path, err)
	}
	defer f.Close()

	codec := compress.Codec(compress.NoOpCodec{})
	if cfg.Format == "auto" {
		codec = compress.ForPath(path)
	}
	rc, err := codec.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("pcdio: open %s container: %w", path, err)
	}
	defer rc.Close()

	return Read(rc, opts...)
}

func readData(br *bufio.Reader, header *section.Header, cloud *pointcloud.PointCloud, cfg ReadOptions) error {
	if err := checkSectionSize(int64(header.PointStride) * int64(header.Points)); err != nil {
		return err
	}

	presize(cloud, header)
	plan := buildPlan(header)

	switch header.Data {
	case format.DataASCII:
		return readASCII(br, header, plan, cloud, cfg)
	case format.DataBinary:
		return readBinary(br, header, plan, cloud, cfg)
	case format.DataBinaryCompressed:
		return readBinaryCompressed(br, header, plan, cloud, cfg)
	default:
		return errs.ErrUnknownDataType
	}
}

// readASCII decodes one point per line. Lines with fewer than ElementCount
// tokens are skipped without consuming a point slot; a stream that ends
// early leaves the remaining points zero-valued, matching the historical
// reader.
func readASCII(br *bufio.Reader, header *section.Header, plan []fieldSlot, cloud *pointcloud.PointCloud, cfg ReadOptions) error {
	idx := 0
	for idx < header.Points {
		line, err := br.ReadString('\n')
		if line == "" && err != nil {
			break
		}

		tokens := strings.Fields(line)
		if len(tokens) < header.ElementCount {
			if err != nil {
				break
			}
			continue
		}

		for _, fs := range plan {
			if fs.slot == encoding.SlotSkip {
				continue
			}
			token := tokens[fs.field.ElementOffset]
			if fs.slot.IsColor() {
				assignColor(cloud, idx, encoding.UnpackASCIIColor(token, fs.field.Type, fs.field.Size))
			} else {
				assignScalar(cloud, fs.slot, idx, encoding.UnpackASCIIElement(token, fs.field.Type, fs.field.Size))
			}
		}
		idx++

		if !stepProgress(cfg.UpdateProgress, idx, header.Points) {
			return errs.ErrReadAborted
		}
		if err != nil {
			break
		}
	}

	return nil
}

// readBinary decodes fixed-width point records. A short read fails the whole
// operation.
func readBinary(br *bufio.Reader, header *section.Header, plan []fieldSlot, cloud *pointcloud.PointCloud, cfg ReadOptions) error {
	scratch := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(scratch)
	scratch.ExtendOrGrow(header.PointStride)
	record := scratch.Bytes()[:header.PointStride]

	for i := 0; i < header.Points; i++ {
		if _, err := io.ReadFull(br, record); err != nil {
			return fmt.Errorf("%w: point %d of %d: %v", errs.ErrDataTruncated, i, header.Points, err)
		}

		for _, fs := range plan {
			if fs.slot == encoding.SlotSkip {
				continue
			}
			data := record[fs.field.ByteOffset:]
			if fs.slot.IsColor() {
				assignColor(cloud, i, encoding.UnpackBinaryColor(data, fs.field.Type, fs.field.Size))
			} else {
				assignScalar(cloud, fs.slot, i, encoding.UnpackBinaryElement(data, fs.field.Type, fs.field.Size))
			}
		}

		if !stepProgress(cfg.UpdateProgress, i+1, header.Points) {
			return errs.ErrReadAborted
		}
	}

	return nil
}

// readBinaryCompressed decodes the LZF-compressed column-major payload: two
// little-endian uint32 lengths, then the compressed bytes. The column for
// field f starts at byte offset ByteOffset*points of the decompressed
// buffer, each record Width bytes apart.
func readBinaryCompressed(br *bufio.Reader, header *section.Header, plan []fieldSlot, cloud *pointcloud.PointCloud, cfg ReadOptions) error {
	var sizes [8]byte
	if _, err := io.ReadFull(br, sizes[:]); err != nil {
		return fmt.Errorf("%w: compressed size prefix: %v", errs.ErrDataTruncated, err)
	}
	compressedSize := int(engine.Uint32(sizes[0:4]))
	uncompressedSize := int(engine.Uint32(sizes[4:8]))

	if err := checkSectionSize(int64(compressedSize)); err != nil {
		return err
	}
	if err := checkSectionSize(int64(uncompressedSize)); err != nil {
		return err
	}

	compressedBuf := pool.GetDataBuffer()
	defer pool.PutDataBuffer(compressedBuf)
	compressedBuf.ExtendOrGrow(compressedSize)
	compressed := compressedBuf.Bytes()[:compressedSize]

	if _, err := io.ReadFull(br, compressed); err != nil {
		return fmt.Errorf("%w: compressed payload: %v", errs.ErrDataTruncated, err)
	}

	payloadBuf := pool.GetDataBuffer()
	defer pool.PutDataBuffer(payloadBuf)
	payloadBuf.ExtendOrGrow(uncompressedSize)
	payload := payloadBuf.Bytes()[:uncompressedSize]

	n, err := lzf.Decompress(compressed, payload)
	if err != nil || n != uncompressedSize {
		if err == nil {
			err = errors.New("short output")
		}
		return fmt.Errorf("%w: %v", errs.ErrDecompressSizeMismatch, err)
	}

	for _, fs := range plan {
		if fs.slot == encoding.SlotSkip {
			continue
		}
		width := fs.field.Width()
		base := fs.field.ByteOffset * header.Points
		if int64(base)+int64(width)*int64(header.Points) > int64(len(payload)) {
			return fmt.Errorf("%w: column %q exceeds decompressed payload", errs.ErrDataTruncated, fs.field.Name)
		}

		for i := 0; i < header.Points; i++ {
			data := payload[base+i*width:]
			if fs.slot.IsColor() {
				assignColor(cloud, i, encoding.UnpackBinaryColor(data, fs.field.Type, fs.field.Size))
			} else {
				assignScalar(cloud, fs.slot, i, encoding.UnpackBinaryElement(data, fs.field.Type, fs.field.Size))
			}
		}
	}

	if cfg.UpdateProgress != nil && !cfg.UpdateProgress(1.0) {
		return errs.ErrReadAborted
	}

	return nil
}

// stepProgress polls the callback with the fraction done and reports whether
// to continue.
func stepProgress(fn ProgressFunc, done, total int) bool {
	if fn == nil {
		return true
	}

	return fn(float64(done) / float64(total))
}
