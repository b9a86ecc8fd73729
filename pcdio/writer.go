package pcdio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/arloliu/pcd/compress"
	"github.com/arloliu/pcd/encoding"
	"github.com/arloliu/pcd/errs"
	"github.com/arloliu/pcd/format"
	"github.com/arloliu/pcd/internal/pool"
	"github.com/arloliu/pcd/lzf"
	"github.com/arloliu/pcd/pointcloud"
	"github.com/arloliu/pcd/section"
)

// writeVersion is the format version stamped on every written header.
const writeVersion = "0.7"

// buildHeader derives the header for a write: the field list follows the
// cloud's channels in the fixed order x,y,z, normals, rgb, intensity, every
// field a single float32. The data tag follows the options, with ASCII
// overriding compression.
func buildHeader(cloud *pointcloud.PointCloud, cfg WriteOptions) *section.Header {
	names := []string{"x", "y", "z"}
	if cloud.HasNormals() {
		names = append(names, "normal_x", "normal_y", "normal_z")
	}
	if cloud.HasColors() {
		names = append(names, "rgb")
	}
	if cloud.HasIntensities() {
		names = append(names, "intensity")
	}

	fields := make([]section.Field, len(names))
	for i, name := range names {
		fields[i] = section.Field{Name: name, Size: 4, Type: format.ElementFloat, Count: 1}
	}

	header := &section.Header{
		Version: writeVersion,
		Fields:  fields,
		Width:   cloud.Len(),
		Height:  1,
		Points:  cloud.Len(),
	}
	header.Recompute()
	header.DeriveFlags()

	switch {
	case cfg.ASCII:
		header.Data = format.DataASCII
	case cfg.Compressed:
		header.Data = format.DataBinaryCompressed
	default:
		header.Data = format.DataBinary
	}

	return header
}

// Write serializes the cloud into w as a PCD stream.
//
// The field composition is fixed by the cloud's channels at call time; see
// buildHeader. The progress callback is polled once per point for ASCII and
// binary, and once per phase (pack, compress, write) for compressed output.
//
// Parameters:
//   - w: Destination stream
//   - cloud: Cloud to serialize; must have points
//   - opts: Optional write configuration
//
// Returns:
//   - error: errs.ErrEmptyCloud, errs.ErrWriteAborted, errs.ErrCompressFailed
//     or the underlying I/O error
func Write(w io.Writer, cloud *pointcloud.PointCloud, opts ...WriteOption) error {
	cfg, err := NewWriteOptions(opts...)
	if err != nil {
		return err
	}
	if !cloud.HasPoints() {
		return errs.ErrEmptyCloud
	}
	if cfg.PrintProgress && cfg.UpdateProgress == nil {
		cfg.UpdateProgress = stderrProgress()
	}

	header := buildHeader(cloud, cfg)

	bw := bufio.NewWriter(w)
	if _, err := header.WriteTo(bw); err != nil {
		return fmt.Errorf("pcdio: write header: %w", err)
	}

	switch header.Data {
	case format.DataASCII:
		err = writeASCII(bw, cloud, cfg)
	case format.DataBinary:
		err = writeBinary(bw, header, cloud, cfg)
	default:
		err = writeBinaryCompressed(bw, header, cloud, cfg)
	}
	if err != nil {
		return err
	}

	return bw.Flush()
}

// WriteFile creates path and writes the cloud through the container codec
// implied by the path's extension. The file handle is closed on every exit
// path; a failed write leaves the partial file behind.
func WriteFile(path string, cloud *pointcloud.PointCloud, opts ...WriteOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pcdio: create %s: %w", path, err)
	}
	defer f.Close()

	wc, err := compress.ForPath(path).NewWriter(f)
	if err != nil {
		return fmt.Errorf("pcdio: open %s container: %w", path, err)
	}

	if err := Write(wc, cloud, opts...); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("pcdio: close %s container: %w", path, err)
	}

	return f.Close()
}

// writeASCII emits one line per point: positions, then normals, packed rgb
// and intensity as present, all space-separated with %.10g formatting.
func writeASCII(bw *bufio.Writer, cloud *pointcloud.PointCloud, cfg WriteOptions) error {
	hasIntensity := cloud.HasIntensities()
	hasNormals := cloud.HasNormals()
	hasColors := cloud.HasColors()

	for i, p := range cloud.Points {
		if _, err := fmt.Fprintf(bw, "%.10g %.10g %.10g", p.X, p.Y, p.Z); err != nil {
			return err
		}
		if hasNormals {
			n := cloud.Normals[i]
			if _, err := fmt.Fprintf(bw, " %.10g %.10g %.10g", n.X, n.Y, n.Z); err != nil {
				return err
			}
		}
		if hasColors {
			c := cloud.Colors[i]
			if _, err := fmt.Fprintf(bw, " %.10g", encoding.PackColorFloat(c.X, c.Y, c.Z)); err != nil {
				return err
			}
		}
		if hasIntensity {
			if _, err := fmt.Fprintf(bw, " %.10g", cloud.Intensities[i]); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}

		if !stepProgress(cfg.UpdateProgress, i+1, cloud.Len()) {
			return errs.ErrWriteAborted
		}
	}

	return nil
}

// packRecord fills record with the point's float32 elements in field order
// and returns the number of bytes used.
func packRecord(record []byte, cloud *pointcloud.PointCloud, i int, hasNormals, hasColors, hasIntensity bool) int {
	off := 0
	put := func(v float64) {
		engine.PutUint32(record[off:], math.Float32bits(float32(v)))
		off += 4
	}

	p := cloud.Points[i]
	put(p.X)
	put(p.Y)
	put(p.Z)
	if hasNormals {
		n := cloud.Normals[i]
		put(n.X)
		put(n.Y)
		put(n.Z)
	}
	if hasColors {
		c := cloud.Colors[i]
		engine.PutUint32(record[off:], math.Float32bits(encoding.PackColorFloat(c.X, c.Y, c.Z)))
		off += 4
	}
	if hasIntensity {
		put(cloud.Intensities[i])
	}

	return off
}

// writeBinary emits fixed-width packed records, one per point.
func writeBinary(bw *bufio.Writer, header *section.Header, cloud *pointcloud.PointCloud, cfg WriteOptions) error {
	hasIntensity := cloud.HasIntensities()
	hasNormals := cloud.HasNormals()
	hasColors := cloud.HasColors()

	scratch := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(scratch)
	scratch.ExtendOrGrow(header.PointStride)
	record := scratch.Bytes()[:header.PointStride]

	for i := range cloud.Points {
		packRecord(record, cloud, i, hasNormals, hasColors, hasIntensity)
		if _, err := bw.Write(record); err != nil {
			return err
		}

		if !stepProgress(cfg.UpdateProgress, i+1, cloud.Len()) {
			return errs.ErrWriteAborted
		}
	}

	return nil
}

// writeBinaryCompressed packs the whole cloud column-major, LZF-compresses
// it and emits the two little-endian length prefixes followed by the
// compressed payload.
func writeBinaryCompressed(bw *bufio.Writer, header *section.Header, cloud *pointcloud.PointCloud, cfg WriteOptions) error {
	hasIntensity := cloud.HasIntensities()
	hasNormals := cloud.HasNormals()
	hasColors := cloud.HasColors()

	points := cloud.Len()
	payloadSize := header.ElementCount * points * 4

	packBuf := pool.GetDataBuffer()
	defer pool.PutDataBuffer(packBuf)
	packBuf.ExtendOrGrow(payloadSize)
	packed := packBuf.Bytes()[:payloadSize]

	// Column k holds the k-th element of every point: packed[(k*points+i)*4].
	putColumn := func(k, i int, v float32) {
		engine.PutUint32(packed[(k*points+i)*4:], math.Float32bits(v))
	}
	for i, p := range cloud.Points {
		putColumn(0, i, float32(p.X))
		putColumn(1, i, float32(p.Y))
		putColumn(2, i, float32(p.Z))
		k := 3
		if hasNormals {
			n := cloud.Normals[i]
			putColumn(k, i, float32(n.X))
			putColumn(k+1, i, float32(n.Y))
			putColumn(k+2, i, float32(n.Z))
			k += 3
		}
		if hasColors {
			c := cloud.Colors[i]
			putColumn(k, i, encoding.PackColorFloat(c.X, c.Y, c.Z))
			k++
		}
		if hasIntensity {
			putColumn(k, i, float32(cloud.Intensities[i]))
		}
	}
	if cfg.UpdateProgress != nil && !cfg.UpdateProgress(0.5) {
		return errs.ErrWriteAborted
	}

	compressedBuf := pool.GetDataBuffer()
	defer pool.PutDataBuffer(compressedBuf)
	compressedBuf.ExtendOrGrow(payloadSize * 2)
	compressed := compressedBuf.Bytes()[:payloadSize*2]

	n, err := lzf.Compress(packed, compressed)
	if err != nil || n == 0 {
		return fmt.Errorf("%w: %d bytes input: %v", errs.ErrCompressFailed, payloadSize, err)
	}
	if cfg.UpdateProgress != nil && !cfg.UpdateProgress(0.75) {
		return errs.ErrWriteAborted
	}

	var sizes [8]byte
	engine.PutUint32(sizes[0:4], uint32(n))
	engine.PutUint32(sizes[4:8], uint32(payloadSize))
	if _, err := bw.Write(sizes[:]); err != nil {
		return err
	}
	if _, err := bw.Write(compressed[:n]); err != nil {
		return err
	}
	if cfg.UpdateProgress != nil && !cfg.UpdateProgress(1.0) {
		return errs.ErrWriteAborted
	}

	return nil
}

// stderrProgress returns the advisory progress printer used when
// PrintProgress is set without a callback. It prints at most once per
// whole-percent step.
func stderrProgress() ProgressFunc {
	last := -1

	return func(fraction float64) bool {
		pct := int(fraction * 100)
		if pct != last {
			last = pct
			fmt.Fprintf(os.Stderr, "\rwriting... %d%%", pct)
			if pct >= 100 {
				fmt.Fprintln(os.Stderr)
			}
		}

		return true
	}
}
