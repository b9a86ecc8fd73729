// Package pcd reads and writes point clouds in the PCD file format.
//
// A PCD file is a textual header (field layout, dimensions, viewpoint,
// encoding tag) followed by point records in one of three encodings: ascii
// text, raw binary records, or an LZF-compressed column-major payload
// (binary_compressed). This package decodes all three and encodes clouds
// into any of them, preserving the position, intensity, normal and color
// channels.
//
// # Basic Usage
//
// Reading a file:
//
//	cloud, err := pcd.ReadPCD("scan.pcd")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cloud.Len(), "points")
//
// Writing with LZF compression:
//
//	err := pcd.WritePCD("out.pcd", cloud, pcdio.WithCompression())
//
// Paths with a compression extension (.gz, .zst, .lz4, .sz) transparently
// wrap the stream in the matching container codec on both read and write.
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the pcdio
// package, simplifying the most common use cases. For stream-level access,
// read options and write options, use the pcdio package directly; the
// in-memory representation lives in the pointcloud package, and the LZF
// block codec in lzf.
package pcd

import (
	"github.com/arloliu/pcd/pcdio"
	"github.com/arloliu/pcd/pointcloud"
)

// ReadPCD reads the point cloud stored at path.
//
// The container codec is resolved from the file extension; the data-section
// encoding is announced by the file's own header. On failure no cloud is
// returned.
func ReadPCD(path string, opts ...pcdio.ReadOption) (*pointcloud.PointCloud, error) {
	return pcdio.ReadFile(path, opts...)
}

// WritePCD writes the cloud to path. Without options the data section is
// raw binary; see pcdio.WithASCII, pcdio.WithCompression and the progress
// options.
func WritePCD(path string, cloud *pointcloud.PointCloud, opts ...pcdio.WriteOption) error {
	return pcdio.WriteFile(path, cloud, opts...)
}
