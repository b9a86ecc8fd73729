package pcd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pcd/errs"
	"github.com/arloliu/pcd/pcdio"
	"github.com/arloliu/pcd/pointcloud"
)

func TestReadWritePCD(t *testing.T) {
	cloud := &pointcloud.PointCloud{
		Points:      []pointcloud.Vector{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 5.5, Z: 0}},
		Intensities: []float64{0.5, 0.25},
	}
	path := filepath.Join(t.TempDir(), "cloud.pcd")

	require.NoError(t, WritePCD(path, cloud, pcdio.WithCompression()))

	got, err := ReadPCD(path)
	require.NoError(t, err)
	require.Equal(t, cloud.Points, got.Points)
	require.Equal(t, cloud.Intensities, got.Intensities)
}

func TestWritePCD_EmptyCloud(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pcd")
	err := WritePCD(path, pointcloud.New())
	require.ErrorIs(t, err, errs.ErrEmptyCloud)
}

func TestReadPCD_MissingFile(t *testing.T) {
	_, err := ReadPCD(filepath.Join(t.TempDir(), "absent.pcd"))
	require.Error(t, err)
}
