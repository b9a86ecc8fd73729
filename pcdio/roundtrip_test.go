package pcdio

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pcd/pointcloud"
)

// randomCloud builds a cloud of n points with every optional channel
// populated from float32-representable values.
func randomCloud(n int, seed int64) *pointcloud.PointCloud {
	rng := rand.New(rand.NewSource(seed))
	f := func() float64 { return float64(float32(rng.NormFloat64() * 100)) }
	unit := func() float64 { return float64(float32(rng.Float64())) }

	cloud := pointcloud.New()
	for i := 0; i < n; i++ {
		cloud.Points = append(cloud.Points, pointcloud.Vector{X: f(), Y: f(), Z: f()})
		cloud.Normals = append(cloud.Normals, pointcloud.Vector{X: unit(), Y: unit(), Z: unit()})
		cloud.Colors = append(cloud.Colors, pointcloud.Vector{X: unit(), Y: unit(), Z: unit()})
		cloud.Intensities = append(cloud.Intensities, f())
	}

	return cloud
}

func requireCloseClouds(t *testing.T, want, got *pointcloud.PointCloud, posTol, colorTol float64) {
	t.Helper()

	require.Equal(t, want.Len(), got.Len())
	require.Equal(t, want.HasIntensities(), got.HasIntensities())
	require.Equal(t, want.HasNormals(), got.HasNormals())
	require.Equal(t, want.HasColors(), got.HasColors())

	closeVec := func(a, b pointcloud.Vector, tol float64) {
		require.InDelta(t, a.X, b.X, tol+1e-12)
		require.InDelta(t, a.Y, b.Y, tol+1e-12)
		require.InDelta(t, a.Z, b.Z, tol+1e-12)
	}

	for i := range want.Points {
		closeVec(want.Points[i], got.Points[i], posTol*vecScale(want.Points[i]))
		if want.HasNormals() {
			closeVec(want.Normals[i], got.Normals[i], posTol*vecScale(want.Normals[i]))
		}
		if want.HasColors() {
			closeVec(want.Colors[i], got.Colors[i], colorTol)
		}
		if want.HasIntensities() {
			require.InDelta(t, want.Intensities[i], got.Intensities[i],
				posTol*abs(want.Intensities[i])+1e-12)
		}
	}
}

func vecScale(v pointcloud.Vector) float64 {
	s := abs(v.X)
	if abs(v.Y) > s {
		s = abs(v.Y)
	}
	if abs(v.Z) > s {
		s = abs(v.Z)
	}
	if s == 0 {
		return 1
	}

	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}

func TestRoundTrip_Binary(t *testing.T) {
	cloud := randomCloud(257, 1)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cloud))

	got, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	// Values are float32-representable, so positions and intensities come
	// back exactly; colors are quantized to 1/255 per channel.
	requireCloseClouds(t, cloud, got, 0, 1.0/255.0)
}

func TestRoundTrip_BinaryCompressed(t *testing.T) {
	cloud := randomCloud(257, 2)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cloud, WithCompression()))

	got, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	requireCloseClouds(t, cloud, got, 0, 1.0/255.0)
}

func TestRoundTrip_ASCII(t *testing.T) {
	cloud := randomCloud(64, 3)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cloud, WithASCII()))

	got, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	// %.10g carries more digits than a float32 needs, so the tolerance is
	// the relative ASCII quantization bound.
	requireCloseClouds(t, cloud, got, 1e-6, 1.0/255.0)
}

func TestRoundTrip_PositionsOnly(t *testing.T) {
	cloud := &pointcloud.PointCloud{
		Points: []pointcloud.Vector{{X: 1, Y: 2, Z: 3}, {X: -4.5, Y: 60, Z: 0}},
	}

	for _, opts := range [][]WriteOption{nil, {WithASCII()}, {WithCompression()}} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, cloud, opts...))

		got, err := Read(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		require.Equal(t, cloud.Points, got.Points)
		require.False(t, got.HasIntensities())
		require.False(t, got.HasNormals())
		require.False(t, got.HasColors())
	}
}

func TestRoundTrip_File(t *testing.T) {
	cloud := randomCloud(100, 4)
	dir := t.TempDir()

	// Container codecs resolved from the extension; zstd is covered by the
	// compress package tests to keep this test independent of cgo.
	for _, name := range []string{"cloud.pcd", "cloud.pcd.gz", "cloud.pcd.lz4", "cloud.pcd.sz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, cloud, WithCompression()))

			got, err := ReadFile(path)
			require.NoError(t, err)
			requireCloseClouds(t, cloud, got, 0, 1.0/255.0)
		})
	}
}

func TestReadFile_ForcedPlainFormat(t *testing.T) {
	cloud := randomCloud(10, 5)
	dir := t.TempDir()

	// A plain PCD stream under a misleading .gz name still reads when the
	// caller forces the plain format.
	path := filepath.Join(dir, "plain.pcd.gz")
	require.NoError(t, WriteFile(filepath.Join(dir, "plain.pcd"), cloud))

	plain, err := ReadFile(filepath.Join(dir, "plain.pcd"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "plain.pcd"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = ReadFile(path)
	require.Error(t, err) // gzip header missing

	forced, err := ReadFile(path, WithFormat("pcd"))
	require.NoError(t, err)
	require.Equal(t, plain.Points, forced.Points)
}
