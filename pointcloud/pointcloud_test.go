package pointcloud

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func threePoints() *PointCloud {
	return &PointCloud{
		Points:      []Vector{{X: -1, Y: -2, Z: 5}, {X: 582, Y: 12, Z: 0}, {X: 7, Y: 6, Z: 1}},
		Intensities: []float64{5, -1, 1},
	}
}

func TestPresencePredicates(t *testing.T) {
	pc := New()
	require.True(t, pc.IsEmpty())
	require.False(t, pc.HasPoints())
	require.False(t, pc.HasIntensities())

	pc = threePoints()
	require.Equal(t, 3, pc.Len())
	require.True(t, pc.HasPoints())
	require.True(t, pc.HasIntensities())
	require.False(t, pc.HasNormals())
	require.False(t, pc.HasColors())
	require.False(t, pc.HasCovariances())

	// A short channel does not count as present.
	pc.Intensities = pc.Intensities[:2]
	require.False(t, pc.HasIntensities())
}

func TestClear(t *testing.T) {
	pc := threePoints()
	pc.Colors = []Vector{{}, {}, {}}
	pc.Clear()

	require.True(t, pc.IsEmpty())
	require.Nil(t, pc.Points)
	require.Nil(t, pc.Intensities)
	require.Nil(t, pc.Colors)
}

func TestAppend(t *testing.T) {
	t.Run("into empty cloud", func(t *testing.T) {
		pc := New()
		pc.Append(threePoints())
		require.Equal(t, 3, pc.Len())
		require.True(t, pc.HasIntensities())
	})

	t.Run("both carry the channel", func(t *testing.T) {
		pc := threePoints()
		pc.Append(threePoints())
		require.Equal(t, 6, pc.Len())
		require.True(t, pc.HasIntensities())
	})

	t.Run("empty other is a no-op", func(t *testing.T) {
		pc := threePoints()
		pc.Append(New())
		require.Equal(t, 3, pc.Len())
		require.True(t, pc.HasIntensities())
		require.Equal(t, []float64{5, -1, 1}, pc.Intensities)
	})

	t.Run("channel missing on other side", func(t *testing.T) {
		pc := threePoints()
		pc.Append(&PointCloud{Points: []Vector{{X: 1}}})
		require.Equal(t, 4, pc.Len())
		require.False(t, pc.HasIntensities())
		require.Nil(t, pc.Intensities)
	})
}

func TestBoundsAndCenter(t *testing.T) {
	pc := threePoints()

	require.Equal(t, Vector{X: -1, Y: -2, Z: 0}, pc.MinBound())
	require.Equal(t, Vector{X: 582, Y: 12, Z: 5}, pc.MaxBound())

	center := pc.Center()
	require.InDelta(t, 196, center.X, 1e-12)
	require.InDelta(t, 16.0/3.0, center.Y, 1e-12)
	require.InDelta(t, 2, center.Z, 1e-12)

	empty := New()
	require.Equal(t, Vector{}, empty.MinBound())
	require.Equal(t, Vector{}, empty.MaxBound())
	require.Equal(t, Vector{}, empty.Center())
}

func TestSelectByIndex(t *testing.T) {
	pc := threePoints()

	sel := pc.SelectByIndex([]int{2, 0, 99}, false)
	require.Equal(t, 2, sel.Len())
	require.Equal(t, Vector{X: -1, Y: -2, Z: 5}, sel.Points[0])
	require.Equal(t, Vector{X: 7, Y: 6, Z: 1}, sel.Points[1])
	require.Equal(t, []float64{5, 1}, sel.Intensities)

	inv := pc.SelectByIndex([]int{0, 2}, true)
	require.Equal(t, 1, inv.Len())
	require.Equal(t, Vector{X: 582, Y: 12, Z: 0}, inv.Points[0])
}

func TestRemoveNonFinite(t *testing.T) {
	build := func() *PointCloud {
		return &PointCloud{
			Points: []Vector{
				{X: 1, Y: 2, Z: 3},
				{X: math.NaN(), Y: 0, Z: 0},
				{X: 0, Y: math.Inf(1), Z: 0},
				{X: 4, Y: 5, Z: 6},
			},
			Intensities: []float64{1, 2, 3, 4},
		}
	}

	t.Run("both flags", func(t *testing.T) {
		pc := build()
		require.Equal(t, 2, pc.RemoveNonFinite(true, true))
		require.Equal(t, 2, pc.Len())
		require.Equal(t, []float64{1, 4}, pc.Intensities)
	})

	t.Run("nan only", func(t *testing.T) {
		pc := build()
		require.Equal(t, 1, pc.RemoveNonFinite(true, false))
		require.Equal(t, 3, pc.Len())
	})

	t.Run("infinite only", func(t *testing.T) {
		pc := build()
		require.Equal(t, 1, pc.RemoveNonFinite(false, true))
		require.Equal(t, 3, pc.Len())
	})

	t.Run("disabled", func(t *testing.T) {
		pc := build()
		require.Zero(t, pc.RemoveNonFinite(false, false))
		require.Equal(t, 4, pc.Len())
	})
}

func TestRemoveDuplicatedPoints(t *testing.T) {
	pc := &PointCloud{
		Points: []Vector{
			{X: 1, Y: 2, Z: 3},
			{X: 1, Y: 2, Z: 3},
			{X: 4, Y: 5, Z: 6},
			{X: 1, Y: 2, Z: 3},
		},
		Intensities: []float64{10, 20, 30, 40},
	}

	require.Equal(t, 2, pc.RemoveDuplicatedPoints())
	require.Equal(t, 2, pc.Len())
	// First occurrences survive.
	require.Equal(t, []float64{10, 30}, pc.Intensities)

	require.Zero(t, pc.RemoveDuplicatedPoints())
}
