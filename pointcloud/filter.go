package pointcloud

import (
	"math"

	"github.com/arloliu/pcd/internal/hash"
)

// RemoveNonFinite drops points whose coordinates contain NaN (when removeNaN
// is set) or infinities (when removeInfinite is set), together with their
// parallel attributes. The cloud is modified in place.
//
// Returns the number of points removed.
func (pc *PointCloud) RemoveNonFinite(removeNaN, removeInfinite bool) int {
	if !removeNaN && !removeInfinite {
		return 0
	}

	keep := make([]int, 0, len(pc.Points))
	for i, p := range pc.Points {
		if removeNaN && (math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z)) {
			continue
		}
		if removeInfinite && (math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0)) {
			continue
		}
		keep = append(keep, i)
	}

	removed := len(pc.Points) - len(keep)
	if removed > 0 {
		*pc = *pc.gather(keep)
	}

	return removed
}

// RemoveDuplicatedPoints drops points whose coordinates are bit-identical to
// an earlier point, keeping the first occurrence. Duplicate detection uses
// 64-bit coordinate hashes.
//
// Returns the number of points removed.
func (pc *PointCloud) RemoveDuplicatedPoints() int {
	seen := make(map[uint64]struct{}, len(pc.Points))
	keep := make([]int, 0, len(pc.Points))
	for i, p := range pc.Points {
		key := hash.Key(p.X, p.Y, p.Z)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	removed := len(pc.Points) - len(keep)
	if removed > 0 {
		*pc = *pc.gather(keep)
	}

	return removed
}
