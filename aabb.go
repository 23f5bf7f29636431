package octree

import (
	"fmt"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// SizeLimit bounds every coordinate and extent the index accepts. Boxes past it
// almost always come from a NaN or a runaway transform.
const SizeLimit = 1e15

// AABB is an axis-aligned box stored as its minimum corner and its extent.
type AABB struct {
	Position Vector3
	Size     Vector3
}

// NewAABB returns the box spanning min to max.
func NewAABB(min, max Vector3) AABB {
	return AABB{Position: min, Size: max.Sub(min)}
}

func (bb AABB) String() string {
	return fmt.Sprintf("(%v) - (%v)", bb.Position, bb.End())
}

// End returns the maximum corner.
func (bb AABB) End() Vector3 {
	return bb.Position.Add(bb.Size)
}

func (bb AABB) Center() Vector3 {
	return bb.Position.Add(bb.Size.Mult(0.5))
}

// HasNoSurface is true when the box is degenerate on all three axes. Such boxes
// are registered but never placed in the tree.
func (bb AABB) HasNoSurface() bool {
	return bb.Size.X <= 0 && bb.Size.Y <= 0 && bb.Size.Z <= 0
}

func (bb AABB) LongestAxisSize() float64 {
	return math.Max(bb.Size.X, math.Max(bb.Size.Y, bb.Size.Z))
}

// IntersectsInclusive reports overlap, counting touching faces as overlap.
func (a AABB) IntersectsInclusive(b AABB) bool {
	if a.Position.X > b.Position.X+b.Size.X || b.Position.X > a.Position.X+a.Size.X {
		return false
	}
	if a.Position.Y > b.Position.Y+b.Size.Y || b.Position.Y > a.Position.Y+a.Size.Y {
		return false
	}
	if a.Position.Z > b.Position.Z+b.Size.Z || b.Position.Z > a.Position.Z+a.Size.Z {
		return false
	}
	return true
}

// Encloses reports whether other fits inside bb. The maximum side is strict, so a
// box touching the far faces of bb is not enclosed.
func (bb AABB) Encloses(other AABB) bool {
	srcMin, srcMax := bb.Position, bb.End()
	dstMin, dstMax := other.Position, other.End()

	return srcMin.X <= dstMin.X && srcMax.X > dstMax.X &&
		srcMin.Y <= dstMin.Y && srcMax.Y > dstMax.Y &&
		srcMin.Z <= dstMin.Z && srcMax.Z > dstMax.Z
}

func (a AABB) Merge(b AABB) AABB {
	min := a.Position.Min(b.Position)
	max := a.End().Max(b.End())
	return NewAABB(min, max)
}

// HasPoint reports containment, faces included.
func (bb AABB) HasPoint(p Vector3) bool {
	end := bb.End()
	return p.X >= bb.Position.X && p.X <= end.X &&
		p.Y >= bb.Position.Y && p.Y <= end.Y &&
		p.Z >= bb.Position.Z && p.Z <= end.Z
}

// IntersectsSegment clips the segment from-to against each slab in turn.
func (bb AABB) IntersectsSegment(from, to Vector3) bool {
	min, max := 0.0, 1.0

	for i := 0; i < 3; i++ {
		segFrom := from.Axis(i)
		segTo := to.Axis(i)
		boxBegin := bb.Position.Axis(i)
		boxEnd := boxBegin + bb.Size.Axis(i)

		var cmin, cmax float64
		if segFrom < segTo {
			if segFrom > boxEnd || segTo < boxBegin {
				return false
			}
			length := segTo - segFrom
			cmin, cmax = 0, 1
			if segFrom < boxBegin {
				cmin = (boxBegin - segFrom) / length
			}
			if segTo > boxEnd {
				cmax = (boxEnd - segFrom) / length
			}
		} else {
			if segTo > boxEnd || segFrom < boxBegin {
				return false
			}
			length := segTo - segFrom
			cmin, cmax = 0, 1
			if segFrom > boxEnd {
				cmin = (boxEnd - segFrom) / length
			}
			if segTo < boxBegin {
				cmax = (boxBegin - segFrom) / length
			}
		}

		if cmin > min {
			min = cmin
		}
		if cmax < max {
			max = cmax
		}
		if max < min {
			return false
		}
	}

	return true
}

// IntersectsConvexShape tests the box against a convex hull given by its outward
// planes and its vertices. The planes reject boxes fully outside one face; the
// vertices reject boxes the hull misses along a world axis.
func (bb AABB) IntersectsConvexShape(planes []Plane, points []Vector3) bool {
	half := bb.Size.Mult(0.5)
	ofs := bb.Position.Add(half)

	for _, p := range planes {
		// corner of the box furthest against the plane normal
		corner := Vector3{half.X, half.Y, half.Z}
		if p.Normal.X > 0 {
			corner.X = -half.X
		}
		if p.Normal.Y > 0 {
			corner.Y = -half.Y
		}
		if p.Normal.Z > 0 {
			corner.Z = -half.Z
		}
		if p.IsPointOver(corner.Add(ofs)) {
			return false
		}
	}

	if len(points) == 0 {
		return true
	}

	for k := 0; k < 3; k++ {
		over, under := 0, 0
		hi := ofs.Axis(k) + half.Axis(k)
		lo := ofs.Axis(k) - half.Axis(k)
		for _, pt := range points {
			if pt.Axis(k) > hi {
				over++
			}
			if pt.Axis(k) < lo {
				under++
			}
		}
		if over == len(points) || under == len(points) {
			return false
		}
	}

	return true
}

// Validate rejects boxes the index cannot place: non-finite values, negative
// extents, or magnitudes past SizeLimit.
func (bb AABB) Validate() error {
	if !bb.Position.IsFinite() || !bb.Size.IsFinite() {
		return errors.New("aabb is not finite").
			WithType(ErrTypeInvalidBounds).
			WithTag("aabb", bb.String())
	}

	for i := 0; i < 3; i++ {
		pos := bb.Position.Axis(i)
		size := bb.Size.Axis(i)

		if pos > SizeLimit || pos < -SizeLimit {
			return errors.New("aabb position out of range").
				WithType(ErrTypeInvalidBounds).
				WithTag("aabb", bb.String()).
				WithTag("axis", i)
		}
		if size > SizeLimit || size < 0 {
			return errors.New("aabb size out of range").
				WithType(ErrTypeInvalidBounds).
				WithTag("aabb", bb.String()).
				WithTag("axis", i)
		}
	}

	return nil
}
