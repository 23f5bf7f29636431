package octree

import "math"

// planeEpsilon is the tolerance used when deciding whether a point lies over a
// plane while building hull vertices.
const planeEpsilon = 1e-5

// Plane holds the points p where Normal·p == D. The normal points out of the
// volume it bounds.
type Plane struct {
	Normal Vector3
	D      float64
}

func NewPlane(normal Vector3, d float64) Plane {
	return Plane{Normal: normal, D: d}
}

// PlaneFromPoint returns the plane with the given normal passing through point.
func PlaneFromPoint(normal, point Vector3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: n.Dot(point)}
}

func (p Plane) DistanceTo(point Vector3) float64 {
	return p.Normal.Dot(point) - p.D
}

// IsPointOver is true when the point is on the outer side of the plane.
func (p Plane) IsPointOver(point Vector3) bool {
	return p.Normal.Dot(point) > p.D
}

// Intersect3 returns the single point shared by three planes. ok is false when
// two or more of them are parallel.
func (p Plane) Intersect3(p1, p2 Plane) (point Vector3, ok bool) {
	n0, n1, n2 := p.Normal, p1.Normal, p2.Normal

	denom := n0.Cross(n1).Dot(n2)
	if math.Abs(denom) <= planeEpsilon {
		return Vector3{}, false
	}

	point = n1.Cross(n2).Mult(p.D).
		Add(n2.Cross(n0).Mult(p1.D)).
		Add(n0.Cross(n1).Mult(p2.D)).
		Mult(1 / denom)
	return point, true
}
