package octree

// Convex is a convex volume for culling: its bounding planes and the hull
// vertices derived from them. Both are needed by AABB.IntersectsConvexShape.
type Convex struct {
	Planes []Plane
	Points []Vector3
}

// NewConvex computes the hull vertices of the volume bounded by planes.
func NewConvex(planes []Plane) Convex {
	return Convex{
		Planes: planes,
		Points: ConvexPoints(planes),
	}
}

// Empty reports whether the convex can never intersect anything.
func (c Convex) Empty() bool {
	return len(c.Planes) == 0 || len(c.Points) == 0
}

// ConvexPoints intersects every triple of planes and keeps the points that lie
// inside all the others.
func ConvexPoints(planes []Plane) []Vector3 {
	var points []Vector3

	n := len(planes)
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				point, ok := planes[i].Intersect3(planes[j], planes[k])
				if !ok {
					continue
				}

				excluded := false
				for m := 0; m < n; m++ {
					if m == i || m == j || m == k {
						continue
					}
					if planes[m].DistanceTo(point) > planeEpsilon {
						excluded = true
						break
					}
				}

				if !excluded {
					points = append(points, point)
				}
			}
		}
	}

	return points
}

// PlanesFromAABB returns the six outward planes of bb.
func PlanesFromAABB(bb AABB) []Plane {
	min, max := bb.Position, bb.End()
	return []Plane{
		{Normal: Vector3{1, 0, 0}, D: max.X},
		{Normal: Vector3{-1, 0, 0}, D: -min.X},
		{Normal: Vector3{0, 1, 0}, D: max.Y},
		{Normal: Vector3{0, -1, 0}, D: -min.Y},
		{Normal: Vector3{0, 0, 1}, D: max.Z},
		{Normal: Vector3{0, 0, -1}, D: -min.Z},
	}
}
