package octree

// SpatialIndexer is implemented by Octree and PairOctree.
type SpatialIndexer[T any] interface {
	Count() int
	Each(f func(id ElementID, payload *T))
	Contains(id ElementID) bool
	Create(payload *T, bb AABB, subindex int, pairable bool, pairableType, pairableMask uint32) (ElementID, error)
	Move(id ElementID, bb AABB) error
	MoveForced(id ElementID, bb AABB) error
	Erase(id ElementID) error
	Get(id ElementID) (*T, error)
	CullAABB(bb AABB, results []*T, subindices []int, mask uint32) int
	CullSegment(from, to Vector3, results []*T, subindices []int, mask uint32) int
	CullPoint(point Vector3, results []*T, subindices []int, mask uint32) int
	CullConvex(convex Convex, results []*T, mask uint32) int
}

var (
	_ SpatialIndexer[struct{}] = (*Octree[struct{}])(nil)
	_ SpatialIndexer[struct{}] = (*PairOctree[struct{}])(nil)
)
