package octree

// ElementID identifies a tracked element. Ids are never reused; InvalidID is
// never issued.
type ElementID uint32

const InvalidID ElementID = 0

type element[T any] struct {
	id       ElementID
	userdata *T
	subindex int

	pairable     bool
	pairableMask uint32
	pairableType uint32

	lastPass uint64

	// Lowest octant enclosing every placement, and the bounds of the region
	// the element may move within without reinsertion.
	commonParent  *octant[T]
	aabb          AABB
	containerAABB AABB

	pairs  []*pair[T]
	owners []*octantOwner[T]
}

func (e *element[T]) hasSurface() bool {
	return !e.aabb.HasNoSurface()
}

// compatible reports whether either element's type is accepted by the other's mask.
func (e *element[T]) compatible(other *element[T]) bool {
	return e.pairableType&other.pairableMask != 0 || other.pairableType&e.pairableMask != 0
}

// placementEncloses reports whether bb fits inside a single octant e is placed
// in. The container box alone is not enough for straddling elements: it may
// cover sibling octants e was never placed in.
func (e *element[T]) placementEncloses(bb AABB) bool {
	if !e.containerAABB.Encloses(bb) {
		return false
	}
	if len(e.owners) == 1 {
		return true
	}

	for _, owner := range e.owners {
		if owner.octant.aabb.Encloses(bb) {
			return true
		}
	}
	return false
}

func (tree *Octree[T]) newElementID() ElementID {
	tree.lastElementID++
	return tree.lastElementID
}
