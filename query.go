package octree

type cullQuery[T any] struct {
	pass       uint64
	mask       uint32
	test       func(bb AABB) bool
	results    []*T
	subindices []int
	count      int
}

func (q *cullQuery[T]) full() bool {
	return q.count == len(q.results)
}

// add records e and reports whether there was room for it.
func (q *cullQuery[T]) add(e *element[T]) bool {
	if q.full() {
		return false
	}

	q.results[q.count] = e.userdata
	if q.subindices != nil {
		q.subindices[q.count] = e.subindex
	}
	q.count++
	return true
}

// cull collects every element in o's subtree passing q.test, each at most once.
// It returns false once the result buffer is full.
func (tree *Octree[T]) cull(o *octant[T], q *cullQuery[T]) bool {
	if q.full() {
		return false
	}

	if !tree.cullList(o.elements, q) {
		return false
	}
	if tree.usePairs && !tree.cullList(o.pairableElements, q) {
		return false
	}

	for _, child := range o.children {
		if child != nil && q.test(child.aabb) {
			if !tree.cull(child, q) {
				return false
			}
		}
	}

	return true
}

func (tree *Octree[T]) cullList(list []listEntry[T], q *cullQuery[T]) bool {
	for _, entry := range list {
		e := entry.e

		if e.lastPass == q.pass || (tree.usePairs && e.pairableType&q.mask == 0) {
			continue
		}
		e.lastPass = q.pass

		if q.test(e.aabb) && !q.add(e) {
			return false
		}
	}
	return true
}

func (tree *Octree[T]) runQuery(results []*T, subindices []int, mask uint32, test func(AABB) bool) int {
	tree.notifyTesting()

	if tree.root == nil || len(results) == 0 {
		return 0
	}

	q := &cullQuery[T]{
		pass:       tree.nextPass(),
		mask:       mask,
		test:       test,
		results:    results,
		subindices: subindices,
	}

	tree.cull(tree.root, q)
	return q.count
}

// CullAABB fills results with payloads of elements whose box overlaps bb,
// boundaries included, and returns how many were written. When subindices is
// non-nil the element subindices are written in the same order. The mask
// filters on pairable type and only applies to pair tracking indexes.
func (tree *Octree[T]) CullAABB(bb AABB, results []*T, subindices []int, mask uint32) int {
	return tree.runQuery(results, subindices, mask, bb.IntersectsInclusive)
}

// CullSegment collects elements whose box the segment from-to crosses.
func (tree *Octree[T]) CullSegment(from, to Vector3, results []*T, subindices []int, mask uint32) int {
	return tree.runQuery(results, subindices, mask, func(bb AABB) bool {
		return bb.IntersectsSegment(from, to)
	})
}

// CullPoint collects elements whose box contains point.
func (tree *Octree[T]) CullPoint(point Vector3, results []*T, subindices []int, mask uint32) int {
	return tree.runQuery(results, subindices, mask, func(bb AABB) bool {
		return bb.HasPoint(point)
	})
}

// CullConvex collects elements whose box may intersect the convex volume.
func (tree *Octree[T]) CullConvex(convex Convex, results []*T, mask uint32) int {
	if convex.Empty() {
		tree.notifyTesting()
		return 0
	}

	return tree.runQuery(results, nil, mask, func(bb AABB) bool {
		return bb.IntersectsConvexShape(convex.Planes, convex.Points)
	})
}
