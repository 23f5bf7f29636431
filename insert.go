package octree

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

const (
	// An element settles in an octant once it is larger than this fraction
	// of the octant's edge.
	octantDivisor = 4

	// Slack added to the element size so boxes sitting exactly on a quarter
	// cell boundary settle one level higher.
	elementSizeMargin = 1.01
)

func (tree *Octree[T]) nextPass() uint64 {
	tree.pass++
	return tree.pass
}

// insertElement places e in o or in o's descendants, creating children on
// demand, and references e against the residents of every visited octant.
func (tree *Octree[T]) insertElement(e *element[T], o *octant[T]) {
	elementSize := e.aabb.LongestAxisSize() * elementSizeMargin
	pairableList := tree.usePairs && e.pairable

	canSplit := len(*o.list(pairableList)) >= tree.octantElementsLimit

	if !canSplit || elementSize > o.aabb.LongestAxisSize()/octantDivisor {
		owner := o.attach(e, pairableList)
		e.owners = append(e.owners, owner)

		if e.commonParent == nil {
			e.commonParent = o
			e.containerAABB = o.aabb
		} else {
			e.containerAABB = e.containerAABB.Merge(o.aabb)
		}

		if tree.usePairs && o.childrenCount > 0 {
			pass := tree.nextPass()
			for _, child := range o.children {
				if child != nil {
					tree.pairElement(e, child, pass)
				}
			}
		}
	} else {
		splits := 0
		candidate := e.commonParent == nil

		for i := range o.children {
			child := o.children[i]
			if child == nil {
				bb := o.childAABB(i)
				if !bb.IntersectsInclusive(e.aabb) {
					continue
				}
				child = tree.newOctant(o, i, bb)
			} else if !child.aabb.IntersectsInclusive(e.aabb) {
				continue
			}

			tree.insertElement(e, child)
			splits++
		}

		if candidate && splits > 1 {
			e.commonParent = o
		}
	}

	if !tree.usePairs {
		return
	}

	for _, entry := range o.pairableElements {
		tree.pairReference(e, entry.e)
	}

	if e.pairable {
		for _, entry := range o.elements {
			tree.pairReference(e, entry.e)
		}
	}
}

// ensureValidRoot grows the root, doubling it one level at a time, until it
// encloses bb.
func (tree *Octree[T]) ensureValidRoot(bb AABB) error {
	if tree.root == nil {
		unit := tree.unitSize
		base := AABB{Size: Vector3{unit, unit, unit}}

		for !base.Encloses(bb) {
			if base.Size.X > SizeLimit {
				return tree.sizeLimitError(base, bb)
			}
			base, _ = growAABB(base, bb)
		}

		tree.root = tree.newOctant(nil, -1, base)
		return nil
	}

	base := tree.root.aabb
	for !base.Encloses(bb) {
		if base.Size.X > SizeLimit {
			tree.optimize()
			return tree.sizeLimitError(base, bb)
		}

		grown, index := growAABB(base, bb)
		gp := tree.newOctant(nil, -1, grown)

		tree.root.parent = gp
		tree.root.parentIndex = index
		gp.children[index] = tree.root
		gp.childrenCount = 1

		tree.root = gp
		base = grown
	}

	return nil
}

// growAABB doubles base towards target. It returns the grown box and the
// child index base occupies in it. On each axis the box grows towards the
// side target sticks out of, or away from the origin when target is inside
// on that axis.
func growAABB(base, target AABB) (AABB, int) {
	grown := base
	grown.Size = base.Size.Mult(2)
	index := 0

	for axis := 0; axis < 3; axis++ {
		pos := base.Position.Axis(axis)
		size := base.Size.Axis(axis)

		var negative bool
		switch {
		case target.Position.Axis(axis) < pos:
			negative = true
		case target.End().Axis(axis) >= pos+size:
			negative = false
		default:
			negative = math.Abs(pos+size) > math.Abs(pos)
		}

		if !negative {
			continue
		}

		index |= 1 << axis
		switch axis {
		case 0:
			grown.Position.X -= size
		case 1:
			grown.Position.Y -= size
		case 2:
			grown.Position.Z -= size
		}
	}

	return grown, index
}

func (tree *Octree[T]) sizeLimitError(base, bb AABB) error {
	err := errors.New("octree upper size limit reached").
		WithType(ErrTypeSizeLimit).
		WithTag("root", base.String()).
		WithTag("aabb", bb.String())
	logs.WithTag("limit", SizeLimit).Error(err)
	return err
}

// removeElementPairAndRemoveEmptyOctants walks from o towards limit,
// dereferencing e against the residents of each octant not yet visited in
// pass and deleting octants left empty. It returns whether any octant was
// deleted.
func (tree *Octree[T]) removeElementPairAndRemoveEmptyOctants(e *element[T], o, limit *octant[T], pass uint64) bool {
	octantRemoved := false

	for o != limit {
		unpaired := false

		if tree.usePairs && o.lastPass != pass {
			for _, entry := range o.pairableElements {
				tree.pairUnreference(e, entry.e)
			}
			if e.pairable {
				for _, entry := range o.elements {
					tree.pairUnreference(e, entry.e)
				}
			}

			o.lastPass = pass
			unpaired = true
		}

		removed := false
		parent := o.parent

		if o.empty() {
			if parent == nil {
				tree.root = nil
			} else {
				parent.children[o.parentIndex] = nil
				parent.childrenCount--
			}

			tree.octantRecycle(o)
			octantRemoved = true
			removed = true
		}

		if !removed && !unpaired {
			return octantRemoved
		}

		o = parent
	}

	return octantRemoved
}

// removeElement takes e out of every octant list it is in, dropping its pairs
// and pruning octants left empty.
func (tree *Octree[T]) removeElement(e *element[T]) {
	pass := tree.nextPass()

	for _, owner := range e.owners {
		o := owner.octant

		if tree.usePairs {
			pass = tree.nextPass()
			for _, child := range o.children {
				if child != nil {
					tree.unpairElement(e, child, pass)
				}
			}
		}

		o.detach(owner)
		tree.removeElementPairAndRemoveEmptyOctants(e, o, nil, pass)
	}

	e.owners = nil

	if tree.usePairs {
		assert(len(e.pairs) == 0, "element still paired after removal: ", e.id)
	}
}

// optimize collapses roots that hold no elements and at most one child.
func (tree *Octree[T]) optimize() {
	for tree.root != nil && tree.root.childrenCount < 2 &&
		len(tree.root.elements) == 0 && len(tree.root.pairableElements) == 0 {

		var next *octant[T]
		if tree.root.childrenCount == 1 {
			for _, child := range tree.root.children {
				if child != nil {
					next = child
					break
				}
			}
			next.parent = nil
			next.parentIndex = -1
		}

		tree.octantRecycle(tree.root)
		tree.root = next
	}
}
