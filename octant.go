package octree

// Child slots are indexed by octant code. A set bit selects the positive half
// of the matching axis.
const (
	octantPositiveX = 1 << iota
	octantPositiveY
	octantPositiveZ
)

type octant[T any] struct {
	// cached for fast culling
	aabb AABB

	lastPass uint64
	parent   *octant[T]
	children [8]*octant[T]

	childrenCount int
	parentIndex   int

	pairableElements []listEntry[T]
	elements         []listEntry[T]
}

// listEntry is one slot of an octant element list. owner points back at the
// element's ownership record so swap-removal can patch its position.
type listEntry[T any] struct {
	e     *element[T]
	owner *octantOwner[T]
}

// octantOwner records that an element sits in one octant list.
type octantOwner[T any] struct {
	octant   *octant[T]
	pairable bool
	pos      int
}

func (o *octant[T]) list(pairable bool) *[]listEntry[T] {
	if pairable {
		return &o.pairableElements
	}
	return &o.elements
}

func (o *octant[T]) attach(e *element[T], pairable bool) *octantOwner[T] {
	list := o.list(pairable)
	owner := &octantOwner[T]{octant: o, pairable: pairable, pos: len(*list)}
	*list = append(*list, listEntry[T]{e: e, owner: owner})
	return owner
}

// detach removes the owner's entry in O(1) by moving the last entry into its slot.
func (o *octant[T]) detach(owner *octantOwner[T]) {
	list := o.list(owner.pairable)
	last := len(*list) - 1
	if !assert(owner.pos >= 0 && owner.pos <= last, "octant owner position out of range") {
		return
	}

	if owner.pos != last {
		moved := (*list)[last]
		(*list)[owner.pos] = moved
		moved.owner.pos = owner.pos
	}
	(*list)[last] = listEntry[T]{}
	*list = (*list)[:last]
	owner.pos = -1
}

func (o *octant[T]) empty() bool {
	return o.childrenCount == 0 && len(o.elements) == 0 && len(o.pairableElements) == 0
}

// childAABB returns the bounds child i would have.
func (o *octant[T]) childAABB(i int) AABB {
	bb := o.aabb
	bb.Size = bb.Size.Mult(0.5)

	if i&octantPositiveX != 0 {
		bb.Position.X += bb.Size.X
	}
	if i&octantPositiveY != 0 {
		bb.Position.Y += bb.Size.Y
	}
	if i&octantPositiveZ != 0 {
		bb.Position.Z += bb.Size.Z
	}
	return bb
}

func (tree *Octree[T]) newOctant(parent *octant[T], index int, bb AABB) *octant[T] {
	o := tree.octantFromPool()
	o.aabb = bb
	o.parent = parent
	o.parentIndex = index

	if parent != nil {
		parent.children[index] = o
		parent.childrenCount++
	}

	tree.octantCount++
	return o
}

func (tree *Octree[T]) octantFromPool() *octant[T] {
	o := tree.pooledOctants
	if o != nil {
		tree.pooledOctants = o.parent
		o.parent = nil
		return o
	}

	return &octant[T]{parentIndex: -1}
}

// octantRecycle drops o from the count and keeps its list capacity for reuse.
func (tree *Octree[T]) octantRecycle(o *octant[T]) {
	o.aabb = AABB{}
	o.lastPass = 0
	o.children = [8]*octant[T]{}
	o.childrenCount = 0
	o.parentIndex = -1
	o.pairableElements = o.pairableElements[:0]
	o.elements = o.elements[:0]

	o.parent = tree.pooledOctants
	tree.pooledOctants = o
	tree.octantCount--
}
