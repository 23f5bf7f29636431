package octree

// PairEvent describes the two elements of a pair. A is always the element that
// was first in the pair record, so pair and unpair callbacks for the same pair
// see the same order.
type PairEvent[T any] struct {
	A, B                 ElementID
	PayloadA, PayloadB   *T
	SubindexA, SubindexB int
}

// PairFunc is called when two compatible elements start overlapping. The
// returned token is handed back to the UnpairFunc for the same pair.
type PairFunc[T any] func(ev PairEvent[T]) any

// UnpairFunc is called when a reported pair stops overlapping or one of its
// elements is removed.
type UnpairFunc[T any] func(ev PairEvent[T], token any)

type pair[T any] struct {
	a, b      *element[T]
	refcount  int
	intersect bool
	token     any

	// positions in a.pairs and b.pairs
	idxA, idxB int
}

func (p *pair[T]) event() PairEvent[T] {
	return PairEvent[T]{
		A:         p.a.id,
		B:         p.b.id,
		PayloadA:  p.a.userdata,
		PayloadB:  p.b.userdata,
		SubindexA: p.a.subindex,
		SubindexB: p.b.subindex,
	}
}

func pairKey(a, b ElementID) HashValue {
	if a > b {
		a, b = b, a
	}
	return HashValue(uint64(b)<<32 | uint64(a))
}

func pairEql[T any](ptr, elt *pair[T]) bool {
	return pairKey(ptr.a.id, ptr.b.id) == pairKey(elt.a.id, elt.b.id)
}

func (tree *Octree[T]) pairFromPool() *pair[T] {
	if n := len(tree.pooledPairs); n > 0 {
		p := tree.pooledPairs[n-1]
		tree.pooledPairs[n-1] = nil
		tree.pooledPairs = tree.pooledPairs[:n-1]
		return p
	}
	return &pair[T]{}
}

func (tree *Octree[T]) pairRecycle(p *pair[T]) {
	*p = pair[T]{}
	tree.pooledPairs = append(tree.pooledPairs, p)
}

func (tree *Octree[T]) pairReference(a, b *element[T]) {
	if a == b || (a.userdata != nil && a.userdata == b.userdata) {
		return
	}
	if !a.compatible(b) {
		return
	}

	probe := pair[T]{a: a, b: b}
	p, created := tree.pairs.Insert(pairKey(a.id, b.id), &probe, func(ptr *pair[T]) *pair[T] {
		p := tree.pairFromPool()
		p.a, p.b = ptr.a, ptr.b
		return p
	})

	if !created {
		p.refcount++
		return
	}

	p.refcount = 1
	p.idxA = len(a.pairs)
	a.pairs = append(a.pairs, p)
	p.idxB = len(b.pairs)
	b.pairs = append(b.pairs, p)
}

func (tree *Octree[T]) pairUnreference(a, b *element[T]) {
	if a == b {
		return
	}

	probe := pair[T]{a: a, b: b}
	key := pairKey(a.id, b.id)
	p, ok := tree.pairs.Find(key, &probe)
	if !ok {
		return
	}

	p.refcount--
	if p.refcount > 0 {
		return
	}

	if p.intersect {
		if tree.unpairCallback != nil {
			tree.unpairCallback(p.event(), p.token)
		}
		tree.pairCount--
	}

	p.a.removePair(p, p.idxA)
	p.b.removePair(p, p.idxB)
	tree.pairs.Remove(key, p)
	tree.pairRecycle(p)
}

// removePair swap-removes p from the element's pair list and patches the
// index of the pair moved into its slot.
func (e *element[T]) removePair(p *pair[T], idx int) {
	last := len(e.pairs) - 1
	if !assert(idx >= 0 && idx <= last && e.pairs[idx] == p, "pair index out of sync") {
		return
	}

	if idx != last {
		moved := e.pairs[last]
		e.pairs[idx] = moved
		if moved.a == e {
			moved.idxA = idx
		} else {
			moved.idxB = idx
		}
	}
	e.pairs[last] = nil
	e.pairs = e.pairs[:last]
}

func (tree *Octree[T]) pairCheck(p *pair[T]) {
	intersect := p.a.aabb.IntersectsInclusive(p.b.aabb)
	if intersect == p.intersect {
		return
	}

	if intersect {
		if tree.pairCallback != nil {
			p.token = tree.pairCallback(p.event())
		}
		tree.pairCount++
	} else {
		if tree.unpairCallback != nil {
			tree.unpairCallback(p.event(), p.token)
		}
		p.token = nil
		tree.pairCount--
	}

	p.intersect = intersect
}

func (tree *Octree[T]) elementCheckPairs(e *element[T]) {
	for _, p := range e.pairs {
		tree.pairCheck(p)
	}
}

// pairElement references e against every element in the subtree rooted at
// o, each at most once per pass.
func (tree *Octree[T]) pairElement(e *element[T], o *octant[T], pass uint64) {
	for _, entry := range o.pairableElements {
		if entry.e.lastPass == pass {
			continue
		}
		entry.e.lastPass = pass
		tree.pairReference(e, entry.e)
	}

	if e.pairable {
		for _, entry := range o.elements {
			if entry.e.lastPass == pass {
				continue
			}
			entry.e.lastPass = pass
			tree.pairReference(e, entry.e)
		}
	}
	o.lastPass = pass

	if o.childrenCount == 0 {
		return
	}

	for _, child := range o.children {
		if child != nil {
			tree.pairElement(e, child, pass)
		}
	}
}

// unpairElement mirrors pairElement.
func (tree *Octree[T]) unpairElement(e *element[T], o *octant[T], pass uint64) {
	for _, entry := range o.pairableElements {
		if entry.e.lastPass == pass {
			continue
		}
		entry.e.lastPass = pass
		tree.pairUnreference(e, entry.e)
	}

	if e.pairable {
		for _, entry := range o.elements {
			if entry.e.lastPass == pass {
				continue
			}
			entry.e.lastPass = pass
			tree.pairUnreference(e, entry.e)
		}
	}
	o.lastPass = pass

	if o.childrenCount == 0 {
		return
	}

	for _, child := range o.children {
		if child != nil {
			tree.unpairElement(e, child, pass)
		}
	}
}
