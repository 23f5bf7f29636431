package octree

type HashValue uint64

type HashSetEqual[E any] func(ptr, elt E) bool
type HashSetTrans[E any] func(ptr E) E
type HashSetIterator[E any] func(elt E)

type HashSetBin[E any] struct {
	elt  E
	hash HashValue
	next *HashSetBin[E]
}

// HashSet is a chained hash set keyed by caller supplied hashes. Collisions are
// resolved with the equality function.
type HashSet[E any] struct {
	entries uint
	eql     HashSetEqual[E]

	table map[HashValue]*HashSetBin[E]
}

func NewHashSet[E any](eql HashSetEqual[E]) *HashSet[E] {
	return &HashSet[E]{
		eql:   eql,
		table: map[HashValue]*HashSetBin[E]{},
	}
}

func (set *HashSet[E]) Count() uint {
	return set.entries
}

// Insert returns the element matching ptr, creating it with trans when absent.
// The boolean is true when a new element was created.
func (set *HashSet[E]) Insert(hash HashValue, ptr E, trans HashSetTrans[E]) (E, bool) {
	// Find the bin with the matching element.
	bin := set.table[hash]
	for bin != nil && !set.eql(ptr, bin.elt) {
		bin = bin.next
	}

	if bin != nil {
		return bin.elt, false
	}

	// Create it.
	bin = &HashSetBin[E]{hash: hash}
	if trans != nil {
		bin.elt = trans(ptr)
	} else {
		bin.elt = ptr
	}

	bin.next = set.table[hash]
	set.table[hash] = bin
	set.entries++

	return bin.elt, true
}

func (set *HashSet[E]) Remove(hash HashValue, ptr E) (E, bool) {
	var prev *HashSetBin[E]
	bin := set.table[hash]

	// Find the bin
	for bin != nil && !set.eql(ptr, bin.elt) {
		prev = bin
		bin = bin.next
	}

	var zero E
	if bin == nil {
		return zero, false
	}

	// Unlink it from the chain
	switch {
	case prev != nil:
		prev.next = bin.next
	case bin.next != nil:
		set.table[hash] = bin.next
	default:
		delete(set.table, hash)
	}
	set.entries--
	return bin.elt, true
}

func (set *HashSet[E]) Find(hash HashValue, ptr E) (E, bool) {
	bin := set.table[hash]
	for bin != nil && !set.eql(ptr, bin.elt) {
		bin = bin.next
	}

	if bin != nil {
		return bin.elt, true
	}

	var zero E
	return zero, false
}

func (set *HashSet[E]) Each(f HashSetIterator[E]) {
	for _, bin := range set.table {
		for bin != nil {
			next := bin.next
			f(bin.elt)
			bin = next
		}
	}
}
