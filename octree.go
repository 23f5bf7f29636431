package octree

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

const (
	DefaultUnitSize            = 1.0
	DefaultOctantElementsLimit = 6

	// AllMask matches every pairable type in queries.
	AllMask uint32 = 0xFFFFFFFF
)

// Options configures a new index. Zero values fall back to the defaults.
type Options struct {
	// Edge length of the first root cube.
	UnitSize float64

	// Number of elements an octant list holds before new elements may be
	// pushed into its children.
	OctantElementsLimit int

	// Retune OctantElementsLimit from the observed mix of edits and queries.
	AutoOctantLimit bool
}

func DefaultOptions() Options {
	return Options{
		UnitSize:            DefaultUnitSize,
		OctantElementsLimit: DefaultOctantElementsLimit,
	}
}

// Octree is a loose octree over axis-aligned boxes. Elements may straddle
// several octants. It is not safe for concurrent use.
type Octree[T any] struct {
	elements      map[ElementID]*element[T]
	lastElementID ElementID

	root          *octant[T]
	pooledOctants *octant[T]
	octantCount   int

	pass                uint64
	unitSize            float64
	octantElementsLimit int
	tuner               limitTuner

	usePairs       bool
	pairs          *HashSet[*pair[T]]
	pooledPairs    []*pair[T]
	pairCount      int
	pairCallback   PairFunc[T]
	unpairCallback UnpairFunc[T]
}

// New returns an index without pair tracking.
func New[T any](opts Options) *Octree[T] {
	if opts.UnitSize <= 0 {
		opts.UnitSize = DefaultUnitSize
	}
	if opts.OctantElementsLimit <= 0 {
		opts.OctantElementsLimit = DefaultOctantElementsLimit
	}

	return &Octree[T]{
		elements:            make(map[ElementID]*element[T]),
		unitSize:            opts.UnitSize,
		octantElementsLimit: opts.OctantElementsLimit,
		tuner:               newLimitTuner(opts.AutoOctantLimit),
		pairs:               NewHashSet[*pair[T]](pairEql[T]),
	}
}

func (tree *Octree[T]) element(id ElementID) (*element[T], error) {
	e, ok := tree.elements[id]
	if !ok {
		err := errors.New("element not found").
			WithType(ErrTypeUnknownElement).
			WithTag("id", id)
		logs.Warn(err)
		return nil, err
	}
	return e, nil
}

// Insert tracks a non pairable element. It is Create with the default
// pairing parameters.
func (tree *Octree[T]) Insert(payload *T, bb AABB) (ElementID, error) {
	return tree.Create(payload, bb, 0, false, 0, 1)
}

// Create starts tracking payload with bounds bb. An element with a box that
// has no surface is registered but not placed in the tree until it is moved
// to a box with a surface.
func (tree *Octree[T]) Create(payload *T, bb AABB, subindex int, pairable bool, pairableType, pairableMask uint32) (ElementID, error) {
	if err := bb.Validate(); err != nil {
		return InvalidID, err
	}

	tree.notifyEditing()

	e := &element[T]{
		userdata:     payload,
		subindex:     subindex,
		aabb:         bb,
		pairable:     pairable,
		pairableType: pairableType,
		pairableMask: pairableMask,
	}

	if e.hasSurface() {
		if err := tree.ensureValidRoot(bb); err != nil {
			return InvalidID, err
		}
	}

	e.id = tree.newElementID()
	tree.elements[e.id] = e

	if e.hasSurface() {
		tree.insertElement(e, tree.root)
		if tree.usePairs {
			tree.elementCheckPairs(e)
		}
	}

	return e.id, nil
}

// Move updates the bounds of an element. Elements that stay inside the region
// of their current octants are not reinserted.
func (tree *Octree[T]) Move(id ElementID, bb AABB) error {
	return tree.move(id, bb, false)
}

// MoveForced is Move but always reinserts the element, which lets it settle
// deeper after shrinking.
func (tree *Octree[T]) MoveForced(id ElementID, bb AABB) error {
	return tree.move(id, bb, true)
}

func (tree *Octree[T]) move(id ElementID, bb AABB, force bool) error {
	if err := bb.Validate(); err != nil {
		return err
	}

	e, err := tree.element(id)
	if err != nil {
		return err
	}

	tree.notifyEditing()

	oldHasSurface := e.hasSurface()
	newHasSurface := !bb.HasNoSurface()

	if oldHasSurface != newHasSurface {
		if oldHasSurface {
			tree.removeElement(e)
			e.commonParent = nil
			e.aabb = bb
			tree.optimize()
			return nil
		}

		if err := tree.ensureValidRoot(bb); err != nil {
			return err
		}

		e.commonParent = nil
		e.aabb = bb
		tree.insertElement(e, tree.root)
		if tree.usePairs {
			tree.elementCheckPairs(e)
		}
		return nil
	}

	if !oldHasSurface {
		e.aabb = bb
		return nil
	}

	if !force && e.placementEncloses(bb) {
		e.aabb = bb
		if tree.usePairs {
			tree.elementCheckPairs(e)
		}
		return nil
	}

	if err := tree.ensureValidRoot(e.aabb.Merge(bb)); err != nil {
		return err
	}

	if !assert(len(e.owners) > 0, "placed element without owners: ", e.id) {
		return nil
	}

	owners := e.owners
	commonParent := e.commonParent
	if !assert(commonParent != nil, "placed element without common parent: ", e.id) {
		return nil
	}

	for commonParent != nil && !commonParent.aabb.Encloses(bb) {
		commonParent = commonParent.parent
	}
	if !assert(commonParent != nil, "root does not enclose moved element: ", e.id) {
		return nil
	}

	e.owners = nil
	e.commonParent = nil
	e.aabb = bb
	tree.insertElement(e, commonParent)

	pass := tree.nextPass()
	survivors := owners[:0]
	for _, owner := range owners {
		o := owner.octant
		o.detach(owner)

		if !tree.removeElementPairAndRemoveEmptyOctants(e, o, commonParent.parent, pass) {
			survivors = append(survivors, owner)
		}
	}

	if tree.usePairs {
		for _, owner := range survivors {
			pass := tree.nextPass()
			for _, child := range owner.octant.children {
				if child != nil {
					tree.unpairElement(e, child, pass)
				}
			}
		}

		tree.elementCheckPairs(e)
	}

	tree.optimize()
	return nil
}

// SetPairable changes the pairing parameters of an element. The element is
// reinserted when any of them changes.
func (tree *Octree[T]) SetPairable(id ElementID, pairable bool, pairableType, pairableMask uint32) error {
	e, err := tree.element(id)
	if err != nil {
		return err
	}

	if e.pairable == pairable && e.pairableType == pairableType && e.pairableMask == pairableMask {
		return nil
	}

	if e.hasSurface() {
		tree.removeElement(e)
	}

	e.pairable = pairable
	e.pairableType = pairableType
	e.pairableMask = pairableMask
	e.commonParent = nil

	if !e.hasSurface() {
		return nil
	}

	if err := tree.ensureValidRoot(e.aabb); err != nil {
		return err
	}

	tree.insertElement(e, tree.root)
	if tree.usePairs {
		tree.elementCheckPairs(e)
	}
	return nil
}

// Erase stops tracking an element. Pairs it was part of are reported as
// unpaired.
func (tree *Octree[T]) Erase(id ElementID) error {
	e, err := tree.element(id)
	if err != nil {
		return err
	}

	tree.notifyEditing()

	if e.hasSurface() {
		tree.removeElement(e)
	}

	delete(tree.elements, id)
	tree.optimize()
	return nil
}

func (tree *Octree[T]) Get(id ElementID) (*T, error) {
	e, err := tree.element(id)
	if err != nil {
		return nil, err
	}
	return e.userdata, nil
}

func (tree *Octree[T]) Subindex(id ElementID) (int, error) {
	e, err := tree.element(id)
	if err != nil {
		return 0, err
	}
	return e.subindex, nil
}

func (tree *Octree[T]) IsPairable(id ElementID) (bool, error) {
	e, err := tree.element(id)
	if err != nil {
		return false, err
	}
	return e.pairable, nil
}

// Bounds returns the box last given for the element.
func (tree *Octree[T]) Bounds(id ElementID) (AABB, error) {
	e, err := tree.element(id)
	if err != nil {
		return AABB{}, err
	}
	return e.aabb, nil
}

func (tree *Octree[T]) Count() int {
	return len(tree.elements)
}

// Each calls f for every tracked element in no particular order.
func (tree *Octree[T]) Each(f func(id ElementID, payload *T)) {
	for id, e := range tree.elements {
		f(id, e.userdata)
	}
}

func (tree *Octree[T]) Contains(id ElementID) bool {
	_, ok := tree.elements[id]
	return ok
}

func (tree *Octree[T]) OctantCount() int {
	return tree.octantCount
}

func (tree *Octree[T]) OctantElementsLimit() int {
	return tree.octantElementsLimit
}

// SetOctantElementsLimit changes the split threshold. Existing placements are
// kept; the new limit applies to later insertions.
func (tree *Octree[T]) SetOctantElementsLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	tree.octantElementsLimit = limit
}

func (tree *Octree[T]) Stats() Stats {
	return Stats{
		Elements:            len(tree.elements),
		Octants:             tree.octantCount,
		Pairs:               tree.pairCount,
		PairRecords:         int(tree.pairs.Count()),
		OctantElementsLimit: tree.octantElementsLimit,
		Pass:                tree.pass,
	}
}

// PairOctree is an Octree that tracks overlapping pairs of compatible
// elements and reports pair and unpair transitions through callbacks.
// Callbacks must not modify the index.
type PairOctree[T any] struct {
	*Octree[T]
}

func NewPairOctree[T any](opts Options) *PairOctree[T] {
	tree := New[T](opts)
	tree.usePairs = true
	return &PairOctree[T]{Octree: tree}
}

func (tree *PairOctree[T]) SetPairCallback(f PairFunc[T]) {
	tree.pairCallback = f
}

func (tree *PairOctree[T]) SetUnpairCallback(f UnpairFunc[T]) {
	tree.unpairCallback = f
}

// PairCount returns the number of pairs currently reported as overlapping.
func (tree *PairOctree[T]) PairCount() int {
	return tree.pairCount
}

// PairRecordCount returns the number of tracked candidate pairs, overlapping
// or not.
func (tree *PairOctree[T]) PairRecordCount() int {
	return int(tree.pairs.Count())
}
