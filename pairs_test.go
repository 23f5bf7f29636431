package octree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type pairRecorder struct {
	pairs    []PairEvent[item]
	unpairs  []PairEvent[item]
	tokens   []any
	nextID   int
	issued   map[int]bool
	released map[int]bool
}

func newPairOctree(t *testing.T) (*PairOctree[item], *pairRecorder) {
	t.Helper()

	rec := &pairRecorder{
		issued:   map[int]bool{},
		released: map[int]bool{},
	}

	tree := NewPairOctree[item](DefaultOptions())
	tree.SetPairCallback(func(ev PairEvent[item]) any {
		rec.pairs = append(rec.pairs, ev)
		rec.nextID++
		rec.issued[rec.nextID] = true
		return rec.nextID
	})
	tree.SetUnpairCallback(func(ev PairEvent[item], token any) {
		rec.unpairs = append(rec.unpairs, ev)
		rec.tokens = append(rec.tokens, token)

		id, ok := token.(int)
		require.True(t, ok, "unpair without a pair token")
		require.True(t, rec.issued[id], "unknown token")
		require.False(t, rec.released[id], "token released twice")
		rec.released[id] = true
	})
	return tree, rec
}

func (rec *pairRecorder) reset() {
	rec.pairs = nil
	rec.unpairs = nil
	rec.tokens = nil
}

// checkPairCompleteness verifies that every overlapping, compatible pair of
// placed elements is reported.
func checkPairCompleteness(t *testing.T, tree *PairOctree[item]) {
	t.Helper()

	var placed []*element[item]
	for _, e := range tree.elements {
		if e.hasSurface() {
			placed = append(placed, e)
		}
	}

	for i, a := range placed {
		for _, b := range placed[i+1:] {
			expected := (a.pairable || b.pairable) &&
				a.compatible(b) &&
				(a.userdata == nil || a.userdata != b.userdata) &&
				a.aabb.IntersectsInclusive(b.aabb)

			probe := pair[item]{a: a, b: b}
			p, ok := tree.pairs.Find(pairKey(a.id, b.id), &probe)
			if !expected {
				if ok {
					require.Equal(t, a.aabb.IntersectsInclusive(b.aabb), p.intersect)
				}
				continue
			}

			require.True(t, ok, "missing pair record for %d and %d", a.id, b.id)
			require.True(t, p.intersect)
		}
	}
}

func TestPairOctreeScenario(t *testing.T) {
	tree, rec := newPairOctree(t)
	first := &item{name: "first"}
	second := &item{name: "second"}

	id1, err := tree.Create(first, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	require.Equal(t, ElementID(1), id1)
	require.Empty(t, rec.pairs)

	id2, err := tree.Create(second, box(0.5, 0.5, 0.5, 1.5, 1.5, 1.5), 0, true, 1, 1)
	require.NoError(t, err)
	require.Equal(t, ElementID(2), id2)
	require.Len(t, rec.pairs, 1)
	require.Equal(t, 1, tree.PairCount())
	checkTree(t, tree.Octree)

	ev := rec.pairs[0]
	require.ElementsMatch(t, []ElementID{id1, id2}, []ElementID{ev.A, ev.B})
	require.ElementsMatch(t, []*item{first, second}, []*item{ev.PayloadA, ev.PayloadB})

	require.NoError(t, tree.Move(id2, box(10, 10, 10, 11, 11, 11)))
	require.Len(t, rec.pairs, 1)
	require.Len(t, rec.unpairs, 1)
	require.Equal(t, 1, rec.tokens[0])
	require.Equal(t, ev, rec.unpairs[0], "unpair reports the pair in the same order")
	require.Zero(t, tree.PairCount())
	checkTree(t, tree.Octree)

	results := make([]*item, 4)
	n := tree.CullPoint(Vec3(0.2, 0.2, 0.2), results, nil, AllMask)
	require.Equal(t, 1, n)
	require.Same(t, first, results[0])
}

func TestPairOctreeRepeatedOverlap(t *testing.T) {
	tree, rec := newPairOctree(t)

	a, err := tree.Create(&item{name: "a"}, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(&item{name: "b"}, box(3, 0, 0, 4, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	require.Empty(t, rec.pairs)

	for i := 0; i < 10; i++ {
		require.NoError(t, tree.Move(a, box(2.5, 0, 0, 3.5, 1, 1)))
		require.NoError(t, tree.Move(a, box(2.6, 0, 0, 3.6, 1, 1)))
		require.Len(t, rec.pairs, i+1, "overlapping again must not fire twice")

		require.NoError(t, tree.Move(a, box(0, 0, 0, 1, 1, 1)))
		require.NoError(t, tree.Move(a, box(0.1, 0, 0, 1.1, 1, 1)))
		require.Len(t, rec.unpairs, i+1)
		require.Equal(t, i+1, rec.tokens[i])
	}

	checkTree(t, tree.Octree)
}

func TestPairOctreeTouchingBoxesPair(t *testing.T) {
	tree, rec := newPairOctree(t)

	_, err := tree.Create(&item{}, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(&item{}, box(1, 0, 0, 2, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)

	require.Len(t, rec.pairs, 1)
}

func TestPairOctreeMaskExclusion(t *testing.T) {
	tree, rec := newPairOctree(t)

	a, err := tree.Create(&item{}, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(&item{}, box(0.5, 0.5, 0.5, 1.5, 1.5, 1.5), 0, true, 2, 2)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, tree.MoveForced(a, box(0.1*float64(i), 0, 0, 1+0.1*float64(i), 1, 1)))
	}

	require.Empty(t, rec.pairs)
	require.Zero(t, tree.PairRecordCount())

	// One side accepting the other is enough.
	_, err = tree.Create(&item{}, box(0, 0, 0, 1, 1, 1), 0, true, 4, 2)
	require.NoError(t, err)
	require.Len(t, rec.pairs, 1)
	require.Equal(t, 1, tree.PairRecordCount())
	checkTree(t, tree.Octree)
}

func TestPairOctreeSamePayload(t *testing.T) {
	tree, rec := newPairOctree(t)
	shared := &item{name: "shared"}

	_, err := tree.Create(shared, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(shared, box(0, 0, 0, 1, 1, 1), 1, true, 1, 1)
	require.NoError(t, err)
	require.Empty(t, rec.pairs)

	// nil payloads are not considered identical
	_, err = tree.Create(nil, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(nil, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	require.Len(t, rec.pairs, 5)
}

func TestPairOctreeNonPairableElements(t *testing.T) {
	tree, rec := newPairOctree(t)

	_, err := tree.Create(&item{}, box(0, 0, 0, 1, 1, 1), 0, false, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(&item{}, box(0, 0, 0, 1, 1, 1), 0, false, 1, 1)
	require.NoError(t, err)
	require.Empty(t, rec.pairs, "two static elements never pair")

	_, err = tree.Create(&item{}, box(0.5, 0.5, 0.5, 2, 2, 2), 0, true, 1, 1)
	require.NoError(t, err)
	require.Len(t, rec.pairs, 2, "a pairable element pairs with static ones")
	checkTree(t, tree.Octree)
}

func TestPairOctreeErase(t *testing.T) {
	tree, rec := newPairOctree(t)

	a, err := tree.Create(&item{}, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(&item{}, box(0.5, 0, 0, 1.5, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(&item{}, box(0.8, 0, 0, 1.8, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	require.Len(t, rec.pairs, 3)

	require.NoError(t, tree.Erase(a))
	require.Len(t, rec.unpairs, 2)
	require.Equal(t, 1, tree.PairCount())
	require.Equal(t, 1, tree.PairRecordCount())
	checkTree(t, tree.Octree)
}

func TestPairOctreeSetPairable(t *testing.T) {
	tree, rec := newPairOctree(t)

	a, err := tree.Create(&item{}, box(0, 0, 0, 1, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	b, err := tree.Create(&item{}, box(0.5, 0, 0, 1.5, 1, 1), 0, true, 1, 1)
	require.NoError(t, err)
	require.Len(t, rec.pairs, 1)

	require.NoError(t, tree.SetPairable(a, true, 1, 1))
	require.Len(t, rec.pairs, 1, "unchanged parameters are a no-op")
	require.Empty(t, rec.unpairs)

	require.NoError(t, tree.SetPairable(a, false, 1, 1))
	pairable, err := tree.IsPairable(a)
	require.NoError(t, err)
	require.False(t, pairable)
	require.Equal(t, 1, tree.PairCount(), "b is still pairable")
	checkTree(t, tree.Octree)

	rec.reset()
	require.NoError(t, tree.SetPairable(b, false, 1, 1))
	require.Len(t, rec.unpairs, 1)
	require.Empty(t, rec.pairs)
	require.Zero(t, tree.PairCount())
	require.Zero(t, tree.PairRecordCount())
	checkTree(t, tree.Octree)

	rec.reset()
	require.NoError(t, tree.SetPairable(b, true, 2, 2))
	require.Empty(t, rec.pairs, "incompatible masks")

	require.NoError(t, tree.SetPairable(b, true, 1, 1))
	require.Len(t, rec.pairs, 1)
	checkTree(t, tree.Octree)
}

func TestPairOctreeMoveAcrossContainer(t *testing.T) {
	tree, rec := newPairOctree(t)
	tree.SetOctantElementsLimit(1)

	_, err := tree.Create(&item{name: "f"}, box(0, 0, 0, 0.1, 0.1, 0.1), 0, true, 1, 1)
	require.NoError(t, err)
	_, err = tree.Create(&item{name: "g"}, box(0.9, 0, 0, 0.95, 0.05, 0.05), 0, true, 1, 1)
	require.NoError(t, err)

	// placed in a child of the root and in a grandchild of its sibling, so
	// its container covers octants it is not placed in
	c, err := tree.Create(&item{name: "c"}, box(0.45, 0.05, 0.05, 0.55, 0.1, 0.1), 0, true, 1, 1)
	require.NoError(t, err)
	require.Len(t, tree.elements[c].owners, 2)

	h, err := tree.Create(&item{name: "h"}, box(0.6, 0.3, 0.3, 0.7, 0.4, 0.4), 0, true, 1, 1)
	require.NoError(t, err)
	require.Empty(t, rec.pairs)
	checkTree(t, tree.Octree)

	target := box(0.6, 0.3, 0.3, 0.7, 0.4, 0.4)
	require.True(t, tree.elements[c].containerAABB.Encloses(target))

	require.NoError(t, tree.Move(c, target))
	require.Len(t, rec.pairs, 1)
	require.ElementsMatch(t, []ElementID{c, h}, []ElementID{rec.pairs[0].A, rec.pairs[0].B})
	checkTree(t, tree.Octree)
	checkPairCompleteness(t, tree)

	require.NoError(t, tree.Erase(c))
	require.Len(t, rec.unpairs, 1)
	checkTree(t, tree.Octree)
}

func TestPairOctreeRandomMoves(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tree, rec := newPairOctree(t)
	tree.SetOctantElementsLimit(2)

	ids := make([]ElementID, 80)
	for i := range ids {
		pairable := rng.Intn(3) != 0
		typ := uint32(1) << uint(rng.Intn(2))
		id, err := tree.Create(&item{}, randomBox(rng, 20, 4), i, pairable, typ, typ)
		require.NoError(t, err)
		ids[i] = id
	}
	checkTree(t, tree.Octree)
	checkPairCompleteness(t, tree)

	for round := 0; round < 20; round++ {
		for _, id := range ids {
			bb, err := tree.Bounds(id)
			require.NoError(t, err)

			switch rng.Intn(4) {
			case 0:
				bb = randomBox(rng, 20, 4)
			case 1:
				bb.Size = bb.Size.Mult(0.5)
			default:
				bb.Position = bb.Position.Add(Vec3(rng.Float64()-0.5, rng.Float64()-0.5, rng.Float64()-0.5))
			}

			if rng.Intn(10) == 0 {
				require.NoError(t, tree.MoveForced(id, bb))
			} else {
				require.NoError(t, tree.Move(id, bb))
			}
		}

		checkTree(t, tree.Octree)
		checkPairCompleteness(t, tree)
		require.Equal(t, len(rec.pairs)-len(rec.unpairs), tree.PairCount())
	}

	for _, id := range ids {
		require.NoError(t, tree.Erase(id))
	}

	require.Len(t, rec.unpairs, len(rec.pairs))
	require.Zero(t, tree.PairCount())
	require.Zero(t, tree.PairRecordCount())
	require.Nil(t, tree.root)
}
