package octree

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/logs"
)

const (
	autoLimitSamples   = 8
	autoLimitScale     = 1024
	autoLimitMaxExtra  = 8096
	balanceLimitFactor = 8090
)

// limitTuner keeps a decaying average of how many queries run between edits.
type limitTuner struct {
	enabled              bool
	testing              bool
	currentNumTests      int
	runningTotalNumTests int
}

func newLimitTuner(enabled bool) limitTuner {
	return limitTuner{
		enabled:              enabled,
		runningTotalNumTests: autoLimitSamples * DefaultOctantElementsLimit,
	}
}

func (tree *Octree[T]) notifyTesting() {
	t := &tree.tuner
	if !t.enabled {
		return
	}

	if !t.testing {
		t.testing = true
		t.currentNumTests = 1
		return
	}
	t.currentNumTests++
}

// notifyEditing closes a run of queries and retunes the limit from it.
func (tree *Octree[T]) notifyEditing() {
	t := &tree.tuner
	if !t.enabled || !t.testing {
		return
	}
	t.testing = false

	t.runningTotalNumTests = t.runningTotalNumTests*(autoLimitSamples-1)/autoLimitSamples + t.currentNumTests

	average := float64(t.runningTotalNumTests) / autoLimitSamples
	av := math.Min(math.Sqrt(average/autoLimitScale), 1)

	limit := DefaultOctantElementsLimit + int(av*autoLimitMaxExtra)
	if limit == tree.octantElementsLimit {
		return
	}

	tree.octantElementsLimit = limit
	logs.WithTag("octant_elements_limit", limit).
		WithTag("average_tests", average).
		Debug("octree limit retuned")
}

// SetBalance sets the split threshold from a preference in [0, 1]: 0 favors
// fast edits with small octant lists, 1 favors fast queries with a shallow
// tree.
func (tree *Octree[T]) SetBalance(balance float64) {
	v := Clamp(balance, 0, 1)
	v *= v
	v *= v
	tree.octantElementsLimit = DefaultOctantElementsLimit + int(v*balanceLimitFactor)
}
