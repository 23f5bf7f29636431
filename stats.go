package octree

import "github.com/segmentio/encoding/json"

// Stats is a snapshot of index counters.
type Stats struct {
	Elements            int    `json:"elements"`
	Octants             int    `json:"octants"`
	Pairs               int    `json:"pairs"`
	PairRecords         int    `json:"pair_records"`
	OctantElementsLimit int    `json:"octant_elements_limit"`
	Pass                uint64 `json:"pass"`
}

func (s Stats) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return err.Error()
	}
	return string(b)
}
