package octree

import "github.com/prometheus/client_golang/prometheus"

// Collector exports index counters as prometheus gauges. The stats function
// is called on every scrape and must serialize with index mutations.
type Collector struct {
	stats func() Stats

	elements            *prometheus.Desc
	octants             *prometheus.Desc
	pairs               *prometheus.Desc
	pairRecords         *prometheus.Desc
	octantElementsLimit *prometheus.Desc
}

func NewCollector(namespace string, stats func() Stats) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}

	return &Collector{
		stats:               stats,
		elements:            desc("elements", "The number of tracked elements."),
		octants:             desc("octants", "The number of live octants."),
		pairs:               desc("pairs", "The number of overlapping pairs."),
		pairRecords:         desc("pair_records", "The number of candidate pair records."),
		octantElementsLimit: desc("octant_elements_limit", "The current octant split threshold."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.elements
	ch <- c.octants
	ch <- c.pairs
	ch <- c.pairRecords
	ch <- c.octantElementsLimit
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()

	ch <- prometheus.MustNewConstMetric(c.elements, prometheus.GaugeValue, float64(s.Elements))
	ch <- prometheus.MustNewConstMetric(c.octants, prometheus.GaugeValue, float64(s.Octants))
	ch <- prometheus.MustNewConstMetric(c.pairs, prometheus.GaugeValue, float64(s.Pairs))
	ch <- prometheus.MustNewConstMetric(c.pairRecords, prometheus.GaugeValue, float64(s.PairRecords))
	ch <- prometheus.MustNewConstMetric(c.octantElementsLimit, prometheus.GaugeValue, float64(s.OctantElementsLimit))
}
