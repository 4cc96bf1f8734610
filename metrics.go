package semamu

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "semamu"

var _ prometheus.Collector = (*collector)(nil)

// NewCollector returns a prometheus.Collector that reports the state of s
// each time it is scraped: the total and available permit counts, and the
// number of queued waiters. The metrics carry a "name" label with the
// value set via WithName.
//
// Register the collector with a prometheus.Registerer; registering two
// collectors for semaphores with the same name fails.
func NewCollector(s *Semaphore) prometheus.Collector {
	labels := prometheus.Labels{"name": s.Name()}
	gauge := func(name, help string, fn func() int) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 {
			return float64(fn())
		})
	}

	return &collector{gauges: []prometheus.GaugeFunc{
		gauge("permits_total", "Number of permits the semaphore holds.", s.Total),
		gauge("permits_available", "Number of permits currently free.", s.Available),
		gauge("waiters", "Number of callers queued for a permit.", s.Waiting),
	}}
}

type collector struct {
	gauges []prometheus.GaugeFunc
}

// Describe implements prometheus.Collector.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, g := range c.gauges {
		g.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, g := range c.gauges {
		g.Collect(ch)
	}
}
