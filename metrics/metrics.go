package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Specifiers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iplist_specifiers_total",
			Help: "Specifiers read, by set and form.",
		},
		[]string{"set", "kind"},
	)
	SpecifierErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iplist_specifier_errors_total",
			Help: "Specifiers rejected, by set and form.",
		},
		[]string{"set", "kind"},
	)
	Blocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iplist_blocks_total",
			Help: "Network blocks handled, by pipeline stage.",
		},
		[]string{"stage"},
	)
	ExcludeSplits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "iplist_exclude_splits",
			Help:    "Blocks left of each added block after exclusion.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)
)

// Registry holds the calculator's own metrics, without the Go runtime collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(Specifiers, SpecifierErrors, Blocks, ExcludeSplits)
}

// WriteTextfile dumps Registry in the text format read by the node exporter's textfile collector.
func WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, Registry), "writing metrics to %s", path)
}
