package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()
	once     sync.Once

	foldersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mangasplit",
			Name:      "folders_total",
			Help:      "Source folders by result (packaged, empty, failed, cancelled)",
		},
		[]string{"result"},
	)

	pagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mangasplit",
			Name:      "pages_total",
			Help:      "Pages by action (split, rotated, kept, unreadable)",
		},
		[]string{"action"},
	)

	archivesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mangasplit",
			Name:      "archives_extracted_total",
			Help:      "Archive extractions by method (zip, rar, tool name, failed)",
		},
		[]string{"method"},
	)

	fallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mangasplit",
			Name:      "packaging_fallbacks_total",
			Help:      "Requested output formats that degraded to another container",
		},
		[]string{"requested", "produced"},
	)
)

// Init registers collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		registry.MustRegister(foldersTotal, pagesTotal, archivesTotal, fallbacksTotal)
	})
}

// WriteFile dumps the current values in the Prometheus text format, suitable
// for the node_exporter textfile collector.
func WriteFile(path string) error {
	Init()
	return prometheus.WriteToTextfile(path, registry)
}

func IncFolder(result string)                { foldersTotal.WithLabelValues(result).Inc() }
func AddPages(action string, n int)          { pagesTotal.WithLabelValues(action).Add(float64(n)) }
func IncArchive(method string)               { archivesTotal.WithLabelValues(method).Inc() }
func IncFallback(requested, produced string) { fallbacksTotal.WithLabelValues(requested, produced).Inc() }
