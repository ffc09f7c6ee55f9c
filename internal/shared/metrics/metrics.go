package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name  string
	help  string
	value atomic.Uint64
}

func (c *counter) Inc() { c.value.Add(1) }

var (
	resumesCreated     = &counter{name: "resumes_created_total", help: "Total resumes created"}
	resumesDeleted     = &counter{name: "resumes_deleted_total", help: "Total resumes deleted"}
	generationStarted  = &counter{name: "generation_started_total", help: "Total generation calls started"}
	generationRepaired = &counter{name: "generation_repaired_total", help: "Generated documents that needed repair"}
	generationFailed   = &counter{name: "generation_failed_total", help: "Generation calls that produced no usable document"}
	exportsRendered    = &counter{name: "exports_rendered_total", help: "PDF exports rendered (cache misses)"}

	counters = []*counter{resumesCreated, resumesDeleted, generationStarted, generationRepaired, generationFailed, exportsRendered}

	generationDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 20000, 30000, 60000})
)

func IncResumesCreated()     { resumesCreated.Inc() }
func IncResumesDeleted()     { resumesDeleted.Inc() }
func IncGenerationStarted()  { generationStarted.Inc() }
func IncGenerationRepaired() { generationRepaired.Inc() }
func IncGenerationFailed()   { generationFailed.Inc() }
func IncExportsRendered()    { exportsRendered.Inc() }

// ObserveGenerationDurationMs records a generation call's latency in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4", []byte(Render()))
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	for _, c := range counters {
		fmt.Fprintf(&buf, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", c.name, c.help, c.name, c.name, c.value.Load())
	}
	writeHistogram(&buf, "generation_duration_ms", "Generation latency in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{buckets: buckets, counts: make([]uint64, len(buckets))}
}

// Observe counts value in the first bucket whose bound it fits.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

// Snapshot copies the histogram under lock.
func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s histogram\n", name, help, name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
