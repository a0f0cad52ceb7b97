package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	inputsResolvedTotal    atomic.Uint64
	inputsRejectedTotal    atomic.Uint64
	sectionsReadyTotal     atomic.Uint64
	sectionsRenderedTotal  atomic.Uint64
	renderFailedTotal      atomic.Uint64
	renderJobsReceived     atomic.Uint64
	renderJobsCompleted    atomic.Uint64
	renderJobsFailed       atomic.Uint64
	renderJobsUnrecovTotal atomic.Uint64

	renderDuration = newHistogram([]float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000})
)

// IncInputsResolved increments the resolved-input counter.
func IncInputsResolved() {
	inputsResolvedTotal.Add(1)
}

// IncInputsRejected increments the rejected-input counter.
func IncInputsRejected() {
	inputsRejectedTotal.Add(1)
}

// IncSectionsReady increments the counter of sections that became ready to render.
func IncSectionsReady() {
	sectionsReadyTotal.Add(1)
}

// IncSectionsRendered increments the rendered-section counter.
func IncSectionsRendered() {
	sectionsRenderedTotal.Add(1)
}

// IncRenderFailed increments the failed-render counter.
func IncRenderFailed() {
	renderFailedTotal.Add(1)
}

// IncRenderJobsReceived increments the queue jobs received counter.
func IncRenderJobsReceived() {
	renderJobsReceived.Add(1)
}

// IncRenderJobsCompleted increments the queue jobs completed counter.
func IncRenderJobsCompleted() {
	renderJobsCompleted.Add(1)
}

// IncRenderJobsFailed increments the queue jobs failed counter.
func IncRenderJobsFailed() {
	renderJobsFailed.Add(1)
}

// IncRenderJobsDeletedUnrecoverable increments the counter of jobs dropped as unparseable.
func IncRenderJobsDeletedUnrecoverable() {
	renderJobsUnrecovTotal.Add(1)
}

// ObserveRenderDurationMs records a render duration in milliseconds.
func ObserveRenderDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	renderDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "inputs_resolved_total", "Total input resolutions accepted", inputsResolvedTotal.Load())
	writeCounter(&buf, "inputs_rejected_total", "Total input resolutions rejected by validation", inputsRejectedTotal.Load())
	writeCounter(&buf, "sections_ready_total", "Total sections that became ready to render", sectionsReadyTotal.Load())
	writeCounter(&buf, "sections_rendered_total", "Total successful section renders", sectionsRenderedTotal.Load())
	writeCounter(&buf, "render_failed_total", "Total failed section renders", renderFailedTotal.Load())
	writeCounter(&buf, "render_jobs_received_total", "Total render jobs received from the queue", renderJobsReceived.Load())
	writeCounter(&buf, "render_jobs_completed_total", "Total render jobs completed", renderJobsCompleted.Load())
	writeCounter(&buf, "render_jobs_failed_total", "Total render jobs failed", renderJobsFailed.Load())
	writeCounter(&buf, "render_jobs_deleted_unrecoverable_total", "Total render jobs dropped as unparseable", renderJobsUnrecovTotal.Load())
	writeHistogram(&buf, "render_duration_ms", "Section render duration in milliseconds", renderDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

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

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
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

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
