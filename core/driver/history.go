package driver

import (
	"sync"
	"time"

	"treesync/core/reconcile"
)

const historySizeDefault = 64

// PassReport describes one reconciliation pass.
type PassReport struct {
	ID       string          `json:"id"`
	Session  string          `json:"session"`
	Started  time.Time       `json:"started"`
	Duration time.Duration   `json:"duration_ns"`
	Stats    reconcile.Stats `json:"stats"`
	// Rebuilt is set when the pass rebuilt a tainted tree.
	Rebuilt bool `json:"rebuilt"`
	// Mounted is set for the pass that created the tree.
	Mounted bool `json:"mounted"`
	// Forced is set for passes run by Force rather than a tick.
	Forced bool   `json:"forced"`
	Error  string `json:"error,omitempty"`
	Err    error  `json:"-"`
}

// Result labels the outcome of the pass for metrics.
func (r PassReport) Result() string {
	switch {
	case r.Err == nil:
		return "ok"
	case reconcile.KindOf(r.Err) == reconcile.KindPanic:
		return "panic"
	default:
		return "error"
	}
}

// History stores recent pass reports in a ring buffer.
type History struct {
	mu      sync.RWMutex
	reports []PassReport
	index   int
	count   int
	total   int
}

// NewHistory creates a history keeping the last capacity reports.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = historySizeDefault
	}
	return &History{reports: make([]PassReport, capacity)}
}

// Add records a report, evicting the oldest one when full.
func (h *History) Add(r PassReport) {
	h.mu.Lock()
	h.reports[h.index] = r
	h.index = (h.index + 1) % len(h.reports)
	if h.count < len(h.reports) {
		h.count++
	}
	h.total++
	h.mu.Unlock()
}

// Reports returns the kept reports, oldest first.
func (h *History) Reports() []PassReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]PassReport, 0, h.count)
	start := (h.index - h.count + len(h.reports)) % len(h.reports)
	for i := 0; i < h.count; i++ {
		out = append(out, h.reports[(start+i)%len(h.reports)])
	}
	return out
}

// Last returns the most recent report.
func (h *History) Last() (PassReport, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.count == 0 {
		return PassReport{}, false
	}
	return h.reports[(h.index-1+len(h.reports))%len(h.reports)], true
}

// Total returns how many reports were ever added.
func (h *History) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}
