package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"treesync/core/logger"
	"treesync/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed driver.
var ErrClosed = errors.New("driver closed")

// ViewSource produces the declarative tree for the next pass.
type ViewSource[V any] func() (reconcile.View[V], error)

// PassHook observes a successful pass together with the view it reconciled.
type PassHook[V any] func(report PassReport, view reconcile.View[V])

// Option configures a Driver.
type Option func(*settings)

type settings struct {
	logger      *zap.Logger
	metrics     *Metrics
	historySize int
}

// WithLogger sets the logger passes are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMetrics sets the collectors passes are recorded in.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithHistorySize sets the number of pass reports kept.
func WithHistorySize(n int) Option {
	return func(s *settings) { s.historySize = n }
}

// Driver runs reconciliation passes of one live tree. Passes are serialized;
// a driver is safe for concurrent use.
type Driver[M, V, S any] struct {
	mu      sync.Mutex
	name    string
	tree    *reconcile.Tree[M, V, S]
	stats   reconcile.Stats
	source  ViewSource[V]
	onPass  PassHook[V]
	logger  *zap.Logger
	metrics *Metrics
	history *History
	dirty   bool
	closed  bool
}

// New returns a driver that mounts the views of source under mount through
// adapter. The driver starts invalidated so the first Tick mounts the tree.
func New[M, V, S any](name string, mount M, adapter reconcile.Adapter[M, V, S], source ViewSource[V], opts ...Option) *Driver[M, V, S] {
	s := settings{historySize: historySizeDefault}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	d := &Driver[M, V, S]{
		name:    name,
		source:  source,
		logger:  s.logger,
		metrics: s.metrics,
		history: NewHistory(s.historySize),
		dirty:   true,
	}
	d.tree = reconcile.NewTree(mount, reconcile.WithStats(adapter, &d.stats))
	return d
}

// Name returns the session name of the driver.
func (d *Driver[M, V, S]) Name() string {
	return d.name
}

// Invalidate marks the view dirty; the next Tick runs a pass.
func (d *Driver[M, V, S]) Invalidate() {
	d.mu.Lock()
	d.dirty = true
	d.mu.Unlock()
}

// SetSource replaces the view source and invalidates the driver.
func (d *Driver[M, V, S]) SetSource(source ViewSource[V]) {
	d.mu.Lock()
	d.source = source
	d.dirty = true
	d.mu.Unlock()
}

// OnPass sets fn to run after every successful pass, under the driver lock,
// with the view that pass consumed. Hooks therefore observe passes one at a
// time and in order; fn must not call back into the driver.
func (d *Driver[M, V, S]) OnPass(fn PassHook[V]) {
	d.mu.Lock()
	d.onPass = fn
	d.mu.Unlock()
}

// Tick runs a pass when the driver is invalidated. It reports whether a pass
// ran.
func (d *Driver[M, V, S]) Tick() (PassReport, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty || d.closed {
		return PassReport{}, false
	}
	return d.pass(false), true
}

// Force runs a pass regardless of invalidation.
func (d *Driver[M, V, S]) Force() (PassReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return PassReport{}, ErrClosed
	}
	return d.pass(true), nil
}

// Run ticks every interval until ctx is done.
func (d *Driver[M, V, S]) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick()
		}
	}
}

// History returns the recent pass reports, oldest first.
func (d *Driver[M, V, S]) History() []PassReport {
	return d.history.Reports()
}

// Last returns the most recent pass report.
func (d *Driver[M, V, S]) Last() (PassReport, bool) {
	return d.history.Last()
}

// Inspect calls fn with the live root while no pass can run. The root is nil
// before the first successful pass; fn must not retain it.
func (d *Driver[M, V, S]) Inspect(fn func(root *reconcile.Live[S])) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.tree.Root())
}

// Close unmounts the live tree and stops further passes.
func (d *Driver[M, V, S]) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.metrics.Forget(d.name)
	if err := d.tree.Reset(); err != nil {
		return fmt.Errorf("failed to unmount session %s: %w", d.name, err)
	}
	return nil
}

func (d *Driver[M, V, S]) pass(forced bool) PassReport {
	report := PassReport{
		ID:      uuid.NewString(),
		Session: d.name,
		Started: time.Now(),
		Rebuilt: d.tree.Tainted(),
		Mounted: d.tree.Root() == nil,
		Forced:  forced,
	}
	d.stats = reconcile.Stats{}

	view, err := d.run()

	report.Duration = time.Since(report.Started)
	report.Stats = d.stats
	d.dirty = false

	log := logger.WithPass(d.logger, d.name, report.ID)
	if err != nil {
		report.Err = err
		report.Error = err.Error()
		log.Error("Reconciliation pass failed",
			zap.Error(err),
			zap.String("kind", reconcile.KindOf(err).String()),
			zap.Duration("duration", report.Duration),
		)
	} else {
		log.Debug("Reconciliation pass finished",
			zap.Duration("duration", report.Duration),
			zap.Int("creates", report.Stats.Creates),
			zap.Int("updates", report.Stats.Updates),
			zap.Int("removes", report.Stats.Removes),
			zap.Int("inserts", report.Stats.Inserts),
			zap.Int("swaps", report.Stats.Swaps),
			zap.Bool("rebuilt", report.Rebuilt),
		)
	}

	live := 0
	if root := d.tree.Root(); root != nil {
		live = root.Size()
	}
	d.metrics.Observe(report, live)
	d.history.Add(report)

	if err == nil && d.onPass != nil {
		d.notify(log, report, view)
	}
	return report
}

func (d *Driver[M, V, S]) notify(log *zap.Logger, report PassReport, view reconcile.View[V]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered panic in pass hook",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	d.onPass(report, view)
}

// run executes one pass, turning panics from the source or the adapter into
// KindPanic errors. A panic inside Sync leaves the tree tainted.
func (d *Driver[M, V, S]) run() (view reconcile.View[V], err error) {
	syncing := false
	defer func() {
		if r := recover(); r != nil {
			if syncing {
				d.tree.Taint()
			}
			d.logger.Error("Recovered panic in reconciliation pass",
				zap.String("session", d.name),
				zap.ByteString("stack", debug.Stack()),
			)
			err = &reconcile.Error{Op: "driver.pass", Kind: reconcile.KindPanic, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	view, err = d.source()
	if err != nil {
		return view, fmt.Errorf("view source failed: %w", err)
	}
	syncing = true
	return view, d.tree.Sync(view)
}
