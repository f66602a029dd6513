package inspect

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"treesync/core/driver"
	"treesync/core/reconcile"
	"treesync/feature/document"
	"treesync/feature/stylesheet"

	"go.uber.org/zap"
)

// ErrNoSession is returned for unknown session names.
var ErrNoSession = errors.New("session not found")

// Mirror persists the views of one session elsewhere.
type Mirror interface {
	Sync(view reconcile.View[document.Item]) error
	Close() error
}

// MirrorFactory returns the mirror of a new session.
type MirrorFactory func(session string) Mirror

// Publisher publishes the styles of a session.
type Publisher interface {
	Publish(ctx context.Context, sheet *stylesheet.Sheet) (stylesheet.PublishReport, error)
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records the passes of every session in m.
func WithMetrics(m *driver.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMirror mirrors every session through mirrors.
func WithMirror(mirrors MirrorFactory) Option {
	return func(s *Service) { s.newMirror = mirrors }
}

// PublisherFactory returns the style publisher of a new session.
type PublisherFactory func(session string) Publisher

// WithPublisher publishes the styles of every applied view through the
// publisher the factory returns for its session.
func WithPublisher(publishers PublisherFactory) Option {
	return func(s *Service) { s.newPublisher = publishers }
}

type entry struct {
	session   *document.Session
	mirror    Mirror
	publisher Publisher
	stop      context.CancelFunc
	done      chan struct{}

	mu       sync.Mutex
	outcomes map[string]ApplyResult
}

// Service keeps the named sessions of the inspection server. Each session
// runs its own driver loop until it is deleted or the service is closed.
type Service struct {
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	sessions map[string]*entry

	cfg          driver.Config
	logger       *zap.Logger
	metrics      *driver.Metrics
	newMirror    MirrorFactory
	newPublisher PublisherFactory
}

// NewService creates an empty service.
func NewService(cfg driver.Config, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		ctx:      ctx,
		cancel:   cancel,
		sessions: map[string]*entry{},
		cfg:      cfg,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary describes a session.
type Summary struct {
	Name   string             `json:"name"`
	Passes int                `json:"passes"`
	Last   *driver.PassReport `json:"last,omitempty"`
}

// List returns a summary of every session, ordered by name.
func (s *Service) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.sessions))
	for _, name := range slices.Sorted(maps.Keys(s.sessions)) {
		d := s.sessions[name].session.Driver()
		sum := Summary{Name: name, Passes: len(d.History())}
		if last, ok := d.Last(); ok {
			sum.Last = &last
		}
		out = append(out, sum)
	}
	return out
}

// Get returns the named session.
func (s *Service) Get(name string) (*document.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, name)
	}
	return e.session, nil
}

// getOrCreate returns the named session, creating it with view set when it
// does not exist yet so that its driver loop never runs without a view.
func (s *Service) getOrCreate(name string, view reconcile.View[document.Item]) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[name]; ok {
		return e
	}

	opts := []driver.Option{driver.WithLogger(s.logger), driver.WithHistorySize(s.cfg.HistorySize)}
	if s.metrics != nil {
		opts = append(opts, driver.WithMetrics(s.metrics))
	}
	e := &entry{
		session:  document.NewSession(name, opts...),
		done:     make(chan struct{}),
		outcomes: map[string]ApplyResult{},
	}
	e.session.SetView(view)
	if s.newMirror != nil {
		e.mirror = s.newMirror(name)
	}
	if s.newPublisher != nil {
		e.publisher = s.newPublisher(name)
	}
	if e.mirror != nil || e.publisher != nil {
		e.session.Driver().OnPass(func(report driver.PassReport, v reconcile.View[document.Item]) {
			s.afterPass(e, report, v)
		})
	}

	ctx, stop := context.WithCancel(s.ctx)
	e.stop = stop
	go func() {
		defer close(e.done)
		_ = e.session.Driver().Run(ctx, s.cfg.FrameInterval())
	}()

	s.sessions[name] = e
	s.logger.Info("Session created", zap.String("session", name))
	return e
}

// ApplyResult is the outcome of applying a view.
type ApplyResult struct {
	Report      driver.PassReport         `json:"report"`
	MirrorError string                    `json:"mirror_error,omitempty"`
	Styles      *stylesheet.PublishReport `json:"styles,omitempty"`
	StylesError string                    `json:"styles_error,omitempty"`
}

// Apply sets the view of the named session, creating it if needed, and
// reconciles it immediately. The result carries the mirror and style
// outcomes of that pass; their failures do not fail the apply.
func (s *Service) Apply(name string, view reconcile.View[document.Item]) (ApplyResult, error) {
	e := s.getOrCreate(name, view)

	report, err := e.session.Apply(view)
	if err != nil {
		return ApplyResult{}, err
	}

	e.mu.Lock()
	res := e.outcomes[report.ID]
	delete(e.outcomes, report.ID)
	e.mu.Unlock()
	res.Report = report
	return res, nil
}

// afterPass mirrors the view a successful pass consumed and publishes its
// styles. It runs under the session's driver lock, so passes reach the
// mirror and the publisher in the order they ran, whether they were forced
// by Apply or ticked by the driver loop. Outcomes of forced passes are kept
// for Apply to collect.
func (s *Service) afterPass(e *entry, report driver.PassReport, view reconcile.View[document.Item]) {
	l := s.logger.With(zap.String("session", report.Session), zap.String("pass_id", report.ID))
	var res ApplyResult

	if e.mirror != nil {
		if err := e.mirror.Sync(view); err != nil {
			l.Warn("Failed to mirror view", zap.Error(err))
			res.MirrorError = err.Error()
		}
	}
	if e.publisher != nil {
		styles, err := e.publisher.Publish(s.ctx, document.CollectStyles(view))
		if err != nil {
			l.Warn("Failed to publish styles", zap.Error(err))
			res.StylesError = err.Error()
		} else {
			res.Styles = &styles
		}
	}

	if report.Forced {
		e.mu.Lock()
		e.outcomes[report.ID] = res
		e.mu.Unlock()
	}
}

// Defer sets the view of the named session without reconciling it; the
// session's driver loop picks it up on its next frame.
func (s *Service) Defer(name string, view reconcile.View[document.Item]) {
	s.getOrCreate(name, view).session.SetView(view)
}

// Delete stops and unmounts the named session.
func (s *Service) Delete(name string) error {
	s.mu.Lock()
	e, ok := s.sessions[name]
	delete(s.sessions, name)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, name)
	}
	return s.close(name, e)
}

func (s *Service) close(name string, e *entry) error {
	e.stop()
	<-e.done

	errs := []error{e.session.Close()}
	if e.mirror != nil {
		errs = append(errs, e.mirror.Close())
	}
	s.logger.Info("Session deleted", zap.String("session", name))
	return errors.Join(errs...)
}

// Close deletes every session.
func (s *Service) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = map[string]*entry{}
	s.mu.Unlock()

	s.cancel()
	var errs []error
	for name, e := range sessions {
		errs = append(errs, s.close(name, e))
	}
	return errors.Join(errs...)
}
