package reconcile

import "fmt"

// Stats counts the mutating adapter calls of one or more passes.
type Stats struct {
	Creates int `json:"creates"`
	Updates int `json:"updates"`
	Removes int `json:"removes"`
	// Inserts counts Append, InsertBefore and InsertAfter ops.
	Inserts int `json:"inserts"`
	Swaps   int `json:"swaps"`
}

// Total returns the number of mutating calls.
func (s Stats) Total() int {
	return s.Creates + s.Updates + s.Removes + s.Inserts + s.Swaps
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Creates += o.Creates
	s.Updates += o.Updates
	s.Removes += o.Removes
	s.Inserts += o.Inserts
	s.Swaps += o.Swaps
}

// WithStats returns an adapter that counts calls into s before forwarding
// them to a. Failed calls are counted too.
func WithStats[M, V, S any](a Adapter[M, V, S], s *Stats) Adapter[M, V, S] {
	return &statsAdapter[M, V, S]{Adapter: a, stats: s}
}

type statsAdapter[M, V, S any] struct {
	Adapter[M, V, S]
	stats *Stats
}

func (a *statsAdapter[M, V, S]) Create(next V) (S, error) {
	a.stats.Creates++
	return a.Adapter.Create(next)
}

func (a *statsAdapter[M, V, S]) Update(old *S, next V) error {
	a.stats.Updates++
	return a.Adapter.Update(old, next)
}

func (a *statsAdapter[M, V, S]) Insert(op InsertOp[M]) error {
	if _, ok := op.(Swap[M]); ok {
		a.stats.Swaps++
	} else {
		a.stats.Inserts++
	}
	return a.Adapter.Insert(op)
}

func (a *statsAdapter[M, V, S]) Remove(meta M) error {
	a.stats.Removes++
	return a.Adapter.Remove(meta)
}

// Call describes one mutating adapter call.
type Call struct {
	Method string `json:"method"`
	Detail string `json:"detail"`
	Err    error  `json:"-"`
}

func (c Call) String() string {
	if c.Err != nil {
		return fmt.Sprintf("%s %s: %v", c.Method, c.Detail, c.Err)
	}
	return c.Method + " " + c.Detail
}

// WithTrace returns an adapter that reports every mutating call to fn after
// forwarding it to a.
func WithTrace[M, V, S any](a Adapter[M, V, S], fn func(Call)) Adapter[M, V, S] {
	return &traceAdapter[M, V, S]{Adapter: a, fn: fn}
}

type traceAdapter[M, V, S any] struct {
	Adapter[M, V, S]
	fn func(Call)
}

func (a *traceAdapter[M, V, S]) Create(next V) (S, error) {
	live, err := a.Adapter.Create(next)
	detail := fmt.Sprintf("%v", next)
	if err == nil {
		detail = fmt.Sprintf("%v as %v", next, a.Adapter.Meta(live))
	}
	a.fn(Call{Method: "create", Detail: detail, Err: err})
	return live, err
}

func (a *traceAdapter[M, V, S]) Update(old *S, next V) error {
	meta := a.Adapter.Meta(*old)
	err := a.Adapter.Update(old, next)
	a.fn(Call{Method: "update", Detail: fmt.Sprintf("%v to %v", meta, next), Err: err})
	return err
}

func (a *traceAdapter[M, V, S]) Insert(op InsertOp[M]) error {
	err := a.Adapter.Insert(op)
	method := "insert"
	if _, ok := op.(Swap[M]); ok {
		method = "swap"
	}
	a.fn(Call{Method: method, Detail: op.String(), Err: err})
	return err
}

func (a *traceAdapter[M, V, S]) Remove(meta M) error {
	err := a.Adapter.Remove(meta)
	a.fn(Call{Method: "remove", Detail: fmt.Sprintf("%v", meta), Err: err})
	return err
}
