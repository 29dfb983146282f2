package reactive

import (
	"errors"
	"fmt"
)

var ErrEffectStopped = errors.New("reactive: effect stopped")

type (
	EffectFn  func() (any, error)
	ErrFn     func() error
	Scheduler func(e *EffectRunner)
)

// EffectRunner is a re-runnable tracked computation. Every run first removes the
// effect from all the dependency sets it joined last time, then records the reads
// of the new run, so dependencies behind branches that were not taken are dropped.
type EffectRunner struct {
	rs        *ReactiveSystem
	id        uint64
	name      string
	fn        EffectFn
	deps      []*DependencySet
	scheduler Scheduler
	lazy      bool
	stopped   bool
	runs      int
}

type EffectOption func(*EffectRunner)

// Lazy skips the initial run; the caller runs the effect when it wants a value.
func Lazy() EffectOption {
	return func(e *EffectRunner) {
		e.lazy = true
	}
}

// WithScheduler hands triggered re-runs to s instead of running them inline.
func WithScheduler(s Scheduler) EffectOption {
	return func(e *EffectRunner) {
		e.scheduler = s
	}
}

// Deferred queues triggered re-runs on the system's job queue, so any number of
// invalidations inside one batch cost a single run.
func Deferred() EffectOption {
	return func(e *EffectRunner) {
		e.scheduler = func(e *EffectRunner) {
			e.rs.QueueJob(e)
		}
	}
}

func WithName(name string) EffectOption {
	return func(e *EffectRunner) {
		e.name = name
	}
}

func CreateEffect(rs *ReactiveSystem, fn EffectFn, opts ...EffectOption) *EffectRunner {
	rs.nextEffectID++
	e := &EffectRunner{
		rs: rs,
		id: rs.nextEffectID,
		fn: fn,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.lazy {
		e.dispatch()
	}
	return e
}

// Effect creates an effect from a body that only reports an error.
func Effect(rs *ReactiveSystem, fn ErrFn, opts ...EffectOption) *EffectRunner {
	return CreateEffect(rs, func() (any, error) {
		return nil, fn()
	}, opts...)
}

func (e *EffectRunner) ID() uint64 { return e.id }

func (e *EffectRunner) Name() string { return e.name }

// Runs returns how many times the body has executed while tracked.
func (e *EffectRunner) Runs() int { return e.runs }

func (e *EffectRunner) Stopped() bool { return e.stopped }

// DepCount returns the number of dependency sets the effect currently belongs to.
func (e *EffectRunner) DepCount() int { return len(e.deps) }

func (e *EffectRunner) String() string {
	if e.name != "" {
		return fmt.Sprintf("%s#%d", e.name, e.id)
	}
	return fmt.Sprintf("effect#%d", e.id)
}

// Run executes the body with this effect active and returns what the body
// returned. Nested runs are stack disciplined: when Run returns, the effect that
// was active before it is active again, even if the body panicked.
func (e *EffectRunner) Run() (any, error) {
	rs := e.rs
	if e.stopped {
		var (
			v   any
			err error
		)
		rs.Untracked(func() {
			v, err = e.fn()
		})
		return v, errors.Join(ErrEffectStopped, err)
	}

	e.cleanup()

	rs.effectStack = append(rs.effectStack, e)
	rs.activeEffect = e
	rs.pauseStack = append(rs.pauseStack, rs.shouldTrack)
	rs.shouldTrack = true
	defer func() {
		rs.ResumeTracking()
		rs.effectStack = rs.effectStack[:len(rs.effectStack)-1]
		if n := len(rs.effectStack); n > 0 {
			rs.activeEffect = rs.effectStack[n-1]
		} else {
			rs.activeEffect = nil
		}
		// stopped from inside its own body: drop what the rest of the body tracked
		if e.stopped {
			e.cleanup()
		}
	}()

	v, err := e.fn()
	e.runs++
	rs.instr.EffectRan(e, err)
	return v, err
}

// RunJob lets a deferred effect sit on a JobQueue.
func (e *EffectRunner) RunJob() {
	e.dispatch()
}

// Stop detaches the effect from every dependency set. It is never triggered
// again; a manual Run still executes the body, untracked, and reports
// ErrEffectStopped.
func (e *EffectRunner) Stop() {
	if e.stopped {
		return
	}
	e.cleanup()
	e.stopped = true
}

func (e *EffectRunner) dispatch() {
	if e.stopped {
		return
	}
	if _, err := e.Run(); err != nil {
		e.rs.reportError(e, err)
	}
}

func (e *EffectRunner) cleanup() {
	for i, ds := range e.deps {
		ds.remove(e)
		e.deps[i] = nil
	}
	e.deps = e.deps[:0]
}
