// Package reactive is a fine-grained dependency tracking and invalidation engine.
//
// Effects read tracked aggregates through proxies; every read is recorded in the
// system's DependencyStore against the running effect, and every observable write
// triggers exactly the effects that depend on it. Computed values and watchers are
// built on the same effect machinery.
//
// A ReactiveSystem is an isolated reactivity domain and is not safe for concurrent
// use: drive it from a single goroutine.
package reactive

import (
	"log/slog"
)

type OnErrorFunc func(from *EffectRunner, err error)

type ReactiveSystem struct {
	store *DependencyStore

	activeEffect *EffectRunner
	effectStack  []*EffectRunner

	shouldTrack bool
	pauseStack  []bool

	batchDepth int
	queue      *JobQueue

	proxies      map[proxyKey]Proxy
	nextEffectID uint64

	onError OnErrorFunc
	logger  *slog.Logger
	instr   Instrumentation
}

type SystemOption func(*ReactiveSystem)

// WithLogger sets the logger used for diagnostics such as writes to read-only
// proxies. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) SystemOption {
	return func(rs *ReactiveSystem) {
		if logger != nil {
			rs.logger = logger
		}
	}
}

// WithOnError sets the handler for errors returned by effect bodies that were
// run by the engine rather than by a manual Run call.
func WithOnError(fn OnErrorFunc) SystemOption {
	return func(rs *ReactiveSystem) {
		rs.onError = fn
	}
}

func WithInstrumentation(instr Instrumentation) SystemOption {
	return func(rs *ReactiveSystem) {
		if instr != nil {
			rs.instr = instr
		}
	}
}

func CreateReactiveSystem(opts ...SystemOption) *ReactiveSystem {
	rs := &ReactiveSystem{
		store:       NewDependencyStore(),
		shouldTrack: true,
		queue:       NewJobQueue(),
		proxies:     map[proxyKey]Proxy{},
		logger:      slog.Default(),
		instr:       noopInstrumentation{},
	}
	for _, opt := range opts {
		opt(rs)
	}
	rs.queue.onFlush = rs.instr.Flushed
	return rs
}

func (rs *ReactiveSystem) Store() *DependencyStore {
	return rs.store
}

// ActiveEffect returns the effect whose reads are currently being recorded.
func (rs *ReactiveSystem) ActiveEffect() *EffectRunner {
	return rs.activeEffect
}

// Track records that the active effect read key on target. It is a no-op when
// no effect is running or tracking is paused.
func (rs *ReactiveSystem) Track(target Target, key Key) {
	e := rs.activeEffect
	if e == nil || !rs.shouldTrack {
		return
	}
	ds, added := rs.store.record(target, key, e)
	if !added {
		return
	}
	e.deps = append(e.deps, ds)
	rs.instr.Tracked(target.TargetKind())
}

// IsTracking reports whether a read right now would be recorded.
func (rs *ReactiveSystem) IsTracking() bool {
	return rs.activeEffect != nil && rs.shouldTrack
}

func (rs *ReactiveSystem) PauseTracking() {
	rs.pauseStack = append(rs.pauseStack, rs.shouldTrack)
	rs.shouldTrack = false
}

func (rs *ReactiveSystem) ResumeTracking() {
	lastIdx := len(rs.pauseStack) - 1
	if lastIdx < 0 {
		rs.shouldTrack = true
		return
	}
	rs.shouldTrack = rs.pauseStack[lastIdx]
	rs.pauseStack = rs.pauseStack[:lastIdx]
}

// Untracked runs fn without recording any of its reads.
func (rs *ReactiveSystem) Untracked(fn func()) {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	fn()
}

func (rs *ReactiveSystem) StartBatch() {
	rs.batchDepth++
}

// EndBatch closes a batch opened by StartBatch. Closing the outermost batch
// flushes the job queue.
func (rs *ReactiveSystem) EndBatch() {
	if rs.batchDepth > 0 {
		rs.batchDepth--
	}
	if rs.batchDepth == 0 {
		rs.queue.Flush()
	}
}

// Batch runs cb as one mutation burst: deferred jobs scheduled while it runs are
// flushed once, after cb returns. If cb panics the jobs stay queued for the next
// flush.
func (rs *ReactiveSystem) Batch(cb func()) {
	rs.StartBatch()
	completed := false
	defer func() {
		if !completed {
			rs.batchDepth--
			return
		}
		rs.EndBatch()
	}()
	cb()
	completed = true
}

// QueueJob schedules j for the next flush. It reports false if j was already
// pending.
func (rs *ReactiveSystem) QueueJob(j Job) bool {
	return rs.queue.Schedule(j)
}

// Flush runs every pending job now, unless a flush is already in progress or a
// batch is open.
func (rs *ReactiveSystem) Flush() int {
	if rs.batchDepth > 0 {
		return 0
	}
	return rs.queue.Flush()
}

// Pending returns the number of queued jobs.
func (rs *ReactiveSystem) Pending() int {
	return rs.queue.Len()
}

func (rs *ReactiveSystem) reportError(e *EffectRunner, err error) {
	if rs.onError != nil {
		rs.onError(e, err)
		return
	}
	rs.logger.Error("reactive: effect failed", "effect", e.String(), "error", err)
}
