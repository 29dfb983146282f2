package reactive

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
)

type FlushMode int

const (
	// FlushSync runs the callback as soon as a dependency changes.
	FlushSync FlushMode = iota
	// FlushPost queues the callback on the job queue, so a burst of changes
	// costs one callback after the burst. There is no microtask tick: a Set
	// outside any batch flushes the queue when it returns, so two such writes
	// cost two callbacks. Wrap the writes in Batch to coalesce them.
	FlushPost
)

func (m FlushMode) String() string {
	if m == FlushPost {
		return "post"
	}
	return "sync"
}

type watchConfig struct {
	immediate bool
	flush     FlushMode
	deep      bool
}

type WatchOption func(*watchConfig)

// Immediate calls the callback once at setup, with the zero value as old value.
func Immediate() WatchOption {
	return func(c *watchConfig) {
		c.immediate = true
	}
}

func WithFlush(mode FlushMode) WatchOption {
	return func(c *watchConfig) {
		c.flush = mode
	}
}

// Deep makes the watcher depend on everything reachable from the getter's
// result, not only on what the getter itself read.
func Deep() WatchOption {
	return func(c *watchConfig) {
		c.deep = true
	}
}

type StopFunc func()

// WatchCallback receives the new and previous values. token stays current until
// the next callback for the same watcher starts or the watcher is stopped.
type WatchCallback[T any] func(newValue, oldValue T, token *WatchToken)

// WatchToken marks one callback invocation. Asynchronous work started by a
// callback should check IsCurrent, register cleanup with OnInvalidate or use
// Context before publishing results. A token is safe to use from any goroutine.
type WatchToken struct {
	gen     uint64
	current *atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	expired bool
	hooks   []func()
}

// IsCurrent reports whether no newer callback has started and the watcher is
// still running.
func (t *WatchToken) IsCurrent() bool {
	return t.current.Load() == t.gen
}

func (t *WatchToken) Expired() bool {
	return !t.IsCurrent()
}

// OnInvalidate registers fn to run when the token expires. If it already has,
// fn runs right away.
func (t *WatchToken) OnInvalidate(fn func()) {
	t.mu.Lock()
	if t.expired {
		t.mu.Unlock()
		fn()
		return
	}
	t.hooks = append(t.hooks, fn)
	t.mu.Unlock()
}

// Context is cancelled when the token expires.
func (t *WatchToken) Context() context.Context {
	return t.ctx
}

func (t *WatchToken) expire() {
	t.mu.Lock()
	if t.expired {
		t.mu.Unlock()
		return
	}
	t.expired = true
	hooks := t.hooks
	t.hooks = nil
	t.mu.Unlock()

	t.current.CompareAndSwap(t.gen, t.gen+1)
	t.cancel()
	for _, fn := range hooks {
		fn()
	}
}

type watcher[T any] struct {
	rs       *ReactiveSystem
	cb       WatchCallback[T]
	cfg      watchConfig
	effect   *EffectRunner
	oldValue T
	token    *WatchToken
	gen      atomic.Uint64
	stopped  bool
}

// Watch calls cb whenever the value produced by getter is invalidated. Unless
// Immediate is given, the first run only records the baseline.
func Watch[T any](rs *ReactiveSystem, getter func() T, cb WatchCallback[T], opts ...WatchOption) StopFunc {
	w := &watcher[T]{rs: rs, cb: cb}
	for _, opt := range opts {
		opt(&w.cfg)
	}

	scheduler := func(*EffectRunner) { w.RunJob() }
	if w.cfg.flush == FlushPost {
		scheduler = func(*EffectRunner) { rs.QueueJob(w) }
	}
	w.effect = CreateEffect(rs, func() (any, error) {
		v := getter()
		if w.cfg.deep {
			traverse(v, mapset.NewThreadUnsafeSet[any]())
		}
		return v, nil
	}, Lazy(), WithName("watch"), WithScheduler(scheduler))

	if w.cfg.immediate {
		w.RunJob()
	} else if v, err := w.effect.Run(); err == nil {
		w.oldValue, _ = v.(T)
	}
	return w.stop
}

// WatchSource watches a source that is either a getter, a function with no
// arguments and one result, or a value to traverse deeply: a proxy, a raw
// aggregate, which is wrapped with Reactive first, or a computed value. Any
// other source is logged and watches nothing.
func WatchSource(rs *ReactiveSystem, source any, cb WatchCallback[any], opts ...WatchOption) StopFunc {
	if getter, ok := source.(func() any); ok && getter != nil {
		return Watch(rs, getter, cb, opts...)
	}
	if fn := reflect.ValueOf(source); fn.Kind() == reflect.Func {
		if fn.IsNil() || fn.Type().NumIn() != 0 || fn.Type().NumOut() != 1 {
			rs.logger.Warn("reactive: watch source is not a getter", "type", fn.Type().String())
			return func() {}
		}
		return Watch(rs, func() any {
			return fn.Call(nil)[0].Interface()
		}, cb, opts...)
	}
	if isAggregate(source) {
		source = Reactive(rs, source.(Target))
	}
	switch source.(type) {
	case Proxy, valueNode:
	default:
		rs.logger.Warn("reactive: watch source is not reactive", "type", fmt.Sprintf("%T", source))
		return func() {}
	}
	return Watch(rs, func() any {
		traverse(source, mapset.NewThreadUnsafeSet[any]())
		return source
	}, cb, opts...)
}

// RunJob re-evaluates the getter, expires the previous token and calls the
// callback. The callback's own reads are not tracked.
func (w *watcher[T]) RunJob() {
	if w.stopped {
		return
	}
	v, err := w.effect.Run()
	if err != nil {
		w.rs.reportError(w.effect, err)
		return
	}
	newValue, _ := v.(T)
	token := w.nextToken()
	w.rs.Untracked(func() {
		w.cb(newValue, w.oldValue, token)
	})
	w.oldValue = newValue
}

func (w *watcher[T]) nextToken() *WatchToken {
	if w.token != nil {
		w.token.expire()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.token = &WatchToken{
		gen:     w.gen.Load(),
		current: &w.gen,
		ctx:     ctx,
		cancel:  cancel,
	}
	return w.token
}

func (w *watcher[T]) stop() {
	if w.stopped {
		return
	}
	w.stopped = true
	w.effect.Stop()
	if w.token != nil {
		w.token.expire()
	}
}

type valueNode interface {
	anyValue() any
}

// traverse reads everything reachable from v through proxies, so the running
// effect depends on all of it. seen holds raw aggregates already visited.
func traverse(v any, seen mapset.Set[any]) {
	if n, ok := v.(valueNode); ok {
		if !seen.Add(n) {
			return
		}
		traverse(n.anyValue(), seen)
		return
	}
	p, ok := v.(Proxy)
	if !ok || !seen.Add(p.Raw()) {
		return
	}
	switch p := p.(type) {
	case *ObjectProxy:
		for _, k := range p.Keys() {
			traverse(p.Get(k), seen)
		}
	case *ArrayProxy:
		for _, item := range p.Values() {
			traverse(item, seen)
		}
	case *MapProxy:
		for _, e := range p.Entries() {
			traverse(e.Key, seen)
			traverse(e.Value, seen)
		}
	case *SetProxy:
		for _, item := range p.Values() {
			traverse(item, seen)
		}
	}
}
