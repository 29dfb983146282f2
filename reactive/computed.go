package reactive

// computedKey is the synthetic key under which readers of a computed value are
// recorded.
const computedKey = "value"

// ComputedValue is a cached derived value. The getter runs lazily, at most once
// between invalidations; readers of Value depend on the node itself rather than
// on what the getter read.
type ComputedValue[T any] struct {
	rs     *ReactiveSystem
	getter func() T
	value  T
	dirty  bool
	effect *EffectRunner
}

func Computed[T any](rs *ReactiveSystem, getter func() T) *ComputedValue[T] {
	c := &ComputedValue[T]{
		rs:     rs,
		getter: getter,
		dirty:  true,
	}
	c.effect = CreateEffect(rs, func() (any, error) {
		c.value = c.getter()
		return nil, nil
	}, Lazy(), WithName("computed"), WithScheduler(func(*EffectRunner) {
		if c.dirty {
			return
		}
		c.dirty = true
		rs.Trigger(c, computedKey, OpSet, nil)
	}))
	return c
}

func (c *ComputedValue[T]) TargetKind() TargetKind { return KindRecord }

// Value returns the cached value, recomputing it first if a dependency changed.
// The caller's effect, if any, is subscribed to the node.
func (c *ComputedValue[T]) Value() T {
	c.refresh()
	c.rs.Track(c, computedKey)
	return c.value
}

// Peek is Value without subscribing the caller.
func (c *ComputedValue[T]) Peek() T {
	c.refresh()
	return c.value
}

// Dirty reports whether the next read will run the getter.
func (c *ComputedValue[T]) Dirty() bool { return c.dirty }

// Stop detaches the getter from its dependencies. The last computed value is
// kept and returned by later reads.
func (c *ComputedValue[T]) Stop() {
	c.effect.Stop()
}

func (c *ComputedValue[T]) refresh() {
	if !c.dirty {
		return
	}
	if c.effect.Stopped() && c.effect.Runs() > 0 {
		c.dirty = false
		return
	}
	c.effect.Run()
	c.dirty = false
}

// anyValue lets deep traversal read through a computed node of any type.
func (c *ComputedValue[T]) anyValue() any {
	return c.Value()
}
