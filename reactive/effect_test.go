package reactive_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/reactivity/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSystem(t *testing.T) *reactive.ReactiveSystem {
	t.Helper()
	return reactive.CreateReactiveSystem(reactive.WithOnError(func(from *reactive.EffectRunner, err error) {
		assert.FailNow(t, err.Error(), "from %s", from)
	}))
}

func newObject(rs *reactive.ReactiveSystem, fields map[string]any) (*reactive.Object, *reactive.ObjectProxy) {
	raw := reactive.NewObject(fields)
	return raw, reactive.ReactiveObject(rs, raw)
}

// should run once on creation and again when a read field changes
func TestEffectRerunsOnChange(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"text": "hello"})

	var seen []any
	reactive.Effect(rs, func() error {
		seen = append(seen, state.Get("text"))
		return nil
	})
	state.Set("text", "world")

	assert.Equal(t, []any{"hello", "world"}, seen)
}

// should not re-run when the written value is unchanged
func TestEffectSkipsUnchangedWrite(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"n": 1})

	e := reactive.Effect(rs, func() error {
		state.Get("n")
		return nil
	})
	state.Set("n", 1)

	assert.Equal(t, 1, e.Runs())
}

// should drop dependencies behind branches that are no longer taken
func TestEffectBranchPruning(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"ok": true, "text": "hello"})

	var text any
	e := reactive.Effect(rs, func() error {
		if state.Get("ok").(bool) {
			text = state.Get("text")
		} else {
			text = "not"
		}
		return nil
	})
	assert.Equal(t, 2, e.DepCount())

	state.Set("ok", false)
	assert.Equal(t, "not", text)
	assert.Equal(t, 2, e.Runs())
	assert.Equal(t, 1, e.DepCount())

	state.Set("text", "ignored")
	assert.Equal(t, 2, e.Runs())
}

// should restore the outer effect after a nested effect runs
func TestNestedEffects(t *testing.T) {
	rs := newSystem(t)
	raw, state := newObject(rs, map[string]any{"foo": true, "bar": true})

	outerRuns, innerRuns := 0, 0
	outer := reactive.Effect(rs, func() error {
		outerRuns++
		reactive.Effect(rs, func() error {
			innerRuns++
			state.Get("bar")
			return nil
		})
		state.Get("foo")
		return nil
	})
	assert.Equal(t, 1, outerRuns)
	assert.Equal(t, 1, innerRuns)

	fooDeps := rs.Store().EffectsFor(raw, "foo")
	require.Equal(t, 1, fooDeps.Len())
	assert.True(t, fooDeps.Has(outer))

	state.Set("bar", false)
	assert.Equal(t, 1, outerRuns)
	assert.Equal(t, 2, innerRuns)

	state.Set("foo", false)
	assert.Equal(t, 2, outerRuns)
	assert.Equal(t, 3, innerRuns)
	assert.Nil(t, rs.ActiveEffect())
}

// should not re-trigger itself when writing what it reads
func TestEffectDoesNotRetriggerItself(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"count": 0})

	e := reactive.Effect(rs, func() error {
		state.Set("count", state.Get("count").(int)+1)
		return nil
	})

	assert.Equal(t, 1, e.Runs())
	assert.Equal(t, 1, state.Get("count"))
}

// should hand re-runs to the scheduler
func TestEffectScheduler(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"n": 1})

	var scheduled []*reactive.EffectRunner
	e := reactive.Effect(rs, func() error {
		state.Get("n")
		return nil
	}, reactive.WithScheduler(func(e *reactive.EffectRunner) {
		scheduled = append(scheduled, e)
	}))

	state.Set("n", 2)
	require.Len(t, scheduled, 1)
	assert.Same(t, e, scheduled[0])
	assert.Equal(t, 1, e.Runs())

	_, err := scheduled[0].Run()
	require.NoError(t, err)
	assert.Equal(t, 2, e.Runs())
}

// should not run a lazy effect until asked
func TestLazyEffect(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"a": 1, "b": 2})

	e := reactive.CreateEffect(rs, func() (any, error) {
		return state.Get("a").(int) + state.Get("b").(int), nil
	}, reactive.Lazy())
	assert.Equal(t, 0, e.Runs())

	v, err := e.Run()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

// should stop reacting after Stop
func TestEffectStop(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"n": 1})

	calls := 0
	e := reactive.Effect(rs, func() error {
		calls++
		state.Get("n")
		return nil
	}, reactive.WithName("counter"))
	assert.Equal(t, "counter#1", e.String())

	e.Stop()
	assert.True(t, e.Stopped())
	assert.Equal(t, 0, e.DepCount())

	state.Set("n", 2)
	assert.Equal(t, 1, calls)

	_, err := e.Run()
	assert.ErrorIs(t, err, reactive.ErrEffectStopped)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, e.DepCount())
}

// should drop reads made after stopping itself mid-run
func TestEffectStopInsideBody(t *testing.T) {
	rs := newSystem(t)
	raw, state := newObject(rs, map[string]any{"n": 1, "m": 1})

	var e *reactive.EffectRunner
	e = reactive.Effect(rs, func() error {
		if state.Get("n").(int) > 1 {
			e.Stop()
		}
		state.Get("m")
		return nil
	})
	require.Equal(t, 2, e.DepCount())

	state.Set("n", 2)
	assert.True(t, e.Stopped())
	assert.Equal(t, 0, e.DepCount())
	assert.Zero(t, rs.Store().EffectsFor(raw, "m").Len())

	state.Set("m", 2)
	assert.Equal(t, 2, e.Runs())
}

// should report errors of triggered runs to the error handler
func TestEffectErrorsReachOnError(t *testing.T) {
	errBad := errors.New("bad value")
	var reported []error
	rs := reactive.CreateReactiveSystem(reactive.WithOnError(func(from *reactive.EffectRunner, err error) {
		reported = append(reported, err)
	}))
	_, state := newObject(rs, map[string]any{"v": "good"})

	reactive.Effect(rs, func() error {
		if state.Get("v") == "bad" {
			return errBad
		}
		return nil
	})
	assert.Empty(t, reported)

	state.Set("v", "bad")
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], errBad)
}

// should restore the effect stack when the body panics
func TestEffectPanicRestoresStack(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"n": 1})

	e := reactive.Effect(rs, func() error {
		state.Get("n")
		return nil
	}, reactive.Lazy())
	boom := reactive.Effect(rs, func() error {
		panic("boom")
	}, reactive.Lazy())

	reactive.Effect(rs, func() error {
		e.Run()
		assert.Panics(t, func() { boom.Run() })
		assert.Equal(t, "effect#3", rs.ActiveEffect().String())
		return nil
	})
	assert.Nil(t, rs.ActiveEffect())
	assert.False(t, rs.IsTracking())
}
