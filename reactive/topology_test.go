package reactive_test

import (
	"fmt"
	"testing"

	"github.com/delaneyj/reactivity/reactive"
	"github.com/stretchr/testify/assert"
)

func TestTopologyDropAbaUpdates(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"a": 2})

	//     A
	//   / |
	//  B  |
	//   \ |
	//     C
	//     |
	//     D
	b := reactive.Computed(rs, func() int {
		return state.Get("a").(int) - 1
	})
	c := reactive.Computed(rs, func() int {
		return state.Get("a").(int) + b.Value()
	})
	callCount := 0
	d := reactive.Computed(rs, func() string {
		callCount++
		return fmt.Sprintf("d: %d", c.Value())
	})

	assert.Equal(t, "d: 3", d.Value())
	assert.Equal(t, 1, callCount)

	state.Set("a", 4)
	assert.Equal(t, "d: 7", d.Value())
	assert.Equal(t, 2, callCount)
}

func TestShouldOnlyUpdateEveryComputedOnceDiamond(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"a": "a"})

	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	b := reactive.Computed(rs, func() string {
		return state.Get("a").(string)
	})
	c := reactive.Computed(rs, func() string {
		return state.Get("a").(string)
	})
	callCount := 0
	d := reactive.Computed(rs, func() string {
		callCount++
		return b.Value() + " " + c.Value()
	})

	assert.Equal(t, "a a", d.Value())
	assert.Equal(t, 1, callCount)
	callCount = 0

	state.Set("a", "aa")
	assert.Equal(t, "aa aa", d.Value())
	assert.Equal(t, 1, callCount)
}

func TestShouldOnlyUpdateEveryComputedOnceDiamondTail(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"a": "a"})

	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	//     |
	//     E
	b := reactive.Computed(rs, func() string {
		return state.Get("a").(string)
	})
	c := reactive.Computed(rs, func() string {
		return state.Get("a").(string)
	})
	d := reactive.Computed(rs, func() string {
		return b.Value() + " " + c.Value()
	})
	eCallCount := 0
	e := reactive.Computed(rs, func() string {
		eCallCount++
		return d.Value()
	})

	assert.Equal(t, "a a", e.Value())
	assert.Equal(t, 1, eCallCount)

	state.Set("a", "aa")
	assert.Equal(t, "aa aa", e.Value())
	assert.Equal(t, 2, eCallCount)
}

// should pause tracking
func TestShouldPauseTracking(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"src": 0})

	c := reactive.Computed(rs, func() int {
		rs.PauseTracking()
		value := state.Get("src").(int)
		rs.ResumeTracking()
		return value
	})
	assert.Equal(t, 0, c.Value())

	state.Set("src", 1)
	assert.Equal(t, 0, c.Value())
}

// should custom effect support batch
func TestShouldCustomEffectSupportBatch(t *testing.T) {
	rs := newSystem(t)
	_, state := newObject(rs, map[string]any{"a": 0, "b": 0})

	batchEffect := func(fn func() error) *reactive.EffectRunner {
		return reactive.Effect(rs, func() error {
			rs.StartBatch()
			defer rs.EndBatch()
			return fn()
		}, reactive.Deferred())
	}

	logs := []string{}
	aa := reactive.Computed(rs, func() int {
		logs = append(logs, "aa-0")
		if state.Get("a").(int) == 0 {
			state.Set("b", 1)
		}
		logs = append(logs, "aa-1")
		return 0
	})
	bb := reactive.Computed(rs, func() int {
		logs = append(logs, "bb")
		return state.Get("b").(int)
	})

	batchEffect(func() error {
		bb.Value()
		return nil
	})
	batchEffect(func() error {
		aa.Value()
		return nil
	})

	assert.Equal(t, []string{"bb", "aa-0", "aa-1", "bb"}, logs)
}
