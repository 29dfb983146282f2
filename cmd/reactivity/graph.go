package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/delaneyj/reactivity/reactive"
	"github.com/urfave/cli/v3"
	"github.com/valyala/quicktemplate"
)

func runGraph(ctx context.Context, cmd *cli.Command) error {
	return graph(os.Stdout)
}

// graph builds a todo list with a computed remaining count, a title effect and
// a post-flush watch, mutates it and prints what the store recorded.
func graph(w io.Writer) error {
	var failed error
	rs := reactive.CreateReactiveSystem(reactive.WithOnError(func(from *reactive.EffectRunner, err error) {
		log.Printf("%s: %v", from, err)
		failed = err
	}))

	raw := reactive.FromGo(map[string]any{
		"todos": []any{
			map[string]any{"title": "write engine", "done": true},
			map[string]any{"title": "write docs", "done": false},
		},
	}).(*reactive.Object)
	todos := reactive.ReactiveObject(rs, raw).Get("todos").(*reactive.ArrayProxy)

	remaining := reactive.Computed(rs, func() int {
		n := 0
		for _, todo := range todos.Values() {
			if !todo.(*reactive.ObjectProxy).Get("done").(bool) {
				n++
			}
		}
		return n
	})

	var title string
	reactive.Effect(rs, func() error {
		title = fmt.Sprintf("%d of %d left", remaining.Value(), todos.Len())
		return nil
	}, reactive.WithName("title"))

	var events []string
	stop := reactive.Watch(rs, remaining.Value, func(newValue, oldValue int, _ *reactive.WatchToken) {
		events = append(events, fmt.Sprintf("remaining %d -> %d", oldValue, newValue))
	}, reactive.WithFlush(reactive.FlushPost))
	defer stop()

	todos.Push(reactive.NewObject(map[string]any{"title": "ship it", "done": false}))
	todos.At(1).(*reactive.ObjectProxy).Set("done", true)
	if failed != nil {
		return failed
	}

	writeGraph(w, title, events, rs.Store().Snapshot())
	return nil
}

func writeGraph(w io.Writer, title string, events []string, entries []reactive.StoreEntry) {
	qw := quicktemplate.AcquireWriter(w)
	defer quicktemplate.ReleaseWriter(qw)
	out := qw.N()

	out.S("title: ")
	out.S(title)
	out.S("\n")
	for _, event := range events {
		out.S("event: ")
		out.S(event)
		out.S("\n")
	}
	for _, entry := range entries {
		out.S("target#")
		out.DUL(entry.TargetSeq)
		out.S(" ")
		out.S(entry.Kind.String())
		out.S(" ")
		out.S(reactive.FormatKey(entry.Key))
		out.S(" <- ")
		for i, e := range entry.Effects {
			if i > 0 {
				out.S(", ")
			}
			out.S(e.String())
		}
		out.S("\n")
	}
}
