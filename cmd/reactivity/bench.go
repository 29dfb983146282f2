package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/delaneyj/reactivity/metrics"
	"github.com/delaneyj/reactivity/reactive"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/urfave/cli/v3"
)

func runBench(ctx context.Context, cmd *cli.Command) error {
	sc, err := loadScenario(cmd.String(configKey))
	if err != nil {
		return err
	}
	if iters := cmd.Uint(itersKey); iters > 0 {
		sc.Iterations = int(iters)
	}

	start := time.Now()
	log.Printf("bench started, %d iterations per shape", sc.Iterations)
	defer func() {
		log.Printf("bench finished in %v", time.Since(start))
	}()
	return bench(os.Stdout, sc)
}

func bench(w io.Writer, sc *Scenario) error {
	reg := prometheus.NewRegistry()
	collector := metrics.New(metrics.WithRegistry(reg))

	tbl := table.NewWriter()
	tbl.SetTitle("Reactivity")
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, width := range sc.Widths {
		for _, height := range sc.Heights {
			tach := tachymeter.New(&tachymeter.Config{Size: sc.Iterations})

			rs := reactive.CreateReactiveSystem(
				reactive.WithInstrumentation(collector),
				reactive.WithOnError(func(from *reactive.EffectRunner, err error) {
					log.Panic(err)
				}),
			)
			src := reactive.ReactiveObject(rs, reactive.NewObject(map[string]any{"n": 1}))
			for i := 0; i < width; i++ {
				last := func() int {
					return src.Get("n").(int)
				}
				for j := 0; j < height; j++ {
					prev := last
					last = reactive.Computed(rs, func() int {
						return prev() + 1
					}).Value
				}

				read := last
				reactive.Effect(rs, func() error {
					read()
					return nil
				})
			}

			for i := 0; i < sc.Iterations; i++ {
				start := time.Now()
				src.Set("n", src.Get("n").(int)+1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRow(table.Row{
				fmt.Sprintf("propagate: %d * %d", width, height),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			})
		}
	}
	tbl.Render()

	return renderMetrics(w, reg)
}

// renderMetrics prints every gathered series as one row.
func renderMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"metric", "labels", "value"})
	for _, family := range families {
		for _, m := range family.GetMetric() {
			summary.Append([]string{
				family.GetName(),
				formatLabels(m.GetLabel()),
				formatValue(family.GetType(), m),
			})
		}
	}
	summary.Render()
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	labels := make([]string, 0, len(pairs))
	for _, p := range pairs {
		labels = append(labels, p.GetName()+"="+p.GetValue())
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}

func formatValue(typ dto.MetricType, m *dto.Metric) string {
	switch typ {
	case dto.MetricType_COUNTER:
		return humanize.Comma(int64(m.GetCounter().GetValue()))
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		count := h.GetSampleCount()
		if count == 0 {
			return "n=0"
		}
		return fmt.Sprintf("n=%s avg=%s",
			humanize.Comma(int64(count)),
			humanize.CommafWithDigits(h.GetSampleSum()/float64(count), 2),
		)
	default:
		return humanize.Ftoa(m.GetUntyped().GetValue())
	}
}
