package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quarkc-go/quark"
	"github.com/quarkc-go/quark/internal/config"
	"github.com/quarkc-go/quark/pkg/vdom"
)

type row struct {
	id    int
	label string
}

// benchmark renders before, then measures the render of after(before).
type benchmark struct {
	name   string
	before func(n int) []row
	after  func(rows []row) []row
}

var benchmarks = []benchmark{
	{"create rows", func(int) []row { return nil }, nil},
	{"replace all rows", makeRows, func(rows []row) []row { return makeRowsFrom(len(rows), len(rows)) }},
	{"partial update", makeRows, func(rows []row) []row {
		out := append([]row(nil), rows...)
		for i := 0; i < len(out); i += 10 {
			out[i].label += " !!!"
		}
		return out
	}},
	{"swap rows", makeRows, func(rows []row) []row {
		out := append([]row(nil), rows...)
		if len(out) > 998 {
			out[1], out[998] = out[998], out[1]
		} else if len(out) > 1 {
			out[1], out[len(out)-1] = out[len(out)-1], out[1]
		}
		return out
	}},
	{"reverse rows", makeRows, func(rows []row) []row {
		out := make([]row, len(rows))
		for i, r := range rows {
			out[len(rows)-1-i] = r
		}
		return out
	}},
	{"remove row", makeRows, func(rows []row) []row {
		if len(rows) == 0 {
			return rows
		}
		mid := len(rows) / 2
		return append(append([]row(nil), rows[:mid]...), rows[mid+1:]...)
	}},
	{"append rows", makeRows, func(rows []row) []row {
		return append(append([]row(nil), rows...), makeRowsFrom(len(rows), len(rows))...)
	}},
	{"clear rows", makeRows, func([]row) []row { return nil }},
}

func makeRows(n int) []row { return makeRowsFrom(0, n) }

func makeRowsFrom(start, n int) []row {
	rows := make([]row, n)
	for i := range rows {
		id := start + i + 1
		rows[i] = row{id: id, label: "row " + strconv.Itoa(id)}
	}
	return rows
}

func rowsView(rows []row) *vdom.VNode {
	items := vdom.Range(rows, func(r row, _ int) *vdom.VNode {
		return vdom.Tr(vdom.Key(r.id),
			vdom.Td(vdom.Class("id"), strconv.Itoa(r.id)),
			vdom.Td(vdom.A(r.label)),
		)
	})
	return vdom.Table(vdom.Tbody(items))
}

type benchOptions struct {
	iterations int
	rows       int

	// verify compares every measured render with a fresh render of the
	// same rows.
	verify bool
}

type benchResult struct {
	name   string
	calc   *tachymeter.Metrics
	writes int
}

func benchCmd() *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the reconciler on keyed lists",
		Long: `Run keyed-list benchmarks against the in-memory DOM and print
latency percentiles and the number of DOM writes per operation.

Examples:
  quark bench
  quark bench --rows=10000 --iterations=20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromWorkingDir()
			if err != nil {
				return err
			}
			if opts.iterations == 0 {
				opts.iterations = cfg.Bench.Iterations
			}
			if opts.rows == 0 {
				opts.rows = cfg.Bench.Rows
			}
			results, err := runBench(opts)
			if err != nil {
				return err
			}
			printBench(cmd.OutOrStdout(), opts, results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.iterations, "iterations", "i", 0, "Samples per benchmark (default from quark.json)")
	cmd.Flags().IntVarP(&opts.rows, "rows", "r", 0, "Rows in the list (default from quark.json)")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "Check every result against a fresh render")

	return cmd
}

func runBench(opts benchOptions) ([]benchResult, error) {
	logger := slog.New(slog.DiscardHandler)
	results := make([]benchResult, 0, len(benchmarks))

	for _, b := range benchmarks {
		tach := tachymeter.New(&tachymeter.Config{Size: opts.iterations})
		writes := 0
		for i := 0; i < opts.iterations; i++ {
			app := quark.New(quark.Config{Logger: logger})
			before := b.before(opts.rows)
			after := makeRows(opts.rows)
			if b.after != nil {
				after = b.after(before)
			}
			app.Render(rowsView(before))

			count := app.Document().MutationCount()
			start := time.Now()
			app.Render(rowsView(after))
			tach.AddTime(time.Since(start))
			writes += app.Document().MutationCount() - count

			if opts.verify {
				fresh := quark.New(quark.Config{Logger: logger})
				fresh.Render(rowsView(after))
				if got, want := app.HTML(), fresh.HTML(); got != want {
					return nil, fmt.Errorf("%s: patched DOM differs from a fresh render", b.name)
				}
			}
		}
		result := benchResult{name: b.name, calc: tach.Calc()}
		if opts.iterations > 0 {
			result.writes = writes / opts.iterations
		}
		results = append(results, result)
	}
	return results, nil
}

func printBench(w io.Writer, opts benchOptions, results []benchResult) {
	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("quark: %s rows, %s iterations",
		humanize.Comma(int64(opts.rows)), humanize.Comma(int64(opts.iterations))))
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "dom writes"})
	for _, r := range results {
		tbl.AppendRow(table.Row{
			r.name,
			r.calc.Time.Avg,
			r.calc.Time.Min,
			r.calc.Time.P75,
			r.calc.Time.P99,
			r.calc.Time.Max,
			humanize.Comma(int64(r.writes)),
		})
	}
	tbl.Render()
}
