package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quarkc-go/quark"
	"github.com/quarkc-go/quark/internal/config"
	"github.com/quarkc-go/quark/internal/watch"
	"github.com/quarkc-go/quark/pkg/metrics"
	"github.com/quarkc-go/quark/pkg/tracing"
)

type serveOptions struct {
	port    int
	host    string
	metrics bool
	watch   bool
	debug   bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve a live view of a rendered tree",
		Long: `Render a tree description and start the devtools server.

The server shows the container's HTML and streams every DOM mutation
over a WebSocket. With --watch the description is re-rendered in place
whenever it changes, so the stream shows exactly what the reconciler
touched.

Examples:
  quark serve page.yaml
  quark serve page.yaml --watch --metrics
  quark serve page.yaml --port=8080 --host=0.0.0.0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromWorkingDir()
			if err != nil {
				return err
			}
			if opts.port > 0 {
				cfg.Devtools.Port = opts.port
			}
			if opts.host != "" {
				cfg.Devtools.Host = opts.host
			}
			if opts.metrics {
				cfg.Metrics.Enabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), cfg, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to run on (default from quark.json)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from quark.json)")
	cmd.Flags().BoolVarP(&opts.metrics, "metrics", "m", false, "Expose Prometheus metrics at /metrics")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-render when the file changes")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log development diagnostics")

	return cmd
}

// newServeApp builds the App the serve command renders into.
func newServeApp(cfg *config.Config, debug bool, out io.Writer) *quark.App {
	debug = debug || cfg.Render.Debug
	return quark.New(quark.Config{
		Logger:         newLogger(debug),
		Debug:          debug,
		Container:      cfg.Render.Container,
		Metrics:        cfg.Metrics.Enabled,
		MetricsOptions: []metrics.Option{metrics.WithNamespace(cfg.Metrics.Namespace)},
		Tracing:        cfg.Tracing.Enabled,
		TracingOptions: []tracing.Option{tracing.WithTracerName(cfg.Tracing.TracerName)},
		OnError:        func(err error) { warn(out, "%v", err) },
	})
}

func runServe(ctx context.Context, w io.Writer, cfg *config.Config, file string, opts serveOptions) error {
	tree, err := loadTree(file)
	if err != nil {
		return err
	}

	app := newServeApp(cfg, opts.debug, w)
	app.Render(tree)
	srv := app.Devtools()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() { loopErr <- app.Run(ctx) }()

	if opts.watch {
		watcher := watch.New(watch.Config{Paths: []string{file}})
		watcher.OnChange(func(changes []watch.Change) {
			rerender(ctx, w, app, file)
		})
		go watcher.Start(ctx)
		defer watcher.Stop()
	}

	addr := cfg.DevtoolsAddress()
	printBanner(w)
	fmt.Fprintln(w, "  serve")
	fmt.Fprintln(w)
	info(w, "Devtools:  http://%s", addr)
	if cfg.Metrics.Enabled {
		info(w, "Metrics:   http://%s/metrics", addr)
	}
	if opts.watch {
		info(w, "Watching:  %s", file)
	}
	fmt.Fprintln(w)

	err = srv.ListenAndServe(ctx, addr)
	cancel()
	<-loopErr
	return err
}

// rerender decodes file again and patches the container with it on the
// loop.
func rerender(ctx context.Context, w io.Writer, app *quark.App, file string) {
	tree, err := loadTree(file)
	if err != nil {
		warn(w, "%s: %v", file, err)
		return
	}
	var writes int
	err = app.Call(ctx, func() {
		before := app.Document().MutationCount()
		app.Renderer().Render(tree, app.Container())
		writes = app.Document().MutationCount() - before
	})
	if err != nil {
		return
	}
	success(w, "Re-rendered %s (%d DOM writes)", file, writes)
}
