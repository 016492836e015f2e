package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/quarkc-go/quark"
	"github.com/quarkc-go/quark/internal/config"
	qerrors "github.com/quarkc-go/quark/internal/errors"
	"github.com/quarkc-go/quark/pkg/snapshot"
	"github.com/quarkc-go/quark/pkg/vdom"
)

type renderOptions struct {
	pretty bool
	debug  bool
	save   bool
	out    string
	name   string
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a tree description to HTML",
		Long: `Render a YAML or JSON tree description and print the resulting HTML.

With --out the HTML is stored as a snapshot instead, in a directory or
an S3 bucket. --save uses the snapshot target from quark.json.

Examples:
  quark render page.yaml
  quark render page.yaml --pretty
  quark render page.yaml --out snapshots
  quark render page.yaml --out s3://my-bucket/pages --name home.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromWorkingDir()
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.pretty, "pretty", "p", false, "Indent the HTML")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log development diagnostics")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the HTML in the configured snapshot target")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Snapshot target: a directory or s3://bucket/prefix")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Snapshot name (default: <file>.html)")

	return cmd
}

func runRender(ctx context.Context, w io.Writer, cfg *config.Config, file string, opts renderOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tree, err := loadTree(file)
	if err != nil {
		return err
	}

	var renderErrs []error
	app := quark.New(quark.Config{
		Logger:    newLogger(opts.debug || cfg.Render.Debug),
		Debug:     opts.debug || cfg.Render.Debug,
		Container: cfg.Render.Container,
		OnError:   func(err error) { renderErrs = append(renderErrs, err) },
	})
	app.Render(tree)
	if len(renderErrs) > 0 {
		return renderErrs[0]
	}

	html := app.HTML()
	if opts.pretty || cfg.Render.Pretty {
		html = prettyHTML(html)
	}

	target := opts.out
	if target == "" && opts.save {
		target = cfg.SnapshotTarget()
	}
	if target == "" {
		_, err := fmt.Fprintln(w, html)
		return err
	}

	store, err := snapshot.Open(target, snapshot.S3Options{
		Region:   cfg.Snapshot.Region,
		Endpoint: cfg.Snapshot.Endpoint,
	})
	if err != nil {
		return err
	}
	name := opts.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".html"
	}
	if err := store.Put(ctx, name, html); err != nil {
		return err
	}

	success(w, "Saved %s (%s, %s DOM writes)",
		store.Location(name),
		humanize.Bytes(uint64(len(html))),
		humanize.Comma(int64(app.Document().MutationCount())),
	)
	return nil
}

// loadTree decodes the description at path. Files that cannot be read
// are reported as Q140; malformed descriptions keep their decode code.
func loadTree(path string) (*vdom.VNode, error) {
	tree, err := vdom.DecodeFile(path)
	if err == nil {
		return tree, nil
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return nil, qerrors.New("Q140").
			WithDetail(pathErr.Error()).
			WithSuggestion("Check that " + path + " exists and is readable").
			Wrap(err)
	}
	return nil, err
}
