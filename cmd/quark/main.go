package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	qerrors "github.com/quarkc-go/quark/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
   ___  _   _  __ _ _ __| | __
  / _ \| | | |/ _' | '__| |/ /
 | (_) | |_| | (_| | |  |   <
  \__\_\\__,_|\__,_|_|  |_|\_\
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		qerrors.ColorsFor(os.Stderr)
		qerrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quark",
		Short: "Render and inspect quark component trees",
		Long: `quark renders component trees described in YAML or JSON into an
in-memory DOM.

  • render a description to HTML, on stdout or into a snapshot store
  • serve a live view of the DOM with a mutation stream
  • benchmark the reconciler on keyed lists`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(),
		benchCmd(),
		versionCmd(),
	)
	return rootCmd
}

// newLogger logs to stderr; debug lowers the level so development
// diagnostics show.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// colorful reports whether w is a terminal.
func colorful(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func paint(w io.Writer, code, s string) string {
	if !colorful(w) {
		return s
	}
	return code + s + "\033[0m"
}

// printBanner prints the quark ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint(w, "\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint(w, "\033[33m", "⚠"), fmt.Sprintf(format, args...))
}
