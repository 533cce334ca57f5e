// Command kdebug is the interactive proof-tree debugger: it spawns the
// engine command given as its positional arguments, drives it through the
// wire protocol, and lets the user walk the proof tree it builds.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/virgil-serbanuta/kdebug/internal/config"
	"github.com/virgil-serbanuta/kdebug/internal/engine"
	"github.com/virgil-serbanuta/kdebug/internal/ui"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kdebug -- <engine command> [engine args...]",
		Short:         "Drive a symbolic proof engine and explore its proof tree",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	opts := config.Bind(rootCmd.Flags())
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(args, opts)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "kdebug: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string, opts *config.Options) error {
	level, err := opts.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	eng, err := engine.Start(engine.Options{
		Argv:         argv,
		MaxWidth:     opts.SVGMaxWidth,
		DebugLogPath: opts.DebugLogPath,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	nav := ui.NewNavigator(eng.Tree())
	eng.Tree().AddChangeListener(nav)

	keys := bufio.NewReader(os.Stdin)
	for eng.IsRunning() && !nav.Quit() {
		ui.Render(os.Stdout, eng.Tree(), nav)

		key, err := ui.ReadKey(keys)
		if err != nil {
			break
		}
		if key == ui.KeyRight && nav.Focus() == ui.FocusKonfig {
			eng.RequestKonfig(nav.Selected())
			continue
		}
		nav.Handle(key)
	}

	eng.Shutdown()

	for _, msg := range eng.Errors() {
		fmt.Fprintln(os.Stderr, msg)
	}
	fmt.Fprintf(os.Stderr, "kdebug: debug log at %s\n", eng.DebugLogPath())

	if code := eng.ProcessExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}
