// Command korganize reorganizes a raw equation-application debug log into
// its nested Context/Entry structure and writes the result back out as
// text. It shares no runtime with the kdebug/engine wiring - the log file
// it reads is produced separately by the engine process, after the fact.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/virgil-serbanuta/kdebug/internal/eqlog"
)

func main() {
	var outputPath string

	rootCmd := &cobra.Command{
		Use:           "korganize <equation-log-file>",
		Short:         "Reorganize an equation-application debug log by context",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], outputPath)
		},
	}
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the reorganized log here instead of stdout")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "korganize: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string) error {
	contents, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	entries, err := eqlog.Parse(string(contents))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inputPath, err)
	}

	organized, err := eqlog.Organize(entries)
	if err != nil {
		return fmt.Errorf("organizing %s: %w", inputPath, err)
	}

	out := eqlog.WriteLog(organized)

	if outputPath == "" {
		_, err := fmt.Print(out)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}
