// Package cli implements the jsonapi command.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand creates the root command. Configuration files are looked
// up in dir.
func NewRootCommand(dir string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jsonapi",
		Short: "Inspect JSON:API documents",
		Long: `jsonapi checks JSON:API documents against a YAML type manifest and
converts them to other formats.

Settings may also be given in .jsonapi.yaml or JSONAPI_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("lang", "en", "Language of issue messages (en, ja)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewCheckCommand(dir))
	rootCmd.AddCommand(NewYAMLCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(w, "jsonapi version: ")
			fmt.Fprintln(w, Version)
			titleColor.Fprint(w, "Git commit: ")
			fmt.Fprintln(w, GitCommit)
			titleColor.Fprint(w, "Build date: ")
			fmt.Fprintln(w, BuildDate)
			titleColor.Fprint(w, "Go version: ")
			fmt.Fprintln(w, runtime.Version())
		},
	}
}

// Execute runs the root command and reports the error on stderr.
func Execute() error {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	rootCmd := NewRootCommand(dir)
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

func printError(w io.Writer, err error) {
	errorColor := color.New(color.FgRed, color.Bold)
	errorColor.Fprintf(w, "Error: %v\n", err)
}

// readInput reads the named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
