package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/jsonapi/i18n"
	"github.com/reoring/jsonapi/internal/manifest"
)

// ErrIssuesFound is returned by check --strict when a document would lose data.
var ErrIssuesFound = errors.New("document has issues")

// NewCheckCommand creates the check command
func NewCheckCommand(dir string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Report data a lenient decoder would drop",
		Long: `Decode a JSON:API document against a YAML type manifest and list every
resource and attribute that would be dropped. FILE may be "-" for stdin.

Examples:
  jsonapi check doc.json --manifest types.yaml
  jsonapi check doc.json --manifest types.yaml --type articles --strict
  cat doc.json | jsonapi check - --lang ja`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cmd, dir)
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg, args[0])
		},
	}

	cmd.Flags().StringP("manifest", "m", "", "Path to the YAML type manifest")
	cmd.Flags().StringP("type", "t", "", "Expected resource type; other types are reported as mismatches")
	cmd.Flags().Bool("strict", false, "Exit with an error when issues are found")

	return cmd
}

func runCheck(cmd *cobra.Command, cfg *Config, file string) error {
	if cfg.Manifest == "" {
		return errors.New("no manifest: pass --manifest or set manifest in .jsonapi.yaml")
	}
	m, err := manifest.LoadFile(cfg.Manifest)
	if err != nil {
		return err
	}
	b, err := readInput(cmd, file)
	if err != nil {
		return err
	}
	expect, _ := cmd.Flags().GetString("type")

	// Messages are rendered when issues are created.
	i18n.SetLanguage(cfg.Lang)
	defer i18n.SetLanguage("en")

	rep, err := m.Check(b, expect)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	printReport(cmd.OutOrStdout(), cfg, file, rep)
	if cfg.Strict && len(rep.Issues) > 0 {
		return ErrIssuesFound
	}
	return nil
}

func printReport(w io.Writer, cfg *Config, file string, rep manifest.Report) {
	okColor := color.New(color.FgGreen, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	pathColor := color.New(color.FgCyan)
	if cfg.NoColor {
		for _, c := range []*color.Color{okColor, warnColor, pathColor} {
			c.DisableColor()
		}
	}

	shape := "collection"
	if rep.Single {
		shape = "single"
	}
	summary := fmt.Sprintf("%s: %s document, %d resource(s), %d issue(s)", file, shape, rep.Resources, len(rep.Issues))
	if len(rep.Issues) == 0 {
		okColor.Fprintln(w, "✓ "+summary)
		return
	}
	warnColor.Fprintln(w, "! "+summary)
	for _, it := range rep.Issues {
		fmt.Fprint(w, "  ")
		pathColor.Fprint(w, it.Path)
		fmt.Fprintf(w, "  %s  %s", it.Code, it.Message)
		if it.Cause != nil {
			fmt.Fprintf(w, " (%v)", it.Cause)
		}
		fmt.Fprintln(w)
	}
}
