package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/internal/wire"
)

// NewYAMLCommand creates the yaml command
func NewYAMLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "yaml FILE",
		Short: "Print the data member of a document as YAML",
		Long: `Print the data member of a JSON:API document as YAML. Other top-level
members are not printed. FILE may be "-" for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := wire.Parse(b)
			if err != nil {
				return fmt.Errorf("%s: %w: %w", args[0], jsonapi.ErrMalformedDocument, err)
			}
			if !doc.HasData {
				return fmt.Errorf("%s: %w", args[0], jsonapi.ErrUnsupportedDocumentShape)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(map[string]any{wire.MemberData: yamlValue(doc.Data)}); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

// yamlValue replaces JSON numbers with int64 or float64 so that they are
// emitted as YAML numbers rather than strings.
func yamlValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = yamlValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = yamlValue(x[i])
		}
		return out
	case wire.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}
	return v
}
