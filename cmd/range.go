package cmd

import (
	"fmt"

	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/spf13/cobra"
)

var rangeMethod string

var rangeCmd = &cobra.Command{
	Use:     "range <text>...",
	Short:   "Convert range buckets like \"35 to 39\" to numbers",
	Example: `  civtab range "35 to 39" "80 and over" --method min`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := rangeMethod
		if name == "" {
			name = cfg.RangeMethod
		}
		method, err := analysis.ParseRangeMethod(name)
		if err != nil {
			return err
		}
		for _, text := range args {
			v := analysis.ParseRange(text, method)
			out := v.String()
			if v.IsNull() {
				out = "(null)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", text, out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().StringVar(&rangeMethod, "method", "", "conversion: midpoint|min|max (default from config)")
}
