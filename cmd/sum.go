package cmd

import (
	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	sumGroupBy []string
	sumValue   string
	sumLabel   string
	sumFilters []string
	sumIO      ioFlags
)

var sumCmd = &cobra.Command{
	Use:   "sum <file>",
	Short: "Sum a numeric column per group",
	Long: `Sum --value per group. Thousands separators are stripped and cells that are
not numbers are skipped and reported. The result column defaults to total_<value>.`,
	Example: `  civtab sum tally.csv --group-by Candidate --value Votes`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := analysis.ParseFilterSpec(sumFilters)
		if err != nil {
			return err
		}
		t, numeric, err := loadTable(sumIO.input(cmd, args[0]))
		if err != nil {
			return err
		}
		a, err := newAnalyzer(numeric, "")
		if err != nil {
			return err
		}
		t, warnings, err := derive(a, t, sumIO.derive)
		if err != nil {
			return err
		}
		if len(filters) > 0 {
			var fw []string
			if t, fw, err = a.Filter(t, filters); err != nil {
				return err
			}
			warnings = append(warnings, fw...)
		}
		res, err := a.SumBy(t, sumGroupBy, sumValue, sumLabel)
		if err != nil {
			return err
		}
		analysis.PrependWarnings(res, warnings)
		return emit(cmd, res, &sumIO)
	},
}

func init() {
	rootCmd.AddCommand(sumCmd)
	sumCmd.Flags().StringSliceVar(&sumGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	sumCmd.Flags().StringVar(&sumValue, "value", "", "numeric column to sum")
	sumCmd.Flags().StringVar(&sumLabel, "label", "", "result column name (default total_<value>)")
	sumCmd.Flags().StringArrayVar(&sumFilters, "filter", nil, "keep rows where Col is one of v1,v2: Col=v1,v2 (repeatable)")
	_ = sumCmd.MarkFlagRequired("value")
	sumIO.register(sumCmd)
}
