package cmd

import (
	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	cntGroupBy []string
	cntFilters []string
	cntExtra   []string
	cntIO      ioFlags
)

var countCmd = &cobra.Command{
	Use:   "count <file>",
	Short: "Count rows per group for every combination of filter values",
	Long: `Count rows per group for every combination of the --filter values. Each
combination becomes one column labelled Col1_v1_Col2_v2; --extra adds one column
per single Col=value pair. Groups missing from a column are reported as 0.`,
	Example: `  civtab count removals.csv --group-by Region \
    --filter Sex=MALE,FEMALE --filter RemovalType=RECOVERED,DIED \
    --extra AgeGroup=0-4 -o counts.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := analysis.ParseFilterSpec(cntFilters)
		if err != nil {
			return err
		}
		extra, err := analysis.ParseFilterSpec(cntExtra)
		if err != nil {
			return err
		}
		t, numeric, err := loadTable(cntIO.input(cmd, args[0]))
		if err != nil {
			return err
		}
		a, err := newAnalyzer(numeric, "")
		if err != nil {
			return err
		}
		t, warnings, err := derive(a, t, cntIO.derive)
		if err != nil {
			return err
		}
		res, err := a.CountByFilters(t, cntGroupBy, filters, extra)
		if err != nil {
			return err
		}
		analysis.PrependWarnings(res, warnings)
		return emit(cmd, res, &cntIO)
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
	countCmd.Flags().StringSliceVar(&cntGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	countCmd.Flags().StringArrayVar(&cntFilters, "filter", nil, "filter dimension Col=v1,v2 (repeatable; combinations are counted)")
	countCmd.Flags().StringArrayVar(&cntExtra, "extra", nil, "extra single count Col=v1,v2 (repeatable; one column per value)")
	cntIO.register(countCmd)
}
