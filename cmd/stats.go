package cmd

import (
	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	stTarget      string
	stGroupBy     []string
	stFilters     []string
	stRangeMethod string
	stIO          ioFlags
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Filter rows and summarize a target column, optionally per group",
	Long: `Filter rows by --filter values and summarize --target. Numeric targets get
count, sum, mean, median and mode; text targets get counts and percentages per
category. Age buckets such as "35 to 39" are converted to numbers first using
--range-method.`,
	Example: `  civtab stats removals.csv --target AgeGroup --group-by Region --filter Sex=FEMALE`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := analysis.ParseFilterSpec(stFilters)
		if err != nil {
			return err
		}
		t, numeric, err := loadTable(stIO.input(cmd, args[0]))
		if err != nil {
			return err
		}
		a, err := newAnalyzer(numeric, stRangeMethod)
		if err != nil {
			return err
		}
		t, warnings, err := derive(a, t, stIO.derive)
		if err != nil {
			return err
		}
		res, err := a.FilterAndStats(t, filters, stTarget, stGroupBy)
		if err != nil {
			return err
		}
		analysis.PrependWarnings(res, warnings)
		return emit(cmd, res, &stIO)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&stTarget, "target", "", "column to summarize")
	statsCmd.Flags().StringSliceVar(&stGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	statsCmd.Flags().StringArrayVar(&stFilters, "filter", nil, "keep rows where Col is one of v1,v2: Col=v1,v2 (repeatable)")
	statsCmd.Flags().StringVar(&stRangeMethod, "range-method", "", "range bucket conversion: midpoint|min|max (default from config)")
	_ = statsCmd.MarkFlagRequired("target")
	stIO.register(statsCmd)
}
