package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/civtab/internal/analysis"
	"github.com/KaramelBytes/civtab/internal/recipe"
	"github.com/KaramelBytes/civtab/internal/render"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	rcpKind        string
	rcpInput       string
	rcpDesc        string
	rcpGroupBy     []string
	rcpFilters     []string
	rcpExtra       []string
	rcpTarget      string
	rcpValue       string
	rcpLabel       string
	rcpRangeMethod string
	rcpOutputs     []string
	rcpEncoding    string
	rcpDelimiter   string
	rcpThousands   string
	rcpDecimal     string
	rcpDerive      []string
	rcpSheetName   string
	rcpSheetIndex  int
	rcpForce       bool

	rcpRunIO ioFlags
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Save and re-run analyses as YAML recipes",
}

var recipeInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a recipe in the recipes directory",
	Example: `  civtab recipe init removals-by-region --kind count --input removals.csv \
    --group-by Region --filter Sex=MALE,FEMALE -o removals.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := analysis.ParseFilterSpec(rcpFilters)
		if err != nil {
			return err
		}
		extra, err := analysis.ParseFilterSpec(rcpExtra)
		if err != nil {
			return err
		}
		r := recipe.New(args[0], recipe.Kind(strings.ToLower(rcpKind)), cfg.RecipesDir)
		if _, err := os.Stat(r.Path()); err == nil && !rcpForce {
			return fmt.Errorf("recipe already exists at %s (use --force to replace it)", r.Path())
		}
		input := rcpInput
		if abs, err := filepath.Abs(input); err == nil {
			input = abs
		}
		r.Description = rcpDesc
		r.Input = recipe.Input{
			Path:       input,
			Encoding:   rcpEncoding,
			Delimiter:  rcpDelimiter,
			Thousands:  rcpThousands,
			Decimal:    rcpDecimal,
			SheetName:  rcpSheetName,
			SheetIndex: rcpSheetIndex,
		}
		r.Derive = rcpDerive
		r.GroupBy = rcpGroupBy
		r.Filters = filters
		r.ExtraSingle = extra
		r.Target = rcpTarget
		r.ValueColumn = rcpValue
		r.Label = rcpLabel
		r.RangeMethod = rcpRangeMethod
		r.Outputs = rcpOutputs
		if err := r.Save(); err != nil {
			return err
		}
		render.New(cmd.OutOrStdout()).Success("Recipe saved: %s", r.Path())
		return nil
	},
}

// recipeRows lists recipes as a printable table.
type recipeRows []*recipe.Recipe

func (rs recipeRows) Header() []string {
	return []string{"Name", "Kind", "Input", "Group by", "Updated", "Description"}
}

func (rs recipeRows) Records() [][]string {
	out := make([][]string, len(rs))
	for i, r := range rs {
		out[i] = []string{
			r.Name,
			string(r.Kind),
			r.Input.Path,
			strings.Join(r.GroupBy, ", "),
			r.UpdatedAt.Format("2006-01-02 15:04"),
			r.Description,
		}
	}
	return out
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := recipe.List(cfg.RecipesDir)
		if err != nil {
			return err
		}
		if len(rs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "(no recipes in %s)\n", cfg.RecipesDir)
			return nil
		}
		return render.New(cmd.OutOrStdout()).Result(recipeRows(rs), render.Options{MaxRows: -1})
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <name|path>",
	Short: "Print a recipe as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := recipe.Find(cfg.RecipesDir, args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode recipe: %w", err)
		}
		return enc.Close()
	},
}

var recipeRunCmd = &cobra.Command{
	Use:   "run <name|path>",
	Short: "Run a saved recipe and write its outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := recipe.Find(cfg.RecipesDir, args[0])
		if err != nil {
			return err
		}
		if err := r.Validate(); err != nil {
			return err
		}
		in := input{
			path:       r.InputPath(),
			encoding:   r.Input.Encoding,
			delimiter:  r.Input.Delimiter,
			decimal:    r.Input.Decimal,
			sheetName:  r.Input.SheetName,
			sheetIndex: r.Input.SheetIndex,
			keepText:   rcpRunIO.keepText,
		}
		if r.Input.Thousands != "" {
			in.thousands = &r.Input.Thousands
		}
		t, numeric, err := loadTable(in)
		if err != nil {
			return err
		}
		a, err := newAnalyzer(numeric, r.RangeMethod)
		if err != nil {
			return err
		}
		res, err := r.Run(a, t)
		if err != nil {
			return err
		}
		out := rcpRunIO
		if out.title == "" {
			out.title = r.Name
		}
		return emit(cmd, res, &out, r.Outputs...)
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeInitCmd, recipeListCmd, recipeShowCmd, recipeRunCmd)

	f := recipeInitCmd.Flags()
	f.StringVar(&rcpKind, "kind", "", "operation: count|stats|sum")
	f.StringVar(&rcpInput, "input", "", "input file (CSV, TSV or XLSX, optionally .gz/.zst)")
	f.StringVarP(&rcpDesc, "desc", "d", "", "recipe description")
	f.StringSliceVar(&rcpGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	f.StringArrayVar(&rcpFilters, "filter", nil, "filter dimension Col=v1,v2 (repeatable)")
	f.StringArrayVar(&rcpExtra, "extra", nil, "count: extra single count Col=v1,v2 (repeatable)")
	f.StringVar(&rcpTarget, "target", "", "stats: column to summarize")
	f.StringVar(&rcpValue, "value", "", "sum: numeric column to sum")
	f.StringVar(&rcpLabel, "label", "", "sum: result column name")
	f.StringVar(&rcpRangeMethod, "range-method", "", "range bucket conversion: midpoint|min|max")
	f.StringArrayVarP(&rcpOutputs, "output", "o", nil, "export written on every run (repeatable)")
	f.StringVar(&rcpEncoding, "encoding", "", "input text encoding")
	f.StringVar(&rcpDelimiter, "delimiter", "", "CSV delimiter")
	f.StringVar(&rcpThousands, "thousands", "", "thousands separator")
	f.StringVar(&rcpDecimal, "decimal", "", "decimal mark: '.'|'comma'")
	f.StringArrayVar(&rcpDerive, "derive", nil, "derived column name=ratio(num,den) or name=days(end,start) (repeatable)")
	f.StringVar(&rcpSheetName, "sheet-name", "", "XLSX: sheet name")
	f.IntVar(&rcpSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index")
	f.BoolVar(&rcpForce, "force", false, "replace an existing recipe")
	_ = recipeInitCmd.MarkFlagRequired("kind")
	_ = recipeInitCmd.MarkFlagRequired("input")

	rf := recipeRunCmd.Flags()
	rf.BoolVar(&rcpRunIO.keepText, "text", false, "keep every cell as text (preserves codes like 0012)")
	rf.StringVar(&rcpRunIO.format, "format", "table", "output format: table|markdown|json|yaml")
	rf.IntVar(&rcpRunIO.maxRows, "max-rows", 0, "maximum table rows to print (0 = config default, -1 = all)")
	rf.StringArrayVarP(&rcpRunIO.outputs, "output", "o", nil, "additional export file (repeatable)")
	rf.StringVar(&rcpRunIO.title, "title", "", "title printed above the table (default recipe name)")
}
