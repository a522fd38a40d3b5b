package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/civtab/internal/analysis"
	cfgpkg "github.com/KaramelBytes/civtab/internal/config"
)

const removalsCSV = `Region,Sex,RemovalType,AgeGroup
NCR,MALE,RECOVERED,35 to 39
NCR,FEMALE,DIED,40 to 44
CAR,MALE,DIED,35 to 39
CAR,MALE,RECOVERED,20 to 24
`

// isolate points HOME and the working directory at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(home))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

// resetFlags clears values and Changed state that persist between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCLI_CountPrintsAndExports(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "removals.csv", removalsCSV)
	outCSV := filepath.Join(home, "out", "counts.csv")

	stdout, _, err := run(t, "count", data, "--group-by", "Region",
		"--filter", "Sex=MALE,FEMALE", "--extra", "RemovalType=DIED", "-o", outCSV, "--title", "Removals")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removals")
	assert.Contains(t, stdout, "Sex_FEMALE")
	assert.Contains(t, stdout, "2 rows × 4 columns")
	assert.Contains(t, stdout, "✓ Wrote "+outCSV)

	b, err := os.ReadFile(outCSV)
	require.NoError(t, err)
	assert.Equal(t, "Region,Sex_MALE,Sex_FEMALE,RemovalType_DIED\nCAR,2,0,1\nNCR,1,1,1\n", string(b))
}

func TestCLI_CountMissingColumnWarnsOrFailsWhenStrict(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "removals.csv", removalsCSV)

	stdout, _, err := run(t, "count", data, "--filter", "Province=ABRA")
	require.NoError(t, err)
	assert.Contains(t, stdout, `⚠ Warning: column "Province" not found in dataset; filter ignored`)
	assert.Contains(t, stdout, "(all)")

	_, _, err = run(t, "--strict", "count", data, "--filter", "Province=ABRA")
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrColumnNotFound)
}

func TestCLI_StatsJSONConvertsRanges(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "removals.csv", removalsCSV)

	stdout, _, err := run(t, "stats", data, "--target", "AgeGroup", "--group-by", "Region", "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Kind           string `json:"kind"`
		RangeConverted bool   `json:"range_converted"`
		Groups         []struct {
			Key   []string `json:"key"`
			Stats struct {
				Count int     `json:"count"`
				Mean  float64 `json:"mean"`
			} `json:"stats"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "numeric", doc.Kind)
	assert.True(t, doc.RangeConverted)
	require.Len(t, doc.Groups, 2)
	assert.Equal(t, []string{"CAR"}, doc.Groups[0].Key)
	assert.Equal(t, 29.5, doc.Groups[0].Stats.Mean)
	assert.Equal(t, 39.5, doc.Groups[1].Stats.Mean)
}

func TestCLI_StatsRequiresTarget(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "removals.csv", removalsCSV)
	_, _, err := run(t, "stats", data)
	require.Error(t, err)
}

func TestCLI_SumMarkdown(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "tally.csv", "Candidate,Votes\nA,\"1,234\"\nB,7\nA,10\nB,n/a\n")

	stdout, _, err := run(t, "sum", data, "--group-by", "Candidate", "--value", "Votes", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[SUM SUMMARY]")
	assert.Contains(t, stdout, "| Candidate | total_Votes |")
	assert.Contains(t, stdout, "| A | 1244 |")
	assert.Contains(t, stdout, "| B | 7 |")
}

func TestCLI_Range(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t, "range", "35 to 39", "over 80", "n/a", "--method", "min")
	require.NoError(t, err)
	assert.Equal(t, "35 to 39\t35\nover 80\t80\nn/a\t(null)\n", stdout)

	_, _, err = run(t, "range", "1 to 2", "--method", "mean")
	assert.ErrorIs(t, err, analysis.ErrInvalidRangeMethod)
}

func TestCLI_RecipeLifecycle(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "removals.csv", removalsCSV)
	outCSV := filepath.Join(home, "exports", "by-region.csv")

	stdout, _, err := run(t, "recipe", "init", "by-region", "--kind", "count", "--input", data,
		"--group-by", "Region", "--filter", "Sex=MALE", "-o", outCSV, "-d", "males per region")
	require.NoError(t, err)
	recipePath := filepath.Join(home, ".civtab", "recipes", "by-region.yaml")
	assert.Contains(t, stdout, "✓ Recipe saved: "+recipePath)

	_, _, err = run(t, "recipe", "init", "by-region", "--kind", "count", "--input", data, "--filter", "Sex=MALE")
	require.Error(t, err, "existing recipe is not replaced without --force")

	stdout, _, err = run(t, "recipe", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "by-region")
	assert.Contains(t, stdout, "males per region")

	stdout, _, err = run(t, "recipe", "show", "by-region")
	require.NoError(t, err)
	assert.Contains(t, stdout, "kind: count")
	assert.Contains(t, stdout, "Sex: [MALE]")

	stdout, _, err = run(t, "recipe", "run", "by-region")
	require.NoError(t, err)
	assert.Contains(t, stdout, "by-region")
	b, err := os.ReadFile(outCSV)
	require.NoError(t, err)
	assert.Equal(t, "Region,Sex_MALE\nCAR,2\nNCR,1\n", string(b))
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)

	_, _, err := run(t, "config", "set", "range_method", "max")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, ".civtab", "config.yaml"))
	require.NoError(t, err)

	stdout, _, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "range_method: max\n")

	stdout, _, err = run(t, "range", "35 to 39")
	require.NoError(t, err)
	assert.Equal(t, "35 to 39\t39\n", stdout)

	_, _, err = run(t, "config", "set", "api_key", "x")
	assert.ErrorIs(t, err, cfgpkg.ErrUnknownKey)
}

func TestCLI_SumCommaDecimalAndDerive(t *testing.T) {
	home := isolate(t)
	data := writeFile(t, home, "ira.csv", "LGU;IRA;Income\nAbra;\"1.234,50\";\"2.469,00\"\nAbra;10,5;21\nBenguet;7;0\n")

	stdout, _, err := run(t, "sum", data, "--delimiter", ";", "--decimal", "comma",
		"--derive", "ira_share=ratio(IRA,Income)", "--group-by", "LGU", "--value", "ira_share", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "| Abra | 1 |")
	assert.Contains(t, stdout, "| Benguet | 0 |")
	assert.Contains(t, stdout, `1 row(s) of "ira_share" could not be computed`)

	stdout, _, err = run(t, "sum", data, "--delimiter", ";", "--decimal", "comma", "--group-by", "LGU", "--value", "IRA", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "| Abra | 1245 |")

	_, _, err = run(t, "sum", data, "--delimiter", ";", "--decimal", "comma", "--thousands", ",", "--value", "IRA")
	assert.ErrorContains(t, err, "thousands separator and decimal mark")
}
