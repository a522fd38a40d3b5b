package analysis

import (
	"testing"

	"github.com/KaramelBytes/civtab/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDerivation(t *testing.T) {
	d, err := ParseDerivation(" vote_share = ratio( Votes , Total Votes ) ")
	require.NoError(t, err)
	assert.Equal(t, Derivation{Name: "vote_share", Op: Ratio, Args: [2]string{"Votes", "Total Votes"}}, d)
	assert.Equal(t, "vote_share=ratio(Votes,Total Votes)", d.String())

	_, err = ParseDerivation("x=sum(A,B)")
	assert.ErrorContains(t, err, "unknown op")
	_, err = ParseDerivation("ratio(A,B)")
	assert.Error(t, err)
}

func TestDeriveRatioAndDays(t *testing.T) {
	a, logs := newTestAnalyzer(DefaultOptions())
	tbl := mustTable(t, []string{"Project", "Income", "IRA", "Started", "Completed"},
		[]string{"Road", "1,000", "250", "2023-01-10", "2023-03-01"},
		[]string{"Bridge", "0", "5", "2023-02-01", "not yet"},
		[]string{"School", "", "7", "2023/05/01", "2023/05/02"},
	)
	derivs, err := ParseDerivations([]string{"ira_share=ratio(IRA,Income)", "duration_days=days(Completed,Started)"})
	require.NoError(t, err)

	out, warnings, err := a.Derive(tbl, derivs)
	require.NoError(t, err)
	assert.Equal(t, []string{"Project", "Income", "IRA", "Started", "Completed", "ira_share", "duration_days"}, out.Columns())
	assert.Equal(t, 5, len(tbl.Columns()), "source table is not modified")

	share, _ := out.Column("ira_share")
	assert.Equal(t, []table.Value{table.FloatValue(0.25), table.NullValue(), table.NullValue()}, share)
	days, _ := out.Column("duration_days")
	assert.Equal(t, []table.Value{table.IntValue(50), table.NullValue(), table.IntValue(1)}, days)

	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `"ira_share"`)
	assert.Contains(t, warnings[1], `"duration_days"`)
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestDeriveMissingColumn(t *testing.T) {
	a, _ := newTestAnalyzer(DefaultOptions())
	_, _, err := a.Derive(removals(t), []Derivation{{Name: "x", Op: Ratio, Args: [2]string{"Sex", "Votes"}}})
	require.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), `derive column "Votes" not found`)
}
