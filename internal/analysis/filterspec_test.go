package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFilterSpec(t *testing.T) {
	spec, err := ParseFilterSpec([]string{"RemovalType=RECOVERED,DIED", "Sex=MALE", " Sex = FEMALE "})
	require.NoError(t, err)
	require.Len(t, spec, 2)
	assert.Equal(t, []string{"RemovalType", "Sex"}, spec.Columns())
	assert.Equal(t, []string{"MALE", "FEMALE"}, spec[1].Values)
	assert.Equal(t, "RemovalType=RECOVERED,DIED; Sex=MALE,FEMALE", spec.String())

	_, err = ParseDimension("Sex")
	assert.Error(t, err)
	_, err = ParseDimension("Sex=")
	assert.ErrorIs(t, err, ErrEmptyFilter)
}

func TestParseDimensionQuotedValues(t *testing.T) {
	d, err := ParseDimension(`Municipality="Manila, City of", Quezon City`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Manila, City of", "Quezon City"}, d.Values)

	a, _ := newTestAnalyzer(DefaultOptions())
	tbl := mustTable(t, []string{"Municipality"}, []string{"Manila, City of"}, []string{"Manila"})
	spec, err := ParseFilterSpec([]string{`Municipality="Manila, City of"`})
	require.NoError(t, err)
	out, _, err := a.Filter(tbl, spec)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())

	_, err = ParseDimension(`Municipality="Manila, City of`)
	assert.Error(t, err)
}

func TestCombinationsOrder(t *testing.T) {
	spec := FilterSpec{
		{Column: "A", Values: []string{"x", "y"}},
		{Column: "B", Values: []string{"1", "2", "3"}},
	}
	combos := spec.Combinations()
	require.Len(t, combos, 6)
	labels := make([]string, len(combos))
	for i, c := range combos {
		labels[i] = c.Label
	}
	assert.Equal(t, []string{"A_x_B_1", "A_x_B_2", "A_x_B_3", "A_y_B_1", "A_y_B_2", "A_y_B_3"}, labels)
	assert.Equal(t, []string{"y", "2"}, combos[4].Values)
	assert.Nil(t, FilterSpec(nil).Combinations())
}

func TestFilterSpecYAMLKeepsOrder(t *testing.T) {
	var doc struct {
		Filters FilterSpec `yaml:"filters"`
	}
	src := "filters:\n  Zeta: [RECOVERED, DIED]\n  Alpha: 2022\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	require.Len(t, doc.Filters, 2)
	assert.Equal(t, "Zeta", doc.Filters[0].Column)
	assert.Equal(t, []string{"2022"}, doc.Filters[1].Values)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Zeta: [RECOVERED, DIED]")
	assert.Less(t, strings.Index(text, "Zeta"), strings.Index(text, "Alpha"))

	var bad struct {
		Filters FilterSpec `yaml:"filters"`
	}
	assert.Error(t, yaml.Unmarshal([]byte("filters: [a, b]\n"), &bad))
}
