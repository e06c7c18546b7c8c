package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"effectbin/domain/effectsize"
	"effectbin/internal/errors"
)

func TestProfileGroups_SummaryStats(t *testing.T) {
	table := effectsize.Table{
		{Outcome: 1, Group: "a"}, {Outcome: 2, Group: "a"},
		{Outcome: 3, Group: "a"}, {Outcome: 4, Group: "a"},
		{Outcome: 5, Group: "a"},
		{Outcome: 10, Group: "b"}, {Outcome: 20, Group: "b"},
		{Outcome: 30, Group: "b"},
	}

	profiles, err := ProfileGroups(table)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	a := profiles[0]
	assert.Equal(t, "a", a.Group)
	assert.Equal(t, 5, a.N)
	assert.InDelta(t, 3.0, a.Mean, 1e-12)
	assert.InDelta(t, 3.0, a.Median, 1e-12)
	assert.Equal(t, 1.0, a.Min)
	assert.Equal(t, 5.0, a.Max)
	assert.Zero(t, a.MissingRatio)

	b := profiles[1]
	assert.Equal(t, "b", b.Group)
	assert.InDelta(t, 20.0, b.Mean, 1e-12)
}

func TestProfileGroups_MissingRatio(t *testing.T) {
	table := effectsize.Table{
		{Outcome: 1, Group: "a"}, {Outcome: math.NaN(), Group: "a"},
		{Outcome: 3, Group: "a"}, {Outcome: math.NaN(), Group: "a"},
		{Outcome: 5, Group: "b"}, {Outcome: 6, Group: "b"},
	}

	profiles, err := ProfileGroups(table)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, profiles[0].MissingRatio, 1e-12)
	assert.Equal(t, 2, profiles[0].N)
}

func TestProfileGroups_SymmetricDataHasNoSkew(t *testing.T) {
	table := effectsize.Table{}
	for _, v := range []float64{1, 2, 3, 4, 5, 6, 7, 8, 9} {
		table = append(table, effectsize.Observation{Outcome: v, Group: "sym"})
		table = append(table, effectsize.Observation{Outcome: v, Group: "other"})
	}

	profiles, err := ProfileGroups(table)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, profiles[0].Skewness, 1e-9)
	assert.True(t, profiles[0].NormalityP >= 0 && profiles[0].NormalityP <= 1)
}

func TestProfileGroups_AllMissingGroup(t *testing.T) {
	table := effectsize.Table{
		{Outcome: 1, Group: "a"}, {Outcome: 2, Group: "a"},
		{Outcome: math.NaN(), Group: "b"},
	}

	_, err := ProfileGroups(table)
	require.Error(t, err)
	assert.True(t, errors.IsDegenerateSample(err))
}
