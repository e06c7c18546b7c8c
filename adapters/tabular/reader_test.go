package tabular

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"effectbin/internal/errors"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReader_CSV(t *testing.T) {
	path := writeCSV(t, "score,arm,extra\n1.5,treatment,x\n2,control,y\n3.25,treatment,z\n")

	table, err := NewReader(path, "score", "arm").Read()
	require.NoError(t, err)
	require.Len(t, table, 3)

	assert.Equal(t, 1.5, table[0].Outcome)
	assert.Equal(t, "treatment", table[0].Group)
	assert.Equal(t, "control", table[1].Group)
	assert.Equal(t, 3.25, table[2].Outcome)
}

func TestReader_BlankAndNonNumericBecomeMissing(t *testing.T) {
	path := writeCSV(t, "score,arm\n1,a\n,a\nn/a,b\n4,b\n")

	table, err := NewReader(path, "score", "arm").Read()
	require.NoError(t, err)
	require.Len(t, table, 4)

	assert.True(t, math.IsNaN(table[1].Outcome))
	assert.True(t, math.IsNaN(table[2].Outcome))
	assert.Equal(t, "b", table[2].Group)
}

func TestReader_MissingOutcomeColumn(t *testing.T) {
	path := writeCSV(t, "value,arm\n1,a\n2,b\n")

	_, err := NewReader(path, "score", "arm").Read()
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestReader_NonNumericOutcomeColumn(t *testing.T) {
	path := writeCSV(t, "score,arm\nhigh,a\nlow,b\nmid,a\n")

	_, err := NewReader(path, "score", "arm").Read()
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestReader_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "score,arm\n")

	_, err := NewReader(path, "score", "arm").Read()
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
}

func TestReader_FileNotFound(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.csv"), "score", "arm").Read()
	require.Error(t, err)
}

func TestReader_RaggedRowsSkipped(t *testing.T) {
	path := writeCSV(t, "score,arm\n1,a\n2\n3,b\n")

	table, err := NewReader(path, "score", "arm").Read()
	require.NoError(t, err)
	// The short row lacks the group column and is skipped.
	require.Len(t, table, 2)
	assert.Equal(t, "a", table[0].Group)
	assert.Equal(t, "b", table[1].Group)
}
