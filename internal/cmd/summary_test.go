package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summaryFixture = `3
Mazda,3,2018,60000000,img/mazda3.png
Renault,Logan,2009,35000000,img/logan.png
Kia,Picanto,2020,20000000,img/picanto.png
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vehicles.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("VEHICLE_SOURCE", "file")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000")

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSummary_PrintsTaxesAndAggregates(t *testing.T) {
	path := writeFixture(t, summaryFixture)

	out, _, err := runRoot(t, "summary", "--file", path, "--env", "test")

	require.NoError(t, err)
	assert.Contains(t, out, "Mazda 3 2018")
	assert.Contains(t, out, "1200000.00")
	assert.Contains(t, out, "Most expensive: Mazda 3 2018 (60000000.00)")
	assert.Contains(t, out, "Oldest: Renault Logan 2009")
	assert.Contains(t, out, "Average price: 38333333.33")
}

func TestSummary_AppliesDiscountFlags(t *testing.T) {
	path := writeFixture(t, summaryFixture)

	out, _, err := runRoot(t, "summary", "--file", path, "--env", "test",
		"--prompt-payment", "--public-service", "--account-transfer")

	require.NoError(t, err)
	assert.Contains(t, out, "978500.00")
}

func TestSummary_InvalidModelYearStillReports(t *testing.T) {
	path := writeFixture(t, "2\nLada,Niva,19x5,5000000,\nKia,Rio,2015,30000000,\n")

	out, _, err := runRoot(t, "summary", "--file", path, "--env", "test")

	require.NoError(t, err)
	assert.Contains(t, out, "Oldest: unavailable")
	assert.Contains(t, out, "Average price: 17500000.00")
}

func TestSummary_EmptyCatalog(t *testing.T) {
	path := writeFixture(t, "0\n")

	out, _, err := runRoot(t, "summary", "--file", path, "--env", "test")

	require.NoError(t, err)
	assert.Contains(t, out, "Most expensive: none")
	assert.Contains(t, out, "Oldest: none")
	assert.Contains(t, out, "Average price: none")
}

func TestSummary_MissingFile(t *testing.T) {
	_, _, err := runRoot(t, "summary", "--file", filepath.Join(t.TempDir(), "missing.txt"), "--env", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load vehicle catalog")
}

func TestRoot_UnknownSource(t *testing.T) {
	_, _, err := runRoot(t, "summary", "--source", "s3", "--env", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
