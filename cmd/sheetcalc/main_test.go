package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcalc/internal/config"
	"sheetcalc/internal/shared/testutil"
	"sheetcalc/internal/weather"
)

const lucknowQuestion = "What is the total precipitation amount of district Lucknow in each August and September from year 2001 to 2005?"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sheetcalc v")
}

func TestMTMCommand(t *testing.T) {
	input := testutil.WriteWorkbook(t, "trades.xlsx", testutil.TradingSheets()...)
	output := filepath.Join(t.TempDir(), "out", "report.csv")

	out, err := execute(t, "", "mtm", "-i", input, "-o", output, "-d", "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "MTM report generated: "+output+" (3 rows)\n", out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "C-001")
	assert.Contains(t, string(data), "9261")
}

func TestMTMCommandErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.xlsx")
		_, err := execute(t, "", "mtm", "-i", missing)
		require.Error(t, err)
		assert.Equal(t, "Input Excel file not found: "+missing, err.Error())
	})

	t.Run("computation failure", func(t *testing.T) {
		sheets := testutil.TradingSheets()
		input := testutil.WriteWorkbook(t, "prices-only.xlsx", sheets[0])
		output := filepath.Join(t.TempDir(), "report.xlsx")

		_, err := execute(t, "", "mtm", "-i", input, "-o", output)
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Failed to generate MTM report: "), err.Error())
		assert.NoFileExists(t, output)
	})

	t.Run("output directory cannot be created", func(t *testing.T) {
		input := testutil.WriteWorkbook(t, "trades.xlsx", testutil.TradingSheets()...)
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		_, err := execute(t, "", "mtm", "-i", input, "-o", filepath.Join(blocker, "report.csv"), "-d", "2024-01-15")
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Failed to generate MTM report: "), err.Error())
	})

	t.Run("unsupported output extension", func(t *testing.T) {
		input := testutil.WriteWorkbook(t, "trades.xlsx", testutil.TradingSheets()...)
		_, err := execute(t, "", "mtm", "-i", input, "-o", filepath.Join(t.TempDir(), "report.txt"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})
}

func TestMTMBatchCommand(t *testing.T) {
	in := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "reports")
	for _, name := range []string{"desk-a.xlsx", "desk-b.xlsx"} {
		require.NoError(t, testutil.BuildWorkbook(t, testutil.TradingSheets()...).SaveAs(filepath.Join(in, name)))
	}

	out, err := execute(t, "", "mtm", "batch", "--dir", in, "--out", outDir, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2 succeeded, 0 failed")
	assert.Contains(t, out, "desk-a_MTM_20240201.csv")
	assert.FileExists(t, filepath.Join(outDir, "desk-a_MTM_20240201.csv"))
	assert.FileExists(t, filepath.Join(outDir, "desk-b_MTM_20240201.csv"))
}

func TestMTMBatchCommandPartialFailure(t *testing.T) {
	in := t.TempDir()
	sheets := testutil.TradingSheets()
	require.NoError(t, testutil.BuildWorkbook(t, sheets...).SaveAs(filepath.Join(in, "good.xlsx")))
	require.NoError(t, testutil.BuildWorkbook(t, sheets[0]).SaveAs(filepath.Join(in, "broken.xlsx")))

	out, err := execute(t, "", "mtm", "batch", "--dir", in, "--out", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, "1 of 2 workbooks failed", err.Error())
	assert.Contains(t, out, "1 succeeded, 1 failed")
}

func TestMTMBatchCommandMissingDir(t *testing.T) {
	_, err := execute(t, "", "mtm", "batch", "--dir", filepath.Join(t.TempDir(), "missing"), "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Batch run failed")
}

func mockWeatherWorkbook(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "weather.xlsx")
	require.NoError(t, weather.WriteMockWorkbook(path, config.DefaultWeatherConfig()))
	return path
}

func TestWeatherAskCommand(t *testing.T) {
	excel := mockWeatherWorkbook(t)
	table := filepath.Join(t.TempDir(), "answer.csv")

	out, err := execute(t, "", "weather", "ask", "-e", excel, "-q", lucknowQuestion, "-o", table)
	require.NoError(t, err)

	assert.Contains(t, out, "\nAnswer:\nTotal precipitation in district Lucknow for months [8, 9] from 2001 to 2005 is 2150.00 units.")
	assert.Contains(t, out, "Table preview (first 10 rows):")
	assert.Contains(t, out, "Full table written to: "+table)
	assert.FileExists(t, table)
}

func TestWeatherAskCommandPrompts(t *testing.T) {
	excel := mockWeatherWorkbook(t)

	out, err := execute(t, lucknowQuestion+"\n", "weather", "ask", "-e", excel)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Enter your precipitation question:\n> "))
	assert.Contains(t, out, "2150.00")
}

func TestWeatherAskCommandUnknownQuestion(t *testing.T) {
	excel := mockWeatherWorkbook(t)

	out, err := execute(t, "", "weather", "ask", "-e", excel, "-q", "Will it rain tomorrow?")
	require.NoError(t, err)
	assert.Contains(t, out, weather.UnknownQuestionText)
	assert.NotContains(t, out, "Table preview")
}

func TestWeatherAskCommandMissingWorkbook(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "weather.xlsx")
	_, err := execute(t, "", "weather", "ask", "-e", missing, "-q", lucknowQuestion)
	require.Error(t, err)
	assert.Equal(t, "Input Excel file not found: "+missing, err.Error())
}

func TestWeatherMockCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.xlsx")

	out, err := execute(t, "", "weather", "mock", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Mock weather data Excel created at: ")
	assert.FileExists(t, path)
}
