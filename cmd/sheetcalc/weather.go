package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sheetcalc/internal/config"
	"sheetcalc/internal/exporter"
	"sheetcalc/internal/weather"
	"sheetcalc/pkg/contracts/domain"
)

// previewRows bounds the table printed to the terminal.
const previewRows = 10

func newWeatherCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Answer precipitation questions from a weather workbook",
	}
	cmd.AddCommand(newWeatherAskCmd(c))
	cmd.AddCommand(newWeatherMockCmd(c))
	return cmd
}

func newWeatherAskCmd(c *cli) *cobra.Command {
	var excel, question, outputTable string

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer a precipitation question",
		Long: `Answer a natural-language precipitation question from the "Daily" and
"Monthly" sheets of a weather workbook. Two question shapes are understood:

  What is the total precipitation amount of district <D> in each <Month>
  and <Month> from year <Y1> to <Y2>?

  Compare the total precipitation of state <A> and state <B> in week <W>
  of year <Y>.

The question is read from stdin when --question is omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if _, err := os.Stat(excel); err != nil {
				return failf("Input Excel file not found: %s", excel)
			}

			if question == "" {
				q, err := promptQuestion(cmd.InOrStdin(), out)
				if err != nil {
					return failf("Failed to read question: %v", err)
				}
				question = q
			}

			answer, err := c.weather.AnswerFile(cmd.Context(), excel, question)
			if err != nil {
				return failf("Failed to answer question: %v", err)
			}

			fmt.Fprintf(out, "\nAnswer:\n%s\n", answer.Text)
			if answer.Table == nil {
				return nil
			}

			fmt.Fprintf(out, "\nTable preview (first %d rows):\n", previewRows)
			if err := exporter.WriteText(out, preview(answer.Table, previewRows)); err != nil {
				return err
			}

			if outputTable != "" {
				if err := exporter.WriteFile(outputTable, answer.Table, exporter.DefaultOptions()); err != nil {
					return failf("Failed to write table: %v", err)
				}
				fmt.Fprintf(out, "\nFull table written to: %s\n", outputTable)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&excel, "excel", "e", config.DefaultWeatherWorkbook, "Path to Excel file containing Daily and Monthly precipitation sheets")
	cmd.Flags().StringVarP(&question, "question", "q", "", "Question in natural language; prompted for when omitted")
	cmd.Flags().StringVarP(&outputTable, "output-table", "o", "", "Optional path to save the answer table (.csv, .xlsx, .json or .pdf)")
	return cmd
}

func newWeatherMockCmd(c *cli) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Write a small demo weather workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := weather.WriteMockWorkbook(path, c.cfg.Weather); err != nil {
				return failf("Failed to create mock workbook: %v", err)
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mock weather data Excel created at: %s\n", abs)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", config.DefaultWeatherWorkbook, "Destination of the demo workbook")
	return cmd
}

func promptQuestion(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter your precipitation question:\n> ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("no question given")
	}
	return line, nil
}

func preview(t *domain.Table, n int) *domain.Table {
	if t.Len() <= n {
		return t
	}
	head := *t
	head.Rows = t.Rows[:n]
	return &head
}
