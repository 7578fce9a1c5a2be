// package formatter provides functions to export migration ledger reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts csv, markdown (or md) and text (or txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (use csv, markdown or text)", shared.ErrInvalidFlag, s)
	}
}

// Report is a snapshot of the migration ledger.
type Report struct {
	Generated time.Time             `json:"generated"`
	Stats     []models.LedgerStat   `json:"stats"`
	Entries   []*models.LedgerEntry `json:"-"`
}

// Totals sums Stats per migration type, in name order.
func (r *Report) Totals() []TypeTotals {
	byType := map[models.MigrationType]*TypeTotals{}
	for _, s := range r.Stats {
		tt, ok := byType[s.MigrationType]
		if !ok {
			tt = &TypeTotals{MigrationType: s.MigrationType}
			byType[s.MigrationType] = tt
		}
		switch s.Status {
		case models.StatusSuccess:
			tt.Result.Success += s.Count
		case models.StatusFailed:
			tt.Result.Failed += s.Count
		case models.StatusSkipped:
			tt.Result.Skipped += s.Count
		}
	}

	totals := make([]TypeTotals, 0, len(byType))
	for _, tt := range byType {
		totals = append(totals, *tt)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].MigrationType < totals[j].MigrationType })
	return totals
}

// TypeTotals holds ledger entry counts for one migration type.
type TypeTotals struct {
	MigrationType models.MigrationType `json:"migration_type"`
	Result        models.RunResult     `json:"result"`
}

func targetString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// ExportToCSV converts ledger entries to CSV with columns: ID, Type, WordPress ID, Target ID, Status, Message, Created
func ExportToCSV(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Type", "WordPress ID", "Target ID", "Status", "Message", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range report.Entries {
		record := []string{
			strconv.FormatInt(entry.ID, 10),
			string(entry.MigrationType),
			strconv.FormatInt(entry.WordPressID, 10),
			targetString(entry.TargetID),
			string(entry.Status),
			entry.Message,
			entry.Created.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a report to Markdown: a totals table followed by failed entries
func ExportToMarkdown(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Migration Ledger\n\n")
	buf.WriteString(fmt.Sprintf("**Generated**: %s\n", report.Generated.UTC().Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(report.Entries)))

	buf.WriteString("## Totals\n\n")
	buf.WriteString("| Type | Success | Failed | Skipped |\n")
	buf.WriteString("|------|---------|--------|---------|\n")
	for _, tt := range report.Totals() {
		buf.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n",
			tt.MigrationType, tt.Result.Success, tt.Result.Failed, tt.Result.Skipped))
	}

	var failed []*models.LedgerEntry
	for _, entry := range report.Entries {
		if entry.Status == models.StatusFailed {
			failed = append(failed, entry)
		}
	}

	if len(failed) > 0 {
		buf.WriteString("\n## Failures\n\n")
		for i, entry := range failed {
			buf.WriteString(fmt.Sprintf("%d. %s #%d: %s\n", i+1, entry.MigrationType, entry.WordPressID, markdownEscape(entry.Message)))
		}
	}

	return buf.Bytes(), nil
}

func markdownEscape(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToText converts a report to plain text format
func ExportToText(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Migration ledger (%s)\n", report.Generated.UTC().Format(time.RFC3339)))
	for _, tt := range report.Totals() {
		buf.WriteString(fmt.Sprintf("%s: %d success, %d failed, %d skipped\n",
			tt.MigrationType, tt.Result.Success, tt.Result.Failed, tt.Result.Skipped))
	}
	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(report.Entries)))

	for _, entry := range report.Entries {
		line := fmt.Sprintf("[%s] %s #%d", entry.Status, entry.MigrationType, entry.WordPressID)
		if entry.TargetID != nil {
			line += " -> " + targetString(entry.TargetID)
		}
		if entry.Message != "" {
			line += ": " + entry.Message
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ToSummaryJSON generates a JSON representation of the report totals (without entries)
func ToSummaryJSON(report *Report) ([]byte, error) {
	summary := struct {
		Generated time.Time    `json:"generated"`
		Entries   int          `json:"entries"`
		Totals    []TypeTotals `json:"totals"`
	}{report.Generated.UTC(), len(report.Entries), report.Totals()}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	EntriesFile string
	SummaryFile string
}

// WriteCSVExport exports ledger entries to CSV with an accompanying summary JSON file.
//
// Defaults to "ledger" as the base filename & creates {base}_entries.csv and {base}_summary.json
func WriteCSVExport(report *Report, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "ledger"
	}

	csvData, err := ExportToCSV(report)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	entriesFile := baseFilepath + "_entries.csv"
	if err := os.WriteFile(entriesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	summaryJSON, err := ToSummaryJSON(report)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary JSON: %w", err)
	}

	summaryFile := baseFilepath + "_summary.json"
	if err := os.WriteFile(summaryFile, summaryJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}

	return &CSVExportResult{
		EntriesFile: entriesFile,
		SummaryFile: summaryFile,
	}, nil
}

// WriteMarkdownExport exports a report to Markdown.
//
// Defaults to ledger.md as the filename.
func WriteMarkdownExport(report *Report, filepath string) (string, error) {
	if filepath == "" {
		filepath = "ledger.md"
	}

	mdData, err := ExportToMarkdown(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return filepath, nil
}

// WriteTextExport exports a report to plain text format.
//
// Defaults to ledger.txt as the filename.
func WriteTextExport(report *Report, filepath string) (string, error) {
	if filepath == "" {
		filepath = "ledger.txt"
	}

	textData, err := ExportToText(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteExport writes report in format and returns the files it created.
func WriteExport(report *Report, format Format, path string) ([]string, error) {
	switch format {
	case FormatCSV:
		result, err := WriteCSVExport(report, strings.TrimSuffix(path, ".csv"))
		if err != nil {
			return nil, err
		}
		return []string{result.EntriesFile, result.SummaryFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(report, path)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(report, path)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}
