package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	th "github.com/desertthunder/wpx/internal/testing"
)

func testReport() *Report {
	target := func(id int64) *int64 { return &id }
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	return &Report{
		Generated: created,
		Stats: []models.LedgerStat{
			{MigrationType: models.PostMigration, Status: models.StatusSuccess, Count: 2},
			{MigrationType: models.PostMigration, Status: models.StatusFailed, Count: 1},
			{MigrationType: models.UserMigration, Status: models.StatusSuccess, Count: 3},
			{MigrationType: models.PostMigration, Status: models.StatusSkipped, Count: 4},
		},
		Entries: []*models.LedgerEntry{
			{ID: 3, MigrationType: models.PostMigration, WordPressID: 12, Status: models.StatusFailed, Message: "failed to create node: a | b", Created: created},
			{ID: 2, MigrationType: models.PostMigration, WordPressID: 11, TargetID: target(7), Status: models.StatusSuccess, Created: created},
			{ID: 1, MigrationType: models.UserMigration, WordPressID: 1, TargetID: target(1), Status: models.StatusSuccess, Created: created},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"text", FormatText},
		{" txt ", FormatText},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q): expected %q, got %q (%v)", tt.in, tt.want, got, err)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	totals := testReport().Totals()
	if len(totals) != 2 {
		t.Fatalf("expected 2 types, got %d", len(totals))
	}

	if totals[0].MigrationType != models.PostMigration {
		t.Errorf("expected posts first, got %s", totals[0].MigrationType)
	}
	want := models.RunResult{Success: 2, Failed: 1, Skipped: 4}
	if totals[0].Result != want {
		t.Errorf("expected %+v, got %+v", want, totals[0].Result)
	}
	if totals[1].Result.Success != 3 {
		t.Errorf("expected 3 users, got %+v", totals[1].Result)
	}
}

func TestExporters(t *testing.T) {
	report := testReport()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(report)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Type,WordPress ID,Target ID,Status,Message,Created") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "2,posts,11,7,success,,2024-03-01T12:00:00Z") {
			t.Errorf("CSV missing success row, got: %s", output)
		}
		if !strings.Contains(output, "3,posts,12,,failed,failed to create node: a | b,") {
			t.Errorf("CSV missing failed row with empty target, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(report)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Migration Ledger") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "| posts | 2 | 1 | 4 |") {
			t.Errorf("Markdown missing totals row, got:\n%s", output)
		}
		if !strings.Contains(output, `1. posts #12: failed to create node: a \| b`) {
			t.Errorf("Markdown missing escaped failure, got:\n%s", output)
		}
	})

	t.Run("ExportToMarkdownWithoutFailures", func(t *testing.T) {
		data, _ := ExportToMarkdown(&Report{})
		if strings.Contains(string(data), "## Failures") {
			t.Errorf("expected no failures section")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(report)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "users: 3 success, 0 failed, 0 skipped") {
			t.Errorf("Text missing totals, got:\n%s", output)
		}
		if !strings.Contains(output, "[success] posts #11 -> 7") {
			t.Errorf("Text missing success line, got:\n%s", output)
		}
		if !strings.Contains(output, "[failed] posts #12: failed to create node") {
			t.Errorf("Text missing failed line, got:\n%s", output)
		}
	})

	t.Run("ToSummaryJSON", func(t *testing.T) {
		data, err := ToSummaryJSON(report)
		if err != nil {
			t.Fatalf("ToSummaryJSON failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, `"entries": 3`) || !strings.Contains(output, `"migration_type": "users"`) {
			t.Errorf("unexpected summary: %s", output)
		}
	})
}

func TestWriters(t *testing.T) {
	report := testReport()

	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteCSVExport(report, "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.EntriesFile != "ledger_entries.csv" {
				t.Errorf("Expected 'ledger_entries.csv', got '%s'", result.EntriesFile)
			}
			if result.SummaryFile != "ledger_summary.json" {
				t.Errorf("Expected 'ledger_summary.json', got '%s'", result.SummaryFile)
			}

			th.AssertFileExists(t, result.EntriesFile)
			th.AssertFileExists(t, result.SummaryFile)

			if content := th.MustReadFile(t, result.EntriesFile); !strings.Contains(content, "WordPress ID") {
				t.Errorf("CSV missing headers")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "run1")

			result, err := WriteCSVExport(report, base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.EntriesFile != base+"_entries.csv" {
				t.Errorf("Expected '%s_entries.csv', got '%s'", base, result.EntriesFile)
			}
			th.AssertFileExists(t, result.SummaryFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path, err := WriteMarkdownExport(report, "")
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if path != "ledger.md" {
			t.Errorf("Expected 'ledger.md', got '%s'", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.txt")

		got, err := WriteTextExport(report, path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("Expected '%s', got '%s'", path, got)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Entries: 3") {
			t.Errorf("Text missing entry count")
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		dir := t.TempDir()

		tests := []struct {
			format Format
			path   string
			files  []string
		}{
			{FormatCSV, filepath.Join(dir, "out.csv"), []string{filepath.Join(dir, "out_entries.csv"), filepath.Join(dir, "out_summary.json")}},
			{FormatMarkdown, filepath.Join(dir, "out.md"), []string{filepath.Join(dir, "out.md")}},
			{FormatText, filepath.Join(dir, "out.txt"), []string{filepath.Join(dir, "out.txt")}},
		}

		for _, tt := range tests {
			t.Run(string(tt.format), func(t *testing.T) {
				files, err := WriteExport(report, tt.format, tt.path)
				if err != nil {
					t.Fatalf("WriteExport failed: %v", err)
				}
				if len(files) != len(tt.files) {
					t.Fatalf("expected %v, got %v", tt.files, files)
				}
				for i, f := range tt.files {
					if files[i] != f {
						t.Errorf("expected %s, got %s", f, files[i])
					}
					th.AssertFileExists(t, f)
				}
			})
		}

		if _, err := WriteExport(report, Format("xml"), ""); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("UnwritablePath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "ledger.txt")
		if _, err := WriteTextExport(report, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
