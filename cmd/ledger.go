package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wpx/internal/formatter"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// LedgerList prints ledger entries, newest first.
func (r *Runner) LedgerList(ctx context.Context, cmd *cli.Command) error {
	criteria, err := ledgerCriteria(cmd)
	if err != nil {
		return err
	}
	criteria["limit"] = int(cmd.Int("limit"))

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	entries, err := store.Ledger.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if entries == nil {
			entries = []*models.LedgerEntry{}
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}
	if len(entries) == 0 {
		return r.writePlain("No ledger entries\n")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		target := ""
		if e.TargetID != nil {
			target = strconv.FormatInt(*e.TargetID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			string(e.MigrationType),
			strconv.FormatInt(e.WordPressID, 10),
			target,
			string(e.Status),
			e.Message,
			e.Created.Local().Format(time.DateTime),
		})
	}
	return r.writePlain("%s\n", renderTable(r.output,
		[]string{"ID", "Type", "WordPress ID", "Target ID", "Status", "Message", "Created"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight}))
}

// LedgerStats prints entry counts per migration type and status.
func (r *Runner) LedgerStats(ctx context.Context, cmd *cli.Command) error {
	report, err := r.ledgerReport(map[string]any{})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(report.Totals(), cmd.Bool("pretty"))
	}
	if len(report.Stats) == 0 {
		return r.writePlain("No ledger entries\n")
	}

	rows := make([][]string, 0, len(report.Stats))
	for _, tt := range report.Totals() {
		rows = append(rows, resultRow(string(tt.MigrationType), tt.Result, 0, 0)[:4])
	}
	return r.writePlain("%s\n", renderTable(r.output,
		[]string{"Type", "Success", "Failed", "Skipped"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
}

// LedgerExport writes the ledger to csv, markdown or text files.
func (r *Runner) LedgerExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	criteria, err := ledgerCriteria(cmd)
	if err != nil {
		return err
	}

	report, err := r.ledgerReport(criteria)
	if err != nil {
		return err
	}

	files, err := formatter.WriteExport(report, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("ledger exported", "format", format, "entries", len(report.Entries))
	for _, f := range files {
		r.writePlain("✓ Wrote %s\n", f)
	}
	return nil
}

func (r *Runner) ledgerReport(criteria map[string]any) (*formatter.Report, error) {
	store, closeStore, err := r.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	stats, err := store.Ledger.Stats()
	if err != nil {
		return nil, err
	}
	entries, err := store.Ledger.List(criteria)
	if err != nil {
		return nil, err
	}
	return &formatter.Report{Generated: time.Now().UTC(), Stats: stats, Entries: entries}, nil
}

// ledgerCriteria validates the --type and --status filters.
func ledgerCriteria(cmd *cli.Command) (map[string]any, error) {
	criteria := map[string]any{}

	if t := strings.TrimSpace(cmd.String("type")); t != "" {
		mt := models.MigrationType(strings.ToLower(t))
		switch mt {
		case models.UserMigration, models.PostMigration, models.MediaMigration, models.TermMigration:
			criteria["migration_type"] = mt
		default:
			return nil, fmt.Errorf("%w: unknown migration type %q (use users, posts, media or terms)", shared.ErrInvalidFlag, t)
		}
	}

	if s := strings.TrimSpace(cmd.String("status")); s != "" {
		status := models.Status(strings.ToLower(s))
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q (use success, failed or skipped)", shared.ErrInvalidFlag, s)
		}
		criteria["status"] = status
	}
	return criteria, nil
}
