package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/desertthunder/wpx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Migrate runs the selected categories, one batch each or (with --all) until every record has been seen.
//
// The run lock is held for the whole command, so a concurrent CLI run or server request fails fast.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	categories, err := models.ParseCategories(cmd.StringSlice("types"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUnknownCategory, err)
	}
	if len(categories) == 0 {
		return fmt.Errorf("%w: --types must name at least one of %s", shared.ErrMissingArgument, categoryNames())
	}

	batchSize := r.config.Migration.BatchSize
	if cmd.IsSet("batch-size") {
		batchSize = int(cmd.Int("batch-size"))
	}
	if err := shared.ValidateBatchSize(batchSize); err != nil {
		return err
	}
	offset := int(cmd.Int("offset"))
	if offset < 0 {
		return fmt.Errorf("%w: --offset must not be negative", shared.ErrInvalidFlag)
	}

	lock, err := shared.AcquireRunLock(r.lockPath())
	if err != nil {
		return err
	}
	defer lock.Unlock()

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	processor, err := r.newProcessor(store)
	if err != nil {
		return err
	}

	runID := shared.GenerateID()
	r.logger.Info("starting migration", "run", runID, "types", categories, "batch_size", batchSize, "offset", offset, "all", cmd.Bool("all"))

	progress := make(chan tasks.ProgressUpdate, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.printProgress(update, cmd.Bool("json"))
		}
	}()

	var results []tasks.CategoryResult
	if cmd.Bool("all") {
		results = processor.RunAll(ctx, categories, batchSize, progress)
	} else {
		results = processor.Run(ctx, categories, batchSize, offset, progress)
	}
	close(progress)
	wg.Wait()

	r.logger.Info("migration finished", "run", runID)
	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}
	r.printResults(results)
	return ctx.Err()
}

func (r *Runner) printProgress(update tasks.ProgressUpdate, quiet bool) {
	if quiet {
		return
	}
	switch update.Phase {
	case tasks.ExtractBatch:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.MigrateItem:
		r.logger.Debug(update.Message)
	case tasks.CategoryDone:
		r.writePlain("✓ %s\n", update.Message)
	}
}

func (r *Runner) printResults(results []tasks.CategoryResult) {
	var total models.RunResult
	rows := make([][]string, 0, len(results)+1)
	for _, res := range results {
		total = total.Add(res.Result)
		rows = append(rows, resultRow(res.Category.String(), res.Result, res.Batches, res.Elapsed))
	}
	rows = append(rows, resultRow("total", total, 0, 0))

	r.writePlainln("Migration Results")
	r.writePlain("%s\n", renderTable(r.output,
		[]string{"Category", "Success", "Failed", "Skipped", "Batches", "Elapsed"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}))

	if total.Failed > 0 {
		r.writePlain("\n%d items failed; run 'wpx ledger list --status failed' for details. Failed items are retried on the next run.\n", total.Failed)
	}
}

func resultRow(name string, res models.RunResult, batches int, elapsed time.Duration) []string {
	row := []string{name, strconv.Itoa(res.Success), strconv.Itoa(res.Failed), strconv.Itoa(res.Skipped), "", ""}
	if batches > 0 {
		row[4] = strconv.Itoa(batches)
		row[5] = elapsed.Round(time.Millisecond).String()
	}
	return row
}
