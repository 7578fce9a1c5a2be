// Package tasks migrates legacy WordPress records into the target stores with real-time progress reporting.
//
// # Core Operations
//
// A [Processor] runs batches per [models.Category] through a strategy table:
//
//  1. [Processor.Process] : one batch of one category at an offset
//     - Extracts a page of legacy records
//     - Skips records the [Ledger] reports as migrated (posts and pages are updated instead)
//     - Creates the target entity, resolving authors, terms and parents through the ledger
//     - Records a ledger entry per record and counts success, failed and skipped
//
//  2. [Processor.Run] : one batch of several categories in processing order
//
//  3. [Processor.RunAll] : every batch of several categories, paging until a short page
//
// A record that fails or panics is recorded as failed and the batch continues. Failed records are not
// ledger-gated, so re-running a batch retries them.
//
// # Ledger
//
// [Ledger.IsMigrated] checks the latest success entry and that its target still exists, deleting stale entries
// so the record is recreated. [Ledger.GetTargetID] skips the existence check and is used for references.
//
// # Progress Reporting
//
// [ProgressUpdate] values are sent with select and default, so a slow or absent reader never blocks a run.
//
// # Mapping
//
// [BundleFor], [ResolveLangcode], [VocabularyID], [VocabularyLabel], [DeriveAlias] and [SanitizeTitle] hold the
// deterministic legacy-to-target field rules.
package tasks
