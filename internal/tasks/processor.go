package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/repositories"
	"github.com/desertthunder/wpx/internal/shared"
)

// Extractor reads pages of legacy records. It fails soft: errors surface as empty pages.
type Extractor interface {
	GetUsers(ctx context.Context, limit, offset int) []models.LegacyUser
	GetPosts(ctx context.Context, postType string, limit, offset int) []models.LegacyPost
	GetMedia(ctx context.Context, limit, offset int) []models.LegacyAttachment
	GetTerms(ctx context.Context, taxonomy string, limit, offset int) []models.LegacyTerm
}

// MediaProcessor turns a legacy attachment into a stored media entity.
type MediaProcessor interface {
	Process(ctx context.Context, att models.LegacyAttachment) (*models.MediaAsset, error)
}

// UserStore creates target users and finds them by mail.
type UserStore interface {
	Create(user *models.User) error
	FindByMail(mail string) (*models.User, error)
}

// ContentStore creates, loads and saves content items.
type ContentStore interface {
	Create(item *models.ContentItem) error
	Get(id int64) (*models.ContentItem, error)
	Update(item *models.ContentItem) error
}

// TaxonomyStore manages vocabularies and terms.
type TaxonomyStore interface {
	EnsureVocabulary(v models.Vocabulary) (*models.Vocabulary, bool, error)
	CreateTerm(term *models.Term) error
}

// AliasStore keeps at most one alias per path and language.
type AliasStore interface {
	Replace(path, alias, langcode string) (*models.PathAlias, error)
}

// SchemaStore introspects which fields a bundle defines.
type SchemaStore interface {
	FieldNames(entityType, bundle string) (map[string]bool, error)
}

// Stores groups the target entity stores the processor writes to.
type Stores struct {
	Users    UserStore
	Content  ContentStore
	Taxonomy TaxonomyStore
	Aliases  AliasStore
	Schema   SchemaStore
}

// StoresFrom exposes a repositories store as processor [Stores].
func StoresFrom(s *repositories.Store) Stores {
	return Stores{
		Users:    s.Users,
		Content:  s.Content,
		Taxonomy: s.Taxonomy,
		Aliases:  s.Aliases,
		Schema:   s.Schema,
	}
}

// Recorder observes per-item outcomes and batch timings.
type Recorder interface {
	RecordItem(category, status string)
	ObserveBatch(category string, elapsed time.Duration)
}

// ProcessorOpts wires a [Processor]. Logger and Recorder are optional.
type ProcessorOpts struct {
	Extractor    Extractor
	Ledger       *Ledger
	Store        Stores
	Media        MediaProcessor
	Logger       *log.Logger
	Recorder     Recorder
	SkipExisting bool
}

// CategoryResult is the outcome of running one category.
type CategoryResult struct {
	Category models.Category  `json:"category"`
	Result   models.RunResult `json:"result"`
	Batches  int              `json:"batches"`
	Elapsed  time.Duration    `json:"elapsed"`
}

// Processor migrates legacy records, category by category, into the target stores.
type Processor struct {
	extractor    Extractor
	ledger       *Ledger
	store        Stores
	media        MediaProcessor
	logger       *log.Logger
	recorder     Recorder
	skipExisting bool
}

// NewProcessor creates a [Processor].
func NewProcessor(opts ProcessorOpts) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Processor{
		extractor:    opts.Extractor,
		ledger:       opts.Ledger,
		store:        opts.Store,
		media:        opts.Media,
		logger:       shared.WithLogger(logger, "component", "processor"),
		recorder:     opts.Recorder,
		skipExisting: opts.SkipExisting,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (p *Processor) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Process runs one batch of category starting at offset.
//
// The result is always well formed: item failures are counted, never returned. An invalid category yields an
// empty result.
func (p *Processor) Process(ctx context.Context, category models.Category, batchSize, offset int) models.RunResult {
	return p.process(ctx, category, batchSize, offset, nil)
}

func (p *Processor) process(ctx context.Context, category models.Category, batchSize, offset int, progress chan<- ProgressUpdate) models.RunResult {
	run, ok := strategies[category]
	if !ok {
		p.logger.Error("no strategy for category", "category", int(category))
		return models.RunResult{}
	}
	if err := shared.ValidateBatchSize(batchSize); err != nil {
		p.logger.Error("batch rejected", "category", category, "error", err)
		return models.RunResult{}
	}

	start := time.Now()
	p.sendProgress(progress, extractBatchUpdate(1, 1, category, offset))
	result := run(ctx, &batch{
		p:        p,
		category: category,
		logger:   shared.WithLogger(p.logger, "category", category.String()),
		limit:    batchSize,
		offset:   offset,
		progress: progress,
	})

	if p.recorder != nil {
		p.recorder.ObserveBatch(category.String(), time.Since(start))
	}
	p.logger.Info("batch finished", "category", category, "offset", offset,
		"success", result.Success, "failed", result.Failed, "skipped", result.Skipped)
	return result
}

// Run processes one batch of each category in processing order, so authors and terms exist before posts.
func (p *Processor) Run(ctx context.Context, categories []models.Category, batchSize, offset int, progress chan<- ProgressUpdate) []CategoryResult {
	ordered := inProcessingOrder(categories)
	results := make([]CategoryResult, 0, len(ordered))

	for i, c := range ordered {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		res := CategoryResult{
			Category: c,
			Result:   p.process(ctx, c, batchSize, offset, progress),
			Batches:  1,
		}
		res.Elapsed = time.Since(start)

		results = append(results, res)
		p.sendProgress(progress, categoryDoneUpdate(i+1, len(ordered), res))
	}

	p.sendProgress(progress, runDoneUpdate(len(ordered), results))
	return results
}

// RunAll processes every record of each category, paging until a batch comes back short.
func (p *Processor) RunAll(ctx context.Context, categories []models.Category, batchSize int, progress chan<- ProgressUpdate) []CategoryResult {
	if err := shared.ValidateBatchSize(batchSize); err != nil {
		p.logger.Error("run rejected", "error", err)
		return nil
	}

	ordered := inProcessingOrder(categories)
	results := make([]CategoryResult, 0, len(ordered))

	for i, c := range ordered {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		res := CategoryResult{Category: c}
		for offset := 0; ctx.Err() == nil; offset += batchSize {
			batchResult := p.process(ctx, c, batchSize, offset, progress)
			res.Result = res.Result.Add(batchResult)
			res.Batches++
			if batchResult.Total() < batchSize {
				break
			}
		}
		res.Elapsed = time.Since(start)

		results = append(results, res)
		p.sendProgress(progress, categoryDoneUpdate(i+1, len(ordered), res))
	}

	p.sendProgress(progress, runDoneUpdate(len(ordered), results))
	return results
}

func inProcessingOrder(categories []models.Category) []models.Category {
	seen := make(map[models.Category]bool, len(categories))
	for _, c := range categories {
		seen[c] = true
	}

	ordered := make([]models.Category, 0, len(seen))
	for _, c := range models.AllCategories {
		if seen[c] {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

// batch carries the state of one category batch.
type batch struct {
	p        *Processor
	category models.Category
	logger   *log.Logger
	limit    int
	offset   int
	progress chan<- ProgressUpdate
}

// outcome is what migrating one record produced.
type outcome struct {
	status   models.Status
	targetID int64
	message  string
}

func migrated(id int64) outcome {
	return outcome{status: models.StatusSuccess, targetID: id}
}

func skipped() outcome {
	return outcome{status: models.StatusSkipped}
}

// runBatch migrates records one at a time. A failing or panicking record is recorded and the batch moves on;
// cancellation stops it before the next record.
func runBatch[T models.LegacyRecord](ctx context.Context, b *batch, records []T, migrate func(context.Context, T) (outcome, error)) models.RunResult {
	var result models.RunResult
	migrationType := b.category.MigrationType()

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			b.logger.Warn("batch cancelled", "processed", i, "remaining", len(records)-i, "error", err)
			break
		}

		id := rec.LegacyID()
		out, err := safeMigrate(ctx, rec, migrate)
		if err != nil {
			out = outcome{status: models.StatusFailed, message: err.Error()}
			b.logger.Error("failed to migrate item", "wordpress_id", id, "error", err)
		}

		if out.status != models.StatusSkipped || out.message != "" {
			var target *int64
			if out.status != models.StatusFailed {
				target = &out.targetID
			}
			if err := b.p.ledger.Record(migrationType, id, target, out.status, out.message); err != nil {
				b.logger.Error("failed to write ledger entry", "wordpress_id", id, "error", err)
				out.status = models.StatusFailed
			}
		}

		switch out.status {
		case models.StatusSuccess:
			result.Success++
		case models.StatusSkipped:
			result.Skipped++
		default:
			result.Failed++
		}

		if b.p.recorder != nil {
			b.p.recorder.RecordItem(b.category.String(), string(out.status))
		}
		b.p.sendProgress(b.progress, migrateItemUpdate(i+1, len(records), b.category, id, out.status))
	}
	return result
}

func safeMigrate[T models.LegacyRecord](ctx context.Context, rec T, migrate func(context.Context, T) (outcome, error)) (out outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return migrate(ctx, rec)
}
