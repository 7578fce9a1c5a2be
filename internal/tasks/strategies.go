package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// strategy extracts one page of a category and migrates each record.
type strategy func(ctx context.Context, b *batch) models.RunResult

// strategies holds one entry per [models.Category].
var strategies = map[models.Category]strategy{
	models.Users:      migrateUsers,
	models.Categories: migrateTerms,
	models.Tags:       migrateTerms,
	models.Media:      migrateMedia,
	models.Posts:      migratePosts,
	models.Pages:      migratePosts,
}

// updatedMessage marks a ledger entry written when an existing item was refreshed instead of created.
const updatedMessage = "Updated existing content item"

func migrateUsers(ctx context.Context, b *batch) models.RunResult {
	users := b.p.extractor.GetUsers(ctx, b.limit, b.offset)
	return runBatch(ctx, b, users, b.migrateUser)
}

func (b *batch) migrateUser(_ context.Context, u models.LegacyUser) (outcome, error) {
	done, err := b.p.ledger.IsMigrated(models.UserMigration, u.ID)
	if err != nil {
		return outcome{}, err
	}
	if done {
		return skipped(), nil
	}

	if u.Email != "" {
		existing, err := b.p.store.Users.FindByMail(u.Email)
		if err == nil {
			b.logger.Info("reusing existing user", "wordpress_id", u.ID, "user_id", existing.ID)
			return migrated(existing.ID), nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return outcome{}, err
		}
	}

	fields, err := b.p.store.Schema.FieldNames(models.EntityUser, models.EntityUser)
	if err != nil {
		return outcome{}, err
	}

	user := &models.User{Name: u.Login, Mail: u.Email, Status: 1}
	if created, ok := models.ParseLegacyTime(u.Registered); ok {
		user.Created = created
	}
	if fields[models.FieldDisplayName] {
		user.DisplayName = firstNonEmpty(u.Meta.Get("display_name"), u.DisplayName)
	}
	if fields[models.FieldFirstName] {
		user.FirstName = u.Meta.Get("first_name")
	}
	if fields[models.FieldLastName] {
		user.LastName = u.Meta.Get("last_name")
	}

	if err := b.p.store.Users.Create(user); err != nil {
		return outcome{}, fmt.Errorf("failed to create user: %w", err)
	}
	return migrated(user.ID), nil
}

func migrateTerms(ctx context.Context, b *batch) models.RunResult {
	taxonomy := b.category.Taxonomy()
	terms := b.p.extractor.GetTerms(ctx, taxonomy, b.limit, b.offset)
	if len(terms) == 0 {
		return models.RunResult{}
	}

	vocabulary, created, err := b.p.store.Taxonomy.EnsureVocabulary(NewVocabulary(taxonomy))
	if err != nil {
		b.logger.Error("failed to ensure vocabulary", "vid", VocabularyID(taxonomy), "error", err)
		return runBatch(ctx, b, terms, func(context.Context, models.LegacyTerm) (outcome, error) {
			return outcome{}, fmt.Errorf("vocabulary %s unavailable: %w", VocabularyID(taxonomy), err)
		})
	}
	if created {
		b.logger.Info("created vocabulary", "vid", vocabulary.VID)
	}

	return runBatch(ctx, b, terms, func(ctx context.Context, t models.LegacyTerm) (outcome, error) {
		return b.migrateTerm(ctx, vocabulary.VID, t)
	})
}

func (b *batch) migrateTerm(_ context.Context, vid string, t models.LegacyTerm) (outcome, error) {
	done, err := b.p.ledger.IsMigrated(models.TermMigration, t.ID)
	if err != nil {
		return outcome{}, err
	}
	if done {
		return skipped(), nil
	}

	term := &models.Term{
		VID:               vid,
		Name:              t.Name,
		Description:       t.Description,
		DescriptionFormat: models.FormatBasicHTML,
	}
	if t.Parent > 0 {
		parent, ok, err := b.p.ledger.GetTargetID(models.TermMigration, t.Parent)
		if err != nil {
			return outcome{}, err
		}
		if ok {
			term.ParentID = &parent
		}
	}

	if err := b.p.store.Taxonomy.CreateTerm(term); err != nil {
		return outcome{}, fmt.Errorf("failed to create term: %w", err)
	}
	return migrated(term.ID), nil
}

func migrateMedia(ctx context.Context, b *batch) models.RunResult {
	attachments := b.p.extractor.GetMedia(ctx, b.limit, b.offset)
	return runBatch(ctx, b, attachments, b.migrateAttachment)
}

func (b *batch) migrateAttachment(ctx context.Context, att models.LegacyAttachment) (outcome, error) {
	done, err := b.p.ledger.IsMigrated(models.MediaMigration, att.ID)
	if err != nil {
		return outcome{}, err
	}
	if done {
		return skipped(), nil
	}

	asset, err := b.p.media.Process(ctx, att)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to process media: %w", err)
	}
	if asset == nil {
		return outcome{}, errors.New("failed to process media")
	}
	return migrated(asset.ID), nil
}

func migratePosts(ctx context.Context, b *batch) models.RunResult {
	posts := b.p.extractor.GetPosts(ctx, b.category.PostType(), b.limit, b.offset)
	return runBatch(ctx, b, posts, b.migratePost)
}

// migratePost updates the item a post was migrated to, or creates one when there is none (or it was deleted).
func (b *batch) migratePost(ctx context.Context, post models.LegacyPost) (outcome, error) {
	done, err := b.p.ledger.IsMigrated(models.PostMigration, post.ID)
	if err != nil {
		return outcome{}, err
	}

	if done {
		item, err := b.existingItem(post.ID)
		if err != nil {
			return outcome{}, err
		}
		if item != nil {
			if err := b.updateItem(item, post); err != nil {
				return outcome{}, err
			}
			if b.p.skipExisting {
				return outcome{status: models.StatusSkipped, targetID: item.ID, message: updatedMessage}, nil
			}
			return migrated(item.ID), nil
		}
	}

	item, err := b.createItem(post)
	if err != nil {
		return outcome{}, err
	}
	return migrated(item.ID), nil
}

func (b *batch) existingItem(wordpressID int64) (*models.ContentItem, error) {
	id, ok, err := b.p.ledger.GetTargetID(models.PostMigration, wordpressID)
	if err != nil || !ok {
		return nil, err
	}

	item, err := b.p.store.Content.Get(id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return item, err
}

func (b *batch) createItem(post models.LegacyPost) (*models.ContentItem, error) {
	bundle := BundleFor(b.category.PostType())
	fields, err := b.p.store.Schema.FieldNames(models.EntityContentItem, bundle)
	if err != nil {
		return nil, err
	}

	item := &models.ContentItem{
		Bundle:   bundle,
		Title:    SanitizeTitle(post.Title),
		Status:   1,
		Langcode: models.LangUndefined,
	}
	if created, ok := models.ParseLegacyTime(post.Date); ok {
		item.Created = created
	}
	if changed, ok := models.ParseLegacyTime(post.Modified); ok {
		item.Changed = changed
	}
	if fields[models.FieldBody] && post.Content != "" {
		item.Body = post.Content
		item.BodyFormat = models.FormatFullHTML
	}

	langcode, _ := ResolveLangcode(post.Meta)
	if fields[models.FieldLangcode] {
		item.Langcode = langcode
	}

	if err := b.applyReferences(item, post, fields); err != nil {
		return nil, err
	}

	if err := b.p.store.Content.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create node: %w", err)
	}

	b.setAlias(item, post.Name, langcode)
	return item, nil
}

// updateItem overwrites only the fields the legacy post has values for.
func (b *batch) updateItem(item *models.ContentItem, post models.LegacyPost) error {
	fields, err := b.p.store.Schema.FieldNames(models.EntityContentItem, item.Bundle)
	if err != nil {
		return err
	}

	if title := SanitizeTitle(post.Title); title != UntitledTitle {
		item.Title = title
	}
	if fields[models.FieldBody] && post.Content != "" {
		item.Body = post.Content
		item.BodyFormat = models.FormatFullHTML
	}
	if created, ok := models.ParseLegacyTime(post.Date); ok {
		item.Created = created
	}
	if changed, ok := models.ParseLegacyTime(post.Modified); ok {
		item.Changed = changed
	} else {
		item.Changed = time.Now().UTC()
	}

	langcode, found := ResolveLangcode(post.Meta)
	if found && fields[models.FieldLangcode] {
		item.Langcode = langcode
	}
	if !found {
		langcode = item.Langcode
	}

	if err := b.applyReferences(item, post, fields); err != nil {
		return err
	}

	if err := b.p.store.Content.Update(item); err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}

	b.setAlias(item, post.Name, langcode)
	return nil
}

// applyReferences resolves author and term references through the ledger. Unresolved ids are dropped and an
// empty resolved set leaves the item's existing references alone.
func (b *batch) applyReferences(item *models.ContentItem, post models.LegacyPost, fields map[string]bool) error {
	if post.Author > 0 {
		author, ok, err := b.p.ledger.GetTargetID(models.UserMigration, post.Author)
		if err != nil {
			return err
		}
		if ok {
			item.AuthorID = &author
		}
	}

	if fields[models.FieldCategories] {
		ids, err := b.resolveTerms(post.Categories)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			item.Categories = ids
		}
	}

	if fields[models.FieldTags] {
		ids, err := b.resolveTerms(post.Tags)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			item.Tags = ids
		}
	}
	return nil
}

func (b *batch) resolveTerms(refs []models.TermRef) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		id, ok, err := b.p.ledger.GetTargetID(models.TermMigration, ref.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// setAlias replaces the item's alias for langcode. Alias failures are logged; the item itself was saved.
func (b *batch) setAlias(item *models.ContentItem, slug, langcode string) {
	alias, ok := DeriveAlias(slug, langcode)
	if !ok {
		return
	}

	if _, err := b.p.store.Aliases.Replace(item.Path(), alias, langcode); err != nil {
		b.logger.Warn("failed to set path alias", "path", item.Path(), "alias", alias, "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
