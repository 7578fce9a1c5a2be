package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(v int64) *int64 { return &v }

func TestLedgerRepository(t *testing.T) {
	t.Run("Insert assigns id and created", func(t *testing.T) {
		repo := NewLedgerRepository(setupTestDB(t))
		entry := &models.LedgerEntry{MigrationType: models.PostMigration, WordPressID: 7, TargetID: ptr(1), Status: models.StatusSuccess}

		if err := repo.Insert(entry); err != nil {
			t.Fatalf("failed to insert entry: %v", err)
		}
		if entry.ID == 0 || entry.Created.IsZero() {
			t.Errorf("expected id and created to be set, got %+v", entry)
		}
	})

	t.Run("Insert rejects unknown status", func(t *testing.T) {
		repo := NewLedgerRepository(setupTestDB(t))
		entry := &models.LedgerEntry{MigrationType: models.PostMigration, WordPressID: 7, Status: "pending"}

		if err := repo.Insert(entry); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("FindSuccess returns the latest success", func(t *testing.T) {
		repo := NewLedgerRepository(setupTestDB(t))
		entries := []*models.LedgerEntry{
			{MigrationType: models.PostMigration, WordPressID: 7, TargetID: ptr(1), Status: models.StatusSuccess},
			{MigrationType: models.PostMigration, WordPressID: 7, Status: models.StatusFailed, Message: "boom"},
			{MigrationType: models.PostMigration, WordPressID: 7, TargetID: ptr(2), Status: models.StatusSuccess},
			{MigrationType: models.TermMigration, WordPressID: 7, TargetID: ptr(9), Status: models.StatusSuccess},
		}
		for _, e := range entries {
			if err := repo.Insert(e); err != nil {
				t.Fatalf("failed to insert entry: %v", err)
			}
		}

		found, err := repo.FindSuccess(models.PostMigration, 7)
		if err != nil {
			t.Fatalf("failed to find entry: %v", err)
		}
		if found.TargetID == nil || *found.TargetID != 2 {
			t.Errorf("expected target 2, got %v", found.TargetID)
		}
	})

	t.Run("FindSuccess ignores failures", func(t *testing.T) {
		repo := NewLedgerRepository(setupTestDB(t))
		if err := repo.Insert(&models.LedgerEntry{MigrationType: models.UserMigration, WordPressID: 3, Status: models.StatusFailed}); err != nil {
			t.Fatalf("failed to insert entry: %v", err)
		}

		if _, err := repo.FindSuccess(models.UserMigration, 3); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteSuccess keeps other statuses", func(t *testing.T) {
		repo := NewLedgerRepository(setupTestDB(t))
		for _, status := range []models.Status{models.StatusSuccess, models.StatusFailed, models.StatusSuccess} {
			if err := repo.Insert(&models.LedgerEntry{MigrationType: models.MediaMigration, WordPressID: 4, Status: status}); err != nil {
				t.Fatalf("failed to insert entry: %v", err)
			}
		}

		n, err := repo.DeleteSuccess(models.MediaMigration, 4)
		if err != nil {
			t.Fatalf("failed to delete entries: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 deleted, got %d", n)
		}

		remaining, err := repo.List(map[string]any{"wordpress_id": int64(4)})
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(remaining) != 1 || remaining[0].Status != models.StatusFailed {
			t.Errorf("expected only the failed entry to remain, got %+v", remaining)
		}
	})

	t.Run("List filters and limits", func(t *testing.T) {
		repo := NewLedgerRepository(setupTestDB(t))
		for i := int64(1); i <= 5; i++ {
			status := models.StatusSuccess
			if i%2 == 0 {
				status = models.StatusFailed
			}
			if err := repo.Insert(&models.LedgerEntry{MigrationType: models.UserMigration, WordPressID: i, Status: status}); err != nil {
				t.Fatalf("failed to insert entry: %v", err)
			}
		}

		failed, err := repo.List(map[string]any{"status": models.StatusFailed})
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(failed) != 2 {
			t.Errorf("expected 2 failed entries, got %d", len(failed))
		}

		latest, err := repo.List(map[string]any{"migration_type": "users", "limit": 2})
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		if len(latest) != 2 || latest[0].WordPressID != 5 {
			t.Errorf("expected newest first, got %+v", latest)
		}
	})

	t.Run("Stats groups by type and status", func(t *testing.T) {
		repo := NewLedgerRepository(setupTestDB(t))
		inserts := []struct {
			t models.MigrationType
			s models.Status
		}{
			{models.PostMigration, models.StatusSuccess},
			{models.PostMigration, models.StatusSuccess},
			{models.PostMigration, models.StatusFailed},
			{models.UserMigration, models.StatusSkipped},
		}
		for i, in := range inserts {
			if err := repo.Insert(&models.LedgerEntry{MigrationType: in.t, WordPressID: int64(i), Status: in.s}); err != nil {
				t.Fatalf("failed to insert entry: %v", err)
			}
		}

		stats, err := repo.Stats()
		if err != nil {
			t.Fatalf("failed to get stats: %v", err)
		}

		want := []models.LedgerStat{
			{MigrationType: models.PostMigration, Status: models.StatusFailed, Count: 1},
			{MigrationType: models.PostMigration, Status: models.StatusSuccess, Count: 2},
			{MigrationType: models.UserMigration, Status: models.StatusSkipped, Count: 1},
		}
		if len(stats) != len(want) {
			t.Fatalf("expected %d stats, got %d", len(want), len(stats))
		}
		for i := range want {
			if stats[i] != want[i] {
				t.Errorf("position %d: expected %+v, got %+v", i, want[i], stats[i])
			}
		}
	})
}

func TestUserRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := &models.User{Name: "admin", Mail: "admin@example.com", Status: 1, FirstName: "Ada"}

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if user.ID == 0 || user.UUID == "" {
			t.Errorf("expected id and uuid, got %+v", user)
		}

		retrieved, err := repo.Get(user.ID)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Mail != user.Mail || retrieved.FirstName != "Ada" {
			t.Errorf("expected %+v, got %+v", user, retrieved)
		}
	})

	t.Run("FindByMail", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		first := &models.User{Name: "a", Mail: "shared@example.com"}
		second := &models.User{Name: "b", Mail: "shared@example.com"}
		for _, u := range []*models.User{first, second} {
			if err := repo.Create(u); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
		}

		found, err := repo.FindByMail("shared@example.com")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}
		if found.ID != first.ID {
			t.Errorf("expected oldest user %d, got %d", first.ID, found.ID)
		}

		if _, err := repo.FindByMail(""); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for empty mail, got %v", err)
		}
	})

	t.Run("Update and Delete", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := &models.User{Name: "editor", Mail: "editor@example.com"}
		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		user.DisplayName = "The Editor"
		if err := repo.Update(user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		if err := repo.Delete(user.ID); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}
		if _, err := repo.Get(user.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Update(user); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound updating deleted user, got %v", err)
		}
	})

	t.Run("Create requires a name", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		if err := repo.Create(&models.User{Mail: "x@example.com"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestContentRepository(t *testing.T) {
	setup := func(t *testing.T) (*Store, []int64) {
		store := NewStore(setupTestDB(t))
		if _, _, err := store.Taxonomy.EnsureVocabulary(models.Vocabulary{VID: "wordpress_tags", Name: "Tags"}); err != nil {
			t.Fatalf("failed to create vocabulary: %v", err)
		}

		var ids []int64
		for _, name := range []string{"go", "sql", "http"} {
			term := &models.Term{VID: "wordpress_tags", Name: name}
			if err := store.Taxonomy.CreateTerm(term); err != nil {
				t.Fatalf("failed to create term: %v", err)
			}
			ids = append(ids, term.ID)
		}
		return store, ids
	}

	t.Run("Create and Get with references", func(t *testing.T) {
		store, terms := setup(t)
		item := &models.ContentItem{Bundle: models.BundlePost, Title: "Hello", Body: "<p>Hi</p>", Status: 1, Tags: terms[:2]}

		if err := store.Content.Create(item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}

		got, err := store.Content.Get(item.ID)
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}
		if got.Title != "Hello" || got.Langcode != models.LangUndefined {
			t.Errorf("unexpected item %+v", got)
		}
		if len(got.Tags) != 2 || got.Tags[0] != terms[0] || got.Tags[1] != terms[1] {
			t.Errorf("expected tags %v, got %v", terms[:2], got.Tags)
		}
		if got.AuthorID != nil {
			t.Errorf("expected no author, got %v", *got.AuthorID)
		}
	})

	t.Run("Update replaces references", func(t *testing.T) {
		store, terms := setup(t)
		item := &models.ContentItem{Bundle: models.BundlePage, Title: "Page", Tags: terms}
		if err := store.Content.Create(item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}

		item.Title = "Renamed"
		item.Tags = []int64{terms[2]}
		item.Categories = nil
		if err := store.Content.Update(item); err != nil {
			t.Fatalf("failed to update item: %v", err)
		}

		got, err := store.Content.Get(item.ID)
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}
		if got.Title != "Renamed" || len(got.Tags) != 1 || got.Tags[0] != terms[2] {
			t.Errorf("unexpected item after update %+v", got)
		}
	})

	t.Run("Author reference is cleared when the user is deleted", func(t *testing.T) {
		store, _ := setup(t)
		user := &models.User{Name: "author"}
		if err := store.Users.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		item := &models.ContentItem{Bundle: models.BundlePost, Title: "Owned", AuthorID: &user.ID}
		if err := store.Content.Create(item); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}
		if err := store.Users.Delete(user.ID); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		got, err := store.Content.Get(item.ID)
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}
		if got.AuthorID != nil {
			t.Errorf("expected author to be cleared, got %d", *got.AuthorID)
		}
	})

	t.Run("Unknown term reference fails", func(t *testing.T) {
		store, _ := setup(t)
		item := &models.ContentItem{Bundle: models.BundlePost, Title: "Bad", Tags: []int64{999}}
		if err := store.Content.Create(item); err == nil {
			t.Fatal("expected foreign key error")
		}
	})

	t.Run("List by bundle", func(t *testing.T) {
		store, _ := setup(t)
		for _, bundle := range []string{models.BundlePost, models.BundlePage, models.BundlePost} {
			if err := store.Content.Create(&models.ContentItem{Bundle: bundle, Title: bundle}); err != nil {
				t.Fatalf("failed to create item: %v", err)
			}
		}

		posts, err := store.Content.List(map[string]any{"bundle": models.BundlePost})
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(posts) != 2 {
			t.Errorf("expected 2 posts, got %d", len(posts))
		}
	})
}

func TestTaxonomyRepository(t *testing.T) {
	t.Run("EnsureVocabulary is idempotent", func(t *testing.T) {
		repo := NewTaxonomyRepository(setupTestDB(t))

		v, created, err := repo.EnsureVocabulary(models.Vocabulary{VID: "wordpress_categories", Name: "Categories"})
		if err != nil || !created {
			t.Fatalf("expected vocabulary to be created, got %v (created=%v)", err, created)
		}

		again, created, err := repo.EnsureVocabulary(models.Vocabulary{VID: "wordpress_categories", Name: "Other"})
		if err != nil || created {
			t.Fatalf("expected existing vocabulary, got %v (created=%v)", err, created)
		}
		if again.UUID != v.UUID || again.Name != "Categories" {
			t.Errorf("expected the original vocabulary, got %+v", again)
		}
	})

	t.Run("Term hierarchy", func(t *testing.T) {
		repo := NewTaxonomyRepository(setupTestDB(t))
		if _, _, err := repo.EnsureVocabulary(models.Vocabulary{VID: "wordpress_categories"}); err != nil {
			t.Fatalf("failed to create vocabulary: %v", err)
		}

		parent := &models.Term{VID: "wordpress_categories", Name: "News"}
		if err := repo.CreateTerm(parent); err != nil {
			t.Fatalf("failed to create parent: %v", err)
		}
		child := &models.Term{VID: "wordpress_categories", Name: "Local", ParentID: &parent.ID}
		if err := repo.CreateTerm(child); err != nil {
			t.Fatalf("failed to create child: %v", err)
		}

		got, err := repo.GetTerm(child.ID)
		if err != nil {
			t.Fatalf("failed to get term: %v", err)
		}
		if got.ParentID == nil || *got.ParentID != parent.ID || got.DescriptionFormat != models.FormatBasicHTML {
			t.Errorf("unexpected term %+v", got)
		}

		if err := repo.DeleteTerm(parent.ID); err != nil {
			t.Fatalf("failed to delete parent: %v", err)
		}
		got, err = repo.GetTerm(child.ID)
		if err != nil {
			t.Fatalf("failed to get term: %v", err)
		}
		if got.ParentID != nil {
			t.Errorf("expected parent to be cleared, got %d", *got.ParentID)
		}
	})

	t.Run("Term requires an existing vocabulary", func(t *testing.T) {
		repo := NewTaxonomyRepository(setupTestDB(t))
		if err := repo.CreateTerm(&models.Term{VID: "missing", Name: "x"}); err == nil {
			t.Fatal("expected foreign key error")
		}
	})
}

func TestMediaRepository(t *testing.T) {
	t.Run("SaveFile overwrites by uri", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		file := &models.File{URI: "public://wordpress-migrate/photo.jpg", Filename: "photo.jpg", MimeType: "image/jpeg", Size: 10}
		if err := repo.SaveFile(file); err != nil {
			t.Fatalf("failed to save file: %v", err)
		}

		again := &models.File{URI: file.URI, Filename: "photo.jpg", MimeType: "image/jpeg", Size: 20}
		if err := repo.SaveFile(again); err != nil {
			t.Fatalf("failed to save file: %v", err)
		}
		if again.ID != file.ID || again.UUID != file.UUID {
			t.Errorf("expected row %d to be reused, got %d", file.ID, again.ID)
		}

		got, err := repo.GetFileByURI(file.URI)
		if err != nil {
			t.Fatalf("failed to get file: %v", err)
		}
		if got.Size != 20 {
			t.Errorf("expected size 20, got %d", got.Size)
		}
	})

	t.Run("CreateMedia", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		file := &models.File{URI: "public://wordpress-migrate/a.pdf", Filename: "a.pdf", MimeType: "application/pdf"}
		if err := repo.SaveFile(file); err != nil {
			t.Fatalf("failed to save file: %v", err)
		}

		media := &models.MediaAsset{Bundle: "document", Name: "Report", FileID: file.ID, Description: "Annual"}
		if err := repo.CreateMedia(media); err != nil {
			t.Fatalf("failed to create media: %v", err)
		}

		got, err := repo.GetMedia(media.ID)
		if err != nil {
			t.Fatalf("failed to get media: %v", err)
		}
		if got.FileID != file.ID || got.Description != "Annual" {
			t.Errorf("unexpected media %+v", got)
		}

		if err := repo.DeleteMedia(media.ID); err != nil {
			t.Fatalf("failed to delete media: %v", err)
		}
		if _, err := repo.GetMedia(media.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateMedia requires a file", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		if err := repo.CreateMedia(&models.MediaAsset{Bundle: "image"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAliasRepository(t *testing.T) {
	repo := NewAliasRepository(setupTestDB(t))

	steps := []struct {
		alias, langcode string
	}{
		{"/hello", "und"},
		{"/hello-again", "und"},
		{"/ar/marhaba", "ar"},
		{"/ar/marhaba-2", "ar"},
		{"/final", "und"},
	}
	for _, step := range steps {
		if _, err := repo.Replace("/node/1", step.alias, step.langcode); err != nil {
			t.Fatalf("failed to replace alias: %v", err)
		}
	}

	aliases, err := repo.ListByPath("/node/1")
	if err != nil {
		t.Fatalf("failed to list aliases: %v", err)
	}
	if len(aliases) != 2 {
		t.Fatalf("expected one alias per language, got %d", len(aliases))
	}
	if aliases[0].Langcode != "ar" || aliases[0].Alias != "/ar/marhaba-2" {
		t.Errorf("unexpected ar alias %+v", aliases[0])
	}
	if aliases[1].Langcode != "und" || aliases[1].Alias != "/final" {
		t.Errorf("unexpected und alias %+v", aliases[1])
	}

	n, err := repo.DeleteByPath("/node/1")
	if err != nil || n != 2 {
		t.Errorf("expected 2 aliases deleted, got %d (%v)", n, err)
	}
}

func TestSchemaRepository(t *testing.T) {
	repo := NewSchemaRepository(setupTestDB(t))

	fields, err := repo.FieldNames(models.EntityContentItem, models.BundlePost)
	if err != nil {
		t.Fatalf("failed to read fields: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("expected no fields before setup, got %v", fields)
	}

	for range 2 {
		if err := repo.EnsureContentTypes(); err != nil {
			t.Fatalf("failed to ensure content types: %v", err)
		}
	}

	tests := []struct {
		entityType, bundle, field string
	}{
		{models.EntityContentItem, models.BundlePost, models.FieldBody},
		{models.EntityContentItem, models.BundlePage, models.FieldLangcode},
		{models.EntityContentItem, models.BundlePost, models.FieldTags},
		{models.EntityUser, models.EntityUser, models.FieldFirstName},
		{models.EntityMedia, "document", models.FieldMediaFile},
	}
	for _, tt := range tests {
		fields, err := repo.FieldNames(tt.entityType, tt.bundle)
		if err != nil {
			t.Fatalf("failed to read fields: %v", err)
		}
		if !fields[tt.field] {
			t.Errorf("expected %s.%s to define %s, got %v", tt.entityType, tt.bundle, tt.field, fields)
		}
	}

	if err := repo.RemoveField(models.EntityContentItem, models.BundlePage, models.FieldBody); err != nil {
		t.Fatalf("failed to remove field: %v", err)
	}
	fields, _ = repo.FieldNames(models.EntityContentItem, models.BundlePage)
	if fields[models.FieldBody] {
		t.Error("expected body to be removed from pages")
	}
}

func TestStore(t *testing.T) {
	store := NewStore(setupTestDB(t))
	user := &models.User{Name: "someone"}
	if err := store.Users.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	tests := []struct {
		name       string
		entityType string
		id         int64
		expected   bool
	}{
		{"existing user", models.EntityUser, user.ID, true},
		{"missing user", models.EntityUser, user.ID + 1, false},
		{"missing content", models.EntityContentItem, 1, false},
		{"missing term", models.EntityTaxonomyTerm, 1, false},
		{"missing media", models.EntityMedia, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := store.Exists(tt.entityType, tt.id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, ok)
			}
		})
	}

	t.Run("unknown entity type", func(t *testing.T) {
		if _, err := store.Exists("comment", 1); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Counts", func(t *testing.T) {
		counts, err := store.Counts()
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if counts[models.EntityUser] != 1 || counts[models.EntityContentItem] != 0 {
			t.Errorf("unexpected counts %v", counts)
		}
	})
}
