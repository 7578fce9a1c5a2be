package legacy

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	tu "github.com/desertthunder/wpx/internal/testing"
)

func newFixtureConnector(f *tu.LegacyFixture, opts ...ConnectorOption) *Connector {
	cfg := shared.DatabaseConfig{Driver: "sqlite3", Name: f.Path, Prefix: f.Prefix}
	opts = append([]ConnectorOption{WithConnectorLogger(shared.NewLogger(&bytes.Buffer{}))}, opts...)
	return NewConnector(cfg, opts...)
}

func newFixtureExtractor(f *tu.LegacyFixture) *Extractor {
	return NewExtractor(newFixtureConnector(f), shared.NewLogger(&bytes.Buffer{}))
}

func TestConnector(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewConnector(shared.DatabaseConfig{})
		if c.Prefix() != "wp_" {
			t.Errorf("expected default prefix wp_, got %s", c.Prefix())
		}
		if c.TableName("posts") != "wp_posts" {
			t.Errorf("expected wp_posts, got %s", c.TableName("posts"))
		}
	})

	t.Run("custom prefix", func(t *testing.T) {
		c := NewConnector(shared.DatabaseConfig{Prefix: "blog_"})
		if c.TableName("term_taxonomy") != "blog_term_taxonomy" {
			t.Errorf("expected blog_term_taxonomy, got %s", c.TableName("term_taxonomy"))
		}
	})

	t.Run("mysql DSN", func(t *testing.T) {
		c := NewConnector(shared.DatabaseConfig{
			Driver:   "mysql",
			Host:     "db.internal",
			Name:     "blog",
			Username: "reader",
			Password: "secret",
		})

		dsn := c.DSN()
		for _, want := range []string{"reader:secret@tcp(db.internal:3306)/blog", "charset=utf8mb4"} {
			if !strings.Contains(dsn, want) {
				t.Errorf("expected DSN to contain %q, got %s", want, dsn)
			}
		}
	})

	t.Run("sqlite DSN is the file path", func(t *testing.T) {
		c := NewConnector(shared.DatabaseConfig{Driver: "sqlite3", Name: "/tmp/dump.sqlite"})
		if c.DSN() != "/tmp/dump.sqlite" {
			t.Errorf("unexpected DSN %s", c.DSN())
		}
	})

	t.Run("Connect rejects unsafe prefix", func(t *testing.T) {
		c := NewConnector(shared.DatabaseConfig{Driver: "sqlite3", Name: ":memory:", Prefix: "wp_; DROP"})
		if _, err := c.Connect(context.Background()); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Connect wraps opener failure", func(t *testing.T) {
		opener := func(driver, dsn string) (*sql.DB, error) { return nil, fmt.Errorf("dial refused") }
		c := NewConnector(shared.DatabaseConfig{}, WithOpener(opener))

		_, err := c.Connect(context.Background())
		if !errors.Is(err, shared.ErrConnection) {
			t.Errorf("expected ErrConnection, got %v", err)
		}
	})

	t.Run("Connect opens a new handle each call", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		opened := 0
		opener := func(driver, dsn string) (*sql.DB, error) {
			opened++
			return sql.Open(driver, dsn)
		}
		c := newFixtureConnector(f, WithOpener(opener))

		for range 2 {
			db, err := c.Connect(context.Background())
			if err != nil {
				t.Fatalf("failed to connect: %v", err)
			}
			db.Close()
		}
		if opened != 2 {
			t.Errorf("expected 2 opens, got %d", opened)
		}
	})
}

func TestConnectionStatus(t *testing.T) {
	t.Run("ok with counts", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		f.AddUser(t, 1, "admin", "admin@example.com")
		f.AddUser(t, 2, "editor", "editor@example.com")
		f.AddPost(t, tu.Post{ID: 10, Title: "Published"})
		f.AddPost(t, tu.Post{ID: 11, Title: "Draft", Status: "draft"})

		status := newFixtureConnector(f).TestConnection(context.Background())
		if status.Status != StateOK {
			t.Fatalf("expected ok, got %s: %s", status.Status, status.Message)
		}
		if status.Stats == nil || status.Stats.Posts != 1 || status.Stats.Users != 2 {
			t.Errorf("unexpected stats %+v", status.Stats)
		}
		want := "Successfully connected to WordPress database. Found 1 published posts and 2 users."
		if status.Message != want {
			t.Errorf("expected %q, got %q", want, status.Message)
		}
	})

	t.Run("warning lists missing tables", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		f.DropTable(t, "term_relationships")
		f.DropTable(t, "usermeta")

		status := newFixtureConnector(f).TestConnection(context.Background())
		if status.Status != StateWarning {
			t.Fatalf("expected warning, got %s", status.Status)
		}
		want := "Connected to database but some WordPress tables are missing: usermeta, term_relationships"
		if status.Message != want {
			t.Errorf("expected %q, got %q", want, status.Message)
		}
		if len(status.MissingTables) != 2 {
			t.Errorf("expected 2 missing tables, got %v", status.MissingTables)
		}
	})

	t.Run("warning when prefix does not match", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		c := NewConnector(shared.DatabaseConfig{Driver: "sqlite3", Name: f.Path, Prefix: "other_"},
			WithConnectorLogger(shared.NewLogger(&bytes.Buffer{})))

		status := c.TestConnection(context.Background())
		if status.Status != StateWarning || len(status.MissingTables) != len(RequiredTables) {
			t.Errorf("expected every table missing, got %+v", status)
		}
	})

	t.Run("error when unreachable", func(t *testing.T) {
		opener := func(driver, dsn string) (*sql.DB, error) { return nil, fmt.Errorf("no route to host") }
		c := NewConnector(shared.DatabaseConfig{}, WithOpener(opener), WithConnectorLogger(shared.NewLogger(&bytes.Buffer{})))

		status := c.TestConnection(context.Background())
		if status.Status != StateError {
			t.Fatalf("expected error, got %s", status.Status)
		}
		if status.Message != "Failed to connect to WordPress database. Please check your settings." {
			t.Errorf("unexpected message %q", status.Message)
		}
		if status.Stats != nil {
			t.Error("expected no stats on error")
		}
	})
}

func TestExtractorUsers(t *testing.T) {
	f := tu.NewLegacyFixture(t)
	for i := int64(1); i <= 5; i++ {
		f.AddUser(t, i, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i))
	}
	f.AddUserMeta(t, 2, "first_name", "Ada")
	f.AddUserMeta(t, 2, "first_name", "Duplicate")
	f.AddUserMeta(t, 2, "last_name", "Lovelace")

	e := newFixtureExtractor(f)

	t.Run("paginates by ascending id", func(t *testing.T) {
		users := e.GetUsers(context.Background(), 2, 1)
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if users[0].ID != 2 || users[1].ID != 3 {
			t.Errorf("expected ids 2,3, got %d,%d", users[0].ID, users[1].ID)
		}
		if users[0].Email != "user2@example.com" {
			t.Errorf("unexpected email %s", users[0].Email)
		}
	})

	t.Run("attaches meta with first value winning", func(t *testing.T) {
		users := e.GetUsers(context.Background(), 1, 1)
		if len(users) != 1 {
			t.Fatalf("expected 1 user, got %d", len(users))
		}
		if users[0].Meta.Get("first_name") != "Ada" || users[0].Meta.Get("last_name") != "Lovelace" {
			t.Errorf("unexpected meta %v", users[0].Meta)
		}
	})

	t.Run("offset past the end is empty", func(t *testing.T) {
		if users := e.GetUsers(context.Background(), 10, 10); len(users) != 0 {
			t.Errorf("expected no users, got %d", len(users))
		}
	})

	t.Run("non-positive limit is empty", func(t *testing.T) {
		if users := e.GetUsers(context.Background(), 0, 0); users == nil || len(users) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", users)
		}
	})
}

func TestExtractorPosts(t *testing.T) {
	t.Run("joins meta, categories and tags", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		f.AddTerm(t, 3, "category", "News", "news", 0)
		f.AddTerm(t, 4, "post_tag", "Go", "go", 0)
		f.AddTerm(t, 5, "post_tag", "Unused", "unused", 0)
		f.AddPost(t, tu.Post{ID: 7, Author: 1, Title: "Hello", Content: "<p>Hi</p>", Name: "hello"})
		f.AddPostMeta(t, 7, "_lang", "ar-SA")
		f.Relate(t, 7, 3)
		f.Relate(t, 7, 4)

		posts := newFixtureExtractor(f).GetPosts(context.Background(), "post", 10, 0)
		if len(posts) != 1 {
			t.Fatalf("expected 1 post, got %d", len(posts))
		}

		p := posts[0]
		if p.Title != "Hello" || p.Name != "hello" || p.Author != 1 {
			t.Errorf("unexpected post %+v", p)
		}
		if p.Meta.Get("_lang") != "ar-SA" {
			t.Errorf("expected _lang meta, got %v", p.Meta)
		}
		if len(p.Categories) != 1 || p.Categories[0].ID != 3 || p.Categories[0].Name != "News" {
			t.Errorf("unexpected categories %+v", p.Categories)
		}
		if len(p.Tags) != 1 || p.Tags[0].Slug != "go" {
			t.Errorf("unexpected tags %+v", p.Tags)
		}
	})

	t.Run("filters statuses and types", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		f.AddPost(t, tu.Post{ID: 1, Title: "published"})
		f.AddPost(t, tu.Post{ID: 2, Title: "draft", Status: "draft"})
		f.AddPost(t, tu.Post{ID: 3, Title: "private", Status: "private"})
		f.AddPost(t, tu.Post{ID: 4, Title: "trash", Status: "trash"})
		f.AddPost(t, tu.Post{ID: 5, Title: "page", Type: "page"})

		posts := newFixtureExtractor(f).GetPosts(context.Background(), "post", 10, 0)
		if len(posts) != 3 {
			t.Fatalf("expected 3 posts, got %d", len(posts))
		}
		for i, want := range []int64{1, 2, 3} {
			if posts[i].ID != want {
				t.Errorf("position %d: expected id %d, got %d", i, want, posts[i].ID)
			}
		}

		pages := newFixtureExtractor(f).GetPosts(context.Background(), "page", 10, 0)
		if len(pages) != 1 || pages[0].ID != 5 {
			t.Errorf("expected page 5, got %+v", pages)
		}
	})

	t.Run("falls back when no standard statuses exist", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		f.AddPost(t, tu.Post{ID: 1, Title: "a", Status: "archived"})
		f.AddPost(t, tu.Post{ID: 2, Title: "b", Status: "future"})
		f.AddPost(t, tu.Post{ID: 3, Title: "c", Status: "archived"})
		e := newFixtureExtractor(f)

		first := e.GetPosts(context.Background(), "post", 2, 0)
		if len(first) != 2 || first[0].ID != 1 || first[1].ID != 2 {
			t.Fatalf("unexpected first page %+v", first)
		}

		second := e.GetPosts(context.Background(), "post", 2, 2)
		if len(second) != 1 || second[0].ID != 3 {
			t.Fatalf("unexpected second page %+v", second)
		}
	})

	t.Run("no fallback past the end of standard rows", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		f.AddPost(t, tu.Post{ID: 1, Title: "a"})
		f.AddPost(t, tu.Post{ID: 2, Title: "b", Status: "archived"})

		if posts := newFixtureExtractor(f).GetPosts(context.Background(), "post", 5, 5); len(posts) != 0 {
			t.Errorf("expected empty page, got %+v", posts)
		}
	})

	t.Run("missing relationship table fails soft", func(t *testing.T) {
		f := tu.NewLegacyFixture(t)
		f.AddPost(t, tu.Post{ID: 1, Title: "a"})
		f.DropTable(t, "term_relationships")

		posts := newFixtureExtractor(f).GetPosts(context.Background(), "post", 5, 0)
		if posts == nil || len(posts) != 0 {
			t.Errorf("expected empty result, got %+v", posts)
		}
	})
}

func TestExtractorMedia(t *testing.T) {
	f := tu.NewLegacyFixture(t)
	f.AddPost(t, tu.Post{ID: 20, Title: "Photo", Type: "attachment", Status: "inherit", GUID: "http://old.example.com/wp-content/uploads/2021/05/photo.jpg", MimeType: "image/jpeg"})
	f.AddPost(t, tu.Post{ID: 21, Title: "Gone", Type: "attachment", Status: "trash"})
	f.AddPostMeta(t, 20, "_wp_attached_file", "2021/05/photo.jpg")
	f.AddPostMeta(t, 20, "_wp_attachment_image_alt", "A photo")

	media := newFixtureExtractor(f).GetMedia(context.Background(), 10, 0)
	if len(media) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(media))
	}
	if media[0].AttachedFile() != "2021/05/photo.jpg" || media[0].AltText() != "A photo" {
		t.Errorf("unexpected attachment meta %v", media[0].Meta)
	}
	if media[0].MimeType != "image/jpeg" {
		t.Errorf("unexpected mime %s", media[0].MimeType)
	}
}

func TestExtractorMediaStatusFallback(t *testing.T) {
	f := tu.NewLegacyFixture(t)
	f.AddPost(t, tu.Post{ID: 1, Title: "Post"})
	for _, id := range []int64{32, 30, 31} {
		f.AddPost(t, tu.Post{ID: id, Title: fmt.Sprintf("file-%d", id), Type: "attachment", Status: "archived"})
	}
	e := newFixtureExtractor(f)

	first := e.GetMedia(context.Background(), 2, 0)
	if len(first) != 2 || first[0].ID != 30 || first[1].ID != 31 {
		t.Fatalf("expected attachments 30 and 31, got %+v", first)
	}

	second := e.GetMedia(context.Background(), 2, 2)
	if len(second) != 1 || second[0].ID != 32 {
		t.Fatalf("expected attachment 32, got %+v", second)
	}
	if second[0].Status != "archived" {
		t.Errorf("expected status archived, got %s", second[0].Status)
	}

	if rest := e.GetMedia(context.Background(), 2, 4); len(rest) != 0 {
		t.Errorf("expected empty page, got %+v", rest)
	}
}

func TestExtractorTerms(t *testing.T) {
	f := tu.NewLegacyFixture(t)
	for i := int64(12); i >= 1; i-- {
		f.AddTerm(t, i, "category", fmt.Sprintf("Category %d", i), fmt.Sprintf("cat-%d", i), 0)
	}
	f.AddTerm(t, 13, "post_tag", "Tag", "tag", 0)
	f.Exec(t, "UPDATE {p}term_taxonomy SET parent = 1 WHERE term_id = 2")

	terms := newFixtureExtractor(f).GetTerms(context.Background(), "category", 10, 0)
	if len(terms) != 10 {
		t.Fatalf("expected 10 terms, got %d", len(terms))
	}

	for i, term := range terms {
		if term.ID != int64(i+1) {
			t.Errorf("position %d: expected id %d, got %d", i, i+1, term.ID)
		}
		if term.Taxonomy != "category" {
			t.Errorf("unexpected taxonomy %s", term.Taxonomy)
		}
		if term.Description != fmt.Sprintf("Category %d description", term.ID) {
			t.Errorf("term %d carries wrong description %q", term.ID, term.Description)
		}
		if term.Count != term.ID*10 {
			t.Errorf("term %d carries wrong count %d", term.ID, term.Count)
		}
	}
	if terms[1].Parent != 1 {
		t.Errorf("expected term 2 parent 1, got %d", terms[1].Parent)
	}

	rest := newFixtureExtractor(f).GetTerms(context.Background(), "category", 10, 10)
	if len(rest) != 2 || rest[0].ID != 11 {
		t.Errorf("unexpected second page %+v", rest)
	}
}

func TestExtractorComments(t *testing.T) {
	f := tu.NewLegacyFixture(t)
	f.AddComment(t, 1, 7, "alice", "first", "1")
	f.AddComment(t, 2, 8, "bob", "second", "1")
	f.AddComment(t, 3, 7, "spam", "buy now", "spam")
	f.AddCommentMeta(t, 1, "rating", "5")
	e := newFixtureExtractor(f)

	all := e.GetComments(context.Background(), nil, 10, 0)
	if len(all) != 2 {
		t.Fatalf("expected 2 approved comments, got %d", len(all))
	}
	if all[0].Meta.Get("rating") != "5" {
		t.Errorf("expected comment meta, got %v", all[0].Meta)
	}

	postID := int64(8)
	forPost := e.GetComments(context.Background(), &postID, 10, 0)
	if len(forPost) != 1 || forPost[0].Author != "bob" {
		t.Errorf("unexpected comments for post %+v", forPost)
	}
}

func TestExtractorCounts(t *testing.T) {
	f := tu.NewLegacyFixture(t)
	f.AddUser(t, 1, "admin", "admin@example.com")
	f.AddPost(t, tu.Post{ID: 1, Title: "a"})
	f.AddPost(t, tu.Post{ID: 2, Title: "b", Status: "trash"})
	f.AddPost(t, tu.Post{ID: 3, Title: "c", Type: "page"})
	f.AddPost(t, tu.Post{ID: 4, Title: "d", Type: "attachment", Status: "inherit"})
	f.AddTerm(t, 1, "category", "News", "news", 0)
	f.AddTerm(t, 2, "post_tag", "Go", "go", 0)
	f.AddTerm(t, 3, "post_tag", "Rust", "rust", 0)

	counts, err := newFixtureExtractor(f).Counts(context.Background())
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}

	want := map[string]int{"users": 1, "posts": 1, "pages": 1, "media": 1, "categories": 1, "tags": 2}
	for category, n := range counts {
		if want[category.String()] != n {
			t.Errorf("%s: expected %d, got %d", category, want[category.String()], n)
		}
	}
}

func TestExtractorUnreachable(t *testing.T) {
	var logs bytes.Buffer
	opener := func(driver, dsn string) (*sql.DB, error) { return nil, fmt.Errorf("refused") }
	e := NewExtractor(NewConnector(shared.DatabaseConfig{}, WithOpener(opener)), shared.NewLogger(&logs))

	if users := e.GetUsers(context.Background(), 10, 0); len(users) != 0 {
		t.Errorf("expected empty users, got %d", len(users))
	}
	if terms := e.GetTerms(context.Background(), "category", 10, 0); len(terms) != 0 {
		t.Errorf("expected empty terms, got %d", len(terms))
	}
	if !strings.Contains(logs.String(), "extraction aborted") {
		t.Errorf("expected diagnostic to be logged, got %q", logs.String())
	}
	if _, err := e.Counts(context.Background()); !errors.Is(err, shared.ErrConnection) {
		t.Errorf("expected ErrConnection from Counts, got %v", err)
	}
}

func TestExtractorPreview(t *testing.T) {
	f := tu.NewLegacyFixture(t)
	for i := int64(1); i <= 7; i++ {
		f.AddUser(t, i, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i))
	}
	for i := int64(1); i <= 12; i++ {
		f.AddTerm(t, i, "post_tag", fmt.Sprintf("Tag %d", i), fmt.Sprintf("tag-%d", i), 0)
	}
	f.AddPost(t, tu.Post{ID: 20, Title: "About", Type: "page", Date: "2020-01-02 03:04:05"})
	f.AddPost(t, tu.Post{ID: 21, Title: "photo", Type: "attachment", Status: "inherit", MimeType: "image/jpeg"})
	f.AddComment(t, 1, 20, "alice", "nice", "1")
	e := newFixtureExtractor(f)
	ctx := context.Background()

	tests := []struct {
		category models.Category
		rows     int
		first    PreviewRow
	}{
		{models.Users, 5, PreviewRow{ID: 1, Label: "user1", Detail: "user1@example.com"}},
		{models.Tags, 10, PreviewRow{ID: 1, Label: "Tag 1", Detail: "tag-1"}},
		{models.Pages, 1, PreviewRow{ID: 20, Label: "About", Detail: "2020-01-02 03:04:05"}},
		{models.Media, 1, PreviewRow{ID: 21, Label: "photo", Detail: "image/jpeg"}},
		{models.Posts, 0, PreviewRow{}},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			rows := e.Preview(ctx, tt.category)
			if len(rows) != tt.rows {
				t.Fatalf("expected %d rows, got %d", tt.rows, len(rows))
			}
			if tt.rows > 0 && rows[0] != tt.first {
				t.Errorf("expected %+v, got %+v", tt.first, rows[0])
			}
		})
	}

	t.Run("comments", func(t *testing.T) {
		rows := e.PreviewComments(ctx, 5)
		if len(rows) != 1 || rows[0].Label != "alice" {
			t.Errorf("unexpected comment preview %+v", rows)
		}
	})
}
