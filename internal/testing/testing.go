// package testing contains shared testing utilities
package testing

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// LegacyFixture is a WordPress-shaped sqlite database on disk.
//
// Open it through a connector configured with driver "sqlite3" and name [LegacyFixture.Path].
type LegacyFixture struct {
	Path   string
	Prefix string
	db     *sql.DB
}

// NewLegacyFixture creates the WordPress tables (with prefix "wp_") in a temp file that lives for the test.
func NewLegacyFixture(t *testing.T) *LegacyFixture {
	t.Helper()
	return NewLegacyFixtureWithPrefix(t, "wp_")
}

// NewLegacyFixtureWithPrefix is [NewLegacyFixture] with a custom table prefix.
func NewLegacyFixtureWithPrefix(t *testing.T, prefix string) *LegacyFixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wordpress.sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open legacy fixture: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &LegacyFixture{Path: path, Prefix: prefix, db: db}
	for _, stmt := range legacySchema {
		f.Exec(t, stmt)
	}
	return f
}

// Exec runs a statement with "{p}" replaced by the table prefix.
func (f *LegacyFixture) Exec(t *testing.T, query string, args ...any) {
	t.Helper()
	if _, err := f.db.Exec(expandPrefix(query, f.Prefix), args...); err != nil {
		t.Fatalf("fixture statement failed: %v\n%s", err, query)
	}
}

// DropTable removes a logical table, e.g. "term_relationships".
func (f *LegacyFixture) DropTable(t *testing.T, logical string) {
	t.Helper()
	f.Exec(t, "DROP TABLE {p}"+logical)
}

// AddUser inserts a user row.
func (f *LegacyFixture) AddUser(t *testing.T, id int64, login, email string) {
	t.Helper()
	f.Exec(t, `INSERT INTO {p}users (ID, user_login, user_nicename, user_email, user_registered, display_name)
		VALUES (?, ?, ?, ?, '2020-01-02 03:04:05', ?)`, id, login, login, email, login)
}

// AddUserMeta inserts a usermeta row.
func (f *LegacyFixture) AddUserMeta(t *testing.T, userID int64, key, value string) {
	t.Helper()
	f.Exec(t, "INSERT INTO {p}usermeta (user_id, meta_key, meta_value) VALUES (?, ?, ?)", userID, key, value)
}

// Post describes a posts row for [LegacyFixture.AddPost]; zero fields get WordPress-like defaults.
type Post struct {
	ID       int64
	Author   int64
	Title    string
	Content  string
	Status   string
	Name     string
	Type     string
	GUID     string
	MimeType string
	Date     string
	Modified string
	Parent   int64
}

// AddPost inserts a posts row.
func (f *LegacyFixture) AddPost(t *testing.T, p Post) {
	t.Helper()
	if p.Status == "" {
		p.Status = "publish"
	}
	if p.Type == "" {
		p.Type = "post"
	}
	if p.Date == "" {
		p.Date = "2021-05-01 10:00:00"
	}
	if p.Modified == "" {
		p.Modified = p.Date
	}
	f.Exec(t, `INSERT INTO {p}posts (ID, post_author, post_date, post_modified, post_content, post_title, post_status,
		post_name, post_parent, guid, post_type, post_mime_type) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Author, p.Date, p.Modified, p.Content, p.Title, p.Status, p.Name, p.Parent, p.GUID, p.Type, p.MimeType)
}

// AddPostMeta inserts a postmeta row.
func (f *LegacyFixture) AddPostMeta(t *testing.T, postID int64, key, value string) {
	t.Helper()
	f.Exec(t, "INSERT INTO {p}postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)", postID, key, value)
}

// AddTerm inserts a term and its taxonomy row; the taxonomy id equals the term id.
func (f *LegacyFixture) AddTerm(t *testing.T, id int64, taxonomy, name, slug string, parent int64) {
	t.Helper()
	f.Exec(t, "INSERT INTO {p}terms (term_id, name, slug) VALUES (?, ?, ?)", id, name, slug)
	f.Exec(t, `INSERT INTO {p}term_taxonomy (term_taxonomy_id, term_id, taxonomy, description, parent, count)
		VALUES (?, ?, ?, ?, ?, ?)`, id, id, taxonomy, name+" description", parent, id*10)
}

// Relate attaches a term (by id) to a post.
func (f *LegacyFixture) Relate(t *testing.T, postID, termID int64) {
	t.Helper()
	f.Exec(t, "INSERT INTO {p}term_relationships (object_id, term_taxonomy_id) VALUES (?, ?)", postID, termID)
}

// AddComment inserts a comments row.
func (f *LegacyFixture) AddComment(t *testing.T, id, postID int64, author, content, approved string) {
	t.Helper()
	f.Exec(t, `INSERT INTO {p}comments (comment_ID, comment_post_ID, comment_author, comment_date, comment_content, comment_approved)
		VALUES (?, ?, ?, '2021-06-01 12:00:00', ?, ?)`, id, postID, author, content, approved)
}

// AddCommentMeta inserts a commentmeta row.
func (f *LegacyFixture) AddCommentMeta(t *testing.T, commentID int64, key, value string) {
	t.Helper()
	f.Exec(t, "INSERT INTO {p}commentmeta (comment_id, meta_key, meta_value) VALUES (?, ?, ?)", commentID, key, value)
}

func expandPrefix(query, prefix string) string {
	return strings.ReplaceAll(query, "{p}", prefix)
}

var legacySchema = []string{
	`CREATE TABLE {p}users (
		ID INTEGER PRIMARY KEY,
		user_login TEXT NOT NULL DEFAULT '',
		user_pass TEXT NOT NULL DEFAULT '',
		user_nicename TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		user_url TEXT NOT NULL DEFAULT '',
		user_registered TEXT NOT NULL DEFAULT '0000-00-00 00:00:00',
		user_activation_key TEXT NOT NULL DEFAULT '',
		user_status INTEGER NOT NULL DEFAULT 0,
		display_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE {p}usermeta (
		umeta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL DEFAULT 0,
		meta_key TEXT,
		meta_value TEXT
	)`,
	`CREATE TABLE {p}posts (
		ID INTEGER PRIMARY KEY,
		post_author INTEGER NOT NULL DEFAULT 0,
		post_date TEXT NOT NULL DEFAULT '0000-00-00 00:00:00',
		post_date_gmt TEXT NOT NULL DEFAULT '0000-00-00 00:00:00',
		post_content TEXT NOT NULL DEFAULT '',
		post_title TEXT NOT NULL DEFAULT '',
		post_excerpt TEXT NOT NULL DEFAULT '',
		post_status TEXT NOT NULL DEFAULT 'publish',
		comment_status TEXT NOT NULL DEFAULT 'open',
		post_name TEXT NOT NULL DEFAULT '',
		post_modified TEXT NOT NULL DEFAULT '0000-00-00 00:00:00',
		post_parent INTEGER NOT NULL DEFAULT 0,
		guid TEXT NOT NULL DEFAULT '',
		menu_order INTEGER NOT NULL DEFAULT 0,
		post_type TEXT NOT NULL DEFAULT 'post',
		post_mime_type TEXT NOT NULL DEFAULT '',
		comment_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE {p}postmeta (
		meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL DEFAULT 0,
		meta_key TEXT,
		meta_value TEXT
	)`,
	`CREATE TABLE {p}terms (
		term_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL DEFAULT '',
		term_group INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE {p}term_taxonomy (
		term_taxonomy_id INTEGER PRIMARY KEY,
		term_id INTEGER NOT NULL DEFAULT 0,
		taxonomy TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		parent INTEGER NOT NULL DEFAULT 0,
		count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE {p}term_relationships (
		object_id INTEGER NOT NULL DEFAULT 0,
		term_taxonomy_id INTEGER NOT NULL DEFAULT 0,
		term_order INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (object_id, term_taxonomy_id)
	)`,
	`CREATE TABLE {p}comments (
		comment_ID INTEGER PRIMARY KEY,
		comment_post_ID INTEGER NOT NULL DEFAULT 0,
		comment_author TEXT NOT NULL DEFAULT '',
		comment_author_email TEXT NOT NULL DEFAULT '',
		comment_author_url TEXT NOT NULL DEFAULT '',
		comment_date TEXT NOT NULL DEFAULT '0000-00-00 00:00:00',
		comment_content TEXT NOT NULL DEFAULT '',
		comment_approved TEXT NOT NULL DEFAULT '1',
		comment_parent INTEGER NOT NULL DEFAULT 0,
		user_id INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE {p}commentmeta (
		meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_id INTEGER NOT NULL DEFAULT 0,
		meta_key TEXT,
		meta_value TEXT
	)`,
}
