package models

import (
	"strconv"
	"time"
)

// Entity type names used by the store's field schema and existence checks.
const (
	EntityUser         = "user"
	EntityContentItem  = "node"
	EntityTaxonomyTerm = "taxonomy_term"
	EntityMedia        = "media"
)

// Bundles created by the migration.
const (
	BundlePost = "wordpress_post"
	BundlePage = "wordpress_page"
)

// Field names gated by schema introspection.
const (
	FieldBody        = "body"
	FieldLangcode    = "langcode"
	FieldCategories  = "field_categories"
	FieldTags        = "field_tags"
	FieldDisplayName = "field_display_name"
	FieldFirstName   = "field_first_name"
	FieldLastName    = "field_last_name"
	FieldMediaFile   = "field_media_file"
)

// Text formats.
const (
	FormatFullHTML  = "full_html"
	FormatBasicHTML = "basic_html"
)

// LangUndefined is the langcode for content with no known language.
const LangUndefined = "und"

// EntityTypeFor maps a ledger type to the entity type its target ids refer to.
func EntityTypeFor(t MigrationType) string {
	switch t {
	case UserMigration:
		return EntityUser
	case PostMigration:
		return EntityContentItem
	case MediaMigration:
		return EntityMedia
	case TermMigration:
		return EntityTaxonomyTerm
	default:
		return ""
	}
}

// LedgerEntry is one row of the migration ledger.
type LedgerEntry struct {
	ID            int64         `json:"id"`
	MigrationType MigrationType `json:"migration_type"`
	WordPressID   int64         `json:"wordpress_id"`
	TargetID      *int64        `json:"drupal_id"`
	Status        Status        `json:"status"`
	Message       string        `json:"message"`
	Created       time.Time     `json:"created"`
}

// LedgerStat is a count of ledger entries for one type and status.
type LedgerStat struct {
	MigrationType MigrationType `json:"migration_type"`
	Status        Status        `json:"status"`
	Count         int           `json:"count"`
}

// User is a target account.
type User struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	Name        string    `json:"name"`
	Mail        string    `json:"mail"`
	Status      int       `json:"status"`
	DisplayName string    `json:"display_name,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Created     time.Time `json:"created"`
	Changed     time.Time `json:"changed"`
}

// Vocabulary groups taxonomy terms.
type Vocabulary struct {
	VID         string `json:"vid"`
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Term is a target taxonomy term.
type Term struct {
	ID                int64     `json:"id"`
	UUID              string    `json:"uuid"`
	VID               string    `json:"vid"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	DescriptionFormat string    `json:"description_format"`
	ParentID          *int64    `json:"parent_id,omitempty"`
	Created           time.Time `json:"created"`
	Changed           time.Time `json:"changed"`
}

// ContentItem is a target node of a bundle.
type ContentItem struct {
	ID         int64     `json:"id"`
	UUID       string    `json:"uuid"`
	Bundle     string    `json:"bundle"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	BodyFormat string    `json:"body_format,omitempty"`
	Langcode   string    `json:"langcode"`
	AuthorID   *int64    `json:"uid,omitempty"`
	Status     int       `json:"status"`
	Categories []int64   `json:"field_categories,omitempty"`
	Tags       []int64   `json:"field_tags,omitempty"`
	Created    time.Time `json:"created"`
	Changed    time.Time `json:"changed"`
}

// Path returns the internal system path of the item.
func (c *ContentItem) Path() string {
	return "/node/" + itoa(c.ID)
}

// File is a stored binary.
type File struct {
	ID       int64     `json:"id"`
	UUID     string    `json:"uuid"`
	URI      string    `json:"uri"`
	Filename string    `json:"filename"`
	MimeType string    `json:"filemime"`
	Size     int64     `json:"filesize"`
	Created  time.Time `json:"created"`
	Changed  time.Time `json:"changed"`
}

// MediaAsset is a target media entity pointing at a [File].
type MediaAsset struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	Bundle      string    `json:"bundle"`
	Name        string    `json:"name"`
	FileID      int64     `json:"field_media_file"`
	Alt         string    `json:"alt,omitempty"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created"`
	Changed     time.Time `json:"changed"`
}

// PathAlias maps a system path to a public alias for one language.
type PathAlias struct {
	ID       int64     `json:"id"`
	UUID     string    `json:"uuid"`
	Path     string    `json:"path"`
	Alias    string    `json:"alias"`
	Langcode string    `json:"langcode"`
	Created  time.Time `json:"created"`
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
