// package models defines the data model for the WordPress migration pipeline
package models

import (
	"fmt"
	"strings"
)

// Category is one of the six content categories a run can process.
//
// The zero value is not a valid category.
type Category int

const (
	Users Category = iota + 1
	Categories
	Tags
	Media
	Posts
	Pages
)

// AllCategories lists every category in processing order: users and terms first so that authors and term references resolve when posts are created.
var AllCategories = []Category{Users, Categories, Tags, Media, Posts, Pages}

func (c Category) String() string {
	switch c {
	case Users:
		return "users"
	case Categories:
		return "categories"
	case Tags:
		return "tags"
	case Media:
		return "media"
	case Posts:
		return "posts"
	case Pages:
		return "pages"
	default:
		return ""
	}
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= Users && c <= Pages
}

// MigrationType returns the ledger type shared by this category.
func (c Category) MigrationType() MigrationType {
	switch c {
	case Users:
		return UserMigration
	case Categories, Tags:
		return TermMigration
	case Media:
		return MediaMigration
	case Posts, Pages:
		return PostMigration
	default:
		return ""
	}
}

// Taxonomy returns the legacy taxonomy for term categories and "" otherwise.
func (c Category) Taxonomy() string {
	switch c {
	case Categories:
		return "category"
	case Tags:
		return "post_tag"
	default:
		return ""
	}
}

// PostType returns the legacy post_type for post categories and "" otherwise.
func (c Category) PostType() string {
	switch c {
	case Posts:
		return "post"
	case Pages:
		return "page"
	default:
		return ""
	}
}

// PreviewSize is how many records the admin preview shows for c.
func (c Category) PreviewSize() int {
	if c == Categories || c == Tags {
		return 10
	}
	return 5
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory maps a category name (case-insensitive) to its [Category].
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown migration type %q", s)
}

// ParseCategories parses names and returns them deduplicated in processing order.
func ParseCategories(names []string) ([]Category, error) {
	seen := map[Category]bool{}
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, err := ParseCategory(part)
			if err != nil {
				return nil, err
			}
			seen[c] = true
		}
	}

	ordered := make([]Category, 0, len(seen))
	for _, c := range AllCategories {
		if seen[c] {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// MigrationType is the ledger namespace for legacy ids.
type MigrationType string

const (
	UserMigration  MigrationType = "users"
	PostMigration  MigrationType = "posts"
	MediaMigration MigrationType = "media"
	TermMigration  MigrationType = "terms"
)

// Status is the outcome recorded for a ledger entry.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is one of the recorded outcomes.
func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// RunResult aggregates item outcomes for one category in one invocation.
type RunResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Total is the number of records the batch examined.
func (r RunResult) Total() int {
	return r.Success + r.Failed + r.Skipped
}

// Add returns the element-wise sum of r and o.
func (r RunResult) Add(o RunResult) RunResult {
	return RunResult{
		Success: r.Success + o.Success,
		Failed:  r.Failed + o.Failed,
		Skipped: r.Skipped + o.Skipped,
	}
}
