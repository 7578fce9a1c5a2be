package models

import (
	"strings"
	"time"
)

// LegacyDateLayout is the DATETIME format WordPress stores.
const LegacyDateLayout = "2006-01-02 15:04:05"

// LegacyRecord is any row read from the legacy schema.
type LegacyRecord interface {
	LegacyID() int64
}

// Meta holds the key/value pairs joined from a companion meta table.
//
// Repeated keys keep the first value read, matching WordPress's single-value lookups.
type Meta map[string]string

// Get returns the value for key, or "".
func (m Meta) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}

// First returns the first non-empty value among keys.
func (m Meta) First(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

// TermRef is a term attached to a legacy post.
type TermRef struct {
	ID   int64  `json:"term_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// LegacyUser is a row of {prefix}users with its usermeta.
type LegacyUser struct {
	ID          int64  `json:"id"`
	Login       string `json:"user_login"`
	Nicename    string `json:"user_nicename"`
	Email       string `json:"user_email"`
	URL         string `json:"user_url"`
	Registered  string `json:"user_registered"`
	Status      int    `json:"user_status"`
	DisplayName string `json:"display_name"`
	Meta        Meta   `json:"meta"`
}

func (u LegacyUser) LegacyID() int64 { return u.ID }

// LegacyPost is a row of {prefix}posts with its postmeta and term sets.
type LegacyPost struct {
	ID         int64     `json:"id"`
	Author     int64     `json:"post_author"`
	Date       string    `json:"post_date"`
	Modified   string    `json:"post_modified"`
	Content    string    `json:"post_content"`
	Title      string    `json:"post_title"`
	Excerpt    string    `json:"post_excerpt"`
	Status     string    `json:"post_status"`
	Name       string    `json:"post_name"`
	Parent     int64     `json:"post_parent"`
	GUID       string    `json:"guid"`
	Type       string    `json:"post_type"`
	MimeType   string    `json:"post_mime_type"`
	Meta       Meta      `json:"meta"`
	Categories []TermRef `json:"categories"`
	Tags       []TermRef `json:"tags"`
}

func (p LegacyPost) LegacyID() int64 { return p.ID }

// LegacyAttachment is an attachment post with its postmeta.
type LegacyAttachment struct {
	ID       int64  `json:"id"`
	Title    string `json:"post_title"`
	Content  string `json:"post_content"`
	Excerpt  string `json:"post_excerpt"`
	Status   string `json:"post_status"`
	Date     string `json:"post_date"`
	Parent   int64  `json:"post_parent"`
	GUID     string `json:"guid"`
	MimeType string `json:"post_mime_type"`
	Meta     Meta   `json:"meta"`
}

func (a LegacyAttachment) LegacyID() int64 { return a.ID }

// AttachedFile is the upload-relative (or absolute) path stored in _wp_attached_file.
func (a LegacyAttachment) AttachedFile() string {
	return strings.TrimSpace(a.Meta.Get("_wp_attached_file"))
}

// AltText is the alternative text stored in _wp_attachment_image_alt.
func (a LegacyAttachment) AltText() string {
	return strings.TrimSpace(a.Meta.Get("_wp_attachment_image_alt"))
}

// LegacyTerm is a term joined with its taxonomy row.
type LegacyTerm struct {
	ID          int64  `json:"term_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Group       int64  `json:"term_group"`
	TaxonomyID  int64  `json:"term_taxonomy_id"`
	Taxonomy    string `json:"taxonomy"`
	Description string `json:"description"`
	Parent      int64  `json:"parent"`
	Count       int64  `json:"count"`
}

func (t LegacyTerm) LegacyID() int64 { return t.ID }

// LegacyComment is an approved comment with its commentmeta.
type LegacyComment struct {
	ID          int64  `json:"comment_id"`
	PostID      int64  `json:"comment_post_id"`
	Author      string `json:"comment_author"`
	AuthorEmail string `json:"comment_author_email"`
	AuthorURL   string `json:"comment_author_url"`
	Date        string `json:"comment_date"`
	Content     string `json:"comment_content"`
	Approved    string `json:"comment_approved"`
	Parent      int64  `json:"comment_parent"`
	UserID      int64  `json:"user_id"`
	Meta        Meta   `json:"meta"`
}

func (c LegacyComment) LegacyID() int64 { return c.ID }

// ParseLegacyTime parses a WordPress DATETIME; the zero date and unparsable values report false.
func ParseLegacyTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "0000-00-00") {
		return time.Time{}, false
	}

	for _, layout := range []string{LegacyDateLayout, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IndexByID returns the id-keyed view of an extracted page.
func IndexByID[T LegacyRecord](records []T) map[int64]T {
	index := make(map[int64]T, len(records))
	for _, r := range records {
		index[r.LegacyID()] = r
	}
	return index
}
