package legacy

import (
	"context"

	"github.com/desertthunder/wpx/internal/models"
)

// PreviewRow is one sampled legacy record, flattened for display.
type PreviewRow struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// Preview samples the first records of a category: login and email for users, title and date for posts and
// pages, title and mime type for media, name and slug for terms.
func (e *Extractor) Preview(ctx context.Context, c models.Category) []PreviewRow {
	n := c.PreviewSize()

	var rows []PreviewRow
	switch c {
	case models.Users:
		for _, u := range e.GetUsers(ctx, n, 0) {
			rows = append(rows, PreviewRow{ID: u.ID, Label: u.Login, Detail: u.Email})
		}
	case models.Posts, models.Pages:
		for _, p := range e.GetPosts(ctx, c.PostType(), n, 0) {
			rows = append(rows, PreviewRow{ID: p.ID, Label: p.Title, Detail: p.Date})
		}
	case models.Media:
		for _, a := range e.GetMedia(ctx, n, 0) {
			rows = append(rows, PreviewRow{ID: a.ID, Label: a.Title, Detail: a.MimeType})
		}
	case models.Categories, models.Tags:
		for _, t := range e.GetTerms(ctx, c.Taxonomy(), n, 0) {
			rows = append(rows, PreviewRow{ID: t.ID, Label: t.Name, Detail: t.Slug})
		}
	}
	return rows
}

// PreviewComments samples the first approved comments across all posts.
func (e *Extractor) PreviewComments(ctx context.Context, n int) []PreviewRow {
	var rows []PreviewRow
	for _, c := range e.GetComments(ctx, nil, n, 0) {
		rows = append(rows, PreviewRow{ID: c.ID, Label: c.Author, Detail: c.Date})
	}
	return rows
}
