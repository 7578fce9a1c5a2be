package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

var (
	postStatuses       = []string{"publish", "draft", "private"}
	attachmentStatuses = []string{"inherit", "publish", "draft"}
)

const postColumns = `ID, post_author, post_date, post_modified, post_content, post_title, post_excerpt,
	post_status, post_name, post_parent, guid, post_type, post_mime_type`

const attachmentColumns = `ID, post_title, post_content, post_excerpt, post_status, post_date, post_parent, guid, post_mime_type`

// Extractor runs read-only queries against the legacy schema.
//
// Every Get method fails soft: errors are logged and an empty slice is returned.
// Results are ordered by ascending legacy id and paginated with LIMIT/OFFSET.
type Extractor struct {
	conn   *Connector
	logger *log.Logger
}

// NewExtractor creates an [Extractor] reading through conn.
func NewExtractor(conn *Connector, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Extractor{conn: conn, logger: shared.WithLogger(logger, "component", "extractor")}
}

// GetUsers returns a page of users with their usermeta.
func (e *Extractor) GetUsers(ctx context.Context, limit, offset int) []models.LegacyUser {
	return extract(ctx, e, "users", limit, func(db *sql.DB) ([]models.LegacyUser, error) {
		query := fmt.Sprintf(`
			SELECT ID, user_login, user_nicename, user_email, user_url, user_registered, user_status, display_name
			FROM %s ORDER BY ID ASC LIMIT ? OFFSET ?`, e.conn.TableName("users"))

		users, err := queryRows(ctx, db, query, []any{limit, max(offset, 0)}, func(rows *sql.Rows) (models.LegacyUser, error) {
			var u models.LegacyUser
			err := rows.Scan(&u.ID, &u.Login, &u.Nicename, &u.Email, &u.URL, &u.Registered, &u.Status, &u.DisplayName)
			return u, err
		})
		if err != nil {
			return nil, err
		}

		for i := range users {
			if users[i].Meta, err = e.loadMeta(ctx, db, "usermeta", "user_id", "umeta_id", users[i].ID); err != nil {
				return nil, err
			}
		}
		return users, nil
	})
}

// GetPosts returns a page of posts of postType with postmeta, categories and tags.
//
// Posts with a publish, draft or private status are returned; when the legacy site has none of those for postType,
// the status filter is dropped.
func (e *Extractor) GetPosts(ctx context.Context, postType string, limit, offset int) []models.LegacyPost {
	return extract(ctx, e, "posts", limit, func(db *sql.DB) ([]models.LegacyPost, error) {
		scan := func(rows *sql.Rows) (models.LegacyPost, error) {
			var p models.LegacyPost
			err := rows.Scan(&p.ID, &p.Author, &p.Date, &p.Modified, &p.Content, &p.Title, &p.Excerpt,
				&p.Status, &p.Name, &p.Parent, &p.GUID, &p.Type, &p.MimeType)
			return p, err
		}

		posts, err := withStatusFallback(ctx, e, db, postColumns, postType, postStatuses, limit, offset, scan)
		if err != nil {
			return nil, err
		}

		for i := range posts {
			p := &posts[i]
			if p.Meta, err = e.loadMeta(ctx, db, "postmeta", "post_id", "meta_id", p.ID); err != nil {
				return nil, err
			}
			if p.Categories, err = e.postTerms(ctx, db, p.ID, "category"); err != nil {
				return nil, err
			}
			if p.Tags, err = e.postTerms(ctx, db, p.ID, "post_tag"); err != nil {
				return nil, err
			}
		}
		return posts, nil
	})
}

// GetMedia returns a page of attachments with their postmeta.
//
// The status filter (inherit, publish, draft) falls back the same way as [Extractor.GetPosts].
func (e *Extractor) GetMedia(ctx context.Context, limit, offset int) []models.LegacyAttachment {
	return extract(ctx, e, "media", limit, func(db *sql.DB) ([]models.LegacyAttachment, error) {
		scan := func(rows *sql.Rows) (models.LegacyAttachment, error) {
			var a models.LegacyAttachment
			err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Excerpt, &a.Status, &a.Date, &a.Parent, &a.GUID, &a.MimeType)
			return a, err
		}

		attachments, err := withStatusFallback(ctx, e, db, attachmentColumns, "attachment", attachmentStatuses, limit, offset, scan)
		if err != nil {
			return nil, err
		}

		for i := range attachments {
			if attachments[i].Meta, err = e.loadMeta(ctx, db, "postmeta", "post_id", "meta_id", attachments[i].ID); err != nil {
				return nil, err
			}
		}
		return attachments, nil
	})
}

// GetTerms returns a page of terms of taxonomy joined with their taxonomy rows.
func (e *Extractor) GetTerms(ctx context.Context, taxonomy string, limit, offset int) []models.LegacyTerm {
	return extract(ctx, e, "terms", limit, func(db *sql.DB) ([]models.LegacyTerm, error) {
		query := fmt.Sprintf(`
			SELECT t.term_id, t.name, t.slug, t.term_group, tt.term_taxonomy_id, tt.taxonomy, tt.description, tt.parent, tt.count
			FROM %s t
			INNER JOIN %s tt ON t.term_id = tt.term_id
			WHERE tt.taxonomy = ?
			ORDER BY t.term_id ASC
			LIMIT ? OFFSET ?`, e.conn.TableName("terms"), e.conn.TableName("term_taxonomy"))

		terms, err := queryRows(ctx, db, query, []any{taxonomy, limit, max(offset, 0)}, func(rows *sql.Rows) (models.LegacyTerm, error) {
			var t models.LegacyTerm
			err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Group, &t.TaxonomyID, &t.Taxonomy, &t.Description, &t.Parent, &t.Count)
			return t, err
		})
		if err != nil {
			return nil, err
		}

		if len(terms) == 0 && offset == 0 {
			e.logHistogram(ctx, db, fmt.Sprintf("SELECT taxonomy, '', COUNT(*) FROM %s GROUP BY taxonomy", e.conn.TableName("term_taxonomy")),
				"no terms found for taxonomy", "taxonomy", taxonomy)
		}
		return terms, nil
	})
}

// GetComments returns a page of approved comments with commentmeta, optionally limited to one post.
func (e *Extractor) GetComments(ctx context.Context, postID *int64, limit, offset int) []models.LegacyComment {
	return extract(ctx, e, "comments", limit, func(db *sql.DB) ([]models.LegacyComment, error) {
		query := fmt.Sprintf(`
			SELECT comment_ID, comment_post_ID, comment_author, comment_author_email, comment_author_url,
				comment_date, comment_content, comment_approved, comment_parent, user_id
			FROM %s
			WHERE comment_approved = '1'`, e.conn.TableName("comments"))

		args := []any{}
		if postID != nil {
			query += " AND comment_post_ID = ?"
			args = append(args, *postID)
		}
		query += " ORDER BY comment_ID ASC LIMIT ? OFFSET ?"
		args = append(args, limit, max(offset, 0))

		comments, err := queryRows(ctx, db, query, args, func(rows *sql.Rows) (models.LegacyComment, error) {
			var c models.LegacyComment
			err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.AuthorEmail, &c.AuthorURL,
				&c.Date, &c.Content, &c.Approved, &c.Parent, &c.UserID)
			return c, err
		})
		if err != nil {
			return nil, err
		}

		for i := range comments {
			if comments[i].Meta, err = e.loadMeta(ctx, db, "commentmeta", "comment_id", "meta_id", comments[i].ID); err != nil {
				return nil, err
			}
		}
		return comments, nil
	})
}

// Counts returns how many legacy records each category would process.
//
// Unlike the Get methods this reports errors, since callers use it for planning rather than migration.
func (e *Extractor) Counts(ctx context.Context) (map[models.Category]int, error) {
	db, err := e.conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	posts := e.conn.TableName("posts")
	inList := func(statuses []string) string {
		return "'" + strings.Join(statuses, "','") + "'"
	}

	queries := map[models.Category]string{
		models.Users:      fmt.Sprintf("SELECT COUNT(*) FROM %s", e.conn.TableName("users")),
		models.Posts:      fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE post_type = 'post' AND post_status IN (%s)", posts, inList(postStatuses)),
		models.Pages:      fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE post_type = 'page' AND post_status IN (%s)", posts, inList(postStatuses)),
		models.Media:      fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE post_type = 'attachment'", posts),
		models.Categories: fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE taxonomy = 'category'", e.conn.TableName("term_taxonomy")),
		models.Tags:       fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE taxonomy = 'post_tag'", e.conn.TableName("term_taxonomy")),
	}

	counts := make(map[models.Category]int, len(queries))
	for category, query := range queries {
		var n int
		if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", category, err)
		}
		counts[category] = n
	}
	return counts, nil
}

// extract opens a connection, runs fn and converts any failure into an empty result.
func extract[T any](ctx context.Context, e *Extractor, what string, limit int, fn func(db *sql.DB) ([]T, error)) []T {
	if limit <= 0 {
		return []T{}
	}

	db, err := e.conn.Connect(ctx)
	if err != nil {
		e.logger.Error("extraction aborted", "what", what, "error", err)
		return []T{}
	}
	defer db.Close()

	records, err := fn(db)
	if err != nil {
		e.logger.Error("extraction failed", "what", what, "error", err)
		return []T{}
	}
	if records == nil {
		records = []T{}
	}
	e.logger.Debug("extracted", "what", what, "count", len(records))
	return records
}

// withStatusFallback pages through rows of postType restricted to statuses.
//
// When no row of postType has one of those statuses the filter is dropped, so installations that only use
// nonstandard statuses still paginate over every row.
func withStatusFallback[T any](
	ctx context.Context,
	e *Extractor,
	db *sql.DB,
	columns, postType string,
	statuses []string,
	limit, offset int,
	scan func(*sql.Rows) (T, error),
) ([]T, error) {
	table := e.conn.TableName("posts")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")

	filtered := fmt.Sprintf("SELECT %s FROM %s WHERE post_type = ? AND post_status IN (%s) ORDER BY ID ASC LIMIT ? OFFSET ?",
		columns, table, placeholders)
	args := []any{postType}
	for _, s := range statuses {
		args = append(args, s)
	}

	records, err := queryRows(ctx, db, filtered, append(args, limit, max(offset, 0)), scan)
	if err != nil || len(records) > 0 {
		return records, err
	}

	var matching int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE post_type = ? AND post_status IN (%s)", table, placeholders)
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&matching); err != nil {
		return nil, fmt.Errorf("failed to count %s rows: %w", postType, err)
	}
	if matching > 0 {
		return records, nil
	}

	e.logHistogram(ctx, db, fmt.Sprintf("SELECT post_type, post_status, COUNT(*) FROM %s GROUP BY post_type, post_status", table),
		"no rows with standard statuses, retrying without status filter", "post_type", postType)

	unfiltered := fmt.Sprintf("SELECT %s FROM %s WHERE post_type = ? ORDER BY ID ASC LIMIT ? OFFSET ?", columns, table)
	return queryRows(ctx, db, unfiltered, []any{postType, limit, max(offset, 0)}, scan)
}

// postTerms returns the terms of taxonomy attached to a post.
func (e *Extractor) postTerms(ctx context.Context, db *sql.DB, postID int64, taxonomy string) ([]models.TermRef, error) {
	query := fmt.Sprintf(`
		SELECT t.term_id, t.name, t.slug
		FROM %s t
		INNER JOIN %s tt ON t.term_id = tt.term_id
		INNER JOIN %s tr ON tt.term_taxonomy_id = tr.term_taxonomy_id
		WHERE tt.taxonomy = ? AND tr.object_id = ?
		ORDER BY t.term_id ASC`,
		e.conn.TableName("terms"), e.conn.TableName("term_taxonomy"), e.conn.TableName("term_relationships"))

	return queryRows(ctx, db, query, []any{taxonomy, postID}, func(rows *sql.Rows) (models.TermRef, error) {
		var ref models.TermRef
		err := rows.Scan(&ref.ID, &ref.Name, &ref.Slug)
		return ref, err
	})
}

// loadMeta reads a meta table for one owner; the first value of a repeated key wins.
func (e *Extractor) loadMeta(ctx context.Context, db *sql.DB, table, ownerColumn, idColumn string, ownerID int64) (models.Meta, error) {
	query := fmt.Sprintf("SELECT meta_key, meta_value FROM %s WHERE %s = ? ORDER BY %s ASC",
		e.conn.TableName(table), ownerColumn, idColumn)

	rows, err := db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	meta := models.Meta{}
	for rows.Next() {
		var key, value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		if !key.Valid {
			continue
		}
		if _, seen := meta[key.String]; !seen {
			meta[key.String] = value.String
		}
	}
	return meta, rows.Err()
}

// logHistogram logs a (key, subkey, count) breakdown at debug level to explain an empty page.
func (e *Extractor) logHistogram(ctx context.Context, db *sql.DB, query, msg string, kv ...any) {
	type bucket struct {
		key, sub string
		count    int
	}

	buckets, err := queryRows(ctx, db, query, nil, func(rows *sql.Rows) (bucket, error) {
		var b bucket
		err := rows.Scan(&b.key, &b.sub, &b.count)
		return b, err
	})
	if err != nil {
		e.logger.Debug("failed to build histogram", "error", err)
		return
	}

	parts := make([]string, 0, len(buckets))
	for _, b := range buckets {
		if b.sub != "" {
			parts = append(parts, fmt.Sprintf("%s/%s=%d", b.key, b.sub, b.count))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%d", b.key, b.count))
		}
	}
	e.logger.Debug(msg, append(kv, "histogram", strings.Join(parts, " "))...)
}

// queryRows runs query and scans every row with scan.
func queryRows[T any](ctx context.Context, db *sql.DB, query string, args []any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}
