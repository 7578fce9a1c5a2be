package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/wpx/internal/legacy"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

const commentsPreviewSize = 5

// Preview prints the first few legacy records of a category, or of approved comments.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	name := strings.ToLower(strings.TrimSpace(cmd.StringArg("category")))
	if name == "" {
		return fmt.Errorf("%w: category is required (one of %s, comments)", shared.ErrMissingArgument, categoryNames())
	}

	var rows []legacy.PreviewRow
	var detail string
	if name == "comments" {
		rows = r.extractor().PreviewComments(ctx, commentsPreviewSize)
		detail = "Date"
	} else {
		c, err := models.ParseCategory(name)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrUnknownCategory, err)
		}
		rows = r.extractor().Preview(ctx, c)
		detail = previewDetailHeader(c)
	}

	if cmd.Bool("json") {
		if rows == nil {
			rows = []legacy.PreviewRow{}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(rows) == 0 {
		return r.writePlain("No %s found\n", name)
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{strconv.FormatInt(row.ID, 10), row.Label, row.Detail})
	}
	return r.writePlain("%s\n", renderTable(r.output, []string{"ID", "Name", detail}, table, []columnAlignment{alignRight}))
}

func previewDetailHeader(c models.Category) string {
	switch c {
	case models.Users:
		return "Email"
	case models.Media:
		return "MIME type"
	case models.Categories, models.Tags:
		return "Slug"
	default:
		return "Date"
	}
}

func categoryNames() string {
	names := make([]string, len(models.AllCategories))
	for i, c := range models.AllCategories {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
