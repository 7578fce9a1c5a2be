package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/wpx/internal/models"
)

var _ list.Item = categoryItem{}

// categoryItem wraps a [models.Category] and its selection state to implement [list.Item].
type categoryItem struct {
	category models.Category
	count    int
	known    bool
	selected bool
}

func (i categoryItem) FilterValue() string { return i.category.String() }
func (i categoryItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.category)
}
func (i categoryItem) Description() string {
	if !i.known {
		return "count unavailable"
	}
	return fmt.Sprintf("%d records • %s", i.count, i.category.MigrationType())
}

func categoryItems(counts map[models.Category]int, selected map[models.Category]bool) []list.Item {
	items := make([]list.Item, len(models.AllCategories))
	for i, c := range models.AllCategories {
		n, ok := counts[c]
		items[i] = categoryItem{category: c, count: n, known: ok, selected: selected[c]}
	}
	return items
}
