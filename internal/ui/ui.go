package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CategoryView ViewState = iota
	ConfirmView
	RunView
	ResultView
)

// Runner migrates every record of the given categories. [tasks.Processor] satisfies it.
type Runner interface {
	RunAll(ctx context.Context, categories []models.Category, batchSize int, progress chan<- tasks.ProgressUpdate) []tasks.CategoryResult
}

// Counter reports how many legacy records each category holds.
type Counter interface {
	Counts(ctx context.Context) (map[models.Category]int, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	runner    Runner
	counter   Counter
	batchSize int
	width     int
	height    int
	list      list.Model
	counts    map[models.Category]int
	selected  map[models.Category]bool
	progress  <-chan tasks.ProgressUpdate
	done      <-chan []tasks.CategoryResult
	last      tasks.ProgressUpdate
	finished  []string
	results   []tasks.CategoryResult
	err       error
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, runner Runner, counter Counter, batchSize int) *Model {
	m := &Model{
		ctx:       ctx,
		view:      CategoryView,
		runner:    runner,
		counter:   counter,
		batchSize: batchSize,
		selected:  map[models.Category]bool{},
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.list = list.New(categoryItems(nil, m.selected), list.NewDefaultDelegate(), 0, 0)
	m.list.Title = "WordPress Migration"
	m.list.SetFilteringEnabled(false)
	return m
}

// Init fetches record counts for the category list.
func (m *Model) Init() tea.Cmd {
	return m.fetchCounts()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case CategoryView:
			return m.handleCategoryKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case RunView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != RunView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCountsFetched:
		data := msg.data.(countsData)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.counts = data.counts
		m.refreshItems()

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.last = update
		if update.Phase == tasks.CategoryDone {
			m.finished = append(m.finished, update.Message)
		}
		return m, m.waitForProgress()

	case MsgRunComplete:
		m.results = msg.data.([]tasks.CategoryResult)
		m.progress, m.done = nil, nil
		m.view = ResultView
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case CategoryView:
		return m.renderCategories()
	case ConfirmView:
		return m.renderConfirm()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Selected returns the chosen categories in processing order.
func (m *Model) Selected() []models.Category {
	var out []models.Category
	for _, c := range models.AllCategories {
		if m.selected[c] {
			out = append(out, c)
		}
	}
	return out
}

// Results returns the outcome of the last run.
func (m *Model) Results() []tasks.CategoryResult {
	return m.results
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.list.SelectedItem().(categoryItem); ok {
			m.selected[item.category] = !m.selected[item.category]
			m.refreshItems()
		}
		return m, nil
	case key.Matches(msg, m.keys.all):
		all := len(m.Selected()) < len(models.AllCategories)
		for _, c := range models.AllCategories {
			m.selected[c] = all
		}
		m.refreshItems()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if len(m.Selected()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = RunView
		return m, tea.Batch(m.startRun(), m.spinner.Tick)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = CategoryView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = CategoryView
		m.results = nil
		m.finished = nil
		m.last = tasks.ProgressUpdate{}
		return m, m.fetchCounts()
	}
	return m, nil
}

func (m *Model) refreshItems() {
	m.list.SetItems(categoryItems(m.counts, m.selected))
}

func (m *Model) fetchCounts() tea.Cmd {
	return func() tea.Msg {
		counts, err := m.counter.Counts(m.ctx)
		return countsFetchedMsg(counts, err)
	}
}

// startRun launches the run in the background. Results arrive on a separate channel so the model is only
// mutated from Update.
func (m *Model) startRun() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan []tasks.CategoryResult, 1)
	m.progress, m.done = progress, done

	categories := m.Selected()
	go func() {
		done <- m.runner.RunAll(m.ctx, categories, m.batchSize, progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progress, m.done
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case results := <-done:
			return runCompleteMsg(results)
		}
	}
}

func (m *Model) renderCategories() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.list.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Start migration?")

	var b strings.Builder
	for _, c := range m.Selected() {
		if n, ok := m.counts[c]; ok {
			fmt.Fprintf(&b, "  • %s (%d records)\n", c, n)
		} else {
			fmt.Fprintf(&b, "  • %s\n", c)
		}
	}
	fmt.Fprintf(&b, "\nBatch size: %d\n", m.batchSize)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Migrating")

	var phase string
	switch m.last.Phase {
	case tasks.ExtractBatch:
		phase = m.last.Message
	case tasks.MigrateItem:
		phase = fmt.Sprintf("Migrating items (%d/%d)", m.last.Step, m.last.Total)
	default:
		phase = "Processing..."
	}

	var done strings.Builder
	for _, line := range m.finished {
		done.WriteString(styles.ok.Render("✓ "+line) + "\n")
	}

	return fmt.Sprintf("%s\n\n%s%s %s\n%s", title, done.String(), m.spinner.View(), phase, styles.help.Render(m.last.Message))
}

func (m *Model) renderResult() string {
	if len(m.results) == 0 {
		return styles.warn.Render("Nothing was migrated\n\nPress r to restart, q to quit")
	}

	var total models.RunResult
	var b strings.Builder
	for _, res := range m.results {
		total = total.Add(res.Result)
		line := fmt.Sprintf("%-10s %4d success %4d failed %4d skipped (%d batches, %s)",
			res.Category, res.Result.Success, res.Result.Failed, res.Result.Skipped, res.Batches, res.Elapsed.Round(time.Millisecond))
		b.WriteString(statusStyle(res.Result.Failed, res.Result.Skipped).Render(line) + "\n")
	}

	title := styles.ok.Render("✓ Migration Complete")
	if total.Failed > 0 {
		title = styles.warn.Render(fmt.Sprintf("Migration finished with %d failures", total.Failed))
	}
	summary := fmt.Sprintf("Total: %d success, %d failed, %d skipped", total.Success, total.Failed, total.Skipped)

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, b.String(), summary, m.help.ShortHelpView(helpKeys))
}
