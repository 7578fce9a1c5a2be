package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCountsFetched MsgKind = iota
	MsgProgressUpdate
	MsgRunComplete
)

type countsData struct {
	counts map[models.Category]int
	err    error
}

// countsFetchedMsg is the constructor for [MsgCountsFetched]
func countsFetchedMsg(counts map[models.Category]int, err error) Msg {
	return Msg{kind: MsgCountsFetched, data: countsData{counts, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(results []tasks.CategoryResult) Msg {
	return Msg{kind: MsgRunComplete, data: results}
}
