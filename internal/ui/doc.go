// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single migration run:
//  1. [CategoryView] : Toggle categories, shown with their legacy record counts
//  2. [ConfirmView] : Confirm the selection and batch size
//  3. [RunView] : Follow progress updates while every page of each category is processed
//  4. [ResultView] : Per-category success, failure and skip counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a buffered channel from the processor; the final results arrive on their own channel.
//
// Keyboard navigation uses vim-style bindings (j/k, space, a, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
