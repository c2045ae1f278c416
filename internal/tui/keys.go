package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Submit      key.Binding
	Source      key.Binding
	Cancel      key.Binding
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	ViewMode    key.Binding
	ChartView   key.Binding
	Download    key.Binding
	Team        key.Binding
	Plan        key.Binding
	Theme       key.Binding
	NewScan     key.Binding
	Search      key.Binding
	Severity    key.Binding
	ClearFilter key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "audit"),
	),
	Source: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch input"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "expand"),
	),
	ViewMode: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "grouped/all"),
	),
	ChartView: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "chart"),
	),
	Download: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "report"),
	),
	Team: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "team"),
	),
	Plan: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "plan"),
	),
	Theme: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "theme"),
	),
	NewScan: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new scan"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Severity: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "severity"),
	),
	ClearFilter: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear"),
	),
}
