package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the client.
type KeyMap struct {
	NextTab   key.Binding
	RecordTab key.Binding
	UploadTab key.Binding
	Record    key.Binding
	Browse    key.Binding
	Load      key.Binding
	Blur      key.Binding
	Submit    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch record/upload"),
		),
		RecordTab: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "record"),
		),
		UploadTab: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "upload"),
		),
		Record: key.NewBinding(
			key.WithKeys(" ", "r"),
			key.WithHelp("space", "start/stop recording"),
		),
		Browse: key.NewBinding(
			key.WithKeys("enter", "/"),
			key.WithHelp("enter", "edit file path"),
		),
		Load: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load file"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "done editing"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "process audio"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Record, k.Submit, k.Quit}
}

// FullHelp returns all bindings grouped by panel.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.RecordTab, k.UploadTab},
		{k.Record},
		{k.Browse, k.Load, k.Blur},
		{k.Submit, k.Quit, k.ForceQuit},
	}
}
