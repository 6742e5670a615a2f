package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the portal.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding
	Tab  key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Screens
	Dashboard key.Binding
	Book      key.Binding
	Checkin   key.Binding
	History   key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Notifications
	Dismiss  key.Binding
	ClearAll key.Binding

	// Booking
	Search key.Binding
	Submit key.Binding
	Edit   key.Binding

	// Appointment actions
	Cancel     key.Binding
	Reschedule key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next section"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Book: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "book"),
		),
		Checkin: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "check-in"),
		),
		History: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "history"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss notice"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear notices"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search slots"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "book slot"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit details"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel appointment"),
		),
		Reschedule: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "reschedule"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Command,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Tab, k.Select, k.Back, k.Quit},
		{k.Dashboard, k.Book, k.Checkin, k.History},
		{k.Command, k.Help, k.Refresh, k.Dismiss, k.ClearAll},
		{k.Edit, k.Search, k.Submit, k.Cancel, k.Reschedule},
	}
}
