package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	backup  key.Binding
	restore key.Binding
	reset   key.Binding
	sync    key.Binding
	copy    key.Binding
	quit    key.Binding
	yes     key.Binding
	no      key.Binding
}

var keys = keyMap{
	backup:  key.NewBinding(key.WithKeys("b")),
	restore: key.NewBinding(key.WithKeys("r")),
	reset:   key.NewBinding(key.WithKeys("x")),
	sync:    key.NewBinding(key.WithKeys("s")),
	copy:    key.NewBinding(key.WithKeys("c")),
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	yes:     key.NewBinding(key.WithKeys("y")),
	no:      key.NewBinding(key.WithKeys("n", "esc")),
}
