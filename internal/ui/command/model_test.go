package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"book", Book, true},
		{"  Checkin ", Checkin, true},
		{"mood", Checkin, true},
		{"q", Quit, true},
		{"clear", Clear, true},
		{"launch", "launch", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Resolve(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80)
	m.Focus()
	for _, r := range "h" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg(History), cmd())
}

func TestEmptyEnterCloses(t *testing.T) {
	m := New(80)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
