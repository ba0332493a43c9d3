package prompt

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func feed(p picker, keys ...string) picker {
	for _, k := range keys {
		m, _ := p.Update(key(k))
		p = m.(picker)
	}
	return p
}

func templates() []Option {
	return []Option{
		{Label: "basic", Value: "basic"},
		{Label: "frontend", Value: "frontend"},
		{Label: "go-service", Value: "go-service"},
	}
}

func TestPicker_MoveAndPick(t *testing.T) {
	p := feed(newPicker("Available templates:", templates()), "j", "j", "enter")
	got, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, "go-service", got)

	p = feed(newPicker("Available templates:", templates()), "j", "j", "j", "k", "enter")
	got, err = p.result()
	require.NoError(t, err)
	assert.Equal(t, "frontend", got)
}

func TestPicker_Filter(t *testing.T) {
	p := feed(newPicker("Available templates:", templates()), "/", "g", "s", "enter")
	got, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, "go-service", got)
}

func TestPicker_FilterNoMatch(t *testing.T) {
	p := feed(newPicker("q", templates()), "/", "z", "z", "enter")
	assert.Empty(t, p.filtered)
	_, err := p.result()
	assert.ErrorIs(t, err, ErrAborted)
	assert.Contains(t, p.View(), "(no matches)")
}

func TestPicker_Hotkey(t *testing.T) {
	actions := []Option{
		{Key: "r", Label: "run", Value: "run"},
		{Key: "d", Label: "delete", Value: "delete"},
		{Key: "s", Label: "save", Value: "save"},
	}
	p := feed(newPicker("Action:", actions), "d")
	got, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, "delete", got)
}

func TestPicker_HotkeyIgnoresFilteredOut(t *testing.T) {
	actions := []Option{
		{Key: "r", Label: "run", Value: "run"},
		{Key: "d", Label: "delete", Value: "delete"},
		{Key: "s", Label: "save", Value: "save"},
	}
	p := feed(newPicker("Action:", actions), "/", "s", "a", "esc", "d")
	assert.Equal(t, []int{2}, p.filtered)
	_, err := p.result()
	assert.ErrorIs(t, err, ErrAborted)

	p = feed(p, "s")
	got, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, "save", got)
}

func TestPicker_Abort(t *testing.T) {
	for _, k := range []string{"esc", "q", "ctrl+c"} {
		p := feed(newPicker("q", templates()), "j", k)
		_, err := p.result()
		assert.ErrorIs(t, err, ErrAborted, k)
	}
}

func TestPicker_View(t *testing.T) {
	p := newPicker("Available templates:", templates())
	v := p.View()
	assert.Contains(t, v, "Available templates:")
	assert.Contains(t, v, "basic")
	assert.Contains(t, v, "go-service")

	p = feed(p, "enter")
	assert.Contains(t, p.View(), "basic")
}

func TestFuzzyContains(t *testing.T) {
	assert.True(t, fuzzyContains("go-service", "gs"))
	assert.True(t, fuzzyContains("anything", ""))
	assert.False(t, fuzzyContains("basic", "cb"))
}

func TestTerminal_SelectNoOptions(t *testing.T) {
	_, err := NewTerminal().Select(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrNoOptions)
}
