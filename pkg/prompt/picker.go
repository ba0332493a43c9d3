package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

const maxVisible = 12

// picker is a filterable single-choice list.
//
// Keys: j/k or arrows move, / focuses the filter, enter picks, an option's
// Key picks it directly, esc/q/ctrl+c abort.
type picker struct {
	question string
	options  []Option
	filtered []int

	input    textinput.Model
	selected int
	scroll   int

	chosen  int
	aborted bool
}

func newPicker(question string, options []Option) picker {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter..."
	ti.CharLimit = 128
	ti.Width = 40
	ti.Blur()

	p := picker{
		question: question,
		options:  options,
		input:    ti,
		chosen:   -1,
	}
	p.recomputeFilter()
	return p
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		if p.input.Focused() {
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}
		return p, nil
	}

	if k.String() == "ctrl+c" {
		p.aborted = true
		return p, tea.Quit
	}

	if p.input.Focused() {
		switch k.String() {
		case "esc":
			p.input.Blur()
			return p, nil
		case "enter":
			p.input.Blur()
			return p.accept()
		case "up", "ctrl+p":
			p.move(-1)
			return p, nil
		case "down", "ctrl+n":
			p.move(1)
			return p, nil
		default:
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(k)
			p.recomputeFilter()
			return p, cmd
		}
	}

	switch k.String() {
	case "esc", "q":
		p.aborted = true
		return p, tea.Quit
	case "enter":
		return p.accept()
	case "j", "down":
		p.move(1)
	case "k", "up":
		p.move(-1)
	case "g", "home":
		p.move(-len(p.filtered))
	case "G", "end":
		p.move(len(p.filtered))
	case "/":
		p.input.Focus()
		return p, textinput.Blink
	default:
		for _, i := range p.filtered {
			if key := p.options[i].Key; key != "" && k.String() == key {
				p.chosen = i
				return p, tea.Quit
			}
		}
	}
	return p, nil
}

func (p picker) accept() (tea.Model, tea.Cmd) {
	if len(p.filtered) == 0 {
		return p, nil
	}
	p.chosen = p.filtered[p.selected]
	return p, tea.Quit
}

func (p *picker) recomputeFilter() {
	q := strings.ToLower(strings.TrimSpace(p.input.Value()))
	p.filtered = p.filtered[:0]
	for i, o := range p.options {
		if fuzzyContains(strings.ToLower(o.Label), q) {
			p.filtered = append(p.filtered, i)
		}
	}
	if len(p.filtered) == 0 {
		p.selected = 0
		p.scroll = 0
		return
	}
	p.selected = clampInt(p.selected, 0, len(p.filtered)-1)
	p.scroll = clampInt(p.scroll, 0, p.selected)
}

func (p *picker) move(delta int) {
	n := len(p.filtered)
	if n == 0 {
		p.selected = 0
		p.scroll = 0
		return
	}
	p.selected = clampInt(p.selected+delta, 0, n-1)
	if p.selected < p.scroll {
		p.scroll = p.selected
	} else if p.selected >= p.scroll+maxVisible {
		p.scroll = p.selected - maxVisible + 1
	}
}

func (p picker) result() (string, error) {
	if p.aborted || p.chosen < 0 {
		return "", ErrAborted
	}
	return p.options[p.chosen].Value, nil
}

func (p picker) View() string {
	if p.chosen >= 0 {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(p.question), hlStyle.Render(p.options[p.chosen].Label))
	}
	if p.aborted {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(p.question))
	if p.input.Focused() || p.input.Value() != "" {
		fmt.Fprintf(&b, "%s\n", hlStyle.Render(p.input.View()))
	}

	if len(p.filtered) == 0 {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render("(no matches)"))
	}
	end := minInt(len(p.filtered), p.scroll+maxVisible)
	for row := p.scroll; row < end; row++ {
		o := p.options[p.filtered[row]]
		prefix := "  "
		lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if row == p.selected {
			prefix = hlStyle.Render("> ")
			lineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
		}
		label := lineStyle.Render(o.Label)
		if o.Key != "" {
			label = keyStyle.Render("("+o.Key+") ") + label
		}
		fmt.Fprintf(&b, "%s%s\n", prefix, label)
	}

	fmt.Fprintf(&b, "%s\n", dimStyle.Render("j/k move · / filter · enter pick · esc cancel"))
	return b.String()
}

func fuzzyContains(hay, needle string) bool {
	// ordered subsequence match
	if needle == "" {
		return true
	}
	i := 0
	for _, r := range hay {
		if i >= len(needle) {
			break
		}
		if byte(r) == needle[i] {
			i++
		}
	}
	return i == len(needle)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
