package applescript

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"itermp/pkg/spec"
)

// Compiler turns a pane layout document into an AppleScript program that
// recreates the layout in iTerm2.
//
// Output shape:
//
//	set dircommand to "cd <cwd>"
//
//	tell application "iTerm2"
//	  activate
//	  create window with <profile>
//	  tell current session of current window
//	    <pane body>
//	  end tell
//	end tell
//	[fullscreen block]
//
// A pane body is: size directives, the directory change, the command, then
// one nested "tell (split ...)" block per child in document order. Siblings
// sit at the same depth; a child's own splits nest inside its block.
//
// The compiler is pure: the working directory is an argument, nothing is read
// from the process environment.
//
// Policy is the one exception to accepting every well-formed document:
// layouts nested deeper than MaxDepth or holding more than MaxPanes panes are
// refused. The limits come from the max_depth and max_panes settings.
type Compiler struct {
	// Application is the scripting target. Defaults to "iTerm2".
	Application string

	Policy Policy
}

// Policy bounds the size of documents the compiler accepts.
type Policy struct {
	// MaxDepth is the deepest split nesting accepted.
	MaxDepth int

	// MaxPanes bounds the total pane count (root included).
	MaxPanes int
}

const DefaultApplication = "iTerm2"

func DefaultPolicy() Policy {
	return Policy{
		MaxDepth: 32,
		MaxPanes: 256,
	}
}

func NewCompiler() *Compiler {
	return &Compiler{
		Application: DefaultApplication,
		Policy:      DefaultPolicy(),
	}
}

// Compile renders root with the default compiler.
func Compile(root *spec.PaneSpec, cwd string) (string, error) {
	return NewCompiler().Compile(root, cwd)
}

// Compile validates root and renders the script. Identical input always
// yields identical output.
func (c *Compiler) Compile(root *spec.PaneSpec, cwd string) (string, error) {
	if root == nil {
		return "", errors.New("compile: nil document")
	}
	if err := root.Validate(); err != nil {
		return "", errors.Wrap(err, "compile")
	}

	p := c.Policy
	if p.MaxDepth <= 0 {
		p.MaxDepth = DefaultPolicy().MaxDepth
	}
	if p.MaxPanes <= 0 {
		p.MaxPanes = DefaultPolicy().MaxPanes
	}
	if d := root.Depth(); d > p.MaxDepth {
		return "", errors.Errorf("compile: split nesting too deep (%d > %d)", d, p.MaxDepth)
	}
	if n := countPanes(root); n > p.MaxPanes {
		return "", errors.Errorf("compile: too many panes (%d > %d)", n, p.MaxPanes)
	}

	app := strings.TrimSpace(c.Application)
	if app == "" {
		app = DefaultApplication
	}

	prog := []*block{
		scope(fmt.Sprintf("tell application %q", app),
			line("activate"),
			line("create window with "+profileClause(root.Profile)),
			scope("tell current session of current window", paneBody(root)...),
		),
	}
	if root.Fullscreen {
		prog = append(prog, scope(
			fmt.Sprintf("tell application \"System Events\" to tell process %q", app),
			line(`set value of attribute "AXFullScreen" of window 1 to true`),
		))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "set dircommand to \"cd %s\"\n\n", cwd)
	for _, blk := range prog {
		blk.render(&b, 0)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func paneBody(p *spec.PaneSpec) []*block {
	var out []*block
	if p.Rows != nil {
		out = append(out, line(fmt.Sprintf("set rows to %d", *p.Rows)))
	}
	if p.Columns != nil {
		out = append(out, line(fmt.Sprintf("set columns to %d", *p.Columns)))
	}
	out = append(out, line("write text (dircommand as text)"))
	if p.Command != "" {
		out = append(out, line(fmt.Sprintf("write text \"%s\"", p.Command)))
	}
	kids := p.Split.Children()
	for i := range kids {
		child := &kids[i]
		open := fmt.Sprintf("tell (split %s with %s)", child.SplitType, profileClause(child.Profile))
		out = append(out, scope(open, paneBody(child)...))
	}
	return out
}

// profileClause quotes a named profile verbatim. Embedded quotes are not
// escaped; see the package doc of spec.
func profileClause(name string) string {
	if name == "" {
		return "default profile"
	}
	return fmt.Sprintf("profile \"%s\"", name)
}

func countPanes(p *spec.PaneSpec) int {
	n := 1
	kids := p.Split.Children()
	for i := range kids {
		n += countPanes(&kids[i])
	}
	return n
}

// block is either a single statement or a scope opened by text and closed
// with "end tell".
type block struct {
	text string
	body []*block
	// scoped distinguishes an empty scope from a plain statement.
	scoped bool
}

func line(text string) *block { return &block{text: text} }

func scope(open string, body ...*block) *block {
	return &block{text: open, body: body, scoped: true}
}

const indentUnit = "  "

func (b *block) render(w *strings.Builder, depth int) {
	pad := strings.Repeat(indentUnit, depth)
	w.WriteString(pad)
	w.WriteString(b.text)
	w.WriteByte('\n')
	if !b.scoped {
		return
	}
	for _, child := range b.body {
		child.render(w, depth+1)
	}
	w.WriteString(pad)
	w.WriteString("end tell\n")
}
