package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Package spec defines the pane layout document used by itermp.
//
// Files:
//   - ./itermp.json (local configuration, one per working directory)
//   - ~/.itermp/<name>.json (named templates)
//
// A document is a tree of panes. The root describes the window's first
// session; every child under "split" is carved out of its parent pane.
//
// Example:
//
//	{
//	  "profile": "Perdy",
//	  "rows": 80,
//	  "command": "vi",
//	  "split": [
//	    {"splitType": "horizontal", "profile": "Perdy Gear", "command": "npm start"},
//	    {"splitType": "vertical", "columns": 30}
//	  ]
//	}
//
// Profile and command strings are written into the generated script as-is.
// Embedded double quotes are not escaped.

// SplitType declares how a pane was split off from its parent.
type SplitType string

const (
	Horizontal   SplitType = "horizontal"
	Vertical     SplitType = "vertical"
	Horizontally SplitType = "horizontally"
	Vertically   SplitType = "vertically"
)

// Valid reports whether t is one of the recognized spellings.
func (t SplitType) Valid() bool {
	switch t {
	case Horizontal, Vertical, Horizontally, Vertically:
		return true
	}
	return false
}

// PaneSpec is one pane and its nested splits.
type PaneSpec struct {
	// Profile is the terminal profile name. Empty means the default profile.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// Command is typed into the pane after the directory change.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	Rows    *int `json:"rows,omitempty" yaml:"rows,omitempty"`
	Columns *int `json:"columns,omitempty" yaml:"columns,omitempty"`

	// SplitType is required on every non-root pane.
	SplitType SplitType `json:"splitType,omitempty" yaml:"splitType,omitempty"`

	Split Splits `json:"split,omitzero" yaml:"split,omitempty"`

	// Fullscreen is only honored on the root.
	Fullscreen bool `json:"fullscreen,omitempty" yaml:"fullscreen,omitempty"`
}

// paneJSON mirrors PaneSpec on the wire. "type" is the older key for splitType.
type paneJSON struct {
	Profile    string    `json:"profile,omitempty"`
	Command    string    `json:"command,omitempty"`
	Rows       *int      `json:"rows,omitempty"`
	Columns    *int      `json:"columns,omitempty"`
	SplitType  SplitType `json:"splitType,omitempty"`
	Type       SplitType `json:"type,omitempty"`
	Split      Splits    `json:"split,omitempty"`
	Fullscreen bool      `json:"fullscreen,omitempty"`
}

func (p *PaneSpec) UnmarshalJSON(b []byte) error {
	var raw paneJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st := raw.SplitType
	if st == "" {
		st = raw.Type
	}
	*p = PaneSpec{
		Profile:    raw.Profile,
		Command:    raw.Command,
		Rows:       raw.Rows,
		Columns:    raw.Columns,
		SplitType:  st,
		Split:      raw.Split,
		Fullscreen: raw.Fullscreen,
	}
	return nil
}

// Splits holds zero, one, or many child panes.
//
// On the wire "split" may be a single object or an array; both decode here
// and Children always returns the normalized slice.
type Splits struct {
	children []PaneSpec
	single   bool
}

// One returns a Splits holding a single child written as an object.
func One(child PaneSpec) Splits {
	return Splits{children: []PaneSpec{child}, single: true}
}

// Many returns a Splits holding an ordered list of children.
func Many(children ...PaneSpec) Splits {
	return Splits{children: children}
}

// Children returns the child panes in document order.
func (s Splits) Children() []PaneSpec { return s.children }

// Len returns the number of children.
func (s Splits) Len() int { return len(s.children) }

// IsZero lets encoders omit an empty split.
func (s Splits) IsZero() bool { return len(s.children) == 0 }

func (s *Splits) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = Splits{}
		return nil
	case b[0] == '[':
		var many []PaneSpec
		if err := json.Unmarshal(b, &many); err != nil {
			return err
		}
		*s = Many(many...)
		return nil
	case b[0] == '{':
		var one PaneSpec
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = One(one)
		return nil
	default:
		return errors.Errorf("split must be an object or an array (got %s)", truncate(string(b), 32))
	}
}

func (s Splits) MarshalJSON() ([]byte, error) {
	if s.single && len(s.children) == 1 {
		return json.Marshal(s.children[0])
	}
	if s.children == nil {
		return []byte("null"), nil
	}
	return json.Marshal(s.children)
}

func (s Splits) MarshalYAML() (interface{}, error) {
	if s.single && len(s.children) == 1 {
		return s.children[0], nil
	}
	return s.children, nil
}

// ValidationError points at the offending field of a document.
type ValidationError struct {
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return e.Path + ": " + e.Msg
}

// Validate checks the structural requirements the compiler depends on.
func (p *PaneSpec) Validate() error {
	if p == nil {
		return &ValidationError{Msg: "empty document"}
	}
	return p.validate("", true)
}

func (p *PaneSpec) validate(path string, root bool) error {
	if !root {
		if p.SplitType == "" {
			return &ValidationError{Path: join(path, "splitType"), Msg: "is required on split panes"}
		}
		if !p.SplitType.Valid() {
			return &ValidationError{
				Path: join(path, "splitType"),
				Msg:  fmt.Sprintf("must be horizontal or vertical (got %q)", string(p.SplitType)),
			}
		}
		if p.Fullscreen {
			return &ValidationError{Path: join(path, "fullscreen"), Msg: "is only allowed on the root pane"}
		}
	}
	if p.Rows != nil && *p.Rows <= 0 {
		return &ValidationError{Path: join(path, "rows"), Msg: fmt.Sprintf("must be positive (got %d)", *p.Rows)}
	}
	if p.Columns != nil && *p.Columns <= 0 {
		return &ValidationError{Path: join(path, "columns"), Msg: fmt.Sprintf("must be positive (got %d)", *p.Columns)}
	}
	for i := range p.Split.children {
		child := &p.Split.children[i]
		if err := child.validate(join(path, fmt.Sprintf("split[%d]", i)), false); err != nil {
			return err
		}
	}
	return nil
}

// Depth returns the number of pane levels below p.
func (p *PaneSpec) Depth() int {
	d := 0
	for i := range p.Split.children {
		if cd := p.Split.children[i].Depth() + 1; cd > d {
			d = cd
		}
	}
	return d
}

// Parse decodes and validates a JSON document.
func Parse(b []byte) (*PaneSpec, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("document must be an object, got null")
	}
	var p PaneSpec
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ValidateTemplateName checks that name is usable as a file stem in the
// template directory. Any stem is accepted except ones that would escape the
// directory or name it.
func ValidateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty template name")
	}
	if name == "." || name == ".." {
		return errors.Errorf("invalid template name %q", name)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return errors.Errorf("invalid template name %q (contains a path separator)", name)
	}
	return nil
}

// IntPtr is a convenience for building documents in code.
func IntPtr(v int) *int { return &v }

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
