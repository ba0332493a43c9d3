package store

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"itermp/pkg/config"
	"itermp/pkg/spec"
)

const (
	ext = ".json"

	// BasicName is the template seeded on first use.
	BasicName = "basic"
)

//go:embed bundled/basic.json
var basicTemplate []byte

// BasicTemplate returns a copy of the bundled default document.
func BasicTemplate() []byte {
	return bytes.Clone(basicTemplate)
}

// Store maps template names to files under the template directory, plus the
// unnamed local configuration in the working directory.
//
// The store does not lock. Concurrent invocations against the same
// directory are last-writer-wins.
type Store struct {
	dir   string
	local string
}

func New(rt config.Runtime) *Store {
	if rt.LocalConfigName == "" {
		rt.LocalConfigName = config.Default().LocalConfig
	}
	return &Store{
		dir:   rt.TemplateDir,
		local: rt.LocalConfigPath(),
	}
}

// Dir is the template directory.
func (s *Store) Dir() string { return s.dir }

// LocalPath is the local configuration path.
func (s *Store) LocalPath() string { return s.local }

// TemplatePath returns the file backing name.
func (s *Store) TemplatePath(name string) (string, error) {
	if err := spec.ValidateTemplateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+ext), nil
}

// InitResult reports what Init had to create.
type InitResult struct {
	Dir         string
	CreatedDir  bool
	SeededBasic bool
}

// Init makes sure the template directory exists and holds the basic
// template. Calling it again once both exist changes nothing.
func (s *Store) Init() (InitResult, error) {
	res := InitResult{Dir: s.dir}
	if _, err := os.Stat(s.dir); err != nil {
		if !os.IsNotExist(err) {
			return res, errors.Wrapf(err, "failed to stat template directory %q", s.dir)
		}
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return res, errors.Wrapf(err, "failed to create template directory %q", s.dir)
		}
		res.CreatedDir = true
	}
	if !s.Exists(BasicName) {
		path, _ := s.TemplatePath(BasicName)
		if err := os.WriteFile(path, basicTemplate, 0o644); err != nil {
			return res, errors.Wrapf(err, "failed to write template %q", BasicName)
		}
		res.SeededBasic = true
	}
	return res, nil
}

// Exists reports whether a template named name is stored.
func (s *Store) Exists(name string) bool {
	path, err := s.TemplatePath(name)
	if err != nil {
		return false
	}
	return isFile(path)
}

// LocalExists reports whether the local configuration exists.
func (s *Store) LocalExists() bool {
	return isFile(s.local)
}

// ListAll returns every stored template name, sorted. Files whose stem
// cannot be addressed by name (surrounding whitespace, an empty stem) are
// left out.
func (s *Store) ListAll() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list templates")
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ext {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if stem != strings.TrimSpace(stem) || spec.ValidateTemplateName(stem) != nil {
			continue
		}
		out = append(out, stem)
	}
	sort.Strings(out)
	return out, nil
}

// ReadRaw returns the stored bytes of a template, or of the local
// configuration when name is empty.
func (s *Store) ReadRaw(name string) ([]byte, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &DocumentError{Kind: ErrNotFound, Name: name, Path: path, Err: err}
		}
		return nil, errors.Wrapf(err, "failed to read %q", path)
	}
	return b, nil
}

// Load reads and parses a template, or the local configuration when name is
// empty.
func (s *Store) Load(name string) (*spec.PaneSpec, error) {
	b, err := s.ReadRaw(name)
	if err != nil {
		return nil, err
	}
	doc, err := spec.Parse(b)
	if err != nil {
		path, _ := s.pathFor(name)
		return nil, &DocumentError{Kind: ErrMalformed, Name: name, Path: path, Err: err}
	}
	return doc, nil
}

// CopyToLocal overwrites the local configuration with the template's bytes.
func (s *Store) CopyToLocal(name string) error {
	if name == "" {
		return errors.New("template name is required")
	}
	b, err := s.ReadRaw(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.local, b, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %q", s.local)
	}
	return nil
}

// CopyFromLocal stores the local configuration's bytes under name,
// overwriting any existing template.
func (s *Store) CopyFromLocal(name string) error {
	path, err := s.TemplatePath(name)
	if err != nil {
		return err
	}
	b, err := s.ReadRaw("")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create template directory")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write template %q", name)
	}
	return nil
}

// Delete removes a template. Callers check Exists first.
func (s *Store) Delete(name string) error {
	path, err := s.TemplatePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return errors.Wrapf(err, "failed to delete template %q", name)
	}
	return nil
}

// InitLocal writes the bundled basic document as the local configuration.
func (s *Store) InitLocal() error {
	if err := os.WriteFile(s.local, basicTemplate, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %q", s.local)
	}
	return nil
}

func (s *Store) pathFor(name string) (string, error) {
	if name == "" {
		return s.local, nil
	}
	return s.TemplatePath(name)
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
