package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itermp/pkg/config"
	"itermp/pkg/spec"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	cwd := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(cwd, 0o755))
	return New(config.Runtime{
		Cwd:             cwd,
		TemplateDir:     filepath.Join(root, "home", ".itermp"),
		LocalConfigName: "itermp.json",
	})
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestInit_Idempotent(t *testing.T) {
	s := newTestStore(t)

	res, err := s.Init()
	require.NoError(t, err)
	assert.True(t, res.CreatedDir)
	assert.True(t, res.SeededBasic)
	assert.True(t, s.Exists(BasicName))

	b, err := os.ReadFile(filepath.Join(s.Dir(), "basic.json"))
	require.NoError(t, err)
	assert.Equal(t, BasicTemplate(), b)

	res, err = s.Init()
	require.NoError(t, err)
	assert.Equal(t, InitResult{Dir: s.Dir()}, res)
}

func TestInit_KeepsExistingBasic(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Dir(), "basic.json"), `{"command":"custom"}`)

	res, err := s.Init()
	require.NoError(t, err)
	assert.False(t, res.CreatedDir)
	assert.False(t, res.SeededBasic)

	doc, err := s.Load(BasicName)
	require.NoError(t, err)
	assert.Equal(t, "custom", doc.Command)
}

func TestBasicTemplateIsValid(t *testing.T) {
	doc, err := spec.Parse(BasicTemplate())
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Profile)
	assert.NotEmpty(t, doc.Command)
}

func TestExistsAndList(t *testing.T) {
	s := newTestStore(t)

	names, err := s.ListAll()
	require.NoError(t, err)
	assert.Empty(t, names)

	writeFile(t, filepath.Join(s.Dir(), "zeta.json"), `{}`)
	writeFile(t, filepath.Join(s.Dir(), "alpha.json"), `{}`)
	writeFile(t, filepath.Join(s.Dir(), "notes.txt"), `x`)
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir(), "dir.json"), 0o755))

	names, err = s.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	assert.True(t, s.Exists("alpha"))
	assert.False(t, s.Exists("missing"))
	assert.False(t, s.Exists("dir"))
	assert.False(t, s.Exists("../project/itermp"))
	assert.False(t, s.LocalExists())

	writeFile(t, s.LocalPath(), `{}`)
	assert.True(t, s.LocalExists())
}

func TestListAll_EveryListedNameIsUsable(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Dir(), "my layout.json"), `{"command":"top"}`)
	writeFile(t, filepath.Join(s.Dir(), " padded.json"), `{}`)
	writeFile(t, filepath.Join(s.Dir(), ".json"), `{}`)

	names, err := s.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"my layout"}, names)

	for _, name := range names {
		assert.True(t, s.Exists(name), name)
		doc, err := s.Load(name)
		require.NoError(t, err, name)
		assert.Equal(t, "top", doc.Command)
		require.NoError(t, s.Delete(name), name)
		assert.NoFileExists(t, filepath.Join(s.Dir(), name+".json"))
	}
}

func TestNew_DefaultLocalConfigName(t *testing.T) {
	s := New(config.Runtime{Cwd: "/work", TemplateDir: "/tpl"})
	assert.Equal(t, filepath.Join("/work", "itermp.json"), s.LocalPath())
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsMalformed(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "config not found: template 'ghost'", err.Error())

	_, err = s.Load("")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), s.LocalPath())
}

func TestLoad_Malformed(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Dir(), "broken.json"), `{"profile": "P",`)

	_, err := s.Load("broken")
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.False(t, IsNotFound(err))

	var serr *json.SyntaxError
	assert.True(t, errors.As(err, &serr))

	_, nf := s.Load("ghost")
	assert.NotEqual(t, nf.Error(), err.Error())
	assert.Contains(t, err.Error(), "invalid config: template 'broken'")
}

func TestLoad_NullDocument(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.LocalPath(), "null\n")

	doc, err := s.Load("")
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, IsMalformed(err))
}

func TestLoad_InvalidStructure(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.LocalPath(), `{"split":{"command":"ls"}}`)

	_, err := s.Load("")
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	var verr *spec.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "split[0].splitType", verr.Path)
}

func TestCopyFromLocalRoundTrip(t *testing.T) {
	s := newTestStore(t)
	body := `{
  "profile": "P",
  "rows": 40,
  "split": [{"splitType": "horizontal", "command": "make watch"}]
}
`
	writeFile(t, s.LocalPath(), body)

	require.NoError(t, s.CopyFromLocal("t"))
	assert.True(t, s.Exists("t"))

	raw, err := s.ReadRaw("t")
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))

	saved, err := s.Load("t")
	require.NoError(t, err)
	local, err := s.Load("")
	require.NoError(t, err)
	assert.Equal(t, local, saved)
}

func TestCopyFromLocal_NoLocal(t *testing.T) {
	s := newTestStore(t)
	err := s.CopyFromLocal("t")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, s.Exists("t"))

	writeFile(t, s.LocalPath(), `{}`)
	assert.Error(t, s.CopyFromLocal("bad/name"))
}

func TestCopyToLocal_Overwrites(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Dir(), "web.json"), `{"command":"npm start"}`)
	writeFile(t, s.LocalPath(), `{"command":"old"}`)

	require.NoError(t, s.CopyToLocal("web"))
	b, err := os.ReadFile(s.LocalPath())
	require.NoError(t, err)
	assert.Equal(t, `{"command":"npm start"}`, string(b))

	err = s.CopyToLocal("ghost")
	assert.True(t, IsNotFound(err))
	assert.Error(t, s.CopyToLocal(""))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, filepath.Join(s.Dir(), "gone.json"), `{}`)

	require.NoError(t, s.Delete("gone"))
	assert.False(t, s.Exists("gone"))
	assert.Error(t, s.Delete("gone"))
}

func TestInitLocal(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.LocalPath(), `{"command":"old"}`)

	require.NoError(t, s.InitLocal())
	b, err := os.ReadFile(s.LocalPath())
	require.NoError(t, err)
	assert.Equal(t, BasicTemplate(), b)
}
