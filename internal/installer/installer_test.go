package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/conneroisu/coda/internal/registry"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUpstream creates a local git repository with one committed header.
func newUpstream(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vec.h"), []byte("#define VEC 1\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("vec.h")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, hash.String()
}

func testRegistry(t *testing.T, name, url string) *registry.Registry {
	t.Helper()
	doc := fmt.Sprintf("categories:\n  - name: test\n    packages:\n      - {name: %q, url: %q}\n", name, url)
	r, err := registry.Parse([]byte(doc))
	require.NoError(t, err)
	return r
}

func TestInstall(t *testing.T) {
	upstream, commit := newUpstream(t)
	project := t.TempDir()
	cfgPath := filepath.Join(project, "coda.json")
	require.NoError(t, config.Write(cfgPath, config.Default("demo"), false))

	inst := New(Options{
		Registry:   testRegistry(t, "vector.h", upstream),
		ModulesDir: filepath.Join(project, "modules"),
		ConfigPath: cfgPath,
	})

	result, err := inst.Install(context.Background(), "vector.h")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(project, "modules", "vector.h"), result.Path)
	assert.Equal(t, commit, result.Commit)
	assert.True(t, result.ConfigUpdated)
	assert.FileExists(t, filepath.Join(result.Path, "vec.h"))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, upstream, cfg.Dependencies["vector.h"])
	assert.Equal(t, "demo", cfg.ProjectName)
}

func TestInstallUnknownPackage(t *testing.T) {
	project := t.TempDir()
	inst := New(Options{
		Registry:   testRegistry(t, "known", "/nowhere"),
		ModulesDir: filepath.Join(project, "modules"),
		ConfigPath: filepath.Join(project, "coda.json"),
	})

	_, err := inst.Install(context.Background(), "unknown")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NoDirExists(t, filepath.Join(project, "modules"))
	assert.NoFileExists(t, filepath.Join(project, "coda.json"))
}

func TestInstallCloneFailure(t *testing.T) {
	project := t.TempDir()
	inst := New(Options{
		Registry:   testRegistry(t, "ghost", filepath.Join(t.TempDir(), "not-a-repo")),
		ModulesDir: filepath.Join(project, "modules"),
		ConfigPath: filepath.Join(project, "coda.json"),
	})

	_, err := inst.Install(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, codaerrors.HasCode(err, codaerrors.CodeCloneFailed))
	assert.NoDirExists(t, filepath.Join(project, "modules", "ghost"))
	assert.NoFileExists(t, filepath.Join(project, "coda.json"))
}

func TestInstallExistingDestination(t *testing.T) {
	upstream, _ := newUpstream(t)
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "modules", "pkg"), 0755))

	inst := New(Options{
		Registry:   testRegistry(t, "pkg", upstream),
		ModulesDir: filepath.Join(project, "modules"),
		ConfigPath: filepath.Join(project, "coda.json"),
	})

	_, err := inst.Install(context.Background(), "pkg")
	assert.True(t, codaerrors.HasCode(err, codaerrors.CodeCloneFailed))
}

func TestInstallConfigUpdateFailureIsWarning(t *testing.T) {
	upstream, _ := newUpstream(t)
	project := t.TempDir()

	inst := New(Options{
		Registry:   testRegistry(t, "pkg", upstream),
		ModulesDir: filepath.Join(project, "modules"),
		ConfigPath: filepath.Join(project, "missing-dir", "coda.json"),
	})

	result, err := inst.Install(context.Background(), "pkg")
	require.NoError(t, err)
	assert.False(t, result.ConfigUpdated)
	assert.DirExists(t, result.Path)
}
