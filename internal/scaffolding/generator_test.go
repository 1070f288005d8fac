package scaffolding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	result, err := Init(InitOptions{Dir: dir, ProjectName: "hello"})
	require.NoError(t, err)

	for _, d := range ProjectDirs {
		assert.DirExists(t, filepath.Join(dir, d))
	}
	assert.ElementsMatch(t, []string{"src/main.c", ".gitignore", "coda.json"}, result.Created)
	assert.Empty(t, result.Skipped)

	main, err := os.ReadFile(filepath.Join(dir, "src", "main.c"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "// Main entry point of hello.")
	assert.Contains(t, string(main), "int main(void) {")
	assert.Contains(t, string(main), `printf("Project initialized successfully by Coda.\n");`)

	cfg, err := config.Load(result.Config)
	require.NoError(t, err)
	assert.Equal(t, "hello", cfg.ProjectName)
	assert.Equal(t, "clang", cfg.Compiler)
	assert.Equal(t, "dist/app_name", cfg.OutputPath)
	assert.Equal(t, []string{"src/main.c"}, cfg.SourceFiles)
	assert.Empty(t, cfg.CompilerFlags)
	assert.Empty(t, cfg.Dependencies)
}

func TestInitDefaultName(t *testing.T) {
	dir := t.TempDir()

	result, err := Init(InitOptions{Dir: dir})
	require.NoError(t, err)

	cfg, err := config.Load(result.Config)
	require.NoError(t, err)
	assert.Equal(t, "NewCodaProject", cfg.ProjectName)
}

func TestInitRefusesExistingConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "coda.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"source_files":["a.c"]}`), 0644))

	_, err := Init(InitOptions{Dir: dir, ProjectName: "x"})
	require.Error(t, err)
	assert.True(t, codaerrors.HasCode(err, codaerrors.CodeConfigWrite))

	data, readErr := os.ReadFile(cfgPath)
	require.NoError(t, readErr)
	assert.Equal(t, `{"source_files":["a.c"]}`, string(data))
	assert.NoDirExists(t, filepath.Join(dir, "src"))
}

func TestInitKeepsExistingSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	mainPath := filepath.Join(dir, "src", "main.c")
	require.NoError(t, os.WriteFile(mainPath, []byte("int main(void) { return 7; }\n"), 0644))

	result, err := Init(InitOptions{Dir: dir, ProjectName: "keep"})
	require.NoError(t, err)

	assert.Equal(t, []string{"src/main.c"}, result.Skipped)
	data, err := os.ReadFile(mainPath)
	require.NoError(t, err)
	assert.Equal(t, "int main(void) { return 7; }\n", string(data))
}

func TestInitForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(InitOptions{Dir: dir, ProjectName: "first"})
	require.NoError(t, err)

	result, err := Init(InitOptions{Dir: dir, ProjectName: "second", Force: true})
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)

	cfg, err := config.Load(result.Config)
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.ProjectName)

	main, err := os.ReadFile(filepath.Join(dir, "src", "main.c"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "second")
}

func TestBuiltinTemplatesParse(t *testing.T) {
	for _, tmpl := range GetBuiltinTemplates() {
		t.Run(tmpl.Path, func(t *testing.T) {
			_, err := renderFile(filepath.Join(t.TempDir(), "out"), tmpl, TemplateContext{ProjectName: "p", Date: "2024-01-01"}, false)
			assert.NoError(t, err)
		})
	}
}
