package build

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/conneroisu/coda/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProject(t *testing.T, sources ...string) *config.ProjectConfig {
	t.Helper()
	dir := t.TempDir()
	buildDir := filepath.Join(dir, "build")
	require.NoError(t, os.MkdirAll(buildDir, 0755))

	return &config.ProjectConfig{
		ProjectName: "test",
		Compiler:    "cc",
		OutputPath:  filepath.Join(dir, "dist", "test"),
		SourceFiles: writeSources(t, dir, sources...),
		BuildDir:    buildDir,
	}
}

func TestOrchestratorBuildSuccess(t *testing.T) {
	runner := &recordingRunner{}
	cfg := newProject(t, "int helper(void);", "int main(void) { return 0; }")
	cfg.CompilerFlags = []string{"-O2"}
	cfg.IncludePaths = []string{"inc"}

	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Format: "json", Output: &buf})

	orch := NewOrchestrator(NewCompiler(runner), logger)
	result := orch.Build(context.Background(), cfg)

	require.True(t, result.Succeeded(), "%v", result.Err)
	assert.Empty(t, result.Phase)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	expected := []string{"cc", "-o", cfg.OutputPath, cfg.AggregatePath(), "-Wall", "-Wextra", "-O2", "-Iinc"}
	assert.Equal(t, expected, result.Argv)
	assert.Equal(t, [][]string{expected}, runner.Calls())

	data, err := os.ReadFile(cfg.AggregatePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "int main(void) { return 0; }")

	assert.Contains(t, buf.String(), `"msg":"Build succeeded"`)
	assert.Contains(t, buf.String(), `"build_id":"`+result.ID+`"`)
}

func TestOrchestratorUnreadableSourceNeverSpawns(t *testing.T) {
	runner := &recordingRunner{}
	cfg := newProject(t, "int ok;")
	cfg.SourceFiles = append(cfg.SourceFiles, filepath.Join(t.TempDir(), "gone.c"))

	result := NewOrchestrator(NewCompiler(runner), nil).Build(context.Background(), cfg)

	require.False(t, result.Succeeded())
	assert.Equal(t, PhaseAggregation, result.Phase)
	assert.True(t, codaerrors.HasCode(result.Err, codaerrors.CodeSourceUnreadable))
	assert.Nil(t, result.Argv)
	assert.Empty(t, runner.Calls())
}

func TestOrchestratorMissingBuildDirNeverSpawns(t *testing.T) {
	runner := &recordingRunner{}
	cfg := newProject(t, "int ok;")
	cfg.BuildDir = filepath.Join(t.TempDir(), "absent")

	result := NewOrchestrator(NewCompiler(runner), nil).Build(context.Background(), cfg)

	assert.Equal(t, PhaseAggregation, result.Phase)
	assert.True(t, codaerrors.IsType(result.Err, codaerrors.ErrorTypeIO))
	assert.Empty(t, runner.Calls())
}

func TestOrchestratorCompileFailureKeepsAggregate(t *testing.T) {
	runner := &recordingRunner{
		err: codaerrors.NewCompileError(codaerrors.CodeNonZeroExit, "compiler exited with non-zero status", nil),
	}
	cfg := newProject(t, "int broken(")

	result := NewOrchestrator(NewCompiler(runner), nil).Build(context.Background(), cfg)

	assert.Equal(t, PhaseCompile, result.Phase)
	assert.True(t, codaerrors.HasCode(result.Err, codaerrors.CodeNonZeroExit))
	assert.Len(t, runner.Calls(), 1)
	assert.FileExists(t, cfg.AggregatePath())
}

func TestOrchestratorRepeatedBuildsAreIndependent(t *testing.T) {
	runner := &recordingRunner{}
	cfg := newProject(t, "int v = 1;")
	orch := NewOrchestrator(NewCompiler(runner), nil)

	first := orch.Build(context.Background(), cfg)
	require.NoError(t, os.WriteFile(cfg.SourceFiles[0], []byte("int v = 2;"), 0644))
	second := orch.Build(context.Background(), cfg)

	assert.True(t, first.Succeeded())
	assert.True(t, second.Succeeded())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, runner.Calls(), 2)

	data, err := os.ReadFile(cfg.AggregatePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "int v = 2;")
	assert.NotContains(t, string(data), "int v = 1;")
}

func TestOrchestratorCallbacksAndMetrics(t *testing.T) {
	runner := &recordingRunner{}
	cfg := newProject(t, "int x;")
	metrics := NewBuildMetrics()

	orch := NewOrchestrator(NewCompiler(runner), nil)
	orch.SetMetrics(metrics)

	var order []string
	orch.AddCallback(func(r *BuildResult) { order = append(order, "first:"+r.ID) })
	orch.AddCallback(func(r *BuildResult) { order = append(order, "second:"+r.ID) })

	result := orch.Build(context.Background(), cfg)

	assert.Equal(t, []string{"first:" + result.ID, "second:" + result.ID}, order)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.builds.WithLabelValues("success", "")))
}

func TestOrchestratorMapsDiagnosticsToSources(t *testing.T) {
	exe, _ := fakeCompilerPath(t, "fail")
	cfg := newProject(t, "int a;\nint b\n", "int main(void) { return 0; }")
	cfg.Compiler = exe

	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelInfo, Format: "json", Output: &buf})
	runner := &ExecRunner{Stdout: io.Discard, Stderr: io.Discard}

	result := NewOrchestrator(NewCompiler(runner), logger).Build(context.Background(), cfg)

	require.False(t, result.Succeeded())
	assert.Equal(t, PhaseCompile, result.Phase)
	require.Len(t, result.Diagnostics, 1)

	d := result.Diagnostics[0]
	assert.Equal(t, cfg.SourceFiles[0], d.File)
	assert.Equal(t, 2, d.Line)
	assert.Equal(t, "expected ';'", d.Message)
	assert.Contains(t, buf.String(), `"location":"`+cfg.SourceFiles[0]+`:2:1"`)
}
