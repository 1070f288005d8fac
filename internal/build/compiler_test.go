package build

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner captures every argument vector instead of spawning.
type recordingRunner struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, argv []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), argv...))
	return r.err
}

func (r *recordingRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

// fakeCompilerPath returns the test binary, which acts as a compiler when
// fakeCompilerEnv is set (see TestMain).
func fakeCompilerPath(t *testing.T, mode string) (exe string, argvFile string) {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)

	argvFile = filepath.Join(t.TempDir(), "argv.txt")
	t.Setenv(fakeCompilerEnv, mode)
	t.Setenv(fakeArgvFileEnv, argvFile)
	return exe, argvFile
}

func TestExecRunnerSuccess(t *testing.T) {
	exe, argvFile := fakeCompilerPath(t, "ok")

	var stdout bytes.Buffer
	runner := NewExecRunner()
	runner.Stdout = &stdout

	err := runner.Run(context.Background(), []string{exe, "-o", "dist/app", "build/temp_coda.c"})
	require.NoError(t, err)

	assert.Equal(t, "compiled\n", stdout.String())

	recorded, err := os.ReadFile(argvFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"-o", "dist/app", "build/temp_coda.c"}, strings.Split(string(recorded), "\n"))
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	exe, _ := fakeCompilerPath(t, "fail")

	var stderr bytes.Buffer
	runner := NewExecRunner()
	runner.Stderr = &stderr

	err := runner.Run(context.Background(), []string{exe})
	require.Error(t, err)

	assert.True(t, codaerrors.IsType(err, codaerrors.ErrorTypeCompile))
	assert.True(t, codaerrors.HasCode(err, codaerrors.CodeNonZeroExit))

	var ce *codaerrors.CodaError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.Context["exit_code"])
	assert.Contains(t, stderr.String(), "error: expected ';'")
	assert.Equal(t, "temp_coda.c:3:1: error: expected ';'\n", ce.Context["stderr"])
}

func TestTailBufferKeepsLastBytes(t *testing.T) {
	tail := &tailBuffer{limit: 8}

	_, _ = tail.Write([]byte("abcdef"))
	_, _ = tail.Write([]byte("ghijkl"))

	assert.Equal(t, "efghijkl", tail.String())
	assert.Equal(t, 8, tail.Len())
}

func TestExecRunnerSpawnFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-cc")

	err := NewExecRunner().Run(context.Background(), []string{missing, "-o", "x"})
	require.Error(t, err)
	assert.True(t, codaerrors.IsType(err, codaerrors.ErrorTypeSpawn))
	assert.False(t, codaerrors.IsType(err, codaerrors.ErrorTypeCompile))
}

func TestExecRunnerEmptyArgv(t *testing.T) {
	err := NewExecRunner().Run(context.Background(), nil)
	assert.True(t, codaerrors.IsType(err, codaerrors.ErrorTypeSpawn))
}

func TestExecRunnerCancelledBeforeStart(t *testing.T) {
	exe, argvFile := fakeCompilerPath(t, "ok")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewExecRunner().Run(ctx, []string{exe})
	assert.True(t, codaerrors.IsType(err, codaerrors.ErrorTypeSpawn))
	assert.NoFileExists(t, argvFile)
}

func TestCompilerInvoke(t *testing.T) {
	runner := &recordingRunner{}
	cfg := &config.ProjectConfig{
		Compiler:      "cc",
		OutputPath:    "dist/x",
		CompilerFlags: []string{"-O2"},
		IncludePaths:  []string{"inc"},
	}

	argv, err := NewCompiler(runner).Invoke(context.Background(), cfg, "build/temp_coda.c")
	require.NoError(t, err)

	expected := []string{"cc", "-o", "dist/x", "build/temp_coda.c", "-Wall", "-Wextra", "-O2", "-Iinc"}
	assert.Equal(t, expected, argv)
	assert.Equal(t, [][]string{expected}, runner.Calls())
}

func TestCompilerInvokeReturnsRunnerError(t *testing.T) {
	runner := &recordingRunner{
		err: codaerrors.NewCompileError(codaerrors.CodeNonZeroExit, "compiler exited with non-zero status", nil),
	}
	cfg := &config.ProjectConfig{Compiler: "cc", OutputPath: "o"}

	argv, err := NewCompiler(runner).Invoke(context.Background(), cfg, "agg.c")
	assert.True(t, codaerrors.HasCode(err, codaerrors.CodeNonZeroExit))
	assert.NotEmpty(t, argv)
	assert.Len(t, runner.Calls(), 1)
}

func TestCompilerInvokeRejectsBadCompiler(t *testing.T) {
	for _, name := range []string{"", "   ", "cc\x00evil"} {
		runner := &recordingRunner{}
		cfg := &config.ProjectConfig{Compiler: name, OutputPath: "o"}

		argv, err := NewCompiler(runner).Invoke(context.Background(), cfg, "agg.c")
		assert.Nil(t, argv)
		assert.True(t, codaerrors.IsType(err, codaerrors.ErrorTypeConfig), "compiler %q", name)
		assert.Empty(t, runner.Calls())
	}
}
