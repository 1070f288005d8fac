package build

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
)

// DefaultWaitDelay is how long an interrupted compiler gets to exit before it
// is killed.
const DefaultWaitDelay = 5 * time.Second

// stderrTailLimit bounds how much compiler stderr is kept for diagnostics.
const stderrTailLimit = 64 << 10

// Runner spawns one process for argv and blocks until it terminates.
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

// ExecRunner runs processes with os/exec. Standard streams are inherited
// unless overridden, so compiler diagnostics reach the terminal unbuffered.
// The tail of stderr is also kept and attached to compile errors under the
// "stderr" context key.
type ExecRunner struct {
	Stdout    io.Writer
	Stderr    io.Writer
	WaitDelay time.Duration
}

// NewExecRunner creates a runner attached to the process's own streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		WaitDelay: DefaultWaitDelay,
	}
}

// Run starts argv[0] with argv[1:] and waits for it. When ctx is cancelled
// the child receives an interrupt, then a kill after WaitDelay; Run returns
// only once the child is gone.
func (r *ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return codaerrors.NewSpawnError("empty argument vector", nil)
	}
	if err := ctx.Err(); err != nil {
		return codaerrors.NewSpawnError("build cancelled before the compiler started", err).
			WithContext("compiler", argv[0])
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	tail := &tailBuffer{limit: stderrTailLimit}
	cmd.Stderr = io.MultiWriter(cmd.Stderr, tail)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	if err := cmd.Start(); err != nil {
		return codaerrors.NewSpawnError("cannot start compiler", err).
			WithContext("compiler", argv[0])
	}

	err := classifyWait(argv[0], cmd.Wait())
	var ce *codaerrors.CodaError
	if errors.As(err, &ce) && tail.Len() > 0 {
		ce.WithContext("stderr", tail.String())
	}
	return err
}

func classifyWait(compiler string, err error) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return codaerrors.NewCompileError(codaerrors.CodeSignaled,
				"compiler terminated by signal", err).
				WithContext("compiler", compiler).
				WithContext("signal", ws.Signal().String())
		}
		return codaerrors.NewCompileError(codaerrors.CodeNonZeroExit,
			"compiler exited with non-zero status", err).
			WithContext("compiler", compiler).
			WithContext("exit_code", exitErr.ExitCode())
	}

	return codaerrors.NewCompileError(codaerrors.CodeNonZeroExit,
		"compiler did not finish cleanly", err).
		WithContext("compiler", compiler)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

// Compiler turns a project configuration into exactly one compiler process.
type Compiler struct {
	runner Runner
}

// NewCompiler creates a compiler invoker. A nil runner uses NewExecRunner.
func NewCompiler(runner Runner) *Compiler {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &Compiler{runner: runner}
}

// Invoke compiles aggregatePath according to cfg and returns the argument
// vector that was used. No retries are attempted.
func (c *Compiler) Invoke(ctx context.Context, cfg *config.ProjectConfig, aggregatePath string) ([]string, error) {
	if strings.TrimSpace(cfg.Compiler) == "" || strings.ContainsRune(cfg.Compiler, 0) {
		return nil, codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
			"invalid compiler executable name", nil)
	}

	argv := BuildArgs(cfg, aggregatePath)
	return argv, c.runner.Run(ctx, argv)
}
