package build

import (
	"context"
	"errors"
	"time"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/conneroisu/coda/internal/logging"
	"github.com/google/uuid"
)

// Phase names the build step that failed.
type Phase string

const (
	PhaseAggregation Phase = "aggregation"
	PhaseCompile     Phase = "compile"
)

// BuildResult represents the result of a build operation
type BuildResult struct {
	ID          string
	Phase       Phase // empty on success
	Err         error
	Argv        []string // nil when the compiler was never invoked
	StartedAt   time.Time
	FinishedAt  time.Time
	Duration    time.Duration
	Diagnostics []*codaerrors.Diagnostic // compile failures only, remapped to sources
}

// Succeeded reports whether the build produced an executable.
func (r *BuildResult) Succeeded() bool {
	return r.Err == nil
}

// BuildCallback is called when a build completes
type BuildCallback func(result *BuildResult)

// Orchestrator runs aggregation followed by compilation. It holds no
// per-build state and is safe to call repeatedly.
type Orchestrator struct {
	compiler  *Compiler
	parser    *codaerrors.DiagnosticParser
	logger    logging.Logger
	metrics   *BuildMetrics
	callbacks []BuildCallback
}

// NewOrchestrator creates an orchestrator. A nil logger discards output.
func NewOrchestrator(compiler *Compiler, logger logging.Logger) *Orchestrator {
	if compiler == nil {
		compiler = NewCompiler(nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		compiler: compiler,
		parser:   codaerrors.NewDiagnosticParser(),
		logger:   logger.WithComponent("build"),
	}
}

// SetMetrics attaches a metrics tracker updated after every build.
func (o *Orchestrator) SetMetrics(m *BuildMetrics) {
	o.metrics = m
}

// AddCallback registers fn to run after every build, in registration order.
func (o *Orchestrator) AddCallback(fn BuildCallback) {
	o.callbacks = append(o.callbacks, fn)
}

// Build aggregates cfg.SourceFiles into the aggregate unit and compiles it.
// The compiler is never started when aggregation fails. The aggregate file is
// left on disk whatever the outcome.
func (o *Orchestrator) Build(ctx context.Context, cfg *config.ProjectConfig) *BuildResult {
	result := &BuildResult{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	aggregatePath := cfg.AggregatePath()

	op := logging.StartOperation(o.logger, "build", "build_id", result.ID)
	op.Debug(ctx, "Starting unity build",
		"sources", len(cfg.SourceFiles),
		"aggregate", aggregatePath)

	o.run(ctx, cfg, aggregatePath, result)

	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	if result.Succeeded() {
		op.End(ctx, "Build succeeded")
	} else {
		op.EndWithError(ctx, result.Err, "Build failed in "+string(result.Phase)+" phase")
	}

	if o.metrics != nil {
		o.metrics.RecordBuild(result)
	}
	for _, cb := range o.callbacks {
		cb(result)
	}

	return result
}

func (o *Orchestrator) run(ctx context.Context, cfg *config.ProjectConfig, aggregatePath string, result *BuildResult) {
	lock, err := acquireLock(ctx, aggregatePath+".lock")
	if err != nil {
		result.Phase = PhaseAggregation
		result.Err = codaerrors.NewIOError(codaerrors.CodeAggregateLock,
			"cannot lock aggregate unit", err).WithFile(aggregatePath)
		return
	}
	defer lock.Release()

	aggregator := NewAggregator(aggregatePath)
	if err := aggregator.Aggregate(cfg.SourceFiles); err != nil {
		result.Phase = PhaseAggregation
		result.Err = err
		return
	}
	o.logger.Debug(ctx, "Aggregate unit written", "build_id", result.ID, "path", aggregatePath)

	argv, err := o.compiler.Invoke(ctx, cfg, aggregatePath)
	result.Argv = argv
	if err != nil {
		result.Phase = PhaseCompile
		result.Err = err
		o.reportDiagnostics(ctx, aggregator.SourceMap(), result)
	}
}

// reportDiagnostics parses the stderr kept by ExecRunner and logs each error
// against the source it came from.
func (o *Orchestrator) reportDiagnostics(ctx context.Context, sm *SourceMap, result *BuildResult) {
	var ce *codaerrors.CodaError
	if !errors.As(result.Err, &ce) {
		return
	}
	stderr, _ := ce.Context["stderr"].(string)
	if stderr == "" {
		return
	}

	diags := o.parser.Parse(stderr)
	sm.Remap(diags)
	result.Diagnostics = diags

	for _, d := range diags {
		if d.Severity < codaerrors.ErrorSeverityError {
			continue
		}
		o.logger.Warn(ctx, nil, d.Message,
			"build_id", result.ID,
			"location", d.Location(),
			"severity", d.Severity.String())
	}
}
