// Package engine materializes instrumented code as a scratch program
// and runs it under the managed virtualenv's interpreter with timeout,
// memory, and output-size ceilings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/ChaNg1o1/pythonrun-mcp/internal/artifacts"
	"github.com/ChaNg1o1/pythonrun-mcp/internal/diagnose"
	"github.com/ChaNg1o1/pythonrun-mcp/internal/instrument"
	"github.com/ChaNg1o1/pythonrun-mcp/internal/reaper"
	"github.com/ChaNg1o1/pythonrun-mcp/internal/venv"
)

// Limits bounds one run.
type Limits struct {
	Timeout        time.Duration
	MaxMemoryMB    int
	MaxOutputBytes int
}

// Outcome is the structured result of one run. Execution failures are
// reported here, not as errors: a non-nil Outcome always reaches the
// caller once a process was spawned.
type Outcome struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Signal    string
	TimedOut  bool
	Truncated bool
	Duration  time.Duration
	Artifacts []artifacts.Artifact
	Hint      string
}

// Failed reports whether the run ended in anything other than a clean
// zero exit.
func (o *Outcome) Failed() bool {
	return o.ExitCode != 0 || o.TimedOut
}

// Engine runs code snippets. Safe for concurrent use: scratch paths are
// unique per run and environment mutation is serialized by the venv
// manager.
type Engine struct {
	Venvs        *venv.Manager
	VenvRoot     string
	Workspace    string
	Limits       Limits
	MaxArtifacts int
	StaleAfter   time.Duration
}

// Run executes code end-to-end: ensure environment, inject
// instrumentation, spawn the interpreter, collect artifacts, classify
// failures. Scratch state is removed on every exit path.
func (e *Engine) Run(ctx context.Context, code string) (*Outcome, error) {
	env, err := e.Venvs.Ensure(ctx, e.VenvRoot)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.Workspace, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	runID := fmt.Sprintf("%d_%s", time.Now().UnixNano(), uuid.NewString()[:8])
	scriptPath := filepath.Join(e.Workspace, reaper.ScratchPrefix+runID+".py")
	artifactDir := filepath.Join(e.Workspace, reaper.ScratchPrefix+"artifacts_"+runID)
	defer reaper.Cleanup(e.Workspace, scriptPath, artifactDir, e.StaleAfter)

	instrumented := instrument.Inject(code, artifactDir)
	if err := os.WriteFile(scriptPath, []byte(instrumented), 0o600); err != nil {
		return nil, fmt.Errorf("writing scratch program: %w", err)
	}

	timeout := e.Limits.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := e.buildCommand(runCtx, env.Python(), scriptPath)
	cmd.Dir = e.Workspace
	stdout := &capWriter{limit: e.Limits.MaxOutputBytes}
	stderr := &capWriter{limit: e.Limits.MaxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	configureProc(cmd)

	start := time.Now()
	runErr := cmd.Run()

	out := &Outcome{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.truncated || stderr.truncated,
		Duration:  time.Since(start),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			out.ExitCode = exitErr.ExitCode()
			out.Signal = exitSignal(exitErr)
		case runCtx.Err() != nil:
			out.ExitCode = -1
		default:
			// The process never spawned; that is an engine error, not
			// an execution failure.
			return nil, fmt.Errorf("starting interpreter: %w", runErr)
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			out.TimedOut = true
		}
		out.Hint = diagnose.Classify(out.Stderr, out.ExitCode, out.Signal, out.TimedOut).Hint
	}

	out.Artifacts = artifacts.Collect(artifactDir, e.MaxArtifacts)
	return out, nil
}

// buildCommand wraps the interpreter invocation with a shell-level
// virtual-memory ceiling on Linux. Other platforms have no portable
// equivalent; the gap is logged, never silently claimed.
func (e *Engine) buildCommand(ctx context.Context, python, script string) *exec.Cmd {
	if e.Limits.MaxMemoryMB > 0 {
		if runtime.GOOS == "linux" {
			shell := fmt.Sprintf("ulimit -v %d && exec \"$0\" \"$@\"", e.Limits.MaxMemoryMB*1024)
			return exec.CommandContext(ctx, "/bin/sh", "-c", shell, python, script)
		}
		log.Printf("memory limit %d MB is not enforceable on %s, running without it", e.Limits.MaxMemoryMB, runtime.GOOS)
	}
	return exec.CommandContext(ctx, python, script)
}
