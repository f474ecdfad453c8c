package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lucasnoah/detektlint/internal/config"
	"github.com/lucasnoah/detektlint/internal/lint"
)

// Result holds the outcome of linting one path.
type Result struct {
	Path       string         `json:"path"`
	Format     string         `json:"format"`
	ExitCode   int            `json:"exit_code"`
	DurationMs int            `json:"duration_ms"`
	TimedOut   bool           `json:"timed_out,omitempty"`
	Err        string         `json:"error,omitempty"`
	Findings   []lint.Finding `json:"findings"`
	Stdout     string         `json:"-"`
	Stderr     string         `json:"-"`
}

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args []string) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner with os/exec. A non-zero exit status is
// reported through exitCode, not err: detekt exits non-zero when it finds issues.
type ExecRunner struct{}

func (e *ExecRunner) Run(ctx context.Context, dir string, name string, args []string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			exitCode = exitErr.ExitCode()
		} else {
			return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec: %w", err)
		}
	}
	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// Linter runs detekt against single paths and parses what it reports.
type Linter struct {
	cmd    CommandRunner
	cfg    *config.Resolved
	format lint.ReportFormat
	root   string
	log    *slog.Logger

	newBaseName func() string
}

// NewLinter creates a Linter. root is the working directory for detekt; cfg
// must come from config.ResolveLinter so the jar path is known to exist.
func NewLinter(cmd CommandRunner, cfg *config.Resolved, root string, logger *slog.Logger) (*Linter, error) {
	if cfg == nil || cfg.JarPath == "" {
		return nil, fmt.Errorf("detekt JAR path is not configured: %w", config.ErrJarNotFound)
	}
	if logger == nil {
		logger = slog.Default()
	}
	format, err := lint.FormatFor(cfg.Format, logger)
	if err != nil {
		return nil, err
	}
	l := &Linter{
		cmd:    cmd,
		cfg:    cfg,
		format: format,
		root:   root,
		log:    logger,
	}
	l.newBaseName = func() string {
		return cfg.ReportBaseName + "-" + uuid.NewString()
	}
	return l, nil
}

// Format returns the report format this linter parses.
func (l *Linter) Format() lint.ReportFormat {
	return l.format
}

// Args builds the detekt argument vector up to and including --input; the
// analyzed path is appended by the caller. The --output group is only passed
// for structured formats.
func (l *Linter) Args(outDir, baseName string) []string {
	args := []string{"-jar", l.cfg.JarPath}
	if l.format.Structured() {
		args = append(args, "--output", outDir, "--output-name", baseName)
	}
	rules := l.cfg.RulesConfigPath
	if rules == "" {
		rules = config.DefaultRulesScope
	}
	args = append(args, "-c", rules, "--input")
	return args
}

// Lint runs detekt on path and returns the parsed findings. Generated report
// files are removed before Lint returns.
func (l *Linter) Lint(ctx context.Context, path string) (*Result, error) {
	outDir, baseName, release, err := l.reportLocation()
	if err != nil {
		return nil, err
	}
	defer release()

	args := append(l.Args(outDir, baseName), path)

	timeout := l.cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, err := l.cmd.Run(ctx, l.root, l.cfg.Binary, args)
	durationMs := int(time.Since(start).Milliseconds())

	if l.format.Structured() {
		defer lint.Cleanup(outDir, baseName)
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			l.log.Warn("detekt timed out", "path", path, "timeout", timeout)
			return &Result{
				Path:       path,
				Format:     l.format.Name(),
				ExitCode:   -1,
				DurationMs: durationMs,
				TimedOut:   true,
				Stdout:     stdout,
				Stderr:     stderr,
			}, nil
		}
		return nil, fmt.Errorf("run detekt on %s: %w", path, err)
	}

	out := lint.Output{
		Path:     path,
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
	}
	if l.format.Structured() {
		out.ReportPath = lint.ReportPath(outDir, baseName)
	}
	findings := l.format.Parse(out)

	l.log.Debug("detekt finished",
		"path", path, "exit_code", exitCode, "findings", len(findings), "duration_ms", durationMs)

	return &Result{
		Path:       path,
		Format:     l.format.Name(),
		ExitCode:   exitCode,
		DurationMs: durationMs,
		Findings:   findings,
		Stdout:     stdout,
		Stderr:     stderr,
	}, nil
}

// reportLocation picks where this invocation's report goes. Every call gets
// its own base name; without a configured output dir it also gets its own
// temporary directory, which release removes.
func (l *Linter) reportLocation() (dir string, baseName string, release func(), err error) {
	baseName = l.newBaseName()
	if !l.format.Structured() {
		return "", baseName, func() {}, nil
	}
	if l.cfg.OutputDir != "" {
		if err := os.MkdirAll(l.cfg.OutputDir, 0o755); err != nil {
			return "", "", nil, fmt.Errorf("create output dir: %w", err)
		}
		return l.cfg.OutputDir, baseName, func() {}, nil
	}
	dir, err = os.MkdirTemp("", "detektlint-")
	if err != nil {
		return "", "", nil, fmt.Errorf("create report dir: %w", err)
	}
	return dir, baseName, func() { _ = os.RemoveAll(dir) }, nil
}

// LintAll lints paths with at most jobs concurrent detekt processes. Results
// are returned in the order of paths. A path whose run fails gets a Result
// with Err set; the other paths still run and keep their findings.
func (l *Linter) LintAll(ctx context.Context, paths []string, jobs int) []*Result {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]*Result, len(paths))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			r, err := l.Lint(ctx, p)
			if err != nil {
				l.log.Warn("detekt run failed", "path", p, "error", err)
				r = &Result{
					Path:     p,
					Format:   l.format.Name(),
					ExitCode: -1,
					Err:      err.Error(),
				}
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed reports whether the run produced no usable output.
func (r *Result) Failed() bool {
	return r.TimedOut || r.Err != ""
}
