package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/detektlint/internal/artifact"
	"github.com/lucasnoah/detektlint/internal/changeset"
	"github.com/lucasnoah/detektlint/internal/config"
	"github.com/lucasnoah/detektlint/internal/db"
	"github.com/lucasnoah/detektlint/internal/lint"
	"github.com/lucasnoah/detektlint/internal/runner"
)

// newCommandRunner is swapped out in tests.
var newCommandRunner = func() runner.CommandRunner { return &runner.ExecRunner{} }

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run detekt on Kotlin sources and print normalized findings",
	Long: `Run detekt on each path and print its findings.

Relative paths are taken from the current directory; detekt itself runs from
the project root. A path whose detekt run fails or times out is reported and
the remaining paths are still linted.

With --record, each run and its findings are written to the history database
(the config's database setting, or ~/.detektlint/detektlint.db).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		jobs, _ := cmd.Flags().GetInt("jobs")
		diffFile, _ := cmd.Flags().GetString("diff")
		output, _ := cmd.Flags().GetString("output")
		record, _ := cmd.Flags().GetBool("record")
		saveDir, _ := cmd.Flags().GetString("save")

		if output != "text" && output != "json" {
			return fmt.Errorf("invalid --output %q: want text or json", output)
		}

		root, err := projectRoot(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, root)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if format != "" {
			cfg.Linter.Format = format
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			cmd.SilenceUsage = true
			return fmt.Errorf("invalid config: %v", errs[0])
		}

		resolved, err := config.ResolveLinter(cfg, root, logger)
		if err != nil {
			cmd.SilenceUsage = true
			return err
		}

		paths := make([]string, 0, len(args))
		for _, a := range args {
			p, err := rootRelative(root, a)
			if err != nil {
				return err
			}
			paths = append(paths, p)
		}
		if diffFile != "" {
			fromDiff, err := readDiffPaths(cmd.InOrStdin(), diffFile, resolved.Extensions)
			if err != nil {
				return err
			}
			paths = append(paths, fromDiff...)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no paths to lint")
		}

		linter, err := runner.NewLinter(newCommandRunner(), resolved, root, logger)
		if err != nil {
			return err
		}
		results := linter.LintAll(cmd.Context(), paths, jobs)

		if saveDir != "" {
			for _, r := range results {
				if err := artifact.Save(saveDir, r); err != nil {
					logger.Warn("could not save raw output", "path", r.Path, "error", err)
				}
			}
		}

		if record {
			if err := recordResults(cfg.Database, results); err != nil {
				logger.Warn("could not record lint runs", "error", err)
			}
		}

		var all []lint.Finding
		for _, r := range results {
			all = append(all, r.Findings...)
		}

		w := cmd.OutOrStdout()
		if output == "json" {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(data))
		} else {
			printFindings(w, results)
		}

		failed := 0
		for _, r := range results {
			if r.Failed() {
				failed++
			}
		}
		errCount := lint.CountBySeverity(all)[lint.SeverityError]
		switch {
		case errCount > 0 && failed > 0:
			cmd.SilenceUsage = true
			return fmt.Errorf("detekt reported %d error(s); %d run(s) failed", errCount, failed)
		case errCount > 0:
			cmd.SilenceUsage = true
			return fmt.Errorf("detekt reported %d error(s)", errCount)
		case failed > 0:
			cmd.SilenceUsage = true
			return fmt.Errorf("%d detekt run(s) failed", failed)
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().String("format", "", "report format: structured or text (default: from config)")
	lintCmd.Flags().Int("jobs", 1, "number of detekt processes to run at once")
	lintCmd.Flags().String("diff", "", "lint the Kotlin files changed in this unified diff (- for stdin)")
	lintCmd.Flags().String("output", "text", "output format: text or json")
	lintCmd.Flags().Bool("record", false, "record runs in the history database")
	lintCmd.Flags().String("save", "", "directory to keep raw detekt stdout/stderr and result.json per path")
}

// rootRelative rewrites a command-line path, given relative to the current
// directory, so that it names the same file from root, where detekt runs.
// Paths inside root stay relative; anything else becomes absolute.
func rootRelative(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs, nil
	}
	return rel, nil
}

func readDiffPaths(stdin io.Reader, file string, exts []string) ([]string, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read diff: %w", err)
	}
	return changeset.PathsFromDiff(data, exts)
}

func printFindings(w io.Writer, results []*runner.Result) {
	total := 0
	for _, r := range results {
		if r.TimedOut {
			fmt.Fprintf(w, "%s: detekt timed out after %dms\n", r.Path, r.DurationMs)
			continue
		}
		if r.Err != "" {
			fmt.Fprintf(w, "%s: detekt failed: %s\n", r.Path, r.Err)
			continue
		}
		for _, f := range r.Findings {
			fmt.Fprintf(w, "%s:%d:%d [%s] %s: %s\n", f.Path, f.Line, f.Column, f.Severity, f.RuleID, f.Message)
			total++
		}
	}
	fmt.Fprintf(w, "\n%d finding(s) in %d file(s)\n", total, len(results))
}

func recordResults(dsn string, results []*runner.Result) error {
	d, cleanup, err := openDB(dsn)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, r := range results {
		_, err := d.LogRun(db.LintRun{
			Path:       r.Path,
			Format:     r.Format,
			ExitCode:   r.ExitCode,
			DurationMs: r.DurationMs,
			TimedOut:   r.TimedOut,
		}, r.Findings)
		if err != nil {
			return fmt.Errorf("log run for %s: %w", r.Path, err)
		}
	}
	return nil
}

// openDB opens and migrates the history DB, returning it with a cleanup func.
func openDB(dsn string) (*db.DB, func(), error) {
	if dsn == "" {
		p, err := db.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
		dsn = p
	}
	d, err := db.Open(dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, func() { d.Close() }, nil
}
