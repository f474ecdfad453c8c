package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lucasnoah/detektlint/internal/runner"
)

func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores defaults so flag values do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// fakeDetekt writes a checkstyle report for every --input path it is given.
type fakeDetekt struct {
	reports  map[string]string
	stdout   string
	exitCode int
	errs     map[string]error
	calls    [][]string
}

func (f *fakeDetekt) Run(ctx context.Context, dir string, name string, args []string) (string, string, int, error) {
	f.calls = append(f.calls, args)
	path := args[len(args)-1]
	if err := f.errs[path]; err != nil {
		return "", "", -1, err
	}
	var outDir, base string
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "--output":
			outDir = args[i+1]
		case "--output-name":
			base = args[i+1]
		}
	}
	if report, ok := f.reports[path]; ok && outDir != "" {
		if err := os.WriteFile(filepath.Join(outDir, base+".xml"), []byte(report), 0o644); err != nil {
			return "", "", -1, err
		}
	}
	return f.stdout, "", f.exitCode, nil
}

func withFakeDetekt(t *testing.T, fake *fakeDetekt) {
	t.Helper()
	orig := newCommandRunner
	newCommandRunner = func() runner.CommandRunner { return fake }
	t.Cleanup(func() { newCommandRunner = orig })
}

// setupProject creates a project root with a jar and a config file and makes
// it the working directory.
func setupProject(t *testing.T, extra string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "tools"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "tools", "detekt-cli.jar"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := "linter:\n  jar: tools/detekt-cli.jar\n" + extra +
		"database: " + filepath.Join(root, "history.db") + "\n"
	if err := os.WriteFile(filepath.Join(root, ".detektlint.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, root)
	return root
}

const cliReport = `<?xml version="1.0" encoding="utf-8"?>
<checkstyle version="4.3">
<file name="src/Foo.kt">
	<error line="7" column="3" severity="error" message="too many params" source="detekt.LongParameterList" />
	<error line="9" column="1" severity="info" message="could be const" source="detekt.MayBeConst" />
</file>
</checkstyle>`

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "test-version") {
		t.Errorf("expected version output to contain 'test-version', got: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, sub := range []string{"lint", "config", "history", "db", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := executeCommand("nonexistent")
	if err == nil {
		t.Error("expected error for unknown command, got nil")
	}
}

func TestLint_ReportsErrors(t *testing.T) {
	root := setupProject(t, "")
	fake := &fakeDetekt{reports: map[string]string{"src/Foo.kt": cliReport}, exitCode: 2}
	withFakeDetekt(t, fake)

	out, err := executeCommand("lint", "--root", root, "--log-format", "text", "--record", "src/Foo.kt")
	if err == nil {
		t.Fatal("expected error for error-severity finding")
	}
	if !strings.Contains(err.Error(), "1 error") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "src/Foo.kt:7:3 [error] LongParameterList: too many params") {
		t.Errorf("missing error finding in output:\n%s", out)
	}
	if !strings.Contains(out, "src/Foo.kt:9:1 [advice] MayBeConst: could be const") {
		t.Errorf("missing advice finding in output:\n%s", out)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 detekt call, got %d", len(fake.calls))
	}
	args := strings.Join(fake.calls[0], " ")
	if !strings.Contains(args, "-jar "+filepath.Join(root, "tools", "detekt-cli.jar")) {
		t.Errorf("expected resolved jar in args: %s", args)
	}
	if !strings.Contains(args, "-c . --input src/Foo.kt") {
		t.Errorf("expected default rules scope in args: %s", args)
	}

	hist, err := executeCommand("history", "--root", root, "--log-format", "text")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(hist, "src/Foo.kt") {
		t.Errorf("expected recorded run in history:\n%s", hist)
	}
}

func TestLint_TextFormatJSONOutput(t *testing.T) {
	root := setupProject(t, "")
	fake := &fakeDetekt{stdout: "MagicNumber - [x] at src/Foo.kt:3:9\n", exitCode: 1}
	withFakeDetekt(t, fake)

	out, err := executeCommand("lint", "--root", root, "--log-format", "text",
		"--format", "text", "--output", "json", "--record=false", "src/Foo.kt")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	var results []struct {
		Path     string `json:"path"`
		Findings []struct {
			Rule     string `json:"rule"`
			Line     int    `json:"line"`
			Severity string `json:"severity"`
		} `json:"findings"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(results) != 1 || len(results[0].Findings) != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}
	f := results[0].Findings[0]
	if f.Rule != "MagicNumber" || f.Line != 3 || f.Severity != "warning" {
		t.Errorf("unexpected finding: %+v", f)
	}
	if _, err := os.Stat(filepath.Join(root, "history.db")); !os.IsNotExist(err) {
		t.Error("expected no history database with --record=false")
	}
}

func TestLint_MissingJar(t *testing.T) {
	root := t.TempDir()
	cfg := "linter:\n  jar: [missing.jar, /nonexistent/detekt.jar]\n"
	if err := os.WriteFile(filepath.Join(root, ".detektlint.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	fake := &fakeDetekt{}
	withFakeDetekt(t, fake)

	_, err := executeCommand("lint", "--root", root, "--log-format", "text", "src/Foo.kt")
	if err == nil {
		t.Fatal("expected error for missing jar")
	}
	if !strings.Contains(err.Error(), "jar") {
		t.Errorf("expected error to name the jar key, got: %v", err)
	}
	if len(fake.calls) != 0 {
		t.Error("detekt must not run when the jar is unresolved")
	}
}

func TestLint_DiffSelectsPaths(t *testing.T) {
	root := setupProject(t, "")
	patch := `diff --git a/src/Foo.kt b/src/Foo.kt
--- a/src/Foo.kt
+++ b/src/Foo.kt
@@ -1 +1 @@
-a
+b
diff --git a/docs/x.md b/docs/x.md
--- a/docs/x.md
+++ b/docs/x.md
@@ -1 +1 @@
-a
+b
`
	diffPath := filepath.Join(root, "change.patch")
	if err := os.WriteFile(diffPath, []byte(patch), 0o644); err != nil {
		t.Fatal(err)
	}
	fake := &fakeDetekt{}
	withFakeDetekt(t, fake)

	out, err := executeCommand("lint", "--root", root, "--log-format", "text", "--record=false", "--diff", diffPath)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 detekt call, got %d", len(fake.calls))
	}
	if got := fake.calls[0][len(fake.calls[0])-1]; got != "src/Foo.kt" {
		t.Errorf("expected src/Foo.kt to be linted, got %s", got)
	}
	if !strings.Contains(out, "0 finding(s) in 1 file(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestLint_NoPaths(t *testing.T) {
	root := setupProject(t, "")
	withFakeDetekt(t, &fakeDetekt{})

	if _, err := executeCommand("lint", "--root", root, "--log-format", "text"); err == nil {
		t.Fatal("expected error when no paths are given")
	}
}

func TestConfigValidate(t *testing.T) {
	root := setupProject(t, "  format: structured\n")
	out, err := executeCommand("config", "validate", "--root", root, "--log-format", "text")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration is valid.") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestConfigValidate_Errors(t *testing.T) {
	root := setupProject(t, "  format: pmd\n")
	out, err := executeCommand("config", "validate", "--root", root, "--log-format", "text")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, "linter.format") {
		t.Errorf("expected format error in output: %s", out)
	}
}

func TestConfigShow_PrintsCommand(t *testing.T) {
	root := setupProject(t, "")
	out, err := executeCommand("config", "show", "--root", root, "--log-format", "text")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "command: java -jar ") || !strings.Contains(out, "--output-name result-<id>") {
		t.Errorf("expected detekt command line in output:\n%s", out)
	}
}

func TestHistoryShow(t *testing.T) {
	root := setupProject(t, "")
	fake := &fakeDetekt{reports: map[string]string{"src/Foo.kt": cliReport}, exitCode: 2}
	withFakeDetekt(t, fake)

	if _, err := executeCommand("lint", "--root", root, "--log-format", "text", "--record", "src/Foo.kt"); err == nil {
		t.Fatal("expected lint to fail on error finding")
	}

	out, err := executeCommand("history", "show", "1", "--root", root, "--log-format", "text")
	if err != nil {
		t.Fatalf("history show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Findings:  2") || !strings.Contains(out, "LongParameterList") {
		t.Errorf("unexpected history output:\n%s", out)
	}
}

func TestLint_SaveRawOutput(t *testing.T) {
	root := setupProject(t, "  format: text\n")
	fake := &fakeDetekt{stdout: "MagicNumber - [x] at src/Foo.kt:3:9\n", exitCode: 1}
	withFakeDetekt(t, fake)
	saveDir := filepath.Join(root, "raw")

	if _, err := executeCommand("lint", "--root", root, "--log-format", "text",
		"--record=false", "--save", saveDir, "src/Foo.kt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(saveDir, "src__Foo.kt", "stdout.txt"))
	if err != nil {
		t.Fatalf("read saved stdout: %v", err)
	}
	if !strings.Contains(string(data), "MagicNumber") {
		t.Errorf("unexpected saved stdout: %q", data)
	}
}

func TestLint_NoHistoryByDefault(t *testing.T) {
	root := setupProject(t, "  format: text\n")
	withFakeDetekt(t, &fakeDetekt{})

	if _, err := executeCommand("lint", "--root", root, "--log-format", "text", "src/Foo.kt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "history.db")); !os.IsNotExist(err) {
		t.Error("expected no history database without --record")
	}
}

func TestLint_FailedRunKeepsOtherFindings(t *testing.T) {
	root := setupProject(t, "")
	fake := &fakeDetekt{
		reports: map[string]string{"src/Foo.kt": cliReport},
		errs:    map[string]error{"src/Bar.kt": errors.New("java: not found")},
	}
	withFakeDetekt(t, fake)

	out, err := executeCommand("lint", "--root", root, "--log-format", "text", "src/Foo.kt", "src/Bar.kt")
	if err == nil {
		t.Fatal("expected error when a detekt run fails")
	}
	if !strings.Contains(err.Error(), "1 run(s) failed") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "src/Foo.kt:7:3 [error] LongParameterList: too many params") {
		t.Errorf("missing findings for the successful path:\n%s", out)
	}
	if !strings.Contains(out, "src/Bar.kt: detekt failed:") || !strings.Contains(out, "java: not found") {
		t.Errorf("missing failure line for src/Bar.kt:\n%s", out)
	}
}

func TestLint_PathsRelativeToWorkingDir(t *testing.T) {
	root := setupProject(t, "  format: text\n")
	src := filepath.Join(root, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, src)
	fake := &fakeDetekt{}
	withFakeDetekt(t, fake)

	if _, err := executeCommand("lint", "--root", root, "--log-format", "text", "Foo.kt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 detekt call, got %d", len(fake.calls))
	}
	if got := fake.calls[0][len(fake.calls[0])-1]; got != filepath.Join("src", "Foo.kt") {
		t.Errorf("expected path relative to root, got %s", got)
	}
}

func TestRootRelative(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	chdir(t, root)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative inside", "src/Foo.kt", filepath.Join("src", "Foo.kt")},
		{"absolute inside", filepath.Join(root, "src", "Foo.kt"), filepath.Join("src", "Foo.kt")},
		{"absolute outside", filepath.Join(outside, "Bar.kt"), filepath.Join(outside, "Bar.kt")},
		{"relative escaping root", "../x/Baz.kt", filepath.Join(filepath.Dir(root), "x", "Baz.kt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rootRelative(root, tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("rootRelative(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
