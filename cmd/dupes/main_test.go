package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dupes/internal/engine"
	"github.com/bamsammich/dupes/internal/remove"
	"github.com/bamsammich/dupes/internal/report"
)

// isolate points config, data and runtime lookups at temp dirs so tests
// never read the user's files.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
}

func dupesTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.txt":     "same content",
		"sub/b.txt": "same content",
		"c.txt":     "other content",
		"d.txt":     "different!!!!",
	}
	for name, data := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "dupes dev\n", out)
}

func TestScanRequiresRoot(t *testing.T) {
	isolate(t)
	code, _, errOut := runCLI(t)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "requires at least 1 arg")
}

func TestScanJSON(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)

	code, out, _ := runCLI(t, "--quiet", "--json", dir)
	require.Equal(t, exitOK, code)

	rep, err := report.Read(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, rep.Groups, 1)
	assert.ElementsMatch(t,
		[]string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "sub", "b.txt")},
		rep.Groups[0].Paths())
	assert.Equal(t, []string{dir}, rep.Roots)
}

func TestScanListingAndSummary(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)

	code, out, errOut := runCLI(t, dir)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "2 files × 12 B  wasted 12 B")
	assert.Contains(t, out, filepath.Join(dir, "sub", "b.txt"))
	assert.Contains(t, errOut, "done ✓")
}

func TestScanOutputFileAndVerify(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	out := filepath.Join(t.TempDir(), "report.json.zst")

	code, _, _ := runCLI(t, "--quiet", "--output", out, dir)
	require.Equal(t, exitOK, code)

	code, stdout, errOut := runCLI(t, "verify", out)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
	assert.Contains(t, errOut, "2 files ok")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed since"), 0o644))
	code, stdout, _ = runCLI(t, "verify", out)
	assert.Equal(t, exitPartial, code)
	assert.Contains(t, stdout, "a.txt")
}

func TestScanFilterFlags(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)

	code, out, _ := runCLI(t, "--quiet", "--json", "--exclude", "sub/", dir)
	require.Equal(t, exitOK, code)
	rep, err := report.Read(strings.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, rep.Groups)

	code, _, errOut := runCLI(t, "--min-size", "lots", dir)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "invalid --min-size")
}

func TestScanRejectsNonPositiveBWLimit(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)

	for _, v := range []string{"0", "0.5"} {
		code, _, errOut := runCLI(t, "--quiet", "--bwlimit", v, dir)
		assert.Equal(t, exitFailed, code, v)
		assert.Contains(t, errOut, "must be positive", v)
	}

	code, _, _ := runCLI(t, "--quiet", "--bwlimit", "64M", dir)
	assert.Equal(t, exitOK, code)
}

func TestScanConfigDefaults(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	cfgDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "dupes")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"),
		[]byte("[defaults]\nmin_size = \"1K\"\n"), 0o644))

	code, out, _ := runCLI(t, "--quiet", "--json", dir)
	require.Equal(t, exitOK, code)
	rep, err := report.Read(strings.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, rep.Groups, "config min_size excludes the small files")

	// An explicit flag overrides the config value.
	code, out, _ = runCLI(t, "--quiet", "--json", "--min-size", "0", dir)
	require.Equal(t, exitOK, code)
	rep, err = report.Read(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, rep.Groups, 1)
}

func TestScanHistory(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	db := filepath.Join(t.TempDir(), "history.db")

	for range 2 {
		code, _, _ := runCLI(t, "--quiet", "--history", db, dir)
		require.Equal(t, exitOK, code)
	}

	code, out, _ := runCLI(t, "history", "--db", db)
	require.Equal(t, exitOK, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "completed")

	id := strings.Fields(lines[1])[0]
	code, out, _ = runCLI(t, "history", "--db", db, "show", "--json", id)
	require.Equal(t, exitOK, code)
	rep, err := report.Read(strings.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, rep.Groups, 1)

	code, out, _ = runCLI(t, "history", "--db", db, "rm", id)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "deleted run "+id)

	code, _, errOut := runCLI(t, "history", "--db", db, "show", id)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "run not found")
}

func TestRmTrash(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	t.Chdir(t.TempDir())
	trash := filepath.Join(t.TempDir(), "Trash")
	target := filepath.Join(dir, "sub", "b.txt")

	code, out, _ := runCLI(t, "rm", "--json", "--trash-dir", trash, target)
	require.Equal(t, exitOK, code)

	var res remove.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Success)
	assert.Nil(t, res.Error)

	assert.NoFileExists(t, target)
	assert.FileExists(t, filepath.Join(trash, "files", "b.txt"))

	audit, err := os.ReadFile(remove.DefaultAuditLog)
	require.NoError(t, err)
	assert.Contains(t, string(audit), "TRASH: "+target)
}

func TestRmKeepRefusesChangedFiles(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	audit := filepath.Join(t.TempDir(), "audit.txt")
	keep := filepath.Join(dir, "a.txt")
	same := filepath.Join(dir, "sub", "b.txt")
	other := filepath.Join(dir, "c.txt")

	code, _, _ := runCLI(t, "rm", "--quiet", "--permanent", "--audit-log", audit, "--keep", keep, same, other)
	assert.Equal(t, exitPartial, code)

	assert.NoFileExists(t, same)
	assert.FileExists(t, other, "content differs from --keep")
	assert.FileExists(t, keep)

	data, err := os.ReadFile(audit)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "DELETE: "))
}

func TestRmKeepInPathList(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	keep := filepath.Join(dir, "a.txt")

	code, _, errOut := runCLI(t, "rm", "--permanent", "--keep", keep, keep)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "it is the --keep file")
	assert.FileExists(t, keep)
}

func TestRmKeepByReport(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	rep := filepath.Join(t.TempDir(), "report.json")
	audit := filepath.Join(t.TempDir(), "audit.txt")

	code, _, _ := runCLI(t, "--quiet", "--output", rep, dir)
	require.Equal(t, exitOK, code)

	code, _, _ = runCLI(t, "rm", "--quiet", "--permanent", "--audit-log", audit,
		"--keep-by", "shortest", "--report", rep)
	require.Equal(t, exitOK, code)

	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "sub", "b.txt"))
	assert.FileExists(t, filepath.Join(dir, "c.txt"))
}

func TestRmKeepBySkipsChangedMembers(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	rep := filepath.Join(t.TempDir(), "report.json")
	audit := filepath.Join(t.TempDir(), "audit.txt")
	changed := filepath.Join(dir, "sub", "b.txt")

	code, _, _ := runCLI(t, "--quiet", "--output", rep, dir)
	require.Equal(t, exitOK, code)
	require.NoError(t, os.WriteFile(changed, []byte("edited later"), 0o644))

	code, _, errOut := runCLI(t, "rm", "--permanent", "--audit-log", audit,
		"--keep-by", "shortest", "--report", rep)
	assert.Equal(t, exitPartial, code)
	assert.Contains(t, errOut, "content changed since the report")
	assert.FileExists(t, changed)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}

func TestRmKeepByUsage(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	rep := filepath.Join(t.TempDir(), "report.json")
	code, _, _ := runCLI(t, "--quiet", "--output", rep, dir)
	require.Equal(t, exitOK, code)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown strategy", []string{"--keep-by", "largest", "--report", rep}, "unknown keep strategy"},
		{"missing report", []string{"--keep-by", "newest"}, "--keep-by requires --report"},
		{"paths not allowed", []string{"--keep-by", "newest", "--report", rep, filepath.Join(dir, "a.txt")}, "unknown command"},
		{"with --keep", []string{"--keep-by", "newest", "--report", rep, "--keep", filepath.Join(dir, "a.txt")}, "mutually exclusive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, append([]string{"rm", "--permanent"}, tc.args...)...)
			assert.Equal(t, exitFailed, code)
			assert.Contains(t, errOut, tc.want)
		})
	}
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "sub", "b.txt"))
}

func TestRmPartialFailure(t *testing.T) {
	isolate(t)
	dir := dupesTree(t)
	audit := filepath.Join(t.TempDir(), "audit.txt")

	code, out, _ := runCLI(t, "rm", "--json", "--permanent", "--audit-log", audit,
		filepath.Join(dir, "c.txt"), filepath.Join(dir, "missing.txt"))
	assert.Equal(t, exitPartial, code)

	var res remove.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "removed 1 of 2 files")
}

func TestScheduleStatusWithoutScheduler(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "schedule", "status")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "no scheduler running\n", out)
}

func TestScheduleRejectsBadCron(t *testing.T) {
	isolate(t)
	code, _, errOut := runCLI(t, "schedule", "--cron", "not a cron", "--db", filepath.Join(t.TempDir(), "h.db"), t.TempDir())
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, errOut, "invalid cron expression")
}

func TestGenDocs(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	code, _, _ := runCLI(t, "gen-docs", "--format", "markdown", "--dir", dir)
	require.Equal(t, exitOK, code)
	assert.FileExists(t, filepath.Join(dir, "dupes.md"))
	assert.FileExists(t, filepath.Join(dir, "dupes_rm.md"))
}

func TestExitFor(t *testing.T) {
	assert.NoError(t, exitFor(engine.Result{Status: engine.Completed}))

	var exitErr *exitError
	require.ErrorAs(t, exitFor(engine.Result{Status: engine.Cancelled}), &exitErr)
	assert.Equal(t, exitCancelled, exitErr.code)
	require.ErrorAs(t, exitFor(engine.Result{Status: engine.Failed}), &exitErr)
	assert.Equal(t, exitFailed, exitErr.code)
}
