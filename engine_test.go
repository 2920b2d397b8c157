package drift

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, root string, opts ...Option) *Engine {
	t.Helper()
	e, err := New(root, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func scan(t *testing.T, e *Engine) *ScanResult {
	t.Helper()
	result, err := e.Scan(context.Background())
	require.NoError(t, err)
	return result
}

const utilPy = `def helper(x):
    return x * 2

def format_output(value):
    return str(value)
`

const mainPy = `import util

def main():
    print(util.helper(21))
`

func TestScan_InitialPassAddsEverything(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", mainPy)
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	result := scan(t, e)

	assert.Equal(t, []string{"main.py", "util.py"}, result.Added)
	assert.Empty(t, result.Modified)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Unchanged)

	for _, path := range result.Added {
		assert.Equal(t, Additive, result.Changes[path].Category, path)
	}
	assert.Equal(t, 2, result.Summary.TotalFiles)
}

func TestScan_ResolvesImportsAcrossAdditionOrder(t *testing.T) {
	// main.py sorts before util.py, so its import is processed before the
	// target joins the graph; the scan must still produce the edge.
	root := t.TempDir()
	write(t, root, "main.py", mainPy)
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)

	assert.Equal(t, []string{"util.py"}, e.Dependencies("main.py"))
	assert.Equal(t, []string{"main.py"}, e.Dependents("util.py"))
}

func TestScan_SecondPassUnchanged(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", mainPy)
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)

	result := scan(t, e)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Modified)
	assert.Empty(t, result.Deleted)
	assert.Equal(t, []string{"main.py", "util.py"}, result.Unchanged)
	assert.False(t, result.Changed())
}

func TestScan_PublicRemovalIsBreaking(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", mainPy)
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)

	// Drop format_output from the public surface.
	write(t, root, "util.py", "def helper(x):\n    return x * 2\n")
	result := scan(t, e)

	require.Equal(t, []string{"util.py"}, result.Modified)
	res := result.Changes["util.py"]
	assert.Equal(t, Breaking, res.Category)
	assert.True(t, res.HasBreaking)
	assert.Equal(t, []string{"util.py"}, result.Breaking())

	impact := e.Impact("util.py", res)
	require.Contains(t, impact, "main.py")
	assert.Contains(t, impact["main.py"], "may be broken by changes in util.py")
}

func TestScan_CommentOnlyChangeIsDocsOnly(t *testing.T) {
	root := t.TempDir()
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)

	write(t, root, "util.py", "# doubles the input\n"+utilPy)
	result := scan(t, e)

	require.Equal(t, []string{"util.py"}, result.Modified)
	assert.Equal(t, DocsOnly, result.Changes["util.py"].Category)
}

func TestScan_NewPublicFunctionIsAdditive(t *testing.T) {
	root := t.TempDir()
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)

	write(t, root, "util.py", utilPy+"\ndef shiny():\n    pass\n")
	result := scan(t, e)

	assert.Equal(t, Additive, result.Changes["util.py"].Category)
	assert.Equal(t, []string{"util.py"}, result.Additive())
}

func TestScan_DeletionRemovesSnapshotAndEdges(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", mainPy)
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)

	require.NoError(t, os.Remove(filepath.Join(root, "util.py")))
	result := scan(t, e)

	assert.Equal(t, []string{"util.py"}, result.Deleted)
	assert.Equal(t, Breaking, result.Changes["util.py"].Category)
	assert.Nil(t, e.Snapshot("util.py"))
	assert.Empty(t, e.Dependencies("main.py"))
}

func TestScan_StatePersistsAcrossEngines(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", mainPy)
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)
	require.NoError(t, e.Close())

	e2 := newTestEngine(t, root)
	result := scan(t, e2)

	assert.Empty(t, result.Added)
	assert.Equal(t, []string{"main.py", "util.py"}, result.Unchanged)
	assert.Equal(t, []string{"util.py"}, e2.Dependencies("main.py"))

	snap := e2.Snapshot("util.py")
	require.NotNil(t, snap)
	assert.Equal(t, "python", snap.Language)
	assert.NotEmpty(t, snap.Declarations)
}

func TestScan_CorruptedStateResetsToEmpty(t *testing.T) {
	root := t.TempDir()
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)
	require.NoError(t, e.Close())

	// Corrupt a persisted JSON column so the database opens fine but the
	// state load fails to decode.
	db, err := sql.Open("sqlite3", filepath.Join(root, ".drift", "state.db"))
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE files SET definitions = 'not json'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// The engine resets to empty in-memory state, so the next scan degrades
	// to a full rescan instead of carrying anything forward.
	e2 := newTestEngine(t, root)
	result := scan(t, e2)
	assert.Equal(t, []string{"util.py"}, result.Added)
	assert.Empty(t, result.Unchanged)
}

func TestScan_ContextCancellation(t *testing.T) {
	root := t.TempDir()
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScan_SerialMatchesParallel(t *testing.T) {
	files := map[string]string{
		"a.py":     "import b\n\ndef fa():\n    pass\n",
		"b.py":     "import c\n\ndef fb():\n    pass\n",
		"c.py":     "def fc():\n    pass\n",
		"web.ts":   "import { fa } from './lib';\nexport function render(): void {}\n",
		"lib.ts":   "export function fa(): void {}\n",
		"loner.py": "X = 1\n",
	}

	run := func(parallel bool) *ScanResult {
		root := t.TempDir()
		for rel, content := range files {
			write(t, root, rel, content)
		}
		e := newTestEngine(t, root, WithParallel(parallel))
		return scan(t, e)
	}

	serial := run(false)
	parallel := run(true)

	assert.Equal(t, serial.Added, parallel.Added)
	assert.Equal(t, serial.Summary, parallel.Summary)
	for path, res := range serial.Changes {
		assert.Equal(t, res.Category, parallel.Changes[path].Category, path)
	}
}

func TestScan_RespectsLanguageFilter(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", mainPy)
	write(t, root, "app.ts", "export function boot(): void {}\n")

	e := newTestEngine(t, root, WithLanguages("python"))
	result := scan(t, e)

	assert.Equal(t, []string{"main.py"}, result.Added)
	assert.Nil(t, e.Snapshot("app.ts"))
}

func TestScan_StateDirNotTracked(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", mainPy)

	e := newTestEngine(t, root)
	scan(t, e)

	// The state database lives under .drift and must never be discovered,
	// even via files that happen to carry a tracked extension there.
	write(t, root, ".drift/leak.py", "def f():\n    pass\n")
	result := scan(t, e)
	assert.Empty(t, result.Added)
}

func TestAnalysisOrderAndCycles(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.py", "import b\n")
	write(t, root, "b.py", "import a\n")
	write(t, root, "free.py", "X = 1\n")

	e := newTestEngine(t, root)
	scan(t, e)

	cycles := e.Cycles()
	require.Len(t, cycles, 1)

	order, acyclic := e.AnalysisOrder()
	assert.False(t, acyclic)
	assert.Len(t, order, 3)
}

func TestTrackedFilesAndDeclarations(t *testing.T) {
	root := t.TempDir()
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)

	assert.Equal(t, []string{"util.py"}, e.TrackedFiles())

	decls := e.Declarations("util.py")
	require.Len(t, decls, 2)
	assert.Equal(t, "helper", decls[0].Name)
	assert.Nil(t, e.Declarations("missing.py"))
}

func TestClassifyRoundTrip_SignatureChange(t *testing.T) {
	root := t.TempDir()
	write(t, root, "util.py", "def helper(x, y):\n    return x\n")

	e := newTestEngine(t, root)
	scan(t, e)

	// Dropping a required parameter must classify as breaking.
	write(t, root, "util.py", "def helper(x):\n    return x\n")
	result := scan(t, e)
	assert.Equal(t, Breaking, result.Changes["util.py"].Category)
}

func TestImpactOf(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.py", mainPy)
	write(t, root, "util.py", utilPy)

	e := newTestEngine(t, root)
	scan(t, e)

	write(t, root, "util.py", "def helper(x):\n    return x * 2\n")
	result := scan(t, e)

	impacts := e.ImpactOf(result)
	require.Contains(t, impacts, "util.py")
	assert.Contains(t, impacts["util.py"]["main.py"], "util.py")
	// main.py itself changed nothing, so nothing is keyed by it.
	assert.NotContains(t, impacts, "main.py")
}
