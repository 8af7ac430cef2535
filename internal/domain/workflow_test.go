package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gollate.dev/pkg/gollate/internal/adapter"
	uimocks "gollate.dev/pkg/gollate/internal/controller/mocks"
	m "gollate.dev/pkg/gollate/internal/model"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestWorkflow(ui *uimocks.MockUI) *workflow {
	w := NewWorkflow(adapter.NewLocalWitnessFSAdapter(), adapter.NewReportStore(), ui).(*workflow)
	w.now = func() time.Time { return fixedNow }

	return w
}

func writeWitness(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func expectSession(ui *uimocks.MockUI) {
	ui.On("Start", mock.Anything, mock.Anything).Return(nil).Once()
	ui.On("Wait", mock.Anything).Return().Once()
	ui.On("Close", mock.Anything).Return().Once()
}

func reportWith(cached bool, check func(m.Report) bool) []interface{} {
	return []interface{}{mock.Anything, mock.MatchedBy(check), cached}
}

func TestWorkflow_CollateCacheKeepsWhitespaceTokens(t *testing.T) {
	dir := t.TempDir()
	reports := m.Path(t.TempDir())
	a := writeWitness(t, dir, "A.txt", "\n\nHello world")
	b := writeWitness(t, dir, "B.txt", "\t\n\nHello there \n")

	args := CollateArgs{
		JobArgs: JobArgs{Settings: m.Settings{Segmentation: true}, Reports: reports, UseCache: true},
		Inputs:  []string{a, b},
	}

	var fresh m.Report

	ui := uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", reportWith(false, func(r m.Report) bool {
		fresh = r
		return true
	})...).Return(nil).Once()
	require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), args))

	var cached m.Report

	ui = uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", reportWith(true, func(r m.Report) bool {
		cached = r
		return true
	})...).Return(nil).Once()
	require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), args))

	assert.Equal(t, "\n\nHello world", cached.Witnesses[0].Text())
	assert.Equal(t, "\t\n\nHello there \n", cached.Witnesses[1].Text())
	assert.Equal(t, fresh.Witnesses, cached.Witnesses)
	assert.Equal(t, fresh.Collation.Table, cached.Collation.Table)
	assert.Equal(t, len(fresh.Collation.Segments), len(cached.Collation.Segments))
}

func TestWorkflow_CollateIgnoresCachedReportWithForeignText(t *testing.T) {
	dir := t.TempDir()
	reports := m.Path(t.TempDir())
	a := writeWitness(t, dir, "A.txt", "one two")
	b := writeWitness(t, dir, "B.txt", "one three")

	args := CollateArgs{JobArgs: JobArgs{Reports: reports, UseCache: true}, Inputs: []string{a, b}}

	ui := uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", mock.Anything, mock.Anything, false).Return(nil).Once()
	require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), args))

	store := adapter.NewReportStore()
	saved, _, err := store.LoadReports(reports)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	saved[0].Sources[0].Text = saved[0].Sources[1].Text
	_, err = store.SaveReport(reports, saved[0])
	require.NoError(t, err)

	ui = uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", reportWith(false, func(r m.Report) bool {
		return r.Fingerprint == saved[0].Fingerprint
	})...).Return(nil).Once()
	require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), args))

	repaired, _, err := store.LoadReport(reports, saved[0].Fingerprint)
	require.NoError(t, err)
	require.NoError(t, VerifyReport(repaired))
}

func TestWorkflow_Collate(t *testing.T) {
	dir := t.TempDir()
	reports := m.Path(filepath.Join(t.TempDir(), "reports"))
	a := writeWitness(t, dir, "A.txt", "The black cat sat.")
	b := writeWitness(t, dir, "B.txt", "The cat sat!")

	args := CollateArgs{
		JobArgs: JobArgs{Settings: m.Settings{Segmentation: true}, Reports: reports, UseCache: true, Threads: 2},
		Inputs:  []string{a, b},
	}

	var first m.Report

	t.Run("collates, saves and displays", func(t *testing.T) {
		ui := uimocks.NewMockUI(t)
		expectSession(ui)
		ui.On("DisplayReport", reportWith(false, func(r m.Report) bool {
			first = r
			return r.Name == "A+B" && len(r.Witnesses) == 2
		})...).Return(nil).Once()

		require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), args))

		assert.Equal(t, fixedNow, first.CreatedAt)
		assert.Equal(t, m.Settings{Tokenizer: "default", Normalizer: "default", Engine: EngineDP, Segmentation: true}, first.Settings)
		assert.Equal(t, "The black cat sat.", first.Witnesses[0].Text())
		assert.Equal(t, []bool{false, true, false, true}, statuses(first.Collation.Segments))
		assert.FileExists(t, filepath.Join(string(reports), first.Fingerprint+".yaml"))
	})

	t.Run("reuses the cached report", func(t *testing.T) {
		ui := uimocks.NewMockUI(t)
		expectSession(ui)
		ui.On("DisplayReport", reportWith(true, func(r m.Report) bool {
			return r.Fingerprint == first.Fingerprint
		})...).Return(nil).Once()

		require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), args))
	})

	t.Run("no-cache collates again", func(t *testing.T) {
		noCache := args
		noCache.UseCache = false

		ui := uimocks.NewMockUI(t)
		expectSession(ui)
		ui.On("DisplayReport", reportWith(false, func(r m.Report) bool {
			return r.Fingerprint == first.Fingerprint
		})...).Return(nil).Once()

		require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), noCache))
	})

	t.Run("different settings give a different fingerprint", func(t *testing.T) {
		folded := args
		folded.Settings.Normalizer = "casefold"

		ui := uimocks.NewMockUI(t)
		expectSession(ui)
		ui.On("DisplayReport", reportWith(false, func(r m.Report) bool {
			return r.Fingerprint != first.Fingerprint
		})...).Return(nil).Once()

		require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), folded))
	})
}

func TestWorkflow_CollateInputs(t *testing.T) {
	dir := t.TempDir()
	plain := writeWitness(t, dir, "plain.txt", "Look, a koala!")
	tagged := writeWitness(t, dir, "tagged.json", `{"witnesses": [{"id": "T", "tokens": [
        {"t": "Look"}, {"t": ", "}, {"t": "Koala", "n": "koala"}, {"t": "!"}]}]}`)

	ui := uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", reportWith(false, func(r m.Report) bool {
		return assert.ObjectsAreEqual([]string{"P", "T"}, r.Collation.Table.Witnesses) &&
			r.Witnesses[1].Tokens[2].Normalized == "koala" &&
			r.Witnesses[1].Tokens[0].Normalized == "Look"
	})...).Return(nil).Once()

	err := newTestWorkflow(ui).Collate(context.Background(), CollateArgs{
		JobArgs: JobArgs{Reports: m.Path(t.TempDir())},
		Inputs:  []string{"P=" + plain, tagged},
		Name:    "koala",
	})
	require.NoError(t, err)
}

func TestWorkflow_CollateDirectory(t *testing.T) {
	dir := t.TempDir()
	writeWitness(t, dir, "A.txt", "one two")
	writeWitness(t, dir, "B.txt", "one three")
	writeWitness(t, dir, "notes.md", "skip me")
	writeWitness(t, dir, ".hidden", "skip me too")
	writeWitness(t, dir, "nested/C.txt", "not listed")

	ui := uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", reportWith(false, func(r m.Report) bool {
		return assert.ObjectsAreEqual([]string{"A", "B"}, r.Collation.Table.Witnesses)
	})...).Return(nil).Once()

	err := newTestWorkflow(ui).Collate(context.Background(), CollateArgs{
		JobArgs: JobArgs{Reports: m.Path(t.TempDir()), Exclude: []string{`\.md$`}},
		Inputs:  []string{dir},
	})
	require.NoError(t, err)
}

func TestWorkflow_CollateErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeWitness(t, dir, "A.txt", "x")
	other := writeWitness(t, dir, "other/A.txt", "y")

	tests := []struct {
		name    string
		args    CollateArgs
		wantCfg bool
		started bool
	}{
		{"unknown normalizer", CollateArgs{JobArgs: JobArgs{Settings: m.Settings{Normalizer: "nope"}}, Inputs: []string{a}}, true, false},
		{"unknown engine", CollateArgs{JobArgs: JobArgs{Settings: m.Settings{Engine: "nope"}}, Inputs: []string{a}}, true, false},
		{"bad exclude", CollateArgs{JobArgs: JobArgs{Exclude: []string{"("}}, Inputs: []string{a}}, true, false},
		{"missing file", CollateArgs{Inputs: []string{filepath.Join(dir, "missing.txt")}}, false, false},
		{"id on a directory", CollateArgs{Inputs: []string{"X=" + dir}}, true, false},
		{"duplicate ids", CollateArgs{Inputs: []string{a, other}}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := uimocks.NewMockUI(t)
			if tt.started {
				ui.On("Start", mock.Anything, mock.Anything).Return(nil).Once()
				ui.On("Close", mock.Anything).Return().Once()
			}

			tt.args.Reports = m.Path(t.TempDir())

			err := newTestWorkflow(ui).Collate(context.Background(), tt.args)
			require.Error(t, err)
			assert.Equal(t, tt.wantCfg, errors.Is(err, ErrConfiguration), err.Error())
		})
	}
}

func TestWorkflow_Tokens(t *testing.T) {
	dir := t.TempDir()
	a := writeWitness(t, dir, "A.txt", "Hello, World")

	ui := uimocks.NewMockUI(t)
	ui.On("Start", mock.Anything).Return(nil).Once()
	ui.On("Wait", mock.Anything).Return().Once()
	ui.On("Close", mock.Anything).Return().Once()
	ui.On("DisplayTokens", mock.Anything, []m.Witness{{ID: "A", Tokens: []m.Token{
		{Original: "Hello", Normalized: "hello"},
		{Original: ", ", Normalized: ","},
		{Original: "World", Normalized: "world"},
	}}}).Return(nil).Once()

	err := newTestWorkflow(ui).Tokens(context.Background(), TokensArgs{
		Settings: m.Settings{Normalizer: "casefold"},
		Inputs:   []string{a},
	})
	require.NoError(t, err)
}

func TestWorkflow_Batch(t *testing.T) {
	root := t.TempDir()
	reports := m.Path(filepath.Join(t.TempDir(), "reports"))

	good1 := filepath.Join(root, "first")
	writeWitness(t, good1, "A.txt", "a b c")
	writeWitness(t, good1, "B.txt", "a c")

	broken := filepath.Join(root, "broken")
	writeWitness(t, broken, "A.txt", "x")
	writeWitness(t, broken, "A.yaml", "witnesses:\n  - id: A\n    tokens: [{t: y}]\n")

	good2 := filepath.Join(root, "second")
	writeWitness(t, good2, "A.txt", "same")
	writeWitness(t, good2, "B.txt", "same")

	var shown []string

	ui := uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", mock.Anything, mock.Anything, false).Run(func(args mock.Arguments) {
		shown = append(shown, args.Get(1).(m.Report).Name)
	}).Return(nil).Twice()
	ui.On("DisplayJobFailure", mock.Anything, "broken", mock.Anything).Run(func(mock.Arguments) {
		shown = append(shown, "broken")
	}).Return().Once()
	ui.On("DisplaySummary", mock.Anything, 3, 1).Return().Once()

	err := newTestWorkflow(ui).Batch(context.Background(), BatchArgs{
		JobArgs: JobArgs{Reports: reports, Threads: 3, Settings: m.Settings{Segmentation: true}},
		Dirs:    []m.Path{m.Path(good1), m.Path(broken), m.Path(good2)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")

	assert.Equal(t, []string{"first", "broken", "second"}, shown)

	saved, failures, err := adapter.NewReportStore().LoadReports(reports)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Len(t, saved, 2)

	for _, report := range saved {
		assert.NoError(t, VerifyReport(report))
	}
}

func TestWorkflow_BatchRejectsBadSettings(t *testing.T) {
	ui := uimocks.NewMockUI(t)

	err := newTestWorkflow(ui).Batch(context.Background(), BatchArgs{
		JobArgs: JobArgs{Settings: m.Settings{Tokenizer: "nope"}},
		Dirs:    []m.Path{m.Path(t.TempDir())},
	})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestWorkflow_View(t *testing.T) {
	dir := t.TempDir()
	reports := m.Path(t.TempDir())
	a := writeWitness(t, dir, "A.txt", "red fish")
	b := writeWitness(t, dir, "B.txt", "blue fish")

	ui := uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", mock.Anything, mock.Anything, false).Return(nil).Once()

	w := newTestWorkflow(ui)
	require.NoError(t, w.Collate(context.Background(), CollateArgs{JobArgs: JobArgs{Reports: reports}, Inputs: []string{a, b}}))

	t.Run("shows saved reports", func(t *testing.T) {
		ui := uimocks.NewMockUI(t)
		expectSession(ui)
		ui.On("DisplayReport", reportWith(true, func(r m.Report) bool { return r.Name == "A+B" })...).Return(nil).Once()

		require.NoError(t, newTestWorkflow(ui).View(context.Background(), ViewArgs{Reports: reports}))
	})

	t.Run("rejects corrupt reports", func(t *testing.T) {
		saved, failures, err := adapter.NewReportStore().LoadReports(reports)
		require.NoError(t, err)
		require.Empty(t, failures)
		require.Len(t, saved, 1)

		corrupt := saved[0]
		corrupt.Witnesses[0].Tokens = corrupt.Witnesses[0].Tokens[:1]
		_, err = adapter.NewReportStore().SaveReport(reports, corrupt)
		require.NoError(t, err)

		ui := uimocks.NewMockUI(t)
		expectSession(ui)
		ui.On("DisplayJobFailure", mock.Anything, "A+B", mock.Anything).Return().Once()

		err = newTestWorkflow(ui).View(context.Background(), ViewArgs{Reports: reports})
		require.Error(t, err)
	})

	t.Run("empty directory shows nothing", func(t *testing.T) {
		ui := uimocks.NewMockUI(t)
		expectSession(ui)

		require.NoError(t, newTestWorkflow(ui).View(context.Background(), ViewArgs{Reports: m.Path(t.TempDir())}))
	})
}

func TestWorkflow_ViewShowsGoodReportsNextToUnreadableOnes(t *testing.T) {
	dir := t.TempDir()
	reports := m.Path(t.TempDir())
	a := writeWitness(t, dir, "A.txt", "red fish")
	b := writeWitness(t, dir, "B.txt", "blue fish")

	ui := uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayReport", mock.Anything, mock.Anything, false).Return(nil).Once()
	require.NoError(t, newTestWorkflow(ui).Collate(context.Background(), CollateArgs{JobArgs: JobArgs{Reports: reports}, Inputs: []string{a, b}}))

	writeWitness(t, string(reports), "broken.yaml", "witnesses: {id: A\n")

	ui = uimocks.NewMockUI(t)
	expectSession(ui)
	ui.On("DisplayJobFailure", mock.Anything, "broken.yaml", mock.Anything).Return().Once()
	ui.On("DisplayReport", reportWith(true, func(r m.Report) bool { return r.Name == "A+B" })...).Return(nil).Once()

	err := newTestWorkflow(ui).View(context.Background(), ViewArgs{Reports: reports})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 saved report(s) are corrupt")
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestParseWitnessArg(t *testing.T) {
	tests := []struct {
		arg  string
		want witnessArg
	}{
		{"texts/A.txt", witnessArg{path: "texts/A.txt"}},
		{"W1=texts/A.txt", witnessArg{id: "W1", path: "texts/A.txt"}},
		{"dir/a=b.txt", witnessArg{path: "dir/a=b.txt"}},
		{"=x.txt", witnessArg{path: "=x.txt"}},
		{"X=", witnessArg{path: "X="}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			assert.Equal(t, tt.want, parseWitnessArg(tt.arg))
		})
	}
}

func TestWitnessID(t *testing.T) {
	assert.Equal(t, "A", witnessID("texts/A.txt"))
	assert.Equal(t, "manuscript.v2", witnessID("manuscript.v2.txt"))
	assert.Equal(t, "README", witnessID("README"))
}

func TestJobFingerprint(t *testing.T) {
	sources := []m.WitnessSource{{ID: "A", Digest: "d1"}, {ID: "B", Digest: "d2"}}
	settings := withDefaults(m.Settings{})

	first, err := jobFingerprint(settings, sources)
	require.NoError(t, err)

	again, err := jobFingerprint(settings, sources)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	swapped, err := jobFingerprint(settings, []m.WitnessSource{sources[1], sources[0]})
	require.NoError(t, err)
	assert.NotEqual(t, first, swapped, "witness order is part of the job")

	segmented := settings
	segmented.Segmentation = true
	other, err := jobFingerprint(segmented, sources)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestDefaultJobName(t *testing.T) {
	src := func(ids ...string) []m.WitnessSource {
		out := make([]m.WitnessSource, len(ids))
		for i, id := range ids {
			out[i] = m.WitnessSource{ID: id}
		}

		return out
	}

	assert.Equal(t, "empty", defaultJobName(nil))
	assert.Equal(t, "A+B", defaultJobName(src("A", "B")))
	assert.Equal(t, "A+B+C+D+2 more", defaultJobName(src("A", "B", "C", "D", "E", "F")))
}
