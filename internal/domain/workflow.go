package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gollate.dev/pkg/gollate/internal/adapter"
	"gollate.dev/pkg/gollate/internal/controller"
	m "gollate.dev/pkg/gollate/internal/model"
	"gollate.dev/pkg/gollate/pkg"
)

// JobArgs are the options shared by every command that collates.
type JobArgs struct {
	Settings m.Settings
	Reports  m.Path
	Exclude  []string
	UseCache bool
	Threads  int
	Detail   bool
}

// CollateArgs describe a single collation: every input is a witness file, a
// directory of witness files, or `ID=path`.
type CollateArgs struct {
	JobArgs
	Name   string
	Inputs []string
}

// TokensArgs describe a token listing.
type TokensArgs struct {
	Settings m.Settings
	Inputs   []string
	Exclude  []string
	Threads  int
}

// BatchArgs describe many independent collations, one per directory.
type BatchArgs struct {
	JobArgs
	Dirs []m.Path
}

// ViewArgs describe re-displaying saved reports.
type ViewArgs struct {
	Reports m.Path
	Detail  bool
}

// Workflow drives the CLI commands.
type Workflow interface {
	Collate(ctx context.Context, args CollateArgs) error
	Tokens(ctx context.Context, args TokensArgs) error
	Batch(ctx context.Context, args BatchArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.WitnessFSAdapter
	adapter.ReportStore
	controller.UI

	now func() time.Time
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.WitnessFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		WitnessFSAdapter: fsAdapter,
		ReportStore:      reportStore,
		UI:               ui,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// job is a resolved collation request.
type job struct {
	name        string
	sources     []m.WitnessSource
	settings    m.Settings
	fingerprint string
}

func (w *workflow) Collate(ctx context.Context, args CollateArgs) error {
	excludes, err := compileExcludes(args.Exclude)
	if err != nil {
		return err
	}

	settings := withDefaults(args.Settings)

	p, err := newPipeline(settings, args.Threads)
	if err != nil {
		slog.Error("Invalid collation settings", "error", err)
		return err
	}

	sources, err := w.loadSources(args.Inputs, excludes)
	if err != nil {
		slog.Error("Failed to load witnesses", "error", err)
		return fmt.Errorf("load witnesses: %w", err)
	}

	j, err := newJob(args.Name, sources, settings)
	if err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithDetail(args.Detail)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	report, cached, err := w.runJob(ctx, p, j, args.Reports, args.UseCache)
	if err != nil {
		w.Close(ctx)
		return err
	}

	if !cached {
		if _, err := w.SaveReport(args.Reports, report); err != nil {
			w.Close(ctx)
			slog.Error("Failed to save report", "job", j.name, "error", err)

			return fmt.Errorf("save report: %w", err)
		}
	}

	if err := w.DisplayReport(ctx, report, cached); err != nil {
		w.Close(ctx)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

func (w *workflow) Tokens(ctx context.Context, args TokensArgs) error {
	excludes, err := compileExcludes(args.Exclude)
	if err != nil {
		return err
	}

	p, err := newPipeline(withDefaults(args.Settings), args.Threads)
	if err != nil {
		return err
	}

	sources, err := w.loadSources(args.Inputs, excludes)
	if err != nil {
		return fmt.Errorf("load witnesses: %w", err)
	}

	witnesses, err := p.ingestor.Ingest(ctx, sources)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	if err := w.Start(ctx); err != nil {
		return err
	}

	if err := w.DisplayTokens(ctx, witnesses); err != nil {
		w.Close(ctx)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

// jobOutcome is what a batch worker spills for one job.
type jobOutcome struct {
	Index  int
	Name   string
	Report m.Report
	Cached bool
	Err    string
}

// Batch collates every directory as an independent job. Jobs run concurrently;
// their outcomes are spilled to disk as they finish and then saved and shown in
// the order the directories were given. A failing job does not stop the others.
func (w *workflow) Batch(ctx context.Context, args BatchArgs) error {
	excludes, err := compileExcludes(args.Exclude)
	if err != nil {
		return err
	}

	settings := withDefaults(args.Settings)

	// Fail fast on unusable settings before any job starts.
	if _, err := newPipeline(settings, 1); err != nil {
		return err
	}

	spill, err := pkg.NewSpill[jobOutcome]("")
	if err != nil {
		return fmt.Errorf("create spill: %w", err)
	}

	defer func() {
		if err := spill.Close(); err != nil {
			slog.Error("Failed to close batch spill", "path", spill.Path(), "error", err)
		}
	}()

	slog.Debug("Spilling batch outcomes", "path", spill.Path(), "jobs", len(args.Dirs))

	if err := w.Start(ctx, controller.WithDetail(args.Detail)); err != nil {
		return err
	}

	if err := w.collectBatch(ctx, args, settings, excludes, spill); err != nil {
		w.Close(ctx)
		return err
	}

	failed, err := w.publishBatch(ctx, args, spill)
	if err != nil {
		w.Close(ctx)
		return err
	}

	w.DisplaySummary(ctx, len(args.Dirs), failed)
	w.Wait(ctx)
	w.Close(ctx)

	if failed > 0 {
		return fmt.Errorf("%d of %d batch job(s) failed", failed, len(args.Dirs))
	}

	return nil
}

func (w *workflow) collectBatch(
	ctx context.Context,
	args BatchArgs,
	settings m.Settings,
	excludes []*regexp.Regexp,
	spill pkg.Spill[jobOutcome],
) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if args.Threads > 0 {
		group.SetLimit(args.Threads)
	}

	for i, dir := range args.Dirs {
		i, dir := i, dir
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			outcome := jobOutcome{Index: i, Name: filepath.Base(filepath.Clean(string(dir)))}

			report, cached, err := w.batchJob(groupCtx, dir, outcome.Name, args, settings, excludes)
			if err != nil {
				slog.Error("Batch job failed", "job", outcome.Name, "error", err)
				outcome.Err = err.Error()
			} else {
				outcome.Report, outcome.Cached = report, cached
			}

			return spill.Append(outcome)
		})
	}

	return group.Wait()
}

func (w *workflow) batchJob(
	ctx context.Context,
	dir m.Path,
	name string,
	args BatchArgs,
	settings m.Settings,
	excludes []*regexp.Regexp,
) (m.Report, bool, error) {
	// Jobs already run in parallel, so each ingests on one goroutine.
	p, err := newPipeline(settings, 1)
	if err != nil {
		return m.Report{}, false, err
	}

	sources, err := w.loadDir(dir, excludes)
	if err != nil {
		return m.Report{}, false, err
	}

	j, err := newJob(name, sources, settings)
	if err != nil {
		return m.Report{}, false, err
	}

	return w.runJob(ctx, p, j, args.Reports, args.UseCache)
}

// publishBatch reads the spilled outcomes back in directory order, saves new
// reports and displays everything. It returns the number of failed jobs.
func (w *workflow) publishBatch(ctx context.Context, args BatchArgs, spill pkg.Spill[jobOutcome]) (int, error) {
	positions := make([]uint64, len(args.Dirs))

	err := spill.Range(func(position uint64, outcome jobOutcome) error {
		positions[outcome.Index] = position
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read batch results: %w", err)
	}

	failed := 0

	for _, position := range positions {
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		outcome, err := spill.Get(position)
		if err != nil {
			return failed, fmt.Errorf("read batch result: %w", err)
		}

		if outcome.Err != "" {
			failed++

			w.DisplayJobFailure(ctx, outcome.Name, errors.New(outcome.Err))

			continue
		}

		if !outcome.Cached {
			if _, err := w.SaveReport(args.Reports, outcome.Report); err != nil {
				return failed, fmt.Errorf("save report %s: %w", outcome.Name, err)
			}
		}

		if err := w.DisplayReport(ctx, outcome.Report, outcome.Cached); err != nil {
			return failed, fmt.Errorf("display: %w", err)
		}
	}

	return failed, nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, failures, err := w.LoadReports(args.Reports)
	if err != nil {
		slog.Error("Failed to load reports", "path", args.Reports, "error", err)
		return fmt.Errorf("load reports: %w", err)
	}

	if err := w.Start(ctx, controller.WithDetail(args.Detail)); err != nil {
		return err
	}

	var invalid []string

	for _, failure := range failures {
		name := filepath.Base(string(failure.Path))
		slog.Error("Saved report could not be read", "path", failure.Path, "error", failure.Err)
		w.DisplayJobFailure(ctx, name, failure.Err)

		invalid = append(invalid, name)
	}

	for _, report := range reports {
		if err := VerifyReport(report); err != nil {
			slog.Error("Saved report failed verification", "report", report.Fingerprint, "error", err)
			w.DisplayJobFailure(ctx, report.Name, err)

			invalid = append(invalid, report.Fingerprint)

			continue
		}

		if err := w.DisplayReport(ctx, report, true); err != nil {
			w.Close(ctx)
			return fmt.Errorf("display: %w", err)
		}
	}

	w.Wait(ctx)
	w.Close(ctx)

	if len(invalid) > 0 {
		return fmt.Errorf("%d saved report(s) are corrupt: %v", len(invalid), invalid)
	}

	return nil
}

func newJob(name string, sources []m.WitnessSource, settings m.Settings) (job, error) {
	fingerprint, err := jobFingerprint(settings, sources)
	if err != nil {
		return job{}, err
	}

	if name == "" {
		name = defaultJobName(sources)
	}

	return job{name: name, sources: sources, settings: settings, fingerprint: fingerprint}, nil
}

func defaultJobName(sources []m.WitnessSource) string {
	if len(sources) == 0 {
		return "empty"
	}

	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID)
	}

	return joinIDs(ids)
}

func joinIDs(ids []string) string {
	const maxShown = 4

	if len(ids) <= maxShown {
		return strings.Join(ids, "+")
	}

	return fmt.Sprintf("%s+%d more", strings.Join(ids[:maxShown], "+"), len(ids)-maxShown)
}

// runJob returns the cached report for the job's fingerprint when allowed, and
// otherwise ingests and collates the witnesses. The returned report is not
// saved yet.
func (w *workflow) runJob(ctx context.Context, p pipeline, j job, reports m.Path, useCache bool) (m.Report, bool, error) {
	if useCache {
		report, ok, err := w.LoadReport(reports, j.fingerprint)

		switch {
		case err != nil:
			slog.Warn("Ignoring unreadable cached report", "job", j.name, "error", err)
		case ok && VerifyReport(report) == nil:
			slog.Debug("Using cached report", "job", j.name, "fingerprint", j.fingerprint)
			return report, true, nil
		case ok:
			slog.Warn("Ignoring cached report that failed verification", "job", j.name)
		}
	}

	if err := ctx.Err(); err != nil {
		return m.Report{}, false, err
	}

	witnesses, err := p.ingestor.Ingest(ctx, j.sources)
	if err != nil {
		return m.Report{}, false, fmt.Errorf("ingest: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return m.Report{}, false, err
	}

	collation, err := p.collator.Collate(witnesses, j.settings.Segmentation)
	if err != nil {
		return m.Report{}, false, fmt.Errorf("collate: %w", err)
	}

	slog.Info("Collated job", "job", j.name, "witnesses", len(witnesses), "segments", len(collation.Segments))

	return m.Report{
		Fingerprint: j.fingerprint,
		Name:        j.name,
		CreatedAt:   w.now(),
		Settings:    j.settings,
		Sources:     digests(j.sources, witnesses),
		Witnesses:   witnesses,
		Collation:   collation,
	}, false, nil
}
