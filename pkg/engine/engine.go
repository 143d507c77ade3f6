package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/organize/pkg/action"
	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/fsutil"
	"github.com/macropower/organize/pkg/log"
	"github.com/macropower/organize/pkg/rule"
)

// NothingToDo is written to the output when no file matches any rule.
const NothingToDo = "Nothing to do."

var tracer = otel.Tracer("github.com/macropower/organize/pkg/engine")

// Job is a file selected by a rule, together with the rule's filters and
// actions.
type Job struct {
	Path    string
	Rule    *rule.Rule
	Filters []filter.Filter
	Actions []action.Action
}

// FindJobs returns a job for every candidate file that matches all filters of
// a rule, sorted by path. Rule order is kept for jobs with the same path.
//
// Candidates are the direct children of each folder whose name contains a
// dot and does not start with one. Missing or unreadable folders are logged
// and skipped. Filter errors exclude the candidate and are returned joined,
// alongside the jobs that were found.
func FindJobs(ctx context.Context, rules []*rule.Rule) ([]Job, error) {
	ctx, span := tracer.Start(ctx, "find jobs", trace.WithAttributes(
		attribute.Int("rules", len(rules)),
	))
	defer span.End()

	logger := log.WithContext(ctx)

	var (
		jobs []Job
		errs []error
	)

	for _, r := range rules {
		for _, folder := range r.Folders {
			candidates, err := listCandidates(folder)
			if err != nil {
				logger.WarnContext(ctx, "skip folder",
					slog.String("folder", folder),
					slog.Any("err", err),
				)

				continue
			}

			for _, path := range candidates {
				ok, err := matchAll(ctx, r.Filters, path)
				if err != nil {
					logger.ErrorContext(ctx, "filter failed",
						slog.String("path", path),
						slog.Any("err", err),
					)

					errs = append(errs, fmt.Errorf("%s: %w", path, err))

					continue
				}

				if ok {
					jobs = append(jobs, Job{
						Path:    path,
						Rule:    r,
						Filters: r.Filters,
						Actions: r.Actions,
					})
				}
			}
		}
	}

	slices.SortStableFunc(jobs, func(a, b Job) int {
		return cmp.Compare(a.Path, b.Path)
	})

	warnOverlaps(ctx, jobs)

	span.SetAttributes(attribute.Int("jobs", len(jobs)))

	return jobs, errors.Join(errs...)
}

// ExecuteRules finds and runs all jobs of rules. When simulate is set,
// actions only report what they would do.
//
// A failing job is logged and skipped; the remaining jobs still run. All
// errors are returned joined.
func ExecuteRules(ctx context.Context, w io.Writer, rules []*rule.Rule, simulate bool) error {
	ctx, span := tracer.Start(ctx, "execute rules", trace.WithAttributes(
		attribute.Bool("simulate", simulate),
	))
	defer span.End()

	logger := log.WithContext(ctx)

	jobs, err := FindJobs(ctx, rules)

	if len(jobs) == 0 {
		if err != nil {
			span.SetStatus(codes.Error, "job discovery failed")
			return err
		}

		_, err = fmt.Fprintln(w, NothingToDo)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		return nil
	}

	errs := []error{err}

	logger.DebugContext(ctx, "found jobs", slog.Any("jobs", jobPaths(jobs)))

	for _, job := range jobs {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("stopped before %s: %w", job.Path, context.Cause(ctx)))
			break
		}

		err := runJob(ctx, job, simulate)
		if err != nil {
			logger.ErrorContext(ctx, "job failed",
				slog.String("path", job.Path),
				slog.Any("err", err),
			)

			errs = append(errs, fmt.Errorf("%s: %w", job.Path, err))
		}
	}

	err = errors.Join(errs...)
	if err != nil {
		span.SetStatus(codes.Error, "some jobs failed")
	}

	return err
}

func runJob(ctx context.Context, job Job, simulate bool) error {
	ctx, span := tracer.Start(ctx, "job", trace.WithAttributes(
		attribute.String("path", job.Path),
	))
	defer span.End()

	logger := log.WithContext(ctx)
	logger.InfoContext(ctx, "processing", slog.String("path", job.Path))

	attrs := filter.Attributes{}

	if len(job.Filters) > 0 {
		parsed, err := job.Filters[0].Parse(ctx, job.Path)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("parse attributes: %w", err)
		}
		if parsed != nil {
			attrs = parsed
		}
	}

	current, err := fsutil.Resolve(job.Path)
	if err != nil {
		span.RecordError(err)
		return err //nolint:wrapcheck // Already wrapped.
	}

	// Actions log through the context logger, annotated with the file.
	ctx = log.NewContext(ctx, logger.With(slog.String("path", current)))

	for i, a := range job.Actions {
		next, err := a.Run(ctx, current, attrs, simulate)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("action %d: %w", i+1, err)
		}

		if next != "" {
			current = next
			ctx = log.NewContext(ctx, logger.With(slog.String("path", current)))
		}
	}

	return nil
}

func listCandidates(folder string) ([]string, error) {
	dir, err := fsutil.ExpandHome(folder)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.Contains(name, ".") {
			continue
		}

		paths = append(paths, filepath.Join(dir, name))
	}

	return paths, nil
}

func matchAll(ctx context.Context, filters []filter.Filter, path string) (bool, error) {
	for _, f := range filters {
		ok, err := f.Matches(ctx, path)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// warnOverlaps logs every path selected by more than one rule. Jobs must be
// sorted by path.
func warnOverlaps(ctx context.Context, jobs []Job) {
	for i := 0; i < len(jobs); {
		j := i + 1
		for j < len(jobs) && jobs[j].Path == jobs[i].Path {
			j++
		}

		if n := j - i; n > 1 {
			log.WithContext(ctx).WarnContext(ctx, "file matched by multiple rules",
				slog.String("path", jobs[i].Path),
				slog.Int("rules", n),
			)
		}

		i = j
	}
}

func jobPaths(jobs []Job) []string {
	paths := make([]string, 0, len(jobs))
	for _, j := range jobs {
		paths = append(paths, j.Path)
	}

	return paths
}
