// Package migrate sequences the pipeline: download every configured
// marathon from the legacy API into the local cache, then upsert the cached
// days into the new backend. Course-level problems are isolated per course
// and day-level problems per day; only authentication and configuration
// failures abort a run.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"marathon-migrate/internal/devutil"
	"marathon-migrate/internal/domain"
	"marathon-migrate/internal/report"
	"marathon-migrate/internal/transform"
)

// Mode selects which phases a run performs.
type Mode string

const (
	ModeFull     Mode = "full"
	ModeDownload Mode = "download"
	ModeUpload   Mode = "upload"
)

// Source is the legacy API surface the download phase needs.
type Source interface {
	Authenticate(ctx context.Context) error
	FetchCourseDays(ctx context.Context, marathonID string) ([]domain.Day, error)
}

// Destination is the backend API surface the upload phase needs.
type Destination interface {
	Authenticate(ctx context.Context) error
	ListMarathonDays(ctx context.Context, marathonID string) ([]domain.DestinationDay, error)
	CreateMarathonDay(ctx context.Context, marathonID string, day domain.TransformedDay) (map[string]any, error)
	UpdateMarathonDay(ctx context.Context, marathonID, dayID string, day domain.TransformedDay) (map[string]any, error)
}

// Cache is the on-disk archive layer between the two phases.
type Cache interface {
	Save(archive domain.MarathonArchive) (string, error)
	Load(courseID string) (domain.MarathonArchive, error)
}

// Progress records upload high-water marks for resumption.
type Progress interface {
	LastUploadedDay(ctx context.Context, sourceID string) (int, error)
	RecordUpload(ctx context.Context, sourceID, runID string, dayNumber, totalDays int) error
}

type Options struct {
	Courses     []domain.CourseMapping
	Source      Source
	Destination Destination
	Cache       Cache
	Progress    Progress
	Log         *slog.Logger

	// Force uploads every cached day even below the recorded high-water
	// mark (existing days are still updated, not duplicated).
	Force bool

	// RunID defaults to a fresh UUID.
	RunID string

	now func() time.Time
}

type Orchestrator struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) *Orchestrator {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Orchestrator{opts: opts, log: opts.Log}
}

// Run executes the requested phases over every configured course and
// returns the run summary. The returned error is reserved for run-aborting
// conditions (auth failures, canceled context); per-course and per-day
// problems land in the summary instead.
func (o *Orchestrator) Run(ctx context.Context, mode Mode) (report.RunSummary, error) {
	summary := report.RunSummary{
		RunID:     o.opts.RunID,
		Mode:      string(mode),
		StartedAt: o.opts.now().UTC(),
	}

	download := mode == ModeFull || mode == ModeDownload
	upload := mode == ModeFull || mode == ModeUpload

	if download {
		if o.opts.Source == nil {
			return summary, errors.New("migrate: download requested without a source client")
		}
		if err := o.opts.Source.Authenticate(ctx); err != nil {
			return summary, fmt.Errorf("migrate: source auth: %w", err)
		}
		o.log.Info("authenticated against legacy API")
	}
	if upload {
		if o.opts.Destination == nil {
			return summary, errors.New("migrate: upload requested without a destination client")
		}
		if err := o.opts.Destination.Authenticate(ctx); err != nil {
			return summary, fmt.Errorf("migrate: destination auth: %w", err)
		}
		o.log.Info("authenticated against backend API")
	}

	for _, course := range o.opts.Courses {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := report.CourseResult{
			SourceID:      course.SourceID,
			Title:         course.Title,
			DestinationID: course.DestinationID,
		}

		if download {
			o.downloadCourse(ctx, course, &result)
		}
		if upload && result.SkipReason == "" {
			o.uploadCourse(ctx, course, &result)
		}

		summary.Courses = append(summary.Courses, result)
	}

	summary.FinishedAt = o.opts.now().UTC()
	return summary, nil
}

func (o *Orchestrator) downloadCourse(ctx context.Context, course domain.CourseMapping, result *report.CourseResult) {
	log := o.log.With("course", course.SourceID, "title", course.Title)
	log.Info("downloading course structure")

	days, err := o.opts.Source.FetchCourseDays(ctx, course.SourceID)
	if err != nil {
		log.Error("download failed", "error", err)
		result.SkipReason = fmt.Sprintf("download failed: %v", err)
		return
	}

	archive := domain.MarathonArchive{
		SourceID:     course.SourceID,
		Title:        course.Title,
		DownloadedAt: o.opts.now().UTC(),
	}
	for _, day := range days {
		if len(day.DayCategories) == 0 {
			log.Warn("skipping day without categories", "day", day.DayNumber)
			result.DaysSkipped++
			continue
		}
		archive.Days = append(archive.Days, transform.Day(day))
	}
	result.DaysTotal = len(days)

	path, err := o.opts.Cache.Save(archive)
	if err != nil {
		log.Error("cache write failed", "error", err)
		result.SkipReason = fmt.Sprintf("cache write failed: %v", err)
		return
	}
	log.Info("course cached", "days", len(archive.Days), "path", path)
}

func (o *Orchestrator) uploadCourse(ctx context.Context, course domain.CourseMapping, result *report.CourseResult) {
	log := o.log.With("course", course.SourceID, "title", course.Title)

	// mapping gate: no destination traffic for unmapped courses
	if !course.Mapped() {
		log.Warn("no destination mapping, skipping upload")
		result.SkipReason = "no destination mapping"
		return
	}

	archive, err := o.opts.Cache.Load(course.SourceID)
	if err != nil {
		log.Error("cache read failed", "error", err)
		result.SkipReason = fmt.Sprintf("cache read failed: %v", err)
		return
	}
	if result.DaysTotal == 0 {
		result.DaysTotal = len(archive.Days)
	}

	existing, err := o.opts.Destination.ListMarathonDays(ctx, course.DestinationID)
	if err != nil {
		log.Error("listing destination days failed", "error", err)
		result.SkipReason = fmt.Sprintf("list destination days failed: %v", err)
		return
	}
	byNumber := make(map[int]string, len(existing))
	for _, d := range existing {
		byNumber[d.DayNumber] = d.ID
	}

	resumeFrom := 0
	if o.opts.Progress != nil && !o.opts.Force {
		resumeFrom, err = o.opts.Progress.LastUploadedDay(ctx, course.SourceID)
		if err != nil {
			log.Warn("reading progress failed, uploading from day 1", "error", err)
			resumeFrom = 0
		}
	}

	for _, day := range archive.Days {
		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, report.DayFailure{DayNumber: day.DayNumber, Error: err.Error()})
			return
		}

		if day.DayNumber <= resumeFrom {
			log.Debug("day already uploaded, skipping", "day", day.DayNumber)
			result.DaysSkipped++
			continue
		}

		var resp map[string]any
		var uerr error
		if dayID, ok := byNumber[day.DayNumber]; ok {
			resp, uerr = o.opts.Destination.UpdateMarathonDay(ctx, course.DestinationID, dayID, day)
			if uerr == nil {
				result.DaysUpdated++
			}
		} else {
			resp, uerr = o.opts.Destination.CreateMarathonDay(ctx, course.DestinationID, day)
			if uerr == nil {
				result.DaysCreated++
			}
		}

		if uerr != nil {
			// a failed day never aborts the course
			log.Error("day upload failed", "day", day.DayNumber, "error", uerr)
			result.Failures = append(result.Failures, report.DayFailure{DayNumber: day.DayNumber, Error: uerr.Error()})
			continue
		}

		log.Info("day uploaded", "day", day.DayNumber)
		log.Debug("backend response", "fields", devutil.Pick(resp, "_id", "dayNumber"))

		if o.opts.Progress != nil {
			if perr := o.opts.Progress.RecordUpload(ctx, course.SourceID, o.opts.RunID, day.DayNumber, len(archive.Days)); perr != nil {
				log.Warn("recording progress failed", "day", day.DayNumber, "error", perr)
			}
		}
	}
}
