package report

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"workshop-backend/pkg/errutil"
	"workshop-backend/pkg/minio"
	"workshop-backend/pkg/storage"
	"workshop-backend/pkg/task"
)

const partialSuffix = ".partial"

var tracer = otel.Tracer("workshop-backend/services/report")

var (
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_report_jobs_total",
		Help: "Report jobs by terminal status.",
	}, []string{"status"})
	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "workshop_report_job_duration_seconds",
		Help:    "Time from processing start to terminal status.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	rowsExported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_report_rows_exported_total",
		Help: "Work order rows written to CSV reports.",
	})
	archiveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_report_archive_errors_total",
		Help: "Completed reports that could not be copied to the archive bucket.",
	})
)

// Runner starts background work keyed by job id.
type Runner interface {
	Go(jobID string, fn func(ctx context.Context)) error
}

// Archiver copies completed reports off the local disk.
type Archiver interface {
	Upload(ctx context.Context, key, localPath string) (int64, error)
}

type Service struct {
	db      *gorm.DB
	store   JobStore
	runner  Runner
	paths   *storage.Paths
	archive Archiver

	now   func() time.Time
	newID func() string
}

type ServiceParams struct {
	fx.In
	DB      *gorm.DB
	Store   JobStore
	Runner  *task.Runner
	Paths   *storage.Paths
	Archive *minio.Archive `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	s := &Service{
		db:     p.DB,
		store:  p.Store,
		runner: p.Runner,
		paths:  p.Paths,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	if p.Archive != nil {
		s.archive = p.Archive
	}
	return s
}

// Submit records a PENDING job and hands generation to the runner. It returns as soon as
// the job is persisted.
func (s *Service) Submit(ctx context.Context, params WorkOrderReportParams, ownerID string) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", errutil.ValidationFailed("caller id is required", nil)
	}
	if err := params.Validate(); err != nil {
		return "", err
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return "", errutil.Internal("failed to encode report parameters", err)
	}

	job := &ReportJob{
		ID:      s.newID(),
		Status:  StatusPending,
		Params:  datatypes.JSON(raw),
		OwnerID: ownerID,
	}
	if err := s.store.Create(ctx, job); err != nil {
		zap.L().Error("[Report] failed to create job", zap.String("owner_id", ownerID), zap.Error(err))
		return "", errutil.Persistence("failed to initiate report", err)
	}

	log := jobLogger(job.ID, ownerID, params)
	log.Info("[Report] job created")

	err = s.runner.Go(job.ID, func(taskCtx context.Context) {
		s.run(taskCtx, job.ID, ownerID, params)
	})
	if err != nil {
		log.Error("[Report] runner refused job", zap.Error(err))
		s.fail(context.WithoutCancel(ctx), job.ID, ownerID, params, errutil.Internal("report runner unavailable", err))
	}

	return job.ID, nil
}

// Validate checks both dates are present and formatted YYYY-MM-DD. Their order is not checked.
func (p WorkOrderReportParams) Validate() error {
	fields := []struct{ name, value string }{
		{"startDate", p.StartDate},
		{"endDate", p.EndDate},
	}

	message := "Start date and end date are required"
	var details []errutil.Detail
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			details = append(details, errutil.Detail{Field: f.name, Message: "is required"})
			continue
		}
		if _, err := time.Parse(dateLayout, f.value); err != nil {
			details = append(details, errutil.Detail{Field: f.name, Message: "must be a date formatted YYYY-MM-DD"})
			message = "Start date and end date must be formatted YYYY-MM-DD"
		}
	}

	if len(details) > 0 {
		return errutil.ValidationFailed(message, nil, errutil.WithDetails(details...))
	}
	return nil
}

// FileName builds the report file name. The job id keeps names unique.
func FileName(params WorkOrderReportParams, at time.Time, jobID string) string {
	return fmt.Sprintf("workorders_%s_%s_%s_%s.csv",
		slug.Make(params.StartDate),
		slug.Make(params.EndDate),
		at.Format("20060102150405"),
		jobID,
	)
}

func jobLogger(jobID, ownerID string, params WorkOrderReportParams) *zap.Logger {
	return zap.L().With(
		zap.String("job_id", jobID),
		zap.String("owner_id", ownerID),
		zap.String("start_date", params.StartDate),
		zap.String("end_date", params.EndDate),
	)
}

func (s *Service) run(ctx context.Context, jobID, ownerID string, params WorkOrderReportParams) {
	start := time.Now()
	log := jobLogger(jobID, ownerID, params)

	ctx, span := tracer.Start(ctx, "report.generate", trace.WithAttributes(
		attribute.String("job.id", jobID),
		attribute.String("owner.id", ownerID),
	))
	defer span.End()

	// Terminal writes must land even when the runner is shutting down.
	persistCtx := context.WithoutCancel(ctx)

	var file ReportFile
	var partial string
	completed := false
	defer func() {
		switch rec := recover(); {
		case rec == nil:
		case completed:
			// A COMPLETED job keeps its file; only post-completion work was lost.
			log.Error("[Report] panic after report completed", zap.Any("panic", rec), zap.String("path", file.Path))
		default:
			log.Error("[Report] generation panicked", zap.Any("panic", rec))
			s.cleanup(log, partial, file.Path)
			s.fail(persistCtx, jobID, ownerID, params, errutil.Internal(fmt.Sprintf("report generation panicked: %v", rec), nil))
		}
		jobDuration.Observe(time.Since(start).Seconds())
	}()

	if err := s.store.MarkProcessing(persistCtx, jobID); err != nil {
		log.Error("[Report] failed to mark job processing", zap.Error(err))
		if !errors.Is(err, ErrInvalidTransition) {
			s.fail(persistCtx, jobID, ownerID, params, errutil.Persistence("failed to start report", err))
		}
		return
	}

	log.Info("[Report] starting report generation")

	count, err := s.export(ctx, jobID, params, &file, &partial)
	if err != nil {
		log.Error("[Report] report generation failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "report generation failed")
		s.cleanup(log, partial, file.Path)
		s.fail(persistCtx, jobID, ownerID, params, err)
		return
	}

	if err := s.store.MarkCompleted(persistCtx, jobID, file); err != nil {
		log.Error("[Report] failed to mark job completed", zap.Error(err))
		s.cleanup(log, partial, file.Path)
		s.fail(persistCtx, jobID, ownerID, params, errutil.Persistence("failed to record report", err))
		return
	}

	completed = true
	jobsTotal.WithLabelValues(string(StatusCompleted)).Inc()
	rowsExported.Add(float64(count))
	span.SetAttributes(attribute.Int64("report.rows", count), attribute.Int64("report.bytes", file.Size))

	s.archiveReport(ctx, log, file)

	log.Info("[Report] report generated successfully",
		zap.String("path", file.Path),
		zap.Int64("record_count", count),
		zap.String("file_size", FormatFileSize(file.Size)),
		zap.Duration("duration", time.Since(start)),
	)
}

// export writes the CSV to a partial file and renames it into place once complete.
func (s *Service) export(ctx context.Context, jobID string, params WorkOrderReportParams, file *ReportFile, partial *string) (int64, error) {
	now := s.now()
	name := FileName(params, now, jobID)

	path, err := s.paths.ResolveReportPath(name, now)
	if err != nil {
		return 0, err
	}
	*partial = path + partialSuffix

	f, err := os.Create(*partial)
	if err != nil {
		return 0, errutil.Filesystem("failed to create report file", err)
	}
	defer f.Close()

	rows, err := QueryWorkOrders(ctx, s.db, params.StartDate, params.EndDate)
	if err != nil {
		return 0, errutil.QueryExecution("failed to query work orders", err)
	}
	defer rows.Close()

	w := bufio.NewWriterSize(f, 64*1024)
	count, err := WriteCSV(ctx, w, rows)
	if err != nil {
		return count, err
	}
	if err := w.Flush(); err != nil {
		return count, errutil.Filesystem("failed to write report file", err)
	}
	if err := f.Close(); err != nil {
		return count, errutil.Filesystem("failed to close report file", err)
	}

	if err := os.Rename(*partial, path); err != nil {
		return count, errutil.Filesystem("failed to finalize report file", err)
	}
	file.Name = name
	file.Path = path

	info, err := os.Stat(path)
	if err != nil {
		return count, errutil.Filesystem("failed to stat report file", err)
	}
	file.Size = info.Size()

	return count, nil
}

// archiveReport uploads a completed report when an archive is configured. The job stays
// COMPLETED whatever the outcome.
func (s *Service) archiveReport(ctx context.Context, log *zap.Logger, file ReportFile) {
	if s.archive == nil {
		return
	}

	key, err := minio.ObjectKey(s.paths.Reports, file.Path)
	if err != nil {
		archiveErrors.Inc()
		log.Error("[Report] failed to resolve archive key", zap.String("path", file.Path), zap.Error(err))
		return
	}

	size, err := s.archive.Upload(ctx, key, file.Path)
	if err != nil {
		archiveErrors.Inc()
		log.Error("[Report] failed to archive report", zap.String("key", key), zap.Error(err))
		return
	}
	log.Info("[Report] report archived", zap.String("key", key), zap.Int64("size", size))
}

func (s *Service) fail(ctx context.Context, jobID, ownerID string, params WorkOrderReportParams, cause error) {
	jobsTotal.WithLabelValues(string(StatusFailed)).Inc()

	if err := s.store.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		jobLogger(jobID, ownerID, params).Error("[Report] failed to mark job failed", zap.Error(err))
	}
}

// cleanup removes whatever the failed attempt left on disk. Failures are only logged.
func (s *Service) cleanup(log *zap.Logger, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Error("[Report] failed to clean up report file", zap.String("path", p), zap.Error(err))
			}
			continue
		}
		log.Info("[Report] cleaned up report file", zap.String("path", p))
	}
}
