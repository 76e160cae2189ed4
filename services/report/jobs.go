package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"workshop-backend/pkg/db/pagination"
	"workshop-backend/pkg/errutil"
	"workshop-backend/pkg/storage"
)

// JobSummary is the public view of a job.
type JobSummary struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	FileName  *string   `json:"fileName"`
	FileSize  *string   `json:"fileSize"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Error     *string   `json:"error"`
}

type JobList struct {
	Jobs       []JobSummary        `json:"jobs"`
	Pagination pagination.PageInfo `json:"pagination"`
}

// ReportDownload is an open report file. The caller must close File.
type ReportDownload struct {
	FileName string
	Size     int64
	File     *os.File
}

// FormatFileSize renders bytes as megabytes with two decimals, e.g. "1.00 MB".
func FormatFileSize(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}

func NewJobSummary(job *ReportJob) JobSummary {
	summary := JobSummary{
		ID:        job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.FileName != "" {
		name := job.FileName
		summary.FileName = &name
	}
	if job.FileSize != nil {
		size := FormatFileSize(*job.FileSize)
		summary.FileSize = &size
	}
	if job.Error != nil && *job.Error != "" {
		msg := *job.Error
		summary.Error = &msg
	}
	return summary
}

func (s *Service) GetStatus(ctx context.Context, jobID, ownerID string) (*JobSummary, error) {
	job, err := s.findJob(ctx, jobID, ownerID)
	if err != nil {
		return nil, err
	}
	summary := NewJobSummary(job)
	return &summary, nil
}

func (s *Service) List(ctx context.Context, ownerID string, page pagination.Pagination) (*JobList, error) {
	page = page.Normalize()

	jobs, total, err := s.store.ListForOwner(ctx, ownerID, page)
	if err != nil {
		zap.L().Error("[Report] failed to list jobs", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, errutil.Persistence("failed to list jobs", err)
	}

	out := &JobList{
		Jobs:       make([]JobSummary, 0, len(jobs)),
		Pagination: pagination.BuildPageInfo(page, total),
	}
	for i := range jobs {
		out.Jobs = append(out.Jobs, NewJobSummary(&jobs[i]))
	}
	return out, nil
}

// Download opens the finished report. The job must be COMPLETED and its file must still exist.
func (s *Service) Download(ctx context.Context, jobID, ownerID string) (*ReportDownload, error) {
	job, err := s.findJob(ctx, jobID, ownerID)
	if err != nil {
		return nil, err
	}

	if job.Status != StatusCompleted {
		return nil, errutil.NotFound("Report not found or not ready", nil)
	}

	if !storage.Exists(job.FilePath) {
		zap.L().Warn("[Report] report file missing",
			zap.String("job_id", jobID),
			zap.String("owner_id", ownerID),
			zap.String("path", job.FilePath),
		)
		return nil, errutil.NotFound("Report file not found", nil)
	}

	f, err := os.Open(job.FilePath)
	if err != nil {
		return nil, errutil.NotFound("Report file not found", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errutil.NotFound("Report file not found", err)
	}

	return &ReportDownload{FileName: job.FileName, Size: info.Size(), File: f}, nil
}

func (s *Service) findJob(ctx context.Context, jobID, ownerID string) (*ReportJob, error) {
	job, err := s.store.FindForOwner(ctx, jobID, ownerID)
	if err != nil {
		zap.L().Error("[Report] failed to load job", zap.String("job_id", jobID), zap.String("owner_id", ownerID), zap.Error(err))
		return nil, errutil.Persistence("failed to load job", err)
	}
	if job == nil {
		return nil, errutil.NotFound("Job not found", nil)
	}
	return job, nil
}
