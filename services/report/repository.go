package report

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"workshop-backend/pkg/db/option"
	"workshop-backend/pkg/db/pagination"
)

//go:generate mockgen -source=repository.go -destination=mock_store_test.go -package=report

var ErrInvalidTransition = errors.New("report: invalid job status transition")

// JobStore persists report jobs. Every read is scoped to the owning caller.
type JobStore interface {
	Create(ctx context.Context, job *ReportJob) error
	FindForOwner(ctx context.Context, id, ownerID string) (*ReportJob, error)
	ListForOwner(ctx context.Context, ownerID string, page pagination.Pagination) ([]ReportJob, int64, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, file ReportFile) error
	MarkFailed(ctx context.Context, id string, message string) error
}

type gormJobStore struct {
	db *gorm.DB
}

func NewJobStore(db *gorm.DB) JobStore {
	return &gormJobStore{db: db}
}

func (s *gormJobStore) Create(ctx context.Context, job *ReportJob) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *gormJobStore) FindForOwner(ctx context.Context, id, ownerID string) (*ReportJob, error) {
	var job ReportJob
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_created = ?", id, ownerID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (s *gormJobStore) ListForOwner(ctx context.Context, ownerID string, page pagination.Pagination) ([]ReportJob, int64, error) {
	var total int64
	base := s.db.WithContext(ctx).Model(&ReportJob{}).Where("user_created = ?", ownerID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	jobs := make([]ReportJob, 0)
	if total == 0 {
		return jobs, 0, nil
	}

	err := option.Apply(
		s.db.WithContext(ctx).Where("user_created = ?", ownerID),
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "DESC"}),
		option.WithSortBy(option.QuerySortBy{SortBy: "id", OrderBy: "DESC"}),
		option.ApplyPagination(page),
	).Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

func (s *gormJobStore) MarkProcessing(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusProcessing, map[string]any{})
}

func (s *gormJobStore) MarkCompleted(ctx context.Context, id string, file ReportFile) error {
	return s.transition(ctx, id, StatusCompleted, map[string]any{
		"fileName": file.Name,
		"filePath": file.Path,
		"fileSize": file.Size,
		"error":    nil,
	})
}

func (s *gormJobStore) MarkFailed(ctx context.Context, id string, message string) error {
	return s.transition(ctx, id, StatusFailed, map[string]any{
		"fileName": "",
		"filePath": "",
		"fileSize": nil,
		"error":    message,
	})
}

// transition is a single conditional UPDATE guarded by the allowed source states.
func (s *gormJobStore) transition(ctx context.Context, id string, next Status, fields map[string]any) error {
	fields["status"] = next

	res := s.db.WithContext(ctx).
		Model(&ReportJob{}).
		Where("id = ? AND status IN ?", id, transitions[next]).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}
