package service

import (
	"context"
	"fmt"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/internal/util"
	"mini_lms_backend/pkg/monitoring"
	"mini_lms_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// ProgressUpdate 学员提交的进度；CourseID 可省略，提供时必须与模块所属课程一致
type ProgressUpdate struct {
	ModuleID           uint
	CourseID           *uint
	ProgressPercentage *float64
	IsCompleted        *bool
}

type ProgressService struct {
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
}

func NewProgressService(
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
) *ProgressService {
	return &ProgressService{
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
	}
}

func (s *ProgressService) CourseAverage(ctx context.Context, caller model.Caller, courseID uint) (float64, error) {
	return s.ProgressRepo.WithContext(ctx).AverageProgressForLearnerCourse(caller.UserID, courseID)
}

func (s *ProgressService) ModuleProgress(ctx context.Context, caller model.Caller, courseID uint) ([]model.ModuleProgressView, error) {
	rows, err := s.ProgressRepo.WithContext(ctx).FindByLearnerAndCourse(caller.UserID, courseID)
	if err != nil {
		return nil, err
	}
	views := make([]model.ModuleProgressView, 0, len(rows))
	for _, p := range rows {
		views = append(views, model.ModuleProgressView{
			ModuleID:           p.ModuleID,
			ProgressPercentage: p.Percentage(),
			IsCompleted:        p.Completed(),
		})
	}
	return views, nil
}

// resolveModule 以模块所属课程为准，调用者必须已选该课程
func (s *ProgressService) resolveModule(ctx context.Context, caller model.Caller, moduleID uint, courseID *uint) (*model.Module, error) {
	module, err := s.ModuleRepo.WithContext(ctx).FindByID(moduleID)
	if err != nil {
		return nil, notFoundOr(err, "module", moduleID)
	}
	if courseID != nil && *courseID != module.CourseID {
		return nil, fmt.Errorf("%w: module %d does not belong to course %d", util.ErrValidation, moduleID, *courseID)
	}

	enrolled, err := s.EnrollmentRepo.WithContext(ctx).IsEnrolled(caller.UserID, module.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, fmt.Errorf("%w: learner %d is not enrolled in course %d", util.ErrForbidden, caller.UserID, module.CourseID)
	}
	return module, nil
}

func (s *ProgressService) UpdateProgress(ctx context.Context, caller model.Caller, in ProgressUpdate) (progress *model.ModuleProgress, err error) {
	ctx, span := tracing.StartSpan(ctx, "ProgressService.UpdateProgress", attribute.Int64("module.id", int64(in.ModuleID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("update_progress", err)
	}()

	if err := repository.ValidatePercentage(in.ProgressPercentage); err != nil {
		return nil, err
	}
	module, err := s.resolveModule(ctx, caller, in.ModuleID, in.CourseID)
	if err != nil {
		return nil, err
	}

	return s.ProgressRepo.WithContext(ctx).Upsert(repository.ProgressWrite{
		LearnerID:   caller.UserID,
		ModuleID:    module.ID,
		CourseID:    module.CourseID,
		Percentage:  in.ProgressPercentage,
		IsCompleted: in.IsCompleted,
	})
}

func (s *ProgressService) CompleteModule(ctx context.Context, caller model.Caller, moduleID uint) (progress *model.ModuleProgress, err error) {
	ctx, span := tracing.StartSpan(ctx, "ProgressService.CompleteModule", attribute.Int64("module.id", int64(moduleID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("complete_module", err)
	}()

	module, err := s.resolveModule(ctx, caller, moduleID, nil)
	if err != nil {
		return nil, err
	}
	return s.ProgressRepo.WithContext(ctx).MarkComplete(caller.UserID, module.ID, module.CourseID)
}
