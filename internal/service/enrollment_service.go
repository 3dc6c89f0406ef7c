package service

import (
	"context"
	"fmt"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/internal/util"
	"mini_lms_backend/pkg/logger"
	"mini_lms_backend/pkg/monitoring"
	"mini_lms_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	FeedbackRepo   *repository.FeedbackRepository
}

func NewEnrollmentService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	feedbackRepo *repository.FeedbackRepository,
) *EnrollmentService {
	return &EnrollmentService{
		DB:             db,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		FeedbackRepo:   feedbackRepo,
	}
}

// CreateEnrollment 不对 (学员, 课程) 去重，也不为已有模块补建进度
func (s *EnrollmentService) CreateEnrollment(ctx context.Context, caller model.Caller, courseID uint) (enrollment *model.Enrollment, err error) {
	ctx, span := tracing.StartSpan(ctx, "EnrollmentService.CreateEnrollment", attribute.Int64("course.id", int64(courseID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("create_enrollment", err)
	}()

	if !caller.Is(model.Learner) {
		return nil, fmt.Errorf("%w: only learners can enroll", util.ErrForbidden)
	}
	if _, err := s.CourseRepo.WithContext(ctx).FindByID(courseID); err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}

	enrollment = &model.Enrollment{
		LearnerID:  caller.UserID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
		Status:     model.EnrollmentActive,
	}
	if err := s.EnrollmentRepo.WithContext(ctx).Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// DropEnrollment 删除选课记录及该学员在此课程下的进度和反馈，其他学员不受影响
func (s *EnrollmentService) DropEnrollment(ctx context.Context, caller model.Caller, enrollmentID uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, "EnrollmentService.DropEnrollment", attribute.Int64("enrollment.id", int64(enrollmentID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("drop_enrollment", err)
	}()

	enrollment, err := s.EnrollmentRepo.WithContext(ctx).FindByID(enrollmentID)
	if err != nil {
		return notFoundOr(err, "enrollment", enrollmentID)
	}
	if enrollment.LearnerID != caller.UserID {
		return fmt.Errorf("%w: enrollment %d", util.ErrNotFound, enrollmentID)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.EnrollmentRepo.WithTx(tx).Delete(enrollment.ID); err != nil {
			return err
		}
		progressRows, err := s.ProgressRepo.WithTx(tx).RemoveByLearnerAndCourse(enrollment.LearnerID, enrollment.CourseID)
		if err != nil {
			return err
		}
		feedbackRows, err := s.FeedbackRepo.WithTx(tx).DeleteByLearnerAndCourse(enrollment.LearnerID, enrollment.CourseID)
		if err != nil {
			return err
		}

		logger.Log.Info("Enrollment dropped",
			zap.Uint("enrollmentId", enrollment.ID),
			zap.Uint("learnerId", enrollment.LearnerID),
			zap.Uint("courseId", enrollment.CourseID),
			zap.Int64("progressRows", progressRows),
			zap.Int64("feedbackRows", feedbackRows),
		)
		return nil
	})
}

func (s *EnrollmentService) MyCourses(ctx context.Context, caller model.Caller) ([]model.EnrolledCourse, error) {
	return s.EnrollmentRepo.WithContext(ctx).FindCoursesForLearner(caller.UserID)
}

// LearnersOfCourse 课程所属讲师或管理员可查看
func (s *EnrollmentService) LearnersOfCourse(ctx context.Context, caller model.Caller, courseID uint) ([]model.CourseLearner, error) {
	course, err := s.CourseRepo.WithContext(ctx).FindByID(courseID)
	if err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}
	if !caller.Is(model.Admin) && course.TrainerID != caller.UserID {
		return nil, fmt.Errorf("%w: course %d is not owned by user %d", util.ErrForbidden, courseID, caller.UserID)
	}
	return s.EnrollmentRepo.WithContext(ctx).FindLearnersForCourse(courseID)
}
