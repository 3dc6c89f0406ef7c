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
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseInput 创建/更新课程的输入
type CourseInput struct {
	Name       string
	Type       string
	Duration   *int
	Visibility string
}

func (in CourseInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", util.ErrValidation)
	}
	if in.Duration != nil && *in.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", util.ErrValidation)
	}
	return nil
}

type CourseService struct {
	DB               *gorm.DB
	CourseRepo       *repository.CourseRepository
	ModuleRepo       *repository.ModuleRepository
	EnrollmentRepo   *repository.EnrollmentRepository
	ProgressRepo     *repository.ProgressRepository
	FeedbackRepo     *repository.FeedbackRepository
	NotificationRepo *repository.NotificationRepository
	UserRepo         *repository.UserRepository
	Notifier         *NotificationService
}

func NewCourseService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	feedbackRepo *repository.FeedbackRepository,
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
) *CourseService {
	return &CourseService{
		DB:               db,
		CourseRepo:       courseRepo,
		ModuleRepo:       moduleRepo,
		EnrollmentRepo:   enrollmentRepo,
		ProgressRepo:     progressRepo,
		FeedbackRepo:     feedbackRepo,
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Notifier:         notifier,
	}
}

// CreateCourse 创建课程并通知所有在册学员，单个学员通知失败不影响其他学员
func (s *CourseService) CreateCourse(ctx context.Context, caller model.Caller, in CourseInput) (course *model.Course, err error) {
	ctx, span := tracing.StartSpan(ctx, "CourseService.CreateCourse")
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("create_course", err)
	}()

	if !caller.Is(model.Trainer) {
		return nil, fmt.Errorf("%w: only trainers can create courses", util.ErrForbidden)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	visibility := strings.TrimSpace(in.Visibility)
	if visibility == "" {
		visibility = model.DefaultVisibility
	}
	course = &model.Course{
		TrainerID:  caller.UserID,
		Name:       strings.TrimSpace(in.Name),
		Type:       in.Type,
		Duration:   in.Duration,
		Visibility: visibility,
		IsApproved: false,
	}

	message := fmt.Sprintf("New course '%s' is now available.", course.Name)
	var hooks postCommitHooks

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.CourseRepo.WithTx(tx).Create(course); err != nil {
			return err
		}

		learners, err := s.UserRepo.WithTx(tx).FindActiveByRole(model.Learner)
		if err != nil {
			return err
		}

		var failures []repository.LearnerFailure
		for _, learner := range learners {
			learner := learner
			err := tx.Transaction(func(sp *gorm.DB) error {
				_, err := s.Notifier.Record(sp, learner.ID, model.NotificationCourseCreated, message, nil)
				return err
			})
			if err != nil {
				failures = append(failures, repository.LearnerFailure{LearnerID: learner.ID, Err: err})
				continue
			}
			hooks.add("new_course_email", func(ctx context.Context) error {
				return s.Notifier.SendNewCourseAvailableEmail(ctx, learner.Email, course.Name)
			})
		}
		reportFanoutFailures("course_created_notification", failures, zap.Uint("courseId", course.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Course created",
		zap.Uint("courseId", course.ID),
		zap.Uint("trainerId", caller.UserID),
		zap.Int("notified", len(hooks)),
	)
	hooks.run(ctx)
	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.CourseRepo.WithContext(ctx).FindAll()
}

func (s *CourseService) GetCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.WithContext(ctx).FindByID(courseID)
	if err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}
	return course, nil
}

// UpdateCourse 只有课程所属讲师可以修改
func (s *CourseService) UpdateCourse(ctx context.Context, caller model.Caller, courseID uint, in CourseInput) (course *model.Course, err error) {
	ctx, span := tracing.StartSpan(ctx, "CourseService.UpdateCourse", attribute.Int64("course.id", int64(courseID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("update_course", err)
	}()

	if err := in.validate(); err != nil {
		return nil, err
	}

	repo := s.CourseRepo.WithContext(ctx)
	course, err = repo.FindByID(courseID)
	if err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}
	if course.TrainerID != caller.UserID {
		return nil, fmt.Errorf("%w: course %d is not owned by user %d", util.ErrForbidden, courseID, caller.UserID)
	}

	course.Name = strings.TrimSpace(in.Name)
	course.Type = in.Type
	course.Duration = in.Duration
	if v := strings.TrimSpace(in.Visibility); v != "" {
		course.Visibility = v
	}
	if err := repo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse 管理员或课程所属讲师可删除，按以下顺序清理：
// 各模块进度与模块、反馈、下架申请通知、选课记录，最后删除课程本身
func (s *CourseService) DeleteCourse(ctx context.Context, caller model.Caller, courseID uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, "CourseService.DeleteCourse", attribute.Int64("course.id", int64(courseID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("delete_course", err)
	}()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 在事务内读取并按 course_id 批量删除，并发新建的模块也会一起清理
		course, err := s.CourseRepo.WithTx(tx).FindByID(courseID)
		if err != nil {
			return notFoundOr(err, "course", courseID)
		}
		if !caller.Is(model.Admin) && course.TrainerID != caller.UserID {
			return fmt.Errorf("%w: course %d is not owned by user %d", util.ErrForbidden, courseID, caller.UserID)
		}

		progressRows, err := s.ProgressRepo.WithTx(tx).RemoveByCourse(course.ID)
		if err != nil {
			return err
		}
		modules, err := s.ModuleRepo.WithTx(tx).DeleteByCourse(course.ID)
		if err != nil {
			return err
		}
		feedbackRows, err := s.FeedbackRepo.WithTx(tx).DeleteByCourse(course.ID)
		if err != nil {
			return err
		}
		takedowns, err := s.NotificationRepo.WithTx(tx).DeleteTakedownsForCourse(course.ID, course.Name)
		if err != nil {
			return err
		}
		enrollments, err := s.EnrollmentRepo.WithTx(tx).DeleteByCourse(course.ID)
		if err != nil {
			return err
		}
		if err := s.CourseRepo.WithTx(tx).Delete(course.ID); err != nil {
			return err
		}

		logger.Log.Info("Course deleted",
			zap.Uint("courseId", course.ID),
			zap.Uint("callerId", caller.UserID),
			zap.Int64("modules", modules),
			zap.Int64("progressRows", progressRows),
			zap.Int64("feedbackRows", feedbackRows),
			zap.Int64("takedownNotifications", takedowns),
			zap.Int64("enrollments", enrollments),
		)
		return nil
	})
}

// RequestTakedown 讲师申请下架自己的课程，提交后邮件通知管理员
func (s *CourseService) RequestTakedown(ctx context.Context, caller model.Caller, courseID uint, reason string) (notification *model.Notification, err error) {
	ctx, span := tracing.StartSpan(ctx, "CourseService.RequestTakedown", attribute.Int64("course.id", int64(courseID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("request_takedown", err)
	}()

	course, err := s.CourseRepo.WithContext(ctx).FindByID(courseID)
	if err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}
	if course.TrainerID != caller.UserID {
		return nil, fmt.Errorf("%w: course %d is not owned by user %d", util.ErrForbidden, courseID, caller.UserID)
	}

	message := fmt.Sprintf("Trainer '%s' requested takedown of '%s'. Reason: %s", caller.Email, course.Name, strings.TrimSpace(reason))
	adminEmail := s.Notifier.AdminEmail()
	var hooks postCommitHooks

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.Notifier.Record(tx, caller.UserID, model.NotificationTakedownRequested, message, &course.ID)
		if err != nil {
			return err
		}
		notification = n
		hooks.add("takedown_request_email", func(ctx context.Context) error {
			return s.Notifier.SendTakedownRequestEmail(ctx, adminEmail, course.Name, caller.Email)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	hooks.run(ctx)
	return notification, nil
}
