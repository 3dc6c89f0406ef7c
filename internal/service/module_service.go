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

// ModuleInput 创建/更新模块的输入，Attachment 可为空
type ModuleInput struct {
	Title      string
	Content    string
	Attachment *Attachment
}

type ModuleService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	Notifier       *NotificationService
	Storage        AttachmentStore
}

func NewModuleService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	notifier *NotificationService,
	storage AttachmentStore,
) *ModuleService {
	return &ModuleService{
		DB:             db,
		CourseRepo:     courseRepo,
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		Notifier:       notifier,
		Storage:        storage,
	}
}

// ownedCourse 课程必须存在且属于调用者
func (s *ModuleService) ownedCourse(ctx context.Context, caller model.Caller, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.WithContext(ctx).FindByID(courseID)
	if err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}
	if course.TrainerID != caller.UserID {
		return nil, fmt.Errorf("%w: course %d is not owned by user %d", util.ErrForbidden, courseID, caller.UserID)
	}
	return course, nil
}

func (s *ModuleService) upload(ctx context.Context, att *Attachment) (*StoredAttachment, error) {
	if att == nil {
		return nil, nil
	}
	if s.Storage == nil {
		return nil, fmt.Errorf("%w: attachment store is not configured", util.ErrDependencyFailure)
	}
	stored, err := s.Storage.Upload(ctx, att)
	if err != nil {
		return nil, fmt.Errorf("%w: upload attachment %q: %v", util.ErrDependencyFailure, att.Filename, err)
	}
	return stored, nil
}

// discard 数据库写入失败后删除已上传的附件
func (s *ModuleService) discard(ctx context.Context, stored *StoredAttachment) {
	if stored == nil {
		return
	}
	if err := s.Storage.Delete(ctx, stored.Key); err != nil {
		logger.Log.Warn("Failed to remove orphaned attachment",
			zap.String("key", stored.Key),
			zap.Error(err),
		)
	}
}

func trainerEmail(course *model.Course, caller model.Caller) string {
	if course.Trainer != nil && course.Trainer.Email != "" {
		return course.Trainer.Email
	}
	return caller.Email
}

// CreateModule 新增模块，并为课程下所有已选课学员初始化进度
func (s *ModuleService) CreateModule(ctx context.Context, caller model.Caller, courseID uint, in ModuleInput) (module *model.Module, err error) {
	ctx, span := tracing.StartSpan(ctx, "ModuleService.CreateModule", attribute.Int64("course.id", int64(courseID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("create_module", err)
	}()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
	}

	course, err := s.ownedCourse(ctx, caller, courseID)
	if err != nil {
		return nil, err
	}

	// 附件是必需输入，上传失败时不写任何数据
	stored, err := s.upload(ctx, in.Attachment)
	if err != nil {
		return nil, err
	}

	module = &model.Module{
		CourseID:    course.ID,
		Name:        title,
		Description: in.Content,
	}
	if stored != nil {
		module.FilePath = &stored.URL
	}

	message := fmt.Sprintf("Module '%s' added to course '%s'.", title, course.Name)
	email := trainerEmail(course, caller)
	var hooks postCommitHooks

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ModuleRepo.WithTx(tx).Create(module); err != nil {
			return err
		}

		learnerIDs, err := s.EnrollmentRepo.WithTx(tx).LearnerIDsByCourse(course.ID)
		if err != nil {
			return err
		}
		created, failures, err := s.ProgressRepo.WithTx(tx).InitializeForModule(module.ID, course.ID, learnerIDs)
		if err != nil {
			return err
		}
		reportFanoutFailures("module_progress_init", failures, zap.Uint("moduleId", module.ID))
		logger.Log.Info("Module progress initialized",
			zap.Uint("moduleId", module.ID),
			zap.Uint("courseId", course.ID),
			zap.Int("learners", len(learnerIDs)),
			zap.Int("created", created),
		)

		if _, err := s.Notifier.Record(tx, course.TrainerID, model.NotificationModuleUpdate, message, nil); err != nil {
			return err
		}
		hooks.add("course_update_email", func(ctx context.Context) error {
			return s.Notifier.SendCourseUpdateEmail(ctx, email, message)
		})
		return nil
	})
	if err != nil {
		s.discard(ctx, stored)
		return nil, err
	}

	hooks.run(ctx)
	return module, nil
}

// UpdateModule 内容变更后所有学员在该模块上的进度归零
func (s *ModuleService) UpdateModule(ctx context.Context, caller model.Caller, moduleID uint, in ModuleInput) (module *model.Module, err error) {
	ctx, span := tracing.StartSpan(ctx, "ModuleService.UpdateModule", attribute.Int64("module.id", int64(moduleID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("update_module", err)
	}()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
	}

	module, err = s.ModuleRepo.WithContext(ctx).FindByID(moduleID)
	if err != nil {
		return nil, notFoundOr(err, "module", moduleID)
	}
	course, err := s.ownedCourse(ctx, caller, module.CourseID)
	if err != nil {
		return nil, err
	}

	stored, err := s.upload(ctx, in.Attachment)
	if err != nil {
		return nil, err
	}

	module.Name = title
	module.Description = in.Content
	if stored != nil {
		module.FilePath = &stored.URL
	}

	message := fmt.Sprintf("Module '%s' updated in course '%s'.", title, course.Name)
	email := trainerEmail(course, caller)
	var hooks postCommitHooks

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ModuleRepo.WithTx(tx).Update(module); err != nil {
			return err
		}
		reset, err := s.ProgressRepo.WithTx(tx).ResetForModule(module.ID)
		if err != nil {
			return err
		}
		logger.Log.Info("Module progress reset",
			zap.Uint("moduleId", module.ID),
			zap.Int64("rows", reset),
		)

		if _, err := s.Notifier.Record(tx, course.TrainerID, model.NotificationModuleUpdate, message, nil); err != nil {
			return err
		}
		hooks.add("course_update_email", func(ctx context.Context) error {
			return s.Notifier.SendCourseUpdateEmail(ctx, email, message)
		})
		return nil
	})
	if err != nil {
		s.discard(ctx, stored)
		return nil, err
	}

	hooks.run(ctx)
	return module, nil
}

// DeleteModule 先删进度再删模块，同一事务内完成
func (s *ModuleService) DeleteModule(ctx context.Context, caller model.Caller, moduleID uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, "ModuleService.DeleteModule", attribute.Int64("module.id", int64(moduleID)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("delete_module", err)
	}()

	module, err := s.ModuleRepo.WithContext(ctx).FindByID(moduleID)
	if err != nil {
		return notFoundOr(err, "module", moduleID)
	}
	course, err := s.ownedCourse(ctx, caller, module.CourseID)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Module '%s' deleted from course '%s'.", module.Name, course.Name)
	email := trainerEmail(course, caller)
	var hooks postCommitHooks

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := s.ProgressRepo.WithTx(tx).RemoveByModule(module.ID)
		if err != nil {
			return err
		}
		if err := s.ModuleRepo.WithTx(tx).Delete(module.ID); err != nil {
			return err
		}
		logger.Log.Info("Module deleted",
			zap.Uint("moduleId", module.ID),
			zap.Int64("progressRows", removed),
		)

		if _, err := s.Notifier.Record(tx, course.TrainerID, model.NotificationModuleUpdate, message, nil); err != nil {
			return err
		}
		hooks.add("course_update_email", func(ctx context.Context) error {
			return s.Notifier.SendCourseUpdateEmail(ctx, email, message)
		})
		return nil
	})
	if err != nil {
		return err
	}

	hooks.run(ctx)
	return nil
}

func (s *ModuleService) GetModule(ctx context.Context, moduleID uint) (*model.Module, error) {
	module, err := s.ModuleRepo.WithContext(ctx).FindByID(moduleID)
	if err != nil {
		return nil, notFoundOr(err, "module", moduleID)
	}
	return module, nil
}

// ListModulesWithProgress 课程模块列表，合并调用者自己的进度（没有记录按 0/未完成）
func (s *ModuleService) ListModulesWithProgress(ctx context.Context, caller model.Caller, courseID uint) ([]model.ModuleWithProgress, error) {
	if _, err := s.CourseRepo.WithContext(ctx).FindByID(courseID); err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}

	modules, err := s.ModuleRepo.WithContext(ctx).FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	progresses, err := s.ProgressRepo.WithContext(ctx).FindByLearnerAndCourse(caller.UserID, courseID)
	if err != nil {
		return nil, err
	}

	byModule := make(map[uint]model.ModuleProgress, len(progresses))
	for _, p := range progresses {
		byModule[p.ModuleID] = p
	}

	result := make([]model.ModuleWithProgress, 0, len(modules))
	for _, m := range modules {
		item := model.ModuleWithProgress{Module: m}
		if p, ok := byModule[m.ID]; ok {
			item.ProgressPercentage = p.Percentage()
			item.IsCompleted = p.Completed()
		}
		result = append(result, item)
	}
	return result, nil
}
