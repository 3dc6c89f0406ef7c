package service

import (
	"context"
	"errors"
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

// UserUpdate 管理员修改用户，nil 字段不修改
type UserUpdate struct {
	Username *string
	Email    *string
	Role     *model.UserRole
	IsActive *bool
}

// UserService 管理端用户维护
type UserService struct {
	DB               *gorm.DB
	UserRepo         *repository.UserRepository
	CourseRepo       *repository.CourseRepository
	EnrollmentRepo   *repository.EnrollmentRepository
	ProgressRepo     *repository.ProgressRepository
	FeedbackRepo     *repository.FeedbackRepository
	NotificationRepo *repository.NotificationRepository
}

func NewUserService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	feedbackRepo *repository.FeedbackRepository,
	notificationRepo *repository.NotificationRepository,
) *UserService {
	return &UserService{
		DB:               db,
		UserRepo:         userRepo,
		CourseRepo:       courseRepo,
		EnrollmentRepo:   enrollmentRepo,
		ProgressRepo:     progressRepo,
		FeedbackRepo:     feedbackRepo,
		NotificationRepo: notificationRepo,
	}
}

// GetUsers 获取用户列表，支持分页和筛选
func (s *UserService) GetUsers(ctx context.Context, filter repository.UserFilter, page, pageSize int) ([]model.User, int64, error) {
	return s.UserRepo.WithContext(ctx).FindAll(filter, page, pageSize)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.UserRepo.WithContext(ctx).FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, in UserUpdate) (*model.User, error) {
	repo := s.UserRepo.WithContext(ctx)
	user, err := repo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username must not be empty", util.ErrValidation)
		}
		user.Username = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", util.ErrValidation)
		}
		existing, err := repo.FindByEmail(email)
		if err == nil && existing.ID != user.ID {
			return nil, util.ErrEmailRegistered
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: invalid role %q", util.ErrValidation, *in.Role)
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleUserStatus 启用/停用账号，管理员不能停用自己
func (s *UserService) ToggleUserStatus(ctx context.Context, caller model.Caller, id uint) (*model.User, error) {
	if caller.UserID == id {
		return nil, fmt.Errorf("%w: cannot change your own status", util.ErrValidation)
	}
	repo := s.UserRepo.WithContext(ctx)
	user, err := repo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	user.IsActive = !user.IsActive
	if err := repo.SetActive(user.ID, user.IsActive); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser 同一事务内清理学员的进度、反馈、选课和通知；仍有课程的讲师不能删除
func (s *UserService) DeleteUser(ctx context.Context, caller model.Caller, id uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, "UserService.DeleteUser", attribute.Int64("user.id", int64(id)))
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveOperation("delete_user", err)
	}()

	if caller.UserID == id {
		return fmt.Errorf("%w: cannot delete your own account", util.ErrValidation)
	}
	user, err := s.UserRepo.WithContext(ctx).FindByID(id)
	if err != nil {
		return notFoundOr(err, "user", id)
	}

	owned, err := s.CourseRepo.WithContext(ctx).CountByTrainer(user.ID)
	if err != nil {
		return err
	}
	if owned > 0 {
		return fmt.Errorf("%w: trainer %d still owns %d courses", util.ErrValidation, user.ID, owned)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progressRows, err := s.ProgressRepo.WithTx(tx).RemoveByLearner(user.ID)
		if err != nil {
			return err
		}
		feedbackRows, err := s.FeedbackRepo.WithTx(tx).DeleteByLearner(user.ID)
		if err != nil {
			return err
		}
		enrollments, err := s.EnrollmentRepo.WithTx(tx).DeleteByLearner(user.ID)
		if err != nil {
			return err
		}
		if _, err := s.NotificationRepo.WithTx(tx).DeleteByUser(user.ID); err != nil {
			return err
		}
		if err := s.UserRepo.WithTx(tx).Delete(user.ID); err != nil {
			return err
		}

		logger.Log.Info("User deleted",
			zap.Uint("userId", user.ID),
			zap.String("role", string(user.Role)),
			zap.Int64("progressRows", progressRows),
			zap.Int64("feedbackRows", feedbackRows),
			zap.Int64("enrollments", enrollments),
		)
		return nil
	})
}
