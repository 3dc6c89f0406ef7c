package service

import (
	"context"
	"errors"
	"fmt"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/internal/util"
	"sync"

	"gorm.io/gorm"
)

// NotificationService 记录站内通知并发送邮件；邮件发送在事务提交后进行，失败仅作提示
type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
	Mailer           Mailer

	mu         sync.RWMutex
	adminEmail string
}

func NewNotificationService(repo *repository.NotificationRepository, mailer Mailer, adminEmail string) *NotificationService {
	return &NotificationService{
		NotificationRepo: repo,
		Mailer:           mailer,
		adminEmail:       adminEmail,
	}
}

func (s *NotificationService) AdminEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminEmail
}

// SetAdminEmail 配置热加载时更新下架申请的收件人
func (s *NotificationService) SetAdminEmail(email string) {
	s.mu.Lock()
	s.adminEmail = email
	s.mu.Unlock()
}

// Record 在调用方事务内写入一条通知
func (s *NotificationService) Record(tx *gorm.DB, userID uint, t model.NotificationType, message string, courseID *uint) (*model.Notification, error) {
	n := &model.Notification{
		UserID:   userID,
		Type:     t,
		Message:  message,
		CourseID: courseID,
	}
	if err := s.NotificationRepo.WithTx(tx).Create(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) SendCourseUpdateEmail(ctx context.Context, trainerEmail, message string) error {
	if trainerEmail == "" {
		return errors.New("trainer email is empty")
	}
	return s.Mailer.Send(ctx, trainerEmail, "Course content updated", message)
}

func (s *NotificationService) SendTakedownRequestEmail(ctx context.Context, adminEmail, courseName, trainerEmail string) error {
	if adminEmail == "" {
		return errors.New("admin email is not configured")
	}
	body := fmt.Sprintf("Trainer %s has requested the takedown of course '%s'.", trainerEmail, courseName)
	return s.Mailer.Send(ctx, adminEmail, "Course takedown requested", body)
}

func (s *NotificationService) SendNewCourseAvailableEmail(ctx context.Context, learnerEmail, courseName string) error {
	if learnerEmail == "" {
		return errors.New("learner email is empty")
	}
	body := fmt.Sprintf("A new course '%s' is now available. Log in to enroll.", courseName)
	return s.Mailer.Send(ctx, learnerEmail, "New course available", body)
}

func (s *NotificationService) ListForUser(ctx context.Context, caller model.Caller) ([]model.Notification, error) {
	return s.NotificationRepo.WithContext(ctx).FindByUser(caller.UserID)
}

// MarkRead 只能标记自己的通知
func (s *NotificationService) MarkRead(ctx context.Context, caller model.Caller, id uint) error {
	repo := s.NotificationRepo.WithContext(ctx)
	n, err := repo.FindByID(id)
	if err != nil {
		return notFoundOr(err, "notification", id)
	}
	if n.UserID != caller.UserID {
		return fmt.Errorf("%w: notification %d", util.ErrNotFound, id)
	}
	return repo.MarkRead(id)
}

func (s *NotificationService) ListAll(ctx context.Context) ([]model.Notification, error) {
	return s.NotificationRepo.WithContext(ctx).FindAll()
}

func (s *NotificationService) ListTakedownRequests(ctx context.Context) ([]model.Notification, error) {
	return s.NotificationRepo.WithContext(ctx).FindByType(model.NotificationTakedownRequested)
}

func (s *NotificationService) CountTakedownRequests(ctx context.Context) (int64, error) {
	return s.NotificationRepo.WithContext(ctx).CountByType(model.NotificationTakedownRequested)
}

func (s *NotificationService) Delete(ctx context.Context, id uint) error {
	repo := s.NotificationRepo.WithContext(ctx)
	if _, err := repo.FindByID(id); err != nil {
		return notFoundOr(err, "notification", id)
	}
	return repo.Delete(id)
}
