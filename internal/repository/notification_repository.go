package repository

import (
	"context"
	"mini_lms_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) WithTx(tx *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: tx}
}

func (r *NotificationRepository) WithContext(ctx context.Context) *NotificationRepository {
	return &NotificationRepository{DB: r.DB.WithContext(ctx)}
}

func (r *NotificationRepository) Create(notification *model.Notification) error {
	return r.DB.Create(notification).Error
}

func (r *NotificationRepository) FindByID(id uint) (*model.Notification, error) {
	var notification model.Notification
	err := r.DB.First(&notification, id).Error
	return &notification, err
}

func (r *NotificationRepository) FindAll() ([]model.Notification, error) {
	notifications := make([]model.Notification, 0)
	err := r.DB.Order("created_at DESC, id DESC").Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) FindByUser(userID uint) ([]model.Notification, error) {
	notifications := make([]model.Notification, 0)
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) FindByType(t model.NotificationType) ([]model.Notification, error) {
	notifications := make([]model.Notification, 0)
	err := r.DB.Where("type = ?", t).Order("created_at DESC, id DESC").Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) CountByType(t model.NotificationType) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).Where("type = ?", t).Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(id uint) error {
	return r.DB.Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *NotificationRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Notification{}, id).Error
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// DeleteTakedownsForCourse 按 course_id 或消息中带引号的课程名匹配（兼容没有 course_id 的旧记录）。
// 课程名按字面匹配，通配符用 '!' 转义（三种数据库都支持该写法）
func (r *NotificationRepository) DeleteTakedownsForCourse(courseID uint, courseName string) (int64, error) {
	pattern := "%'" + likeEscaper.Replace(courseName) + "'%"
	result := r.DB.
		Where("type = ? AND (course_id = ? OR (course_id IS NULL AND message LIKE ? ESCAPE '!'))",
			model.NotificationTakedownRequested, courseID, pattern).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) DeleteByUser(userID uint) (int64, error) {
	result := r.DB.Where("user_id = ?", userID).Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}
