package model

import "time"

type NotificationType string

const (
	NotificationModuleUpdate      NotificationType = "ModuleUpdate"
	NotificationCourseCreated     NotificationType = "CourseCreated"
	NotificationTakedownRequested NotificationType = "TakedownRequested"
)

// Notification 只追加，不修改内容；只能标记已读或由管理员删除
// swagger:model Notification
type Notification struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"userId"`
	Type      NotificationType `gorm:"size:40;not null;index" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	CourseID  *uint            `gorm:"index" json:"courseId"`
	IsRead    bool             `gorm:"default:false" json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
