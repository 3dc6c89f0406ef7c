package model

import "time"

// ModuleProgress 每个 (学员, 模块) 一行，CourseID 为冗余字段，必须与模块所属课程一致
// swagger:model ModuleProgress
type ModuleProgress struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerID          uint      `gorm:"not null;uniqueIndex:idx_progress_learner_module" json:"learnerId"`
	ModuleID           uint      `gorm:"not null;uniqueIndex:idx_progress_learner_module;index" json:"moduleId"`
	CourseID           uint      `gorm:"not null;index" json:"courseId"`
	ProgressPercentage *float64  `json:"progressPercentage"`
	IsCompleted        *bool     `json:"isCompleted"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (ModuleProgress) TableName() string {
	return "module_progresses"
}

// Percentage 空值按 0 处理
func (p ModuleProgress) Percentage() float64 {
	if p.ProgressPercentage == nil {
		return 0
	}
	return *p.ProgressPercentage
}

func (p ModuleProgress) Completed() bool {
	return p.IsCompleted != nil && *p.IsCompleted
}
