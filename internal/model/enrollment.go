package model

import "time"

const EnrollmentActive = "Active"

// Enrollment 同一学员对同一课程不做唯一约束
// swagger:model Enrollment
type Enrollment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerID  uint      `gorm:"not null;index" json:"learnerId"`
	CourseID   uint      `gorm:"not null;index" json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Status     string    `gorm:"size:20;not null" json:"status"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
