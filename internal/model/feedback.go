package model

import "time"

// swagger:model Feedback
type Feedback struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnerID   uint      `gorm:"not null;index" json:"learnerId"`
	CourseID    uint      `gorm:"not null;index" json:"courseId"`
	Message     string    `gorm:"type:text" json:"message"`
	Rating      int       `gorm:"not null" json:"rating"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}
