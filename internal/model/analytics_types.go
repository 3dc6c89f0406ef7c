package model

import "time"

// CourseAnalytics 单门课程的统计
type CourseAnalytics struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	LearnerCount int     `json:"learnerCount"`
	AvgRating    float64 `json:"avgRating"`
	AvgProgress  float64 `json:"avgProgress"`
}

// TrainerAnalytics 讲师维度汇总
type TrainerAnalytics struct {
	TotalCourses  int               `json:"totalCourses"`
	TotalLearners int               `json:"totalLearners"`
	Courses       []CourseAnalytics `json:"courses"`
}

type LearnerCourseProgress struct {
	CourseID   uint    `json:"courseId"`
	CourseName string  `json:"courseName"`
	Progress   float64 `json:"progress"`
}

// LearnerRoster 讲师名下某个学员及其所选课程的进度
type LearnerRoster struct {
	LearnerID    uint                    `json:"learnerId"`
	LearnerName  string                  `json:"learnerName"`
	LearnerEmail string                  `json:"learnerEmail"`
	Courses      []LearnerCourseProgress `json:"courses"`
}

// ModuleWithProgress 模块及当前学员的进度
type ModuleWithProgress struct {
	Module
	ProgressPercentage float64 `json:"progressPercentage"`
	IsCompleted        bool    `json:"isCompleted"`
}

// ModuleProgressView 学员在某课程下各模块进度
type ModuleProgressView struct {
	ModuleID           uint    `json:"moduleId"`
	ProgressPercentage float64 `json:"progressPercentage"`
	IsCompleted        bool    `json:"isCompleted"`
}

// EnrolledCourse 学员已选课程列表项
type EnrolledCourse struct {
	EnrollmentID uint      `json:"enrollmentId"`
	CourseID     uint      `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Duration     *int      `json:"duration"`
	Trainer      string    `json:"trainer"`
	Status       string    `json:"status"`
	EnrolledAt   time.Time `json:"enrolledAt"`
}

// CourseLearner 课程下的学员
type CourseLearner struct {
	EnrollmentID uint      `json:"enrollmentId"`
	LearnerID    uint      `json:"learnerId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	EnrolledAt   time.Time `json:"enrolledAt"`
}
