package repository

import (
	"context"
	"mini_lms_backend/internal/model"

	"gorm.io/gorm"
)

// AnalyticsRepository 讲师维度的聚合查询，结果以 map 返回，缺失的键由调用方按 0 处理
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func (r *AnalyticsRepository) WithContext(ctx context.Context) *AnalyticsRepository {
	return &AnalyticsRepository{DB: r.DB.WithContext(ctx)}
}

type courseCount struct {
	CourseID uint
	Total    int64
}

type courseAverage struct {
	CourseID uint
	Average  float64
}

// LearnerCountsByCourse 选课记录条数（不去重）
func (r *AnalyticsRepository) LearnerCountsByCourse(courseIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []courseCount
	err := r.DB.Model(&model.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = int(row.Total)
	}
	return counts, nil
}

func (r *AnalyticsRepository) AverageRatingByCourse(courseIDs []uint) (map[uint]float64, error) {
	avgs := make(map[uint]float64, len(courseIDs))
	if len(courseIDs) == 0 {
		return avgs, nil
	}

	var rows []courseAverage
	err := r.DB.Model(&model.Feedback{}).
		Select("course_id, AVG(rating) AS average").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		avgs[row.CourseID] = row.Average
	}
	return avgs, nil
}

// AverageProgressByCourse 以模块所属课程归组，空百分比按 0 计
func (r *AnalyticsRepository) AverageProgressByCourse(courseIDs []uint) (map[uint]float64, error) {
	avgs := make(map[uint]float64, len(courseIDs))
	if len(courseIDs) == 0 {
		return avgs, nil
	}

	var rows []courseAverage
	err := r.DB.Model(&model.ModuleProgress{}).
		Select("modules.course_id AS course_id, AVG(COALESCE(module_progresses.progress_percentage, 0)) AS average").
		Joins("JOIN modules ON modules.id = module_progresses.module_id").
		Where("modules.course_id IN ?", courseIDs).
		Group("modules.course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		avgs[row.CourseID] = row.Average
	}
	return avgs, nil
}

// RosterRow 讲师课程下的一条选课记录
type RosterRow struct {
	LearnerID    uint
	LearnerName  string
	LearnerEmail string
	CourseID     uint
	CourseName   string
}

// RosterRowsForTrainer 按选课先后返回，可能含重复的 (学员, 课程)
func (r *AnalyticsRepository) RosterRowsForTrainer(trainerID uint) ([]RosterRow, error) {
	var rows []RosterRow
	err := r.DB.Table("enrollments").
		Select("users.id AS learner_id, users.username AS learner_name, users.email AS learner_email, "+
			"courses.id AS course_id, courses.name AS course_name").
		Joins("JOIN users ON users.id = enrollments.learner_id").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.trainer_id = ? AND users.role = ?", trainerID, model.Learner).
		Order("enrollments.id ASC").
		Scan(&rows).Error
	return rows, err
}

type LearnerCourseKey struct {
	LearnerID uint
	CourseID  uint
}

type learnerCourseAverage struct {
	LearnerID uint
	CourseID  uint
	Average   float64
}

// AverageProgressByLearnerCourse 讲师名下每个 (学员, 课程) 的平均进度
func (r *AnalyticsRepository) AverageProgressByLearnerCourse(trainerID uint) (map[LearnerCourseKey]float64, error) {
	var rows []learnerCourseAverage
	err := r.DB.Model(&model.ModuleProgress{}).
		Select("module_progresses.learner_id AS learner_id, modules.course_id AS course_id, "+
			"AVG(COALESCE(module_progresses.progress_percentage, 0)) AS average").
		Joins("JOIN modules ON modules.id = module_progresses.module_id").
		Joins("JOIN courses ON courses.id = modules.course_id").
		Where("courses.trainer_id = ?", trainerID).
		Group("module_progresses.learner_id, modules.course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	avgs := make(map[LearnerCourseKey]float64, len(rows))
	for _, row := range rows {
		avgs[LearnerCourseKey{LearnerID: row.LearnerID, CourseID: row.CourseID}] = row.Average
	}
	return avgs, nil
}
