package repository

import (
	"context"
	"mini_lms_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) WithContext(ctx context.Context) *EnrollmentRepository {
	return &EnrollmentRepository{DB: r.DB.WithContext(ctx)}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.First(&enrollment, id).Error
	return &enrollment, err
}

// LearnerIDsByCourse 课程下去重后的学员 ID，按首次选课顺序
func (r *EnrollmentRepository) LearnerIDsByCourse(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Group("learner_id").
		Order("MIN(id) ASC").
		Pluck("learner_id", &ids).Error
	return ids, err
}

func (r *EnrollmentRepository) IsEnrolled(learnerID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("learner_id = ? AND course_id = ?", learnerID, courseID).
		Count(&count).Error
	return count > 0, err
}

// FindCoursesForLearner 学员已选课程，带讲师名
func (r *EnrollmentRepository) FindCoursesForLearner(learnerID uint) ([]model.EnrolledCourse, error) {
	courses := make([]model.EnrolledCourse, 0)
	err := r.DB.Table("enrollments").
		Select("enrollments.id AS enrollment_id, courses.id AS course_id, courses.name, courses.type, courses.duration, "+
			"COALESCE(users.username, '') AS trainer, enrollments.status, enrollments.enrolled_at").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Joins("LEFT JOIN users ON users.id = courses.trainer_id").
		Where("enrollments.learner_id = ?", learnerID).
		Order("enrollments.id ASC").
		Scan(&courses).Error
	return courses, err
}

func (r *EnrollmentRepository) FindLearnersForCourse(courseID uint) ([]model.CourseLearner, error) {
	learners := make([]model.CourseLearner, 0)
	err := r.DB.Table("enrollments").
		Select("enrollments.id AS enrollment_id, users.id AS learner_id, users.username, users.email, "+
			"enrollments.status, enrollments.enrolled_at").
		Joins("JOIN users ON users.id = enrollments.learner_id").
		Where("enrollments.course_id = ?", courseID).
		Order("enrollments.id ASC").
		Scan(&learners).Error
	return learners, err
}

func (r *EnrollmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Enrollment{}, id).Error
}

func (r *EnrollmentRepository) DeleteByCourse(courseID uint) (int64, error) {
	result := r.DB.Where("course_id = ?", courseID).Delete(&model.Enrollment{})
	return result.RowsAffected, result.Error
}

func (r *EnrollmentRepository) DeleteByLearner(learnerID uint) (int64, error) {
	result := r.DB.Where("learner_id = ?", learnerID).Delete(&model.Enrollment{})
	return result.RowsAffected, result.Error
}
