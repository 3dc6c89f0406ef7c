package repository

import (
	"context"
	"mini_lms_backend/internal/model"

	"gorm.io/gorm"
)

type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

func (r *FeedbackRepository) WithTx(tx *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: tx}
}

func (r *FeedbackRepository) WithContext(ctx context.Context) *FeedbackRepository {
	return &FeedbackRepository{DB: r.DB.WithContext(ctx)}
}

func (r *FeedbackRepository) Create(feedback *model.Feedback) error {
	return r.DB.Create(feedback).Error
}

func (r *FeedbackRepository) FindByCourse(courseID uint) ([]model.Feedback, error) {
	feedbacks := make([]model.Feedback, 0)
	err := r.DB.Where("course_id = ?", courseID).Order("submitted_at DESC").Find(&feedbacks).Error
	return feedbacks, err
}

func (r *FeedbackRepository) DeleteByCourse(courseID uint) (int64, error) {
	result := r.DB.Where("course_id = ?", courseID).Delete(&model.Feedback{})
	return result.RowsAffected, result.Error
}

func (r *FeedbackRepository) DeleteByLearnerAndCourse(learnerID, courseID uint) (int64, error) {
	result := r.DB.Where("learner_id = ? AND course_id = ?", learnerID, courseID).Delete(&model.Feedback{})
	return result.RowsAffected, result.Error
}

func (r *FeedbackRepository) DeleteByLearner(learnerID uint) (int64, error) {
	result := r.DB.Where("learner_id = ?", learnerID).Delete(&model.Feedback{})
	return result.RowsAffected, result.Error
}
