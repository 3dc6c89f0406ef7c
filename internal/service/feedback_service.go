package service

import (
	"context"
	"fmt"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/internal/util"
	"strings"
	"time"
)

type FeedbackService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	FeedbackRepo   *repository.FeedbackRepository
}

func NewFeedbackService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	feedbackRepo *repository.FeedbackRepository,
) *FeedbackService {
	return &FeedbackService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		FeedbackRepo:   feedbackRepo,
	}
}

// Submit 已选课学员提交评价，评分 1-5，可多次提交
func (s *FeedbackService) Submit(ctx context.Context, caller model.Caller, courseID uint, message string, rating int) (*model.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", util.ErrValidation)
	}
	if _, err := s.CourseRepo.WithContext(ctx).FindByID(courseID); err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}

	enrolled, err := s.EnrollmentRepo.WithContext(ctx).IsEnrolled(caller.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, fmt.Errorf("%w: learner %d is not enrolled in course %d", util.ErrForbidden, caller.UserID, courseID)
	}

	feedback := &model.Feedback{
		LearnerID:   caller.UserID,
		CourseID:    courseID,
		Message:     strings.TrimSpace(message),
		Rating:      rating,
		SubmittedAt: time.Now(),
	}
	if err := s.FeedbackRepo.WithContext(ctx).Create(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *FeedbackService) ListForCourse(ctx context.Context, courseID uint) ([]model.Feedback, error) {
	if _, err := s.CourseRepo.WithContext(ctx).FindByID(courseID); err != nil {
		return nil, notFoundOr(err, "course", courseID)
	}
	return s.FeedbackRepo.WithContext(ctx).FindByCourse(courseID)
}
