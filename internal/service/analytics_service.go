package service

import (
	"context"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// AnalyticsService 只读统计；任何没有数据的平均值都返回 0
type AnalyticsService struct {
	CourseRepo    *repository.CourseRepository
	AnalyticsRepo *repository.AnalyticsRepository
}

func NewAnalyticsService(courseRepo *repository.CourseRepository, analyticsRepo *repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{
		CourseRepo:    courseRepo,
		AnalyticsRepo: analyticsRepo,
	}
}

// PerCourseAnalytics 讲师名下每门课程的选课数、平均评分和平均进度
func (s *AnalyticsService) PerCourseAnalytics(ctx context.Context, trainerID uint) (result *model.TrainerAnalytics, err error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsService.PerCourseAnalytics", attribute.Int64("trainer.id", int64(trainerID)))
	defer func() { tracing.EndSpan(span, err) }()

	courses, err := s.CourseRepo.WithContext(ctx).FindByTrainer(trainerID)
	if err != nil {
		return nil, err
	}

	courseIDs := make([]uint, 0, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
	}

	repo := s.AnalyticsRepo.WithContext(ctx)
	counts, err := repo.LearnerCountsByCourse(courseIDs)
	if err != nil {
		return nil, err
	}
	ratings, err := repo.AverageRatingByCourse(courseIDs)
	if err != nil {
		return nil, err
	}
	progress, err := repo.AverageProgressByCourse(courseIDs)
	if err != nil {
		return nil, err
	}

	result = &model.TrainerAnalytics{
		Courses: make([]model.CourseAnalytics, 0, len(courses)),
	}
	for _, c := range courses {
		item := model.CourseAnalytics{
			ID:           c.ID,
			Name:         c.Name,
			LearnerCount: counts[c.ID],
			AvgRating:    ratings[c.ID],
			AvgProgress:  progress[c.ID],
		}
		result.TotalLearners += item.LearnerCount
		result.Courses = append(result.Courses, item)
	}
	result.TotalCourses = len(courses)
	return result, nil
}

// LearnerRosterForTrainer 按学员归组，每个 (学员, 课程) 只出现一次，顺序为首次选课顺序
func (s *AnalyticsService) LearnerRosterForTrainer(ctx context.Context, trainerID uint) (roster []model.LearnerRoster, err error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsService.LearnerRosterForTrainer", attribute.Int64("trainer.id", int64(trainerID)))
	defer func() { tracing.EndSpan(span, err) }()

	repo := s.AnalyticsRepo.WithContext(ctx)
	rows, err := repo.RosterRowsForTrainer(trainerID)
	if err != nil {
		return nil, err
	}
	averages, err := repo.AverageProgressByLearnerCourse(trainerID)
	if err != nil {
		return nil, err
	}

	roster = make([]model.LearnerRoster, 0)
	index := make(map[uint]int)
	seen := make(map[repository.LearnerCourseKey]struct{})
	for _, row := range rows {
		key := repository.LearnerCourseKey{LearnerID: row.LearnerID, CourseID: row.CourseID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		i, ok := index[row.LearnerID]
		if !ok {
			roster = append(roster, model.LearnerRoster{
				LearnerID:    row.LearnerID,
				LearnerName:  row.LearnerName,
				LearnerEmail: row.LearnerEmail,
				Courses:      make([]model.LearnerCourseProgress, 0, 1),
			})
			i = len(roster) - 1
			index[row.LearnerID] = i
		}
		roster[i].Courses = append(roster[i].Courses, model.LearnerCourseProgress{
			CourseID:   row.CourseID,
			CourseName: row.CourseName,
			Progress:   averages[key],
		})
	}
	return roster, nil
}
