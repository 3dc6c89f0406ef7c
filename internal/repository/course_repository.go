package repository

import (
	"context"
	"mini_lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) WithContext(ctx context.Context) *CourseRepository {
	return &CourseRepository{DB: r.DB.WithContext(ctx)}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Trainer").First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindAll() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Trainer").Order("id ASC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByTrainer(trainerID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("trainer_id = ?", trainerID).Order("id ASC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) CountByTrainer(trainerID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Where("trainer_id = ?", trainerID).Count(&count).Error
	return count, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit("Trainer", "Modules").Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}
