package repository

import (
	"context"
	"mini_lms_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) WithTx(tx *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: tx}
}

func (r *ModuleRepository) WithContext(ctx context.Context) *ModuleRepository {
	return &ModuleRepository{DB: r.DB.WithContext(ctx)}
}

func (r *ModuleRepository) Create(module *model.Module) error {
	return r.DB.Create(module).Error
}

func (r *ModuleRepository) FindByID(id uint) (*model.Module, error) {
	var module model.Module
	err := r.DB.First(&module, id).Error
	return &module, err
}

func (r *ModuleRepository) FindByCourse(courseID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("course_id = ?", courseID).Order("id ASC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) Update(module *model.Module) error {
	return r.DB.Save(module).Error
}

func (r *ModuleRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Module{}, id).Error
}

// DeleteByCourse 按 course_id 一次性删除，包含读取之后新建的模块
func (r *ModuleRepository) DeleteByCourse(courseID uint) (int64, error) {
	result := r.DB.Where("course_id = ?", courseID).Delete(&model.Module{})
	return result.RowsAffected, result.Error
}
