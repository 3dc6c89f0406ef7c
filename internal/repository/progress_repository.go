package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

// ProgressRepository 是 module_progresses 表的唯一写入方
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) WithContext(ctx context.Context) *ProgressRepository {
	return &ProgressRepository{DB: r.DB.WithContext(ctx)}
}

// ProgressWrite 一次进度写入，nil 字段表示未提供
type ProgressWrite struct {
	LearnerID   uint
	ModuleID    uint
	CourseID    uint
	Percentage  *float64
	IsCompleted *bool
}

// LearnerFailure 扇出写入中单个学员的失败
type LearnerFailure struct {
	LearnerID uint
	Err       error
}

func ValidatePercentage(p *float64) error {
	if p == nil {
		return nil
	}
	if math.IsNaN(*p) || *p < 0 || *p > 100 {
		return fmt.Errorf("%w: progressPercentage %v must be within [0, 100]", util.ErrValidation, *p)
	}
	return nil
}

// InitializeForModule 为尚无记录的学员插入 0%/未完成 的进度行，已有记录不动。
// 每个学员单独一个保存点，单个失败不影响其余学员。
func (r *ProgressRepository) InitializeForModule(moduleID, courseID uint, learnerIDs []uint) (int, []LearnerFailure, error) {
	if len(learnerIDs) == 0 {
		return 0, nil, nil
	}

	var existing []uint
	err := r.DB.Model(&model.ModuleProgress{}).
		Where("module_id = ? AND learner_id IN ?", moduleID, learnerIDs).
		Pluck("learner_id", &existing).Error
	if err != nil {
		return 0, nil, err
	}

	seen := make(map[uint]struct{}, len(existing)+len(learnerIDs))
	for _, id := range existing {
		seen[id] = struct{}{}
	}

	now := time.Now()
	created := 0
	var failures []LearnerFailure
	for _, learnerID := range learnerIDs {
		if _, ok := seen[learnerID]; ok {
			continue
		}
		seen[learnerID] = struct{}{}

		row := &model.ModuleProgress{
			LearnerID:          learnerID,
			ModuleID:           moduleID,
			CourseID:           courseID,
			ProgressPercentage: model.Float64Ptr(0),
			IsCompleted:        model.BoolPtr(false),
			UpdatedAt:          now,
		}
		err := r.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(row).Error
		})
		if err != nil {
			failures = append(failures, LearnerFailure{LearnerID: learnerID, Err: err})
			continue
		}
		created++
	}

	return created, failures, nil
}

// ResetForModule 模块内容变更后所有学员进度归零
func (r *ProgressRepository) ResetForModule(moduleID uint) (int64, error) {
	result := r.DB.Model(&model.ModuleProgress{}).
		Where("module_id = ?", moduleID).
		Updates(map[string]interface{}{
			"progress_percentage": 0,
			"is_completed":        false,
			"updated_at":          time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Upsert 不存在则插入，存在则原地更新并以调用方给出的 CourseID 覆盖
func (r *ProgressRepository) Upsert(w ProgressWrite) (*model.ModuleProgress, error) {
	if err := ValidatePercentage(w.Percentage); err != nil {
		return nil, err
	}

	var existing model.ModuleProgress
	err := r.DB.Where("learner_id = ? AND module_id = ?", w.LearnerID, w.ModuleID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := &model.ModuleProgress{
			LearnerID:          w.LearnerID,
			ModuleID:           w.ModuleID,
			CourseID:           w.CourseID,
			ProgressPercentage: w.Percentage,
			IsCompleted:        w.IsCompleted,
			UpdatedAt:          time.Now(),
		}
		if err := r.DB.Create(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	}
	if err != nil {
		return nil, err
	}

	existing.CourseID = w.CourseID
	if w.Percentage != nil {
		existing.ProgressPercentage = w.Percentage
	}
	if w.IsCompleted != nil {
		existing.IsCompleted = w.IsCompleted
	}
	existing.UpdatedAt = time.Now()
	if err := r.DB.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *ProgressRepository) MarkComplete(learnerID, moduleID, courseID uint) (*model.ModuleProgress, error) {
	return r.Upsert(ProgressWrite{
		LearnerID:   learnerID,
		ModuleID:    moduleID,
		CourseID:    courseID,
		Percentage:  model.Float64Ptr(100),
		IsCompleted: model.BoolPtr(true),
	})
}

func (r *ProgressRepository) RemoveByModule(moduleID uint) (int64, error) {
	result := r.DB.Where("module_id = ?", moduleID).Delete(&model.ModuleProgress{})
	return result.RowsAffected, result.Error
}

// RemoveByCourse 删除课程下所有学员的进度，匹配方式同 RemoveByLearnerAndCourse
func (r *ProgressRepository) RemoveByCourse(courseID uint) (int64, error) {
	moduleIDs := r.DB.Model(&model.Module{}).Select("id").Where("course_id = ?", courseID)
	result := r.DB.
		Where("course_id = ? OR module_id IN (?)", courseID, moduleIDs).
		Delete(&model.ModuleProgress{})
	return result.RowsAffected, result.Error
}

// RemoveByLearnerAndCourse 按模块所属课程匹配，同时兜底冗余的 course_id
func (r *ProgressRepository) RemoveByLearnerAndCourse(learnerID, courseID uint) (int64, error) {
	moduleIDs := r.DB.Model(&model.Module{}).Select("id").Where("course_id = ?", courseID)
	result := r.DB.
		Where("learner_id = ? AND (course_id = ? OR module_id IN (?))", learnerID, courseID, moduleIDs).
		Delete(&model.ModuleProgress{})
	return result.RowsAffected, result.Error
}

// RemoveByLearner 删除学员的全部进度（账号删除时使用）
func (r *ProgressRepository) RemoveByLearner(learnerID uint) (int64, error) {
	result := r.DB.Where("learner_id = ?", learnerID).Delete(&model.ModuleProgress{})
	return result.RowsAffected, result.Error
}

// AverageProgressForLearnerCourse 空百分比按 0 计，没有记录时返回 0
func (r *ProgressRepository) AverageProgressForLearnerCourse(learnerID, courseID uint) (float64, error) {
	var avg float64
	err := r.DB.Model(&model.ModuleProgress{}).
		Select("COALESCE(AVG(COALESCE(module_progresses.progress_percentage, 0)), 0)").
		Joins("JOIN modules ON modules.id = module_progresses.module_id").
		Where("module_progresses.learner_id = ? AND modules.course_id = ?", learnerID, courseID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *ProgressRepository) FindByLearnerAndModule(learnerID, moduleID uint) (*model.ModuleProgress, error) {
	var progress model.ModuleProgress
	err := r.DB.Where("learner_id = ? AND module_id = ?", learnerID, moduleID).First(&progress).Error
	return &progress, err
}

func (r *ProgressRepository) FindByModule(moduleID uint) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	err := r.DB.Where("module_id = ?", moduleID).Order("learner_id ASC").Find(&rows).Error
	return rows, err
}

// FindByLearnerAndCourse 学员在课程下的所有模块进度
func (r *ProgressRepository) FindByLearnerAndCourse(learnerID, courseID uint) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	err := r.DB.Model(&model.ModuleProgress{}).
		Select("module_progresses.*").
		Joins("JOIN modules ON modules.id = module_progresses.module_id").
		Where("module_progresses.learner_id = ? AND modules.course_id = ?", learnerID, courseID).
		Order("module_progresses.module_id ASC").
		Find(&rows).Error
	return rows, err
}
