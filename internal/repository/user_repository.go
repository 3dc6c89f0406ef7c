package repository

import (
	"context"
	"mini_lms_backend/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) WithContext(ctx context.Context) *UserRepository {
	return &UserRepository{DB: r.DB.WithContext(ctx)}
}

func (r *UserRepository) Create(user *model.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	return &user, err
}

// UserFilter 管理端用户列表筛选条件
type UserFilter struct {
	Role   model.UserRole
	Search string
	Active *bool
}

func (r *UserRepository) FindAll(filter UserFilter, page, pageSize int) ([]model.User, int64, error) {
	users := make([]model.User, 0)
	var total int64

	query := r.DB.Model(&model.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order("id ASC").Find(&users).Error
	return users, total, err
}

// FindActiveByRole 新课程通知的收件人
func (r *UserRepository) FindActiveByRole(role model.UserRole) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("role = ? AND is_active = ?", role, true).Order("id ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) SetActive(userID uint, active bool) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("is_active", active).Error
}

func (r *UserRepository) Delete(id uint) error {
	return r.DB.Delete(&model.User{}, id).Error
}

// AccessState 供 ActiveUserMiddleware 使用，返回当前启用状态和角色；用户不存在时返回错误
func (r *UserRepository) AccessState(userID uint) (bool, model.UserRole, error) {
	var user model.User
	if err := r.DB.Select("id", "is_active", "role").First(&user, userID).Error; err != nil {
		return false, "", err
	}
	return user.IsActive, user.Role, nil
}
