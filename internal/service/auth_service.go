package service

import (
	"context"
	"errors"
	"fmt"
	"mini_lms_backend/internal/config"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/internal/util"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     model.UserRole
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// Register 公开注册只允许 Trainer 和 Learner，管理员账号由管理端创建
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.Learner
	}
	if in.Role != model.Trainer && in.Role != model.Learner {
		return nil, fmt.Errorf("%w: role must be Trainer or Learner", util.ErrValidation)
	}
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("%w: username and email are required", util.ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", util.ErrValidation)
	}

	repo := s.UserRepo.WithContext(ctx)
	_, err := repo.FindByEmail(in.Email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Role:         in.Role,
		IsActive:     true,
	}
	if err := repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验密码并签发 JWT
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.WithContext(ctx).FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, util.ErrAccountDisabled
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, caller model.Caller) (*model.User, error) {
	user, err := s.UserRepo.WithContext(ctx).FindByID(caller.UserID)
	if err != nil {
		return nil, notFoundOr(err, "user", caller.UserID)
	}
	return user, nil
}
