package service

import (
	"context"
	"errors"
	"fmt"

	"roleplay/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 用户注册与登录校验
type UserService struct {
	db *gorm.DB
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register 依次检查用户名、邮箱是否已被占用，然后创建启用状态的用户
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	if err := takenError(db, username, email); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		// 并发注册时由唯一索引兜底，重新查询冲突的字段
		if isDuplicateKey(err) {
			if takenErr := takenError(db, username, email); takenErr != nil {
				return nil, takenErr
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// takenError 用户名优先于邮箱，均未占用返回 nil
func takenError(db *gorm.DB, username, email string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return nil
}

// Authenticate 校验用户名密码，停用用户返回 ErrInactiveUser
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidLogin
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return &user, nil
}
