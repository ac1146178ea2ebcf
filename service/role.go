package service

import (
	"context"
	"errors"

	"roleplay/models"

	"gorm.io/gorm"
)

// RoleService 角色目录
type RoleService struct {
	db *gorm.DB
}

// NewRoleService 创建角色服务
func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// Create 新建角色，名称唯一
func (s *RoleService) Create(ctx context.Context, role *models.Role) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrRoleNameTaken
	}
	if err := db.Create(role).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrRoleNameTaken
		}
		return err
	}
	return nil
}

// ListActive 启用中的角色，按名称排序
func (s *RoleService) ListActive(ctx context.Context) ([]models.Role, error) {
	roles := []models.Role{}
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&roles).Error
	return roles, err
}

// GetActive 获取启用中的角色，不存在或已停用返回 ErrRoleNotFound
func (s *RoleService) GetActive(ctx context.Context, id string) (*models.Role, error) {
	return activeRole(s.db.WithContext(ctx), id)
}

func activeRole(db *gorm.DB, id string) (*models.Role, error) {
	var role models.Role
	err := db.Where("id = ? AND is_active = ?", id, true).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}
