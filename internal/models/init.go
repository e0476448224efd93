package models

import (
	"cmp"
	"strings"

	"github.com/storefront-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// AdminSeed 首次启动时创建的管理员
type AdminSeed struct {
	Username string
	Password string
	Email    string
}

// EnsureDefaultAdmin 库中没有管理员时按 seed 创建超级管理员，返回是否新建。
// 已有管理员时只保证 seed 账号（若存在）仍是超级管理员。
func EnsureDefaultAdmin(db *gorm.DB, seed AdminSeed) (bool, error) {
	username := cmp.Or(strings.TrimSpace(seed.Username), defaultAdminUsername)

	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, db.Model(&Admin{}).Where("username = ?", username).Update("is_super", true).Error
	}

	password := cmp.Or(seed.Password, defaultAdminPassword)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := Admin{
		Username:     username,
		Email:        strings.TrimSpace(seed.Email),
		PasswordHash: string(hash),
		IsSuper:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, err
	}
	if password == defaultAdminPassword {
		logger.Warnw("default_admin_uses_default_password", "username", username)
	} else {
		logger.Infow("default_admin_created", "username", username)
	}
	return true, nil
}
