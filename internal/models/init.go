package models

import (
	"strings"

	"github.com/morimall/morimall/internal/constants"
	"github.com/morimall/morimall/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&Admin{}).Count(&count)

	// 如果已有管理员，确保默认 admin 拥有超级管理员权限
	if count > 0 {
		if err := DB.Model(&Admin{}).Where("username = ?", "admin").Update("is_super", true).Error; err != nil {
			logger.Warnw("ensure_default_admin_super_failed", "error", err)
		}
		return nil
	}

	// 创建默认管理员
	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      strings.EqualFold(strings.TrimSpace(username), "admin"),
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username, "password", password)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}

	return nil
}

// InitLoyaltyDefaults 初始化默认积分计划与抵扣商品
func InitLoyaltyDefaults(programName string) error {
	if strings.TrimSpace(programName) == "" {
		programName = "Loyalty Program"
	}

	var programCount int64
	DB.Model(&LoyaltyProgram{}).Count(&programCount)
	if programCount == 0 {
		program := LoyaltyProgram{
			Name:        programName,
			ProgramType: constants.LoyaltyProgramTypeLoyalty,
			PointsName:  "Points",
			Active:      true,
		}
		if err := DB.Create(&program).Error; err != nil {
			return err
		}
		logger.Infow("default_loyalty_program_created", "name", programName)
	}

	var productCount int64
	DB.Model(&Product{}).
		Where("LOWER(default_code) = ?", strings.ToLower(constants.RedeemProductCode)).
		Count(&productCount)
	if productCount == 0 {
		product := Product{
			Name:        constants.RedeemProductCode,
			DefaultCode: constants.RedeemProductCode,
			Active:      true,
		}
		if err := DB.Create(&product).Error; err != nil {
			return err
		}
		logger.Infow("redeem_product_created", "default_code", constants.RedeemProductCode)
	}

	return nil
}
