package core

import (
	"errors"

	"gorm.io/gorm"
)

// AdminUser is an office-side account that can manage profiles and request
// reports. Terminals never authenticate as admin users.
type AdminUser struct {
	AdminId      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

func FindAdminByEmail(db *gorm.DB, email string) (*AdminUser, error) {
	var admin AdminUser
	result := db.Where("email = ?", email).First(&admin)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &admin, nil
}
