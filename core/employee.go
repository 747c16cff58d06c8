package core

import (
	"errors"

	"gorm.io/gorm"
)

// Employee is the profile row the gate engine reads. The engine is the only
// writer of IsPresent and PhotoName; everything else belongs to profile CRUD.
type Employee struct {
	EmployeeId uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email      string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName  string  `gorm:"not null" json:"firstName"`
	Surname    string  `gorm:"not null" json:"lastName"`
	PhotoName  *string `json:"photoName"`
	IsPresent  bool    `gorm:"not null;default:false" json:"isPresent"`
}

func (Employee) TableName() string {
	return "employees"
}

func FindEmployeeByID(db *gorm.DB, id uint) (*Employee, error) {
	var emp Employee
	result := db.First(&emp, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil // not found
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &emp, nil
}

func FindEmployeeByEmail(db *gorm.DB, email string) (*Employee, error) {
	var emp Employee
	result := db.Where("email = ?", email).First(&emp)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &emp, nil
}
