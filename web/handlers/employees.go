package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"secureentry.com/secureentry/core"
	"secureentry.com/secureentry/infrastructure/filesystem"
	"secureentry.com/secureentry/utils"
	"secureentry.com/secureentry/web/common"
)

// Profile CRUD. Thin plumbing around the employees table; presence and photo
// refresh on admitted swipes stay with the gate engine.

type EmployeeCreateDTO struct {
	Email     string `form:"email" binding:"required,email"`
	FirstName string `form:"firstName" binding:"required"`
	LastName  string `form:"lastName" binding:"required"`
}

type EmployeeUpdateDTO struct {
	Email     *string `form:"email" binding:"omitempty,email"`
	FirstName *string `form:"firstName"`
	LastName  *string `form:"lastName"`
}

func referencePhotoName(employeeID uint) string {
	return fmt.Sprintf("user_%d.png", employeeID)
}

func CreateEmployeeHandler(db *gorm.DB, photos filesystem.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto EmployeeCreateDTO
		if err := c.ShouldBind(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		emp := core.Employee{
			Email:     dto.Email,
			FirstName: dto.FirstName,
			Surname:   dto.LastName,
		}
		if err := db.Create(&emp).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		if photo, ok := readPhotoForm(c); ok {
			name := referencePhotoName(emp.EmployeeId)
			if err := photos.Save(name, photo); err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
				return
			}
			if err := db.Model(&core.Employee{}).Where("employee_id = ?", emp.EmployeeId).
				Update("photo_name", name).Error; err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
				return
			}
			emp.PhotoName = utils.Ptr(name)
		}

		c.JSON(http.StatusCreated, common.NewSuccessResponse(emp))
	}
}

func ListEmployeesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var employees []core.Employee
		if err := db.Order("employee_id").Find(&employees).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, common.NewSuccessResponse(employees))
	}
}

func GetEmployeeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := employeeIDParam(c)
		if !ok {
			return
		}
		emp, err := core.FindEmployeeByID(db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		if emp == nil {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Employee not found"))
			return
		}
		c.JSON(http.StatusOK, common.NewSuccessResponse(emp))
	}
}

func UpdateEmployeeHandler(db *gorm.DB, photos filesystem.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := employeeIDParam(c)
		if !ok {
			return
		}

		var dto EmployeeUpdateDTO
		if err := c.ShouldBind(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		emp, err := core.FindEmployeeByID(db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		if emp == nil {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Employee not found"))
			return
		}

		updates := map[string]any{}
		if dto.Email != nil {
			updates["email"] = *dto.Email
		}
		if dto.FirstName != nil {
			updates["first_name"] = *dto.FirstName
		}
		if dto.LastName != nil {
			updates["surname"] = *dto.LastName
		}

		if photo, ok := readPhotoForm(c); ok {
			name := referencePhotoName(id)
			if err := photos.Save(name, photo); err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
				return
			}
			updates["photo_name"] = name
		}

		if len(updates) > 0 {
			if err := db.Model(&core.Employee{}).Where("employee_id = ?", id).
				Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
				return
			}
		}

		updated, err := core.FindEmployeeByID(db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, common.NewSuccessResponse(updated))
	}
}

func DeleteEmployeeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := employeeIDParam(c)
		if !ok {
			return
		}
		result := db.Delete(&core.Employee{}, id)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(result.Error.Error()))
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Employee not found"))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func employeeIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid id"))
		return 0, false
	}
	return uint(id), true
}

func readPhotoForm(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("photo")
	if err != nil {
		return nil, false
	}
	src, err := file.Open()
	if err != nil {
		return nil, false
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}
