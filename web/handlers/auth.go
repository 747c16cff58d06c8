package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"secureentry.com/secureentry/core"
	"secureentry.com/secureentry/security"
	"secureentry.com/secureentry/web/common"
	"secureentry.com/secureentry/web/middlewares"
)

const sessionDuration = 12 * time.Hour

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func LoginHandler(db *gorm.DB, base64Secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto LoginDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		admin, err := core.FindAdminByEmail(db, dto.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(dto.Password)) != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid credentials"))
			return
		}

		token, err := security.CreateIdentityToken(&security.Identity{
			ID:    admin.AdminId,
			Email: admin.Email,
		}, base64Secret, sessionDuration)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.SetCookie(middlewares.SessionCookie, token, int(sessionDuration.Seconds()), "/", "", false, true)
		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"token": token,
		}))
	}
}

func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(middlewares.SessionCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
	}
}
