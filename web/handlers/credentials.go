package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"secureentry.com/secureentry/core"
	"secureentry.com/secureentry/infrastructure/communication"
	"secureentry.com/secureentry/web/common"
)

// IssueCredentialHandler mints a new QR credential for an employee, revoking
// any previous one, and emails the QR image to the employee in the
// background. The encoded payload is also returned once in the response for
// terminal provisioning; it cannot be recovered later.
func IssueCredentialHandler(db *gorm.DB, engine *core.GateEngine, mailer communication.Mailer) gin.HandlerFunc {
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

		credential, err := engine.IssueCredential(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		if mailer != nil {
			recipient := emp.Email
			go func() {
				png, err := qrcode.Encode(credential, qrcode.Medium, 256)
				if err != nil {
					log.Printf("credential: QR render for employee %d failed: %v", id, err)
					return
				}
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := mailer.Send(ctx, communication.CredentialEmail(recipient, png)); err != nil {
					log.Printf("credential: mail to %s failed: %v", recipient, err)
				}
			}()
		}

		c.JSON(http.StatusCreated, common.NewSuccessResponse(gin.H{
			"credential": credential,
		}))
	}
}

func RevokeCredentialHandler(engine *core.GateEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := employeeIDParam(c)
		if !ok {
			return
		}

		err := engine.RevokeCredential(id)
		if errors.Is(err, core.ErrEmployeeNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Employee not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
	}
}
