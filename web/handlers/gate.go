package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"secureentry.com/secureentry/core"
	"secureentry.com/secureentry/security"
	"secureentry.com/secureentry/web/common"
)

// GateAccessHandler is the terminal-facing swipe endpoint. It accepts a
// multipart form with the scanned QR payload and the live photo, decodes the
// credential before the pipeline runs, and maps the engine's outcome onto
// HTTP: malformed payload → 400 with no attempt logged, denial → 403 with a
// structured reason, consistency fault → 500.
func GateAccessHandler(engine *core.GateEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := c.PostForm("qr_code_payload")
		employeeID, secret, err := security.DecodeCredential(payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid QR code payload"))
			return
		}

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Missing photo"))
			return
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Unreadable photo"))
			return
		}
		defer src.Close()
		photo, err := io.ReadAll(src)
		if err != nil || len(photo) == 0 {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Unreadable photo"))
			return
		}

		result, err := engine.Swipe(c.Request.Context(), employeeID, secret, photo)
		if errors.Is(err, core.ErrEmployeeNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Employee not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		if !result.Granted {
			c.JSON(http.StatusForbidden, common.NewSuccessResponse(result))
			return
		}
		c.JSON(http.StatusCreated, common.NewSuccessResponse(result))
	}
}
