package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"secureentry.com/secureentry/core"
	"secureentry.com/secureentry/infrastructure/communication"
	"secureentry.com/secureentry/report"
	"secureentry.com/secureentry/web/common"
	"secureentry.com/secureentry/web/middlewares"
)

type ReportParamsDTO struct {
	Days *int `json:"days" binding:"omitempty,min=1,max=366"`
}

// GenerateReportHandler aggregates work time over the requested window and
// responds with the rows synchronously. Rendering and mail delivery to the
// requesting admin happen in the background; a delivery failure never fails
// the response.
func GenerateReportHandler(db *gorm.DB, renderer report.Renderer, mailer communication.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ReportParamsDTO
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		days := 30
		if params.Days != nil {
			days = *params.Days
		}

		rep, err := core.BuildReport(db, days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		recipient := middlewares.ClaimedEmail(c)
		if mailer != nil && recipient != "" {
			go deliverReport(renderer, mailer, rep, recipient)
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(rep))
	}
}

func deliverReport(renderer report.Renderer, mailer communication.Mailer, rep *core.Report, recipient string) {
	workbook, err := renderer.Render(rep)
	if err != nil {
		log.Printf("report: render failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	mail := communication.ReportEmail(recipient, workbook, rep.WindowDays, rep.StartDate, rep.EndDate)
	if err := mailer.Send(ctx, mail); err != nil {
		log.Printf("report: mail to %s failed: %v", recipient, err)
	}
}
