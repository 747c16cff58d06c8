package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"secureentry.com/secureentry/core"
	"secureentry.com/secureentry/infrastructure/communication"
	"secureentry.com/secureentry/infrastructure/devops"
	"secureentry.com/secureentry/infrastructure/facematch"
	"secureentry.com/secureentry/infrastructure/filesystem"
	"secureentry.com/secureentry/report"
	"secureentry.com/secureentry/web/handlers"
	"secureentry.com/secureentry/web/middlewares"
)

func main() {
	ctx := context.Background()

	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}

	db, err := core.Connect(cfg.DSN, cfg.MaxConnections, core.LogLevelWarn)
	if err != nil {
		log.Fatal(err)
	}
	if err := core.Migrate(db); err != nil {
		log.Fatal(err)
	}

	var photos filesystem.Store
	if cfg.PhotoBucket != "" {
		photos, err = filesystem.NewS3(ctx, cfg.PhotoBucket, cfg.PhotoPrefix)
	} else {
		photos, err = filesystem.NewLocal(cfg.UploadDir)
	}
	if err != nil {
		log.Fatal(err)
	}

	matcher := facematch.NewClient(cfg.FaceMatchURL, 15*time.Second)
	engine := core.NewGateEngine(db, photos, matcher, cfg.FaceTolerance)
	if os.Getenv("SLACK_BOT_TOKEN") != "" {
		engine.SetNotifier(communication.ConnectSlack())
	}

	var mailer communication.Mailer
	if cfg.MailFrom != "" {
		sesMailer, err := communication.NewSESMailer(ctx, cfg.MailFrom)
		if err != nil {
			log.Fatal(err)
		}
		mailer = sesMailer
	}

	renderer := report.WorkbookRenderer{}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// terminal-facing
	r.POST("/api/entries", handlers.GateAccessHandler(engine))

	// admin session
	r.POST("/auth/login", handlers.LoginHandler(db, cfg.SigningSecret))
	r.POST("/auth/logout", handlers.LogoutHandler())

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(cfg.SigningSecret))
	{
		protected.POST("/employees", handlers.CreateEmployeeHandler(db, photos))
		protected.GET("/employees", handlers.ListEmployeesHandler(db))
		protected.GET("/employees/:id", handlers.GetEmployeeHandler(db))
		protected.PUT("/employees/:id", handlers.UpdateEmployeeHandler(db, photos))
		protected.DELETE("/employees/:id", handlers.DeleteEmployeeHandler(db))

		protected.POST("/employees/:id/credential", handlers.IssueCredentialHandler(db, engine, mailer))
		protected.DELETE("/employees/:id/credential", handlers.RevokeCredentialHandler(engine))

		protected.POST("/reports", handlers.GenerateReportHandler(db, renderer, mailer))
	}

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
