package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coshikowa/ms-go-agency/app/controller"
	"github.com/coshikowa/ms-go-agency/app/mailer"
	"github.com/coshikowa/ms-go-agency/app/provider"
	"github.com/coshikowa/ms-go-agency/app/repository"
	"github.com/coshikowa/ms-go-agency/app/service"
	"github.com/coshikowa/ms-go-agency/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the agency funnel service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, services, cleanup := mustCreateServices()
	defer cleanup()

	paymentController := controller.NewPaymentController(services.Payment)
	submissionController := controller.NewSubmissionController(services.Submission)
	approvalController := controller.NewApprovalController(services.Payment, cfg.App.ApprovalRedirectBaseURL)

	e := setupHTTPServer(paymentController, submissionController, approvalController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	paymentController *controller.PaymentController,
	submissionController *controller.SubmissionController,
	approvalController *controller.ApprovalController,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	// The funnel pages are static sites served from elsewhere.
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RequestID())

	e.GET("/health", paymentController.Health)

	api := e.Group("/api")

	payments := api.Group("/payments")
	payments.POST("", paymentController.InitializePayment)
	payments.GET("/:id", paymentController.GetPayment)
	payments.POST("/:id/approve", paymentController.ApprovePayment)
	payments.POST("/:id/manual", paymentController.SubmitManualPayment)
	payments.POST("/:id/cancel", paymentController.CancelPayment)
	payments.POST("/:id/provider-error", paymentController.ReportProviderError)

	api.POST("/send-job-application", submissionController.SendJobApplication)
	api.POST("/send-hiring-request", submissionController.SendHiringRequest)

	api.GET("/approve-payment", approvalController.ApprovePayment)

	return e
}

type services struct {
	Payment    *service.PaymentService
	Submission *service.SubmissionService
}

func mustCreateServices() (*config.Config, *services, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	paymentRepo := repository.NewPaymentRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	paypalProvider := provider.NewPayPalProvider(provider.PayPalConfig{
		ClientID:    cfg.PayPal.ClientID,
		Secret:      cfg.PayPal.Secret,
		APIBaseURL:  cfg.PayPal.APIBaseURL,
		HTTPTimeout: cfg.PayPal.HTTPTimeout,
	})

	mailClient := mailer.NewClient(mailer.Config{
		APIKey:      cfg.Mailer.APIKey,
		FromName:    cfg.Mailer.FromName,
		FromAddress: cfg.Mailer.FromAddress,
		HTTPTimeout: cfg.Mailer.HTTPTimeout,
	})

	submissionService := service.NewSubmissionService(submissionRepo, mailClient, cfg.Mailer.OperatorEmail)
	paymentService := service.NewPaymentService(
		paymentRepo,
		eventRepo,
		submissionService,
		paypalProvider,
		mailClient,
		cfg.App,
		cfg.Mailer,
		cfg.Funnel,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, &services{Payment: paymentService, Submission: submissionService}, cleanup
}
