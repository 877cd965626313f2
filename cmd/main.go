package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	cron "github.com/robfig/cron/v3"

	"github.com/samedayramps/app.samedayramps.com/internal/app"
	"github.com/samedayramps/app.samedayramps.com/internal/config"
	"github.com/samedayramps/app.samedayramps.com/internal/constants"
	"github.com/samedayramps/app.samedayramps.com/internal/controllers"
	"github.com/samedayramps/app.samedayramps.com/internal/middleware"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/routes"
	"github.com/samedayramps/app.samedayramps.com/internal/services"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

func main() {
	utils.InitLogger(config.DefaultAppName)
	cfg := config.LoadConfig()

	if cfg.AutoMigrate {
		if err := app.Migrate(cfg.DBUrl); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to migrate database")
		}
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize admin API:", err)
	}
	defer application.Close()

	customerRepo := repositories.NewCustomerRepository(application.DB)
	addressRepo := repositories.NewAddressRepository(application.DB)
	quoteRepo := repositories.NewQuoteRepository(application.DB)
	agreementRepo := repositories.NewAgreementRepository(application.DB)
	rentalRepo := repositories.NewRentalRepository(application.DB)
	paymentRepo := repositories.NewPaymentRepository(application.DB)
	settingsRepo := repositories.NewSettingsRepository(application.DB)
	eventRepo := repositories.NewEventRepository(application.DB)

	audit := services.NewAuditService(eventRepo)
	settingsService := services.NewSettingsService(settingsRepo, cfg.DefaultBusinessConfig, audit)
	quoteService := services.NewQuoteService(
		quoteRepo,
		agreementRepo,
		rentalRepo,
		paymentRepo,
		settingsService,
		services.NewEmailService(cfg),
		services.NewSMSService(cfg),
		audit,
	)
	customerService := services.NewCustomerService(customerRepo, addressRepo, rentalRepo, paymentRepo, audit)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedTestData(context.Background(), settingsService, customerRepo, agreementRepo, quoteService); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	corsPolicy := middleware.NewCORSPolicy(cfg.AllowedOrigin, cfg.LDFlag_CORSHighSecurity, routes.PublicPaths)

	router := routes.NewRouter(routes.Controllers{
		Health:        controllers.NewHealthController(application.DB, corsPolicy.Info()),
		QuoteRequests: controllers.NewQuoteRequestController(quoteService),
		Quotes:        controllers.NewQuotesController(quoteService),
		Customers:     controllers.NewCustomersController(customerService),
		Settings:      controllers.NewSettingsController(settingsService),
		Proxy:         controllers.NewProxyController(services.NewProxyService(nil), cfg.InternalAPIURL),
	}, middleware.ClientIP)

	c := cron.New()
	if cfg.LDFlag_AutoExpireQuotes {
		_, expiryErr := c.AddFunc(constants.QuoteExpirySweepSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), constants.QuoteExpirySweepTimeout)
			defer cancel()
			if _, e := quoteService.ExpireOverdueQuotes(ctx); e != nil {
				utils.Logger.WithError(e).Error("Scheduled quote expiry failed")
			}
		})
		if expiryErr != nil {
			utils.Logger.WithError(expiryErr).Fatal("Failed to schedule quote expiry cron")
		}
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: middleware.SecurityHeaders(corsPolicy.Handler(router)),
	}

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("admin API failed to start:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.WithError(err).Error("Graceful shutdown failed")
	}
}
