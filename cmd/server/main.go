package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ankitsaini000/rwew-sub007/internal/config"
	"github.com/ankitsaini000/rwew-sub007/internal/db"
	"github.com/ankitsaini000/rwew-sub007/internal/gateway"
	httpHandlers "github.com/ankitsaini000/rwew-sub007/internal/http/handlers"
	httpRouter "github.com/ankitsaini000/rwew-sub007/internal/http/router"
	"github.com/ankitsaini000/rwew-sub007/internal/logger"
	"github.com/ankitsaini000/rwew-sub007/internal/mail"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
	"github.com/ankitsaini000/rwew-sub007/internal/service"
	"github.com/ankitsaini000/rwew-sub007/internal/sms"
	"github.com/ankitsaini000/rwew-sub007/internal/storage"
	"github.com/ankitsaini000/rwew-sub007/internal/ws"
)

func main() {
	// Context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: failed to load configuration: %v", err)
	}

	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Database and migrations.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: failed to connect to database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	// Supporting services.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	documentStorage, err := storage.NewDocumentStorage(cfg.MediaStoragePath, "/media", cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: failed to prepare document storage: %v", err)
	}

	var mailSender mail.Sender
	if cfg.SMTPHost != "" {
		mailSender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		mailSender = &mail.LogSender{}
	}

	var smsSender sms.Sender
	if cfg.SMSMock || cfg.SMSAPIURL == "" {
		smsSender = &sms.MockSender{}
	} else {
		smsSender = sms.NewHTTPSender(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSender)
	}

	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewaySecret, cfg.GatewayMock)

	// Repositories.
	userRepo := repository.NewUserRepository(dbConn)
	verificationRepo := repository.NewVerificationRepository(dbConn)
	offerRepo := repository.NewOfferRepository(dbConn)
	conversationRepo := repository.NewConversationRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	checkoutRepo := repository.NewCheckoutRepository(dbConn)

	// WebSockets.
	hub := ws.NewHub(ctx)

	// Services.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo)
	verificationService := service.NewVerificationService(verificationRepo, mailSender, smsSender, documentStorage, hub)
	offerService := service.NewOfferService(offerRepo, conversationRepo, userRepo, hub)
	conversationService := service.NewConversationService(conversationRepo, userRepo, hub)
	reviewService := service.NewReviewService(reviewRepo, offerRepo)
	checkoutService := service.NewCheckoutService(checkoutRepo, gatewayClient, offerRepo, userRepo, verificationService)

	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))
	go hub.Run()

	// Background sweeps for offers past deadline and stale sessions.
	offerService.RunExpirySweep(ctx, cfg.OfferSweepInterval)
	authService.RunSessionCleanup(ctx, cfg.SessionCleanupInterval)

	// HTTP handlers.
	authHandler := httpHandlers.NewAuthHandler(authService)
	verificationHandler := httpHandlers.NewVerificationHandler(verificationService)
	offerHandler := httpHandlers.NewOfferHandler(offerService)
	conversationHandler := httpHandlers.NewConversationHandler(conversationService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	checkoutHandler := httpHandlers.NewCheckoutHandler(checkoutService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engine := httpRouter.SetupRouter(cfg,
		authHandler, verificationHandler, offerHandler, conversationHandler,
		reviewHandler, checkoutHandler, notificationHandler, wsHandler,
		healthHandler, tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: failed to close database: %v", err)
	}
}
