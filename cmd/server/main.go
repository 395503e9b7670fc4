package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"kupon-backend/internal/config"
	"kupon-backend/internal/database"
	"kupon-backend/internal/events"
	"kupon-backend/internal/handler"
	"kupon-backend/internal/live"
	"kupon-backend/internal/middleware"
	"kupon-backend/internal/notify"
	"kupon-backend/internal/repository"
	"kupon-backend/internal/service"
	"kupon-backend/internal/webhook"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	merchantRepo := repository.NewMerchantRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	hub := live.NewHub()
	go hub.Run()

	webhookService := webhook.NewWebhookService()
	fanout := events.NewFanout(hub, webhookService)

	var notifier service.Notifier = notify.Disabled{}
	var channels handler.ChannelManager
	var waManager *notify.Manager
	if cfg.WhatsAppEnabled {
		waManager, err = notify.NewManager(cfg, merchantRepo, hub)
		if err != nil {
			log.Fatalf("whatsapp manager: %v", err)
		}
		notifier = waManager
		channels = waManager
		waManager.ReconnectAll(context.Background())
	}

	authService := service.NewAuthService(merchantRepo, cfg)
	redemptionService := service.NewRedemptionService(couponRepo, customerRepo, merchantRepo, statsRepo, fanout)
	couponService := service.NewCouponService(merchantRepo, couponRepo, customerRepo, statsRepo)
	reminderService := service.NewReminderService(merchantRepo, customerRepo, statsRepo, notifier)

	mw := middleware.NewMiddleware(cfg)
	router := handler.NewRouter(
		mw,
		handler.NewAuthHandler(authService),
		handler.NewRedemptionHandler(redemptionService),
		handler.NewClaimHandler(couponService),
		handler.NewReminderHandler(reminderService),
		handler.NewStatsHandler(statsRepo),
		handler.NewChannelHandler(channels),
		handler.NewLiveHandler(hub, cfg),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
		if waManager != nil {
			waManager.Shutdown()
		}
		close(idleConnsClosed)
	}()

	log.Printf("starting kupon-backend on :%s", cfg.AppPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %s\n", err)
	}

	<-idleConnsClosed
	log.Println("server stopped")
}
