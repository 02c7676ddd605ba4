package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonpro-checkout/config"
	"salonpro-checkout/models"
	"salonpro-checkout/routes"
	"salonpro-checkout/services/events"
	"salonpro-checkout/services/invoice"
	"salonpro-checkout/services/loyalty"
	"salonpro-checkout/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("failed to migrate", zap.Error(err))
	}

	var ids invoice.Allocator
	if rdb := config.ConnectRedis(cfg); rdb != nil {
		defer rdb.Close()
		ids = invoice.NewRedisAllocator(rdb, "")
	} else {
		sf, err := invoice.NewSnowflakeAllocator(cfg.SnowflakeNode, "")
		if err != nil {
			logger.Fatal("failed to create invoice allocator", zap.Error(err))
		}
		ids = sf
	}

	bus := events.NewBus()

	var sender notification.Sender = notification.LogSender{}
	if cfg.TwilioAccountSID != "" {
		sender = notification.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken,
			cfg.TwilioPhoneNumber, cfg.TwilioWhatsAppNumber)
	}
	if _, err := notification.NewDispatcher(db, sender).Attach(bus); err != nil {
		logger.Fatal("failed to attach notification dispatcher", zap.Error(err))
	}

	reconciler := loyalty.NewReconciler(db, cfg.ReconcileSchedule)
	if err := reconciler.Start(); err != nil {
		logger.Fatal("failed to start loyalty reconciler", zap.Error(err))
	}
	defer reconciler.Stop()

	r := routes.SetupRouter(cfg, routes.Deps{DB: db, Allocator: ids, Bus: bus})
	printRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	// Let queued receipt notifications finish.
	bus.Wait()
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		zap.L().Debug("route", zap.String("method", route.Method), zap.String("path", route.Path))
	}
}
