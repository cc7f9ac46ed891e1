package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wrightlabs/marketplace/internal/cart"
	"github.com/wrightlabs/marketplace/internal/catalog"
	"github.com/wrightlabs/marketplace/internal/config"
	"github.com/wrightlabs/marketplace/internal/db"
	"github.com/wrightlabs/marketplace/internal/email"
	"github.com/wrightlabs/marketplace/internal/events"
	"github.com/wrightlabs/marketplace/internal/fulfillment"
	httpapi "github.com/wrightlabs/marketplace/internal/http"
	"github.com/wrightlabs/marketplace/internal/library"
	"github.com/wrightlabs/marketplace/internal/order"
	"github.com/wrightlabs/marketplace/internal/payfast"
	"github.com/wrightlabs/marketplace/internal/payment"
)

func main() {
	logger := log.New(os.Stdout, "[marketplace] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	// DB
	database := db.MustOpen(cfg.DatabaseDSN)
	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	productRepo := catalog.NewRepository(database)
	cartRepo := cart.NewRepository(database)
	orderRepo := order.NewRepository(database)

	// RabbitMQ
	rabbitConn := events.MustDialRabbit()
	defer rabbitConn.Close()

	publisher, err := events.NewPublisher(rabbitConn)
	if err != nil {
		logger.Fatalf("create publisher: %v", err)
	}
	defer publisher.Close()

	// Context for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &email.LogSender{Logger: logger}
	if err := email.StartOrderPaidConsumer(ctx, rabbitConn, sender, logger); err != nil {
		logger.Fatalf("start consumer: %v", err)
	}

	// Services
	cartSvc := cart.NewService(cartRepo, productRepo, logger)
	orderSvc := order.NewService(orderRepo, cartRepo, cfg.CommissionRate, logger)
	adapter := payfast.NewAdapter(cfg.PayFast, logger)
	trigger := fulfillment.NewTrigger(productRepo, cartRepo, publisher, logger)
	paymentSvc := payment.NewService(adapter, orderRepo, trigger, logger)
	librarySvc := library.NewService(database)

	sweeper := cart.NewSweeper(cartRepo, 12*time.Hour, logger)
	go sweeper.Run(ctx)

	// HTTP
	router := httpapi.NewRouter(
		httpapi.NewCartHandler(cartSvc),
		httpapi.NewCheckoutHandler(cartSvc, orderSvc, adapter),
		httpapi.NewOrderHandler(orderSvc, librarySvc),
		httpapi.NewWebhookHandler(paymentSvc),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("marketplace listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
}
