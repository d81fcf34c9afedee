package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ms-gifting/internal/config"
	"ms-gifting/internal/logger"
	"ms-gifting/internal/payment"
	"ms-gifting/internal/payment/handler"
)

// The payment redirect service is deliberately tiny: it maps amount tiers to
// pre-provisioned external payment URLs and renders their QR codes. No
// database, no state.
func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Payment Redirect Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()

	table, err := payment.NewLinkTable(cfg.Payment.Links, cfg.Payment.DefaultTier)
	if err != nil {
		logger.Fatal("CONFIG", fmt.Sprintf("Invalid payment link table: %v", err))
	}
	qr := payment.NewQRGenerator(table)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	paymentHandler := handler.NewHandler(table, qr, logger)
	paymentHandler.RegisterRoutes(router)
	logger.Info("ROUTER", "Payment routes registered under /api/payment")

	port := os.Getenv("PAYMENT_PORT")
	if port == "" {
		port = ":8086"
	}

	server := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Payment Redirect Service running on %s", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Payment Redirect Service shutdown complete")
	}
}
