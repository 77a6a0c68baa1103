package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/strideapp/stride/internal/database"
	"github.com/strideapp/stride/internal/email"
	"github.com/strideapp/stride/internal/logging"
	"github.com/strideapp/stride/internal/reminder"
	"github.com/strideapp/stride/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	port := os.Getenv("STRIDE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("STRIDE_DB_PATH")
	if dbPath == "" {
		dbPath = "stride.db"
	}

	logger := logging.Setup(os.Getenv("STRIDE_LOG_LEVEL"), os.Getenv("STRIDE_LOG_FORMAT"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	baseURL := os.Getenv("STRIDE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}
	emailClient := email.NewClient(
		os.Getenv("STRIDE_POSTMARK_TOKEN"),
		os.Getenv("STRIDE_FROM_EMAIL"),
		baseURL,
	)
	if !emailClient.Configured() {
		logger.Warn("email not configured, reminders will be in-app only")
	}

	srv := server.New(db, emailClient, logger)

	reminderHour := 9
	if s := os.Getenv("STRIDE_REMINDER_HOUR"); s != "" {
		if h, err := strconv.Atoi(s); err == nil && h >= 0 && h <= 23 {
			reminderHour = h
		}
	}
	scheduler := reminder.NewScheduler(srv.Sweeper(), reminderHour, logger.With("component", "scheduler"))
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Stride running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}

	// Let in-flight email sends drain before the process exits.
	srv.Dispatcher().Flush()
}
