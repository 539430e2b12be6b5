package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mbayend/sama-boutique/internal/adapter/handler"
	"github.com/mbayend/sama-boutique/internal/adapter/storage"
	"github.com/mbayend/sama-boutique/internal/core/service"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultMySQLDSN    = "root:root@tcp(localhost:3306)/boutique?parseTime=true"
	defaultRedisAddr   = "localhost:6379"
	defaultBlobDir     = "./blobs"
	defaultBlobBaseURL = "http://localhost:8080/blobs"

	orphanSweepInterval = time.Hour
	orphanSweepAge      = 24 * time.Hour
)

func main() {
	// A missing .env is fine; the defaults below cover local runs.
	godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("mysql", getenv("MYSQL_DSN", defaultMySQLDSN))
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	rdb := redis.NewClient(&redis.Options{
		Addr: getenv("REDIS_ADDR", defaultRedisAddr),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	store := storage.NewMySQLAdapter(db)
	cache := storage.NewRedisAdapter(rdb)
	blobs := storage.NewFSBlobAdapter(getenv("BLOB_DIR", defaultBlobDir), getenv("BLOB_BASE_URL", defaultBlobBaseURL))

	catalog := service.NewCatalogService(store, blobs)
	checkout := service.NewCheckoutService(store, cache)
	vendor := service.NewVendorService(store, time.Sunday)

	// Background sweep for order headers orphaned by a failed
	// line-batch write.
	go func() {
		ticker := time.NewTicker(orphanSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweepCtx, sweepCancel := context.WithTimeout(ctx, 30*time.Second)
				removed, err := vendor.ReconcileOrphans(sweepCtx, time.Now().Add(-orphanSweepAge))
				sweepCancel()
				if err != nil {
					log.Printf("orphan sweep failed: %v", err)
				} else if len(removed) > 0 {
					log.Printf("orphan sweep removed %d headless orders", len(removed))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	httpHandler := handler.NewHTTPHandler(catalog, checkout, vendor)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpAddr := getenv("HTTP_ADDR", defaultHTTPAddr)
	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	cancel()
	rdb.Close()
	db.Close()
	log.Println("connections closed")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
