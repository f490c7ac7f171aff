package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmstand/internal/dbmysql"
	"farmstand/internal/di"
)

func main() {
	log.Println("starting farmstand messaging service...")

	app, cleanup, err := di.InitializeApplication()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer cleanup()

	// Migrations belong in main, not hidden inside repositories
	if err := dbmysql.Migrate(app.DB); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("database migration completed")

	go app.Hub.Run()
	go sweepSessions(app)

	srv := &http.Server{
		Addr:         app.Config.Server.Host + ":" + app.Config.Server.Port,
		Handler:      app.Router,
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("farmstand listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("farmstand stopped")
}

// sweepSessions periodically clears expired session rows.
func sweepSessions(app *di.Application) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		n, err := app.Auth.PurgeExpired(context.Background())
		if err != nil {
			log.Printf("session sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("session sweep removed %d expired sessions", n)
		}
	}
}
