package bootstrap

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/config"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
)

func createHTTPServer(cfg *config.Config, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// startWithGracefulShutdown runs the server and, on signal, drains the
// HTTP server, the store pool, and the cache tiers in order.
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			log.Printf("Server listening on %s", app.Config.Addr())
			if err := app.Server.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})

	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Server.Shutdown(ctx)
	})

	// Expired tokens and auth-code tombstones are physically kept until
	// expiry, then swept.
	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := app.DB.DeleteExpiredTokens(); err != nil {
					log.Printf("Failed to delete expired tokens: %v", err)
				}
				if err := app.DB.DeleteExpiredAuthCodes(); err != nil {
					log.Printf("Failed to delete expired authorization codes: %v", err)
				}
			}
		}
	})

	m.AddShutdownJob(func() error {
		if app.RateLimitRedisClient != nil {
			_ = app.RateLimitRedisClient.Close()
		}
		return nil
	})

	m.AddShutdownJob(func() error {
		return app.Cache.Close()
	})

	m.AddShutdownJob(func() error {
		return app.DB.Close()
	})

	<-m.Done()
}
