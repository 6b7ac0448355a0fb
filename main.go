package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/app"
	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/router"
)

var (
	// Version is the binary version (tag) + build number (CI pipeline)
	Version string
	// BuildDate is the date of build
	BuildDate string
)

func main() {
	app.InitConfiguration()
	app.InitLogger(viper.GetBool("LOGGER_PRODUCTION"))

	zap.L().Info("Starting Automation Engine", zap.String("version", Version), zap.String("build_date", BuildDate))
	app.Init()
	defer app.Stop()

	r := router.NewChiRouter(router.Config{
		Production: viper.GetBool("LOGGER_PRODUCTION"),
		CORS:       viper.GetBool("API_ENABLE_CORS"),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", viper.GetInt("SERVER_PORT")),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Server listen", zap.Error(err))
		}
	}()
	zap.L().Info("Server Started", zap.String("addr", srv.Addr))

	<-done

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutDown); err != nil {
		zap.L().Fatal("Server shutdown failed", zap.Error(err))
	}
	zap.L().Info("Server shutdown")
}
