package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"youtube-etl/bootstrap"
	"youtube-etl/infrastructure/configuration"
	"youtube-etl/infrastructure/logger"
	httpHandler "youtube-etl/interfaces/http"
	"youtube-etl/scheduler"
	"youtube-etl/server"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	// Load env from files (non-destructive; OS env still has precedence)
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); len(loaded) > 0 {
		logger.GetLogger().WithField("files", loaded).Info("Loaded environment files")
	}
	configuration.LoadConfig()
	app := configuration.C.App

	components, err := bootstrap.NewPipeline(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Pipeline initialization failed")
		return 1
	}
	defer components.Close()
	pipeline := components.Pipeline

	sched, err := scheduler.NewScheduler(pipeline, scheduler.Config{
		Schedule:   configuration.C.Pipeline.Schedule,
		RunOnStart: configuration.C.Pipeline.RunOnStart,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Scheduler initialization failed")
		return 1
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sched.Start(gctx)
	})

	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.InitiateRouter(
		app.AllowOrigins,
		httpHandler.NewHealthHandler(),
		httpHandler.NewPipelineHandler(gctx, pipeline),
		components.RunHub,
	)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"port":     app.Port,
		"dagId":    pipeline.DagID(),
		"schedule": configuration.C.Pipeline.Schedule,
	}).Info("Starting application")
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-interrupt:
			logger.GetLogger().Info("Application shutdown requested")
		case <-gctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	pipeline.Wait()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		return 2
	}
	logger.GetLogger().Info("Application stopped")
	return 0
}
