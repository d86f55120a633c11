// Command load runs the load task once: it replaces the topic's MongoDB
// collection with <data_dir>/<topic>.json, fetching the file first if it is
// missing, then deletes the file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"youtube-etl/bootstrap"
	"youtube-etl/infrastructure/configuration"
	"youtube-etl/infrastructure/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configuration.LoadEnvFromFile("config.env", ".env")
	configuration.LoadConfig()

	if err := load(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Load task failed")
		stop()
		os.Exit(1)
	}
}

func load(ctx context.Context) error {
	components, err := bootstrap.NewLoader(ctx)
	if err != nil {
		return err
	}
	defer components.Close()

	topic, err := components.Topics.Topic(ctx)
	if err != nil {
		return err
	}
	count, err := components.Loader.Load(ctx, topic, "")
	if err != nil {
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{"collection": topic, "count": count}).Info("Load task finished")
	return nil
}
