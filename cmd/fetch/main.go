// Command fetch runs the fetch task once: it reads the topic file, fetches
// the topic's videos and writes <data_dir>/<topic>.json.
package main

import (
	"context"
	"fmt"
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

	path, err := fetch(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Fetch task failed")
		stop()
		os.Exit(1)
	}
	fmt.Println(path)
}

func fetch(ctx context.Context) (string, error) {
	components, err := bootstrap.NewFetcher(ctx)
	if err != nil {
		return "", err
	}
	defer components.Close()

	topic, err := components.Topics.Topic(ctx)
	if err != nil {
		return "", err
	}
	return components.Fetcher.FetchToArtifact(ctx, topic)
}
