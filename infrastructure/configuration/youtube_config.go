package configuration

import (
	"errors"
	"strings"
	"time"

	"youtube-etl/domain/errs"
)

// YouTubeConfig represents YouTube Data API configuration
type YouTubeConfig struct {
	APIKey            string
	Endpoint          string
	RequestsPerSecond float64
	Burst             int
	RequestTimeout    time.Duration
}

// GetYouTubeConfig returns the YouTube configuration, failing when no usable API key is set.
func GetYouTubeConfig() (*YouTubeConfig, error) {
	apiKey := getConfigValue(C.YouTube.APIKey, "")
	if apiKey == "" {
		return nil, errs.Configuration("youtube api key", errors.New("YOUTUBE_API_KEY is not set"))
	}
	return &YouTubeConfig{
		APIKey:            apiKey,
		Endpoint:          C.YouTube.Endpoint,
		RequestsPerSecond: C.YouTube.RequestsPerSecond,
		Burst:             C.YouTube.Burst,
		RequestTimeout:    C.YouTube.RequestTimeout,
	}, nil
}

// getConfigValue returns configValue unless it is empty or a placeholder
func getConfigValue(configValue, defaultValue string) string {
	configValue = strings.TrimSpace(configValue)
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
