package configuration

import (
	"os"

	"youtube-etl/infrastructure/logger"

	"github.com/subosito/gotenv"
)

// LoadEnvFromFile loads KEY=VALUE pairs from the given files (e.g. config.env, .env)
// and returns the files that were found. Existing env vars are never overridden.
func LoadEnvFromFile(paths ...string) []string {
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		loaded = append(loaded, p)
		if err := gotenv.Load(p); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{"file": p, "error": err}).Warn("Cannot parse environment file")
		}
	}
	return loaded
}
