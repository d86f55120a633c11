package configuration

import (
	"context"
	"errors"
	"os"
	"strings"

	"youtube-etl/domain/errs"
)

// TopicFile reads the pipeline topic from a single-line text file.
type TopicFile struct {
	Path string
}

func NewTopicFile(path string) *TopicFile {
	return &TopicFile{Path: path}
}

// Topic returns the trimmed file contents. It is read on every call so edits
// take effect on the next run.
func (t *TopicFile) Topic(_ context.Context) (string, error) {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return "", errs.FileSystem("read topic file "+t.Path, err)
	}
	topic := strings.TrimSpace(string(data))
	if topic == "" {
		return "", errs.Configuration("read topic file "+t.Path, errors.New("topic is empty"))
	}
	return topic, nil
}
