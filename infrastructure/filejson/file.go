package filejson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"youtube-etl/domain/errs"
	"youtube-etl/domain/model"
	"youtube-etl/infrastructure/logger"
)

// ArtifactStore keeps one <topic>.json file per topic under BaseDir.
type ArtifactStore struct {
	BaseDir string
}

func NewArtifactStore(baseDir string) *ArtifactStore {
	return &ArtifactStore{BaseDir: baseDir}
}

func (s *ArtifactStore) Path(topic string) string {
	return filepath.Join(s.BaseDir, topic+".json")
}

func (s *ArtifactStore) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errs.FileSystem("stat artifact "+path, err)
}

// Write serializes records to the topic's artifact. The file is written to a
// temporary sibling and renamed into place, so readers never see a partial file.
func (s *ArtifactStore) Write(topic string, records []model.VideoRecord) (string, error) {
	path := s.Path(topic)
	if records == nil {
		records = []model.VideoRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", errs.FileSystem("encode artifact "+path, err)
	}

	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return "", errs.FileSystem("create artifact dir "+s.BaseDir, err)
	}
	tmp, err := os.CreateTemp(s.BaseDir, ".artifact-*.tmp")
	if err != nil {
		return "", errs.FileSystem("create artifact "+path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", errs.FileSystem("write artifact "+path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", errs.FileSystem("close artifact "+path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", errs.FileSystem("rename artifact "+path, err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"path":  path,
		"count": len(records),
	}).Info("Saved videos data")
	return path, nil
}

func (s *ArtifactStore) Read(path string) ([]model.VideoRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.FileSystem("read artifact "+path, err)
	}
	var records []model.VideoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errs.FileSystem("parse artifact "+path, fmt.Errorf("invalid json: %w", err))
	}
	return records, nil
}

func (s *ArtifactStore) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return errs.FileSystem("remove artifact "+path, err)
	}
	logger.GetLogger().WithField("path", path).Info("Deleted file")
	return nil
}
