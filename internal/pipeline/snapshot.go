package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
)

// SaveTopics writes one fetch batch as a JSON snapshot under the data
// directory so analysis can rerun without refetching. Returns the path
// written.
func SaveTopics(dataDir, label string, topics []models.Topic) (string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, fmt.Sprintf("topics_%s.json", label))
	data, err := json.MarshalIndent(topics, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return path, nil
}

// LoadTopics reads a snapshot written by SaveTopics.
func LoadTopics(path string) ([]models.Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var topics []models.Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return topics, nil
}
