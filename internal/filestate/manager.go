package filestate

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"
)

// Offsets maps an ingestion file path to the number of bytes already consumed.
type Offsets map[string]int64

type Manager interface {
	Load() (Offsets, error)
	Save(offsets Offsets) error
	Path() string
}

type fileStateManager struct {
	filePath string
	mu       sync.RWMutex
}

func NewManager(filePath string) Manager {
	return &fileStateManager{
		filePath: filePath,
	}
}

// Load returns an empty set when the state file does not exist yet or is empty.
func (m *fileStateManager) Load() (Offsets, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("file", m.filePath).Msg("State file not found, starting fresh.")
			return make(Offsets), nil
		}
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to read state file")
		return nil, err
	}
	if len(data) == 0 {
		log.Warn().Str("file", m.filePath).Msg("State file is empty, starting fresh.")
		return make(Offsets), nil
	}

	var offsets Offsets
	if err := json.Unmarshal(data, &offsets); err != nil {
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to unmarshal state file")
		return nil, err
	}
	if offsets == nil {
		offsets = make(Offsets)
	}
	log.Debug().Str("file", m.filePath).Int("files_tracked", len(offsets)).Msg("Loaded file state")
	return offsets, nil
}

// Save writes through a temp file and rename so a crash never leaves a partial state file.
func (m *fileStateManager) Save(offsets Offsets) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(offsets, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal state")
		return err
	}

	if dir := filepath.Dir(m.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tempFilePath := m.filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0o644); err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary state file")
		return err
	}
	if err := os.Rename(tempFilePath, m.filePath); err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", m.filePath).Msg("Failed to rename state file")
		_ = os.Remove(tempFilePath)
		return err
	}
	log.Debug().Str("file", m.filePath).Int("files_tracked", len(offsets)).Msg("Saved file state")
	return nil
}

func (m *fileStateManager) Path() string {
	return m.filePath
}
