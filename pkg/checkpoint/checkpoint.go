package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"wbprivacy/pkg/logger"
)

// Checkpoint records the progress of one visibility batch so an interrupted
// run can resume without repeating mutations. Posts already processed are
// keyed by their identifier; the visibility code pins the checkpoint to one
// target level, so a run with a different level starts fresh.
type Checkpoint struct {
	UserID         string          `json:"user_id"`
	VisibilityCode int             `json:"visibility_code"`
	ProcessedIDs   map[string]bool `json:"processed_ids"`
	TotalListed    int             `json:"total_listed"`
	TotalProcessed int             `json:"total_processed"`
	TotalFailed    int             `json:"total_failed"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// IsProcessed reports whether a post has already been handled in this batch
func (c *Checkpoint) IsProcessed(postID string) bool {
	return c.ProcessedIDs[postID]
}

// MarkProcessed records a handled post. failed posts count toward progress
// so they are not retried on resume; the summary reports them separately.
func (c *Checkpoint) MarkProcessed(postID string, failed bool) {
	if c.ProcessedIDs[postID] {
		return
	}
	c.ProcessedIDs[postID] = true
	c.TotalProcessed++
	if failed {
		c.TotalFailed++
	}
}

// Manager handles checkpoint persistence for one user's batch
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a checkpoint manager storing under the OS data directory
func NewManager(userID string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}
	return NewManagerInDir(dataDir, userID)
}

// NewManagerInDir creates a checkpoint manager rooted at an explicit
// directory, mainly for tests
func NewManagerInDir(dir, userID string) (*Manager, error) {
	checkpointsDir := filepath.Join(dir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &Manager{
		checkpointPath: filepath.Join(checkpointsDir, fmt.Sprintf("%s.checkpoint.json", userID)),
		logger:         logger.GetLogger(),
	}, nil
}

// Create creates and persists a fresh checkpoint
func (m *Manager) Create(userID string, visibilityCode int) (*Checkpoint, error) {
	checkpoint := &Checkpoint{
		UserID:         userID,
		VisibilityCode: visibilityCode,
		ProcessedIDs:   make(map[string]bool),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Version:        1,
	}

	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint created", map[string]interface{}{
		"user_id": userID,
		"path":    m.checkpointPath,
	})

	return checkpoint, nil
}

// Load loads an existing checkpoint, or (nil, nil) when none exists
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if checkpoint.ProcessedIDs == nil {
		checkpoint.ProcessedIDs = make(map[string]bool)
	}

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"user_id":         checkpoint.UserID,
		"total_processed": checkpoint.TotalProcessed,
		"total_failed":    checkpoint.TotalFailed,
		"updated_at":      checkpoint.UpdatedAt,
	})

	return &checkpoint, nil
}

// Save writes the checkpoint to disk atomically
func (m *Manager) Save(checkpoint *Checkpoint) error {
	checkpoint.UpdatedAt = time.Now()

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(checkpoint); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"user_id":         checkpoint.UserID,
		"total_processed": checkpoint.TotalProcessed,
	})

	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Debug("checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "wbprivacy")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "wbprivacy")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "wbprivacy")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "wbprivacy")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
