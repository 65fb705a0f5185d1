// Package identity caches the single most-recently-seen messaging user ID so
// unsolicited pushes have a recipient. One value, overwritten on every save;
// this is deliberately not a multi-user identity store.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Cache persists the default push recipient.
type Cache interface {
	SaveDefaultUser(id string)
	LoadDefaultUser() (string, bool)
}

type record struct {
	UserID string `json:"user_id"`
}

type FileCache struct {
	path string
	mu   sync.Mutex
	log  *zap.Logger
}

func NewFileCache(path string, log *zap.Logger) (*FileCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &FileCache{path: path, log: log}, nil
}

// SaveDefaultUser overwrites the stored ID. A failed write is logged and
// swallowed: losing the cached recipient must never fail the inbound event
// that carried it.
func (c *FileCache) SaveDefaultUser(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(record{UserID: id})
	if err != nil {
		c.log.Warn("failed to encode default user", zap.Error(err))
		return
	}
	if err := os.WriteFile(c.path, b, 0o644); err != nil {
		c.log.Warn("failed to persist default user", zap.Error(err))
	}
}

// LoadDefaultUser returns the stored ID, or ok=false when the file is
// missing, corrupt, or empty.
func (c *FileCache) LoadDefaultUser() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := os.ReadFile(c.path)
	if err != nil {
		return "", false
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil || rec.UserID == "" {
		return "", false
	}
	return rec.UserID, true
}
