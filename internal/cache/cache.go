// Package cache persists the last-known-good merged collections to disk so
// the app keeps working when the remote catalog is unreachable.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trieu2004160/studytrack-server/internal/models"
	"github.com/trieu2004160/studytrack-server/internal/util"
)

// Snapshot is the JSON shape written to disk: the two collections plus the
// time they were saved.
type Snapshot struct {
	UserID   uint             `json:"user_id"`
	SavedAt  time.Time        `json:"saved_at"`
	Sessions []models.Session `json:"sessions"`
	Courses  []models.Course  `json:"courses"`
}

// Cache reads and writes per-user snapshot files, AES-GCM encrypted when a
// key is configured.
type Cache struct {
	Dir        string
	EncryptKey string
}

func New(dir, encryptKey string) *Cache {
	return &Cache{Dir: dir, EncryptKey: encryptKey}
}

func (c *Cache) path(userID uint) string {
	return filepath.Join(c.Dir, fmt.Sprintf("snapshot-%d.bin", userID))
}

// Save writes the user's merged collections, replacing any previous snapshot.
func (c *Cache) Save(userID uint, sessions []models.Session, courses []models.Course) error {
	snap := Snapshot{
		UserID:   userID,
		SavedAt:  time.Now(),
		Sessions: sessions,
		Courses:  courses,
	}
	raw, err := json.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	data := raw
	if c.EncryptKey != "" {
		if data, err = util.EncryptAES(c.EncryptKey, raw); err != nil {
			return fmt.Errorf("encrypt snapshot: %w", err)
		}
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(c.path(userID), data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns the user's snapshot, or nil if none exists or the stored one
// is unreadable or fails the validity check. A bad cache is discarded, never
// surfaced as an error: the caller simply proceeds without last-known-good
// data.
func (c *Cache) Load(userID uint) *Snapshot {
	data, err := os.ReadFile(c.path(userID))
	if err != nil {
		return nil
	}

	if c.EncryptKey != "" {
		if data, err = util.DecryptAES(c.EncryptKey, data); err != nil {
			return nil
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	if !valid(&snap) {
		return nil
	}
	return &snap
}

// Reset deletes the user's snapshot file, if any.
func (c *Cache) Reset(userID uint) error {
	err := os.Remove(c.path(userID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

// valid is the schema heuristic: a snapshot written by an older incompatible
// schema carried nameless course records, so a nonempty course list whose
// first entry has no name is discarded.
func valid(snap *Snapshot) bool {
	if len(snap.Courses) > 0 && snap.Courses[0].Name == "" {
		return false
	}
	return true
}
