package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

var ErrPersistence = errors.New("config write failed")

// DefaultPath places config.json in the per-user application-config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "dodgewatch", "config.json"), nil
}

// Store guards the in-memory UserConfig and mirrors every update to disk.
// The lock stays held across the file write so disk updates land in the
// same order as the in-memory ones.
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  UserConfig
	log  *zap.Logger
}

// Open loads the config file, falling back to defaults when it doesn't
// exist yet. A file that exists but can't be decoded is an error: silently
// replacing it would lose the user's settings.
func Open(path string, log *zap.Logger) (*Store, error) {
	s := &Store{path: path, cfg: Default(), log: log}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &s.cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Get() UserConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set replaces the in-memory value, then persists it before releasing the
// lock: two concurrent Sets must not leave the file holding the older value
// while memory holds the newer one. A write failure is returned to the
// caller, never swallowed: a lost config write is user-visible data loss.
func (s *Store) Set(cfg UserConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg

	if err := s.persist(cfg); err != nil {
		s.log.Error("config persistence failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Store) persist(cfg UserConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
