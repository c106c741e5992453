package backend

import (
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/config"
)

// Config is the subset of the application config the store factory needs.
type Config struct {
	Type         BackendType
	SQLiteDBPath string
}

// FromAppConfig picks the store settings out of cfg. DATA_BACKEND is
// matched case-insensitively.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("backend: nil application config")
	}
	c := Config{
		Type:         BackendType(strings.ToLower(strings.TrimSpace(cfg.DataBackend))),
		SQLiteDBPath: cfg.SQLiteDBPath,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch {
	case !c.Type.IsValid():
		return fmt.Errorf("backend: DATA_BACKEND %q is not one of %q or %q", c.Type, MemoryBackend, SQLiteBackend)
	case c.Type == SQLiteBackend && c.SQLiteDBPath == "":
		return errors.New("backend: SQLITE_DB_PATH is required for the sqlite store")
	}
	return nil
}
