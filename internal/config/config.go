package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the TOML runtime configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
	UI       UIConfig       `toml:"ui"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// StorageConfig names the keys both lists are stored under.
type StorageConfig struct {
	CategoriesKey string `toml:"categories_key"`
	TodosKey      string `toml:"todos_key"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the logfmt file sink used in dev mode.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type UIConfig struct {
	ShowHelp bool `toml:"show_help"`
}

// KeyConfig overrides single-key bindings in the TUI.
type KeyConfig struct {
	AddTodo         string `toml:"add_todo"`
	NewCategory     string `toml:"new_category"`
	CheckAll        string `toml:"check_all"`
	DeleteCompleted string `toml:"delete_completed"`
}

var validLevels = []string{"debug", "info", "warn", "error", "fatal"}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Storage: StorageConfig{
			CategoriesKey: "checklist.categories",
			TodosKey:      "checklist.todos",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".checklist/log",
			},
		},
		UI: UIConfig{
			ShowHelp: true,
		},
		Keys: KeyConfig{
			AddTodo:         "n",
			NewCategory:     "c",
			CheckAll:        "a",
			DeleteCompleted: "D",
		},
	}
}

// Load reads path over defaults. A missing or empty file yields defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML at path, creating parent directories.
func Write(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	c.Storage.CategoriesKey = strings.TrimSpace(c.Storage.CategoriesKey)
	c.Storage.TodosKey = strings.TrimSpace(c.Storage.TodosKey)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(c.Storage.CategoriesKey) == "" || strings.TrimSpace(c.Storage.TodosKey) == "" {
		return errors.New("storage keys are required")
	}
	if strings.TrimSpace(c.Storage.CategoriesKey) == strings.TrimSpace(c.Storage.TodosKey) {
		return fmt.Errorf("storage.categories_key and storage.todos_key must differ: %q", c.Storage.TodosKey)
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	valid := false
	for _, v := range validLevels {
		if v == level {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	seen := map[string]string{}
	for _, kb := range []struct {
		name string
		key  string
	}{
		{name: "add_todo", key: c.Keys.AddTodo},
		{name: "new_category", key: c.Keys.NewCategory},
		{name: "check_all", key: c.Keys.CheckAll},
		{name: "delete_completed", key: c.Keys.DeleteCompleted},
	} {
		if kb.key == "" {
			continue
		}
		if other, ok := seen[kb.key]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", kb.name, other, kb.key)
		}
		seen[kb.key] = kb.name
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
