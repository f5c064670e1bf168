// Package config resolves the application's data directory and file names
// from an optional YAML config file, writing defaults on first run.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type Config struct {
	DataDir          string `yaml:"-"`
	UserFile         string `yaml:"user_file"`
	TaskFile         string `yaml:"task_file"`
	TaskOverviewFile string `yaml:"task_overview_file"`
	UserOverviewFile string `yaml:"user_overview_file"`
	LogFile          string `yaml:"log_file"`
}

func Default(dataDir string) Config {
	return Config{
		DataDir:          dataDir,
		UserFile:         "user.txt",
		TaskFile:         "task.txt",
		TaskOverviewFile: "task_overview.txt",
		UserOverviewFile: "user_overview.txt",
		LogFile:          "task_manager.log",
	}
}

// Load reads config.yaml under dataDir, writing the defaults there first when
// the file does not exist yet. Empty fields fall back to defaults.
func Load(dataDir string) (Config, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Config{}, err
	}
	cfg := Default(dataDir)
	path := filepath.Join(dataDir, fileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return Config{}, err
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	var loaded Config
	if err := yaml.Unmarshal(b, &loaded); err != nil {
		return Config{}, err
	}
	cfg = merge(cfg, loaded)
	return cfg, nil
}

func merge(base, over Config) Config {
	if over.UserFile != "" {
		base.UserFile = over.UserFile
	}
	if over.TaskFile != "" {
		base.TaskFile = over.TaskFile
	}
	if over.TaskOverviewFile != "" {
		base.TaskOverviewFile = over.TaskOverviewFile
	}
	if over.UserOverviewFile != "" {
		base.UserOverviewFile = over.UserOverviewFile
	}
	if over.LogFile != "" {
		base.LogFile = over.LogFile
	}
	return base
}

// Path joins a configured file name onto the data directory.
func (c Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}
