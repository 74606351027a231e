package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// InitProjectConfigScaffold 在指定目录下初始化项目级配置模板（./.lenai/config.json）。
// InitProjectConfigScaffold writes a project-level config scaffold (./.lenai/config.json)
// under dir and returns its path. An existing file is left untouched.
func InitProjectConfigScaffold(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get current working directory: %w", err)
		}
		dir = cwd
	}

	cfgDir := filepath.Join(dir, ".lenai")
	path := filepath.Join(cfgDir, "config.json")

	// 若项目已经有配置，则尊重用户现有配置。
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("project config path is a directory: %s", path)
		}
		return path, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat project config: %w", err)
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir .lenai: %w", err)
	}

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write project config: %w", err)
	}
	return path, nil
}
