package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	envConfig      = "LECTERN_CONFIG"
	configDirName  = "lectern"
	configFileName = "config.json"
)

// GlobalConfig is what `lectern init` remembers between runs: which server
// to talk to and which room questions go to by default.
type GlobalConfig struct {
	APIURL string `json:"api_url"`
	Room   string `json:"room,omitempty"`
}

// configPathFunc is swapped in tests.
var configPathFunc = defaultConfigPath

// defaultConfigPath honors LECTERN_CONFIG, then the platform config dir
// (e.g. ~/.config/lectern/config.json on Linux).
func defaultConfigPath() (string, error) {
	if path := os.Getenv(envConfig); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}

// GetConfigPath returns the path of the client config file.
func GetConfigPath() (string, error) {
	return configPathFunc()
}

// LoadGlobalConfig reads the client config. A missing file is not an error
// and yields a nil config.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &config, nil
}

// SaveGlobalConfig writes config with 0600 permissions. The file is replaced
// by rename so an interrupted write never leaves a truncated config.
func SaveGlobalConfig(config *GlobalConfig) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}

	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+configFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DeleteGlobalConfig removes the client config. Removing a missing file succeeds.
func DeleteGlobalConfig() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}
