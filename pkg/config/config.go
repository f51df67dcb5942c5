/*
Package config manages TOML config for suggestd services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/suggestd/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Engine       EngineConfig       `toml:"engine"`
	Ranking      RankingConfig      `toml:"ranking"`
	Interruption InterruptionConfig `toml:"interruption"`
	Server       ServerConfig       `toml:"server"`
}

// EngineConfig has suggestion engine options.
type EngineConfig struct {
	QueryTimeoutMs      int `toml:"query_timeout_ms"`
	DefaultQueryResults int `toml:"default_query_results"`
}

// RankingConfig holds the linear ranker feature weights.
type RankingConfig struct {
	HintWeight       float64 `toml:"hint_weight"`
	AnnoyanceWeight  float64 `toml:"annoyance_weight"`
	AffinityWeight   float64 `toml:"affinity_weight"`
	QueryMatchWeight float64 `toml:"query_match_weight"`
}

// InterruptionConfig gates out-of-band interruption delivery.
type InterruptionConfig struct {
	Threshold float64 `toml:"threshold"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	MaxQueryLen  int  `toml:"max_query_len"`
	EnableFilter bool `toml:"enable_filter"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "suggestd")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "suggestd")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/suggestd/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			QueryTimeoutMs:      9000,
			DefaultQueryResults: 10,
		},
		Ranking: RankingConfig{
			HintWeight:       0.5,
			AnnoyanceWeight:  0.2,
			AffinityWeight:   0.3,
			QueryMatchWeight: 0.6,
		},
		Interruption: InterruptionConfig{
			Threshold: 1.0,
		},
		Server: ServerConfig{
			MaxLimit:     64,
			MaxQueryLen:  256,
			EnableFilter: true,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages whatever sections parse from a damaged file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if engineSection, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(engineSection, &config.Engine)
	}
	if rankingSection, ok := utils.ExtractSection(tempConfig, "ranking"); ok {
		extractRankingConfig(rankingSection, &config.Ranking)
	}
	if interruptionSection, ok := utils.ExtractSection(tempConfig, "interruption"); ok {
		extractInterruptionConfig(interruptionSection, &config.Interruption)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	return config, nil
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "query_timeout_ms"); ok {
		engine.QueryTimeoutMs = val
	}
	if val, ok := utils.ExtractInt64(data, "default_query_results"); ok {
		engine.DefaultQueryResults = val
	}
}

// extractRankingConfig extracts ranker weights from a map
func extractRankingConfig(data map[string]any, ranking *RankingConfig) {
	if val, ok := utils.ExtractFloat64(data, "hint_weight"); ok {
		ranking.HintWeight = val
	}
	if val, ok := utils.ExtractFloat64(data, "annoyance_weight"); ok {
		ranking.AnnoyanceWeight = val
	}
	if val, ok := utils.ExtractFloat64(data, "affinity_weight"); ok {
		ranking.AffinityWeight = val
	}
	if val, ok := utils.ExtractFloat64(data, "query_match_weight"); ok {
		ranking.QueryMatchWeight = val
	}
}

// extractInterruptionConfig extracts interruption gating from a map
func extractInterruptionConfig(data map[string]any, interruption *InterruptionConfig) {
	if val, ok := utils.ExtractFloat64(data, "threshold"); ok {
		interruption.Threshold = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query_len"); ok {
		server.MaxQueryLen = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
