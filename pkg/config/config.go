// Package config provides layered configuration loading and validation
// for codegraph: flags override environment, environment overrides
// file, file overrides built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkers      = errors.New("scan workers must be positive")
	ErrInvalidMaxFileSize  = errors.New("scan max file size must be positive")
	ErrInvalidDeadline     = errors.New("query deadline must be positive")
	ErrInvalidHealthFloor  = errors.New("health threshold must be between 0 and 100")
	ErrInvalidRiskLevel    = errors.New("risk threshold must be one of low, medium, high, critical")
	ErrInvalidMCPTransport = errors.New("mcp transport must be stdio or http")
)

// Default configuration values.
const (
	defaultMaxFileSize     = 2 << 20 // 2 MiB, matching pkg/discovery.DefaultMaxFileSize.
	defaultSnapshotRetain  = 180
	defaultQueryDeadline   = 30 * time.Second
	defaultHealthThreshold = 60.0
	defaultRiskThreshold   = "high"
	defaultMCPTransport    = "stdio"
	defaultMCPPort         = 7777
)

// Config holds all configuration for codegraph's scan, store, query,
// and adapter layers.
type Config struct {
	Scan     ScanConfig     `mapstructure:"scan"`
	Store    StoreConfig    `mapstructure:"store"`
	Query    QueryConfig    `mapstructure:"query"`
	Semantic SemanticConfig `mapstructure:"semantic"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	MCP      MCPConfig      `mapstructure:"mcp"`
}

// ScanConfig configures component A's tree walk and the parse pool
// that follows it.
type ScanConfig struct {
	Root        string   `mapstructure:"root"`
	IgnoreDirs  []string `mapstructure:"ignore_dirs"`
	MaxFileSize int64    `mapstructure:"max_file_size"`
	Workers     int      `mapstructure:"workers"`
	IncludeGit  bool     `mapstructure:"include_git"`
}

// StoreConfig configures where the persisted graph and snapshot log
// live on disk (§6's "<root>/.<tool>/" layout).
type StoreConfig struct {
	Dir               string `mapstructure:"dir"`
	SnapshotRetention int    `mapstructure:"snapshot_retention"`
}

// QueryConfig configures the analytical query layer and the
// --exit-code policy thresholds §6 describes.
type QueryConfig struct {
	Deadline        time.Duration `mapstructure:"deadline"`
	HealthThreshold float64       `mapstructure:"health_threshold"`
	RiskThreshold   string        `mapstructure:"risk_threshold"`
}

// SemanticConfig configures the embedding index (component M).
type SemanticConfig struct {
	Dir         string `mapstructure:"dir"`
	AutoRebuild bool   `mapstructure:"auto_rebuild"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MCPConfig configures the external-protocol adapter (§6).
type MCPConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

// LoadConfig loads configuration from file, environment, and defaults,
// in that precedence order (flags are merged in by callers after
// LoadConfig returns, via Viper's own flag-binding if desired).
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("codegraph")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./.codegraph")
		viperCfg.AddConfigPath("/etc/codegraph")
	}

	viperCfg.SetEnvPrefix("CODEGRAPH")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("scan.root", ".")
	viperCfg.SetDefault("scan.ignore_dirs", []string{".git", "node_modules", "vendor", "dist", "build"})
	viperCfg.SetDefault("scan.max_file_size", defaultMaxFileSize)
	viperCfg.SetDefault("scan.workers", 0) // 0 means "use runtime.NumCPU()" at call time.
	viperCfg.SetDefault("scan.include_git", true)

	viperCfg.SetDefault("store.dir", ".codegraph")
	viperCfg.SetDefault("store.snapshot_retention", defaultSnapshotRetain)

	viperCfg.SetDefault("query.deadline", defaultQueryDeadline.String())
	viperCfg.SetDefault("query.health_threshold", defaultHealthThreshold)
	viperCfg.SetDefault("query.risk_threshold", defaultRiskThreshold)

	viperCfg.SetDefault("semantic.dir", "embeddings")
	viperCfg.SetDefault("semantic.auto_rebuild", false)

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")
	viperCfg.SetDefault("logging.output", "stdout")

	viperCfg.SetDefault("mcp.enabled", false)
	viperCfg.SetDefault("mcp.transport", defaultMCPTransport)
	viperCfg.SetDefault("mcp.port", defaultMCPPort)
}

var validRiskLevels = map[string]bool{"low": true, "medium": true, "high": true, "critical": true}

func validateConfig(cfg *Config) error {
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Scan.Workers)
	}

	if cfg.Scan.MaxFileSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxFileSize, cfg.Scan.MaxFileSize)
	}

	if cfg.Query.Deadline <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDeadline, cfg.Query.Deadline)
	}

	if cfg.Query.HealthThreshold < 0 || cfg.Query.HealthThreshold > 100 {
		return fmt.Errorf("%w: %v", ErrInvalidHealthFloor, cfg.Query.HealthThreshold)
	}

	if !validRiskLevels[cfg.Query.RiskThreshold] {
		return fmt.Errorf("%w: %q", ErrInvalidRiskLevel, cfg.Query.RiskThreshold)
	}

	if cfg.MCP.Transport != "stdio" && cfg.MCP.Transport != "http" {
		return fmt.Errorf("%w: %q", ErrInvalidMCPTransport, cfg.MCP.Transport)
	}

	return nil
}
