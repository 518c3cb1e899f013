package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// Config represents the complete swagfill configuration
type Config struct {
	Version    int    `json:"version" mapstructure:"version"`
	RepoRoot   string `json:"repoRoot" mapstructure:"repoRoot"`
	SearchRoot string `json:"searchRoot" mapstructure:"searchRoot"`

	Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
	Engine    EngineConfig    `json:"engine" mapstructure:"engine"`
	Resolver  ResolverConfig  `json:"resolver" mapstructure:"resolver"`
	Output    OutputConfig    `json:"output" mapstructure:"output"`
	Ledger    LedgerConfig    `json:"ledger" mapstructure:"ledger"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// DiscoveryConfig controls which files are treated as service units
type DiscoveryConfig struct {
	Include                []string `json:"include" mapstructure:"include"`
	Exclude                []string `json:"exclude" mapstructure:"exclude"`
	ResourceSuffix         string   `json:"resourceSuffix" mapstructure:"resourceSuffix"`
	ClassRoutingAnnotation string   `json:"classRoutingAnnotation" mapstructure:"classRoutingAnnotation"`
}

// EngineConfig contains the synthesis and traversal settings
type EngineConfig struct {
	RoutingAnnotations []string `json:"routingAnnotations" mapstructure:"routingAnnotations"`
	ContextAnnotations []string `json:"contextAnnotations" mapstructure:"contextAnnotations"`
	DtoSuffix          string   `json:"dtoSuffix" mapstructure:"dtoSuffix"`
	AccessorPrefix     string   `json:"accessorPrefix" mapstructure:"accessorPrefix"`
	// VisitedScope is "run" (one visited set for the whole run) or
	// "service" (a fresh set per service unit).
	VisitedScope string `json:"visitedScope" mapstructure:"visitedScope"`
	ProfilePath  string `json:"profilePath" mapstructure:"profilePath"`
}

// ResolverConfig selects the DTO name to file lookup backend
type ResolverConfig struct {
	Backend       string `json:"backend" mapstructure:"backend"`
	ScipIndexPath string `json:"scipIndexPath" mapstructure:"scipIndexPath"`
	CacheSize     int    `json:"cacheSize" mapstructure:"cacheSize"`
}

// OutputConfig contains write-back settings
type OutputConfig struct {
	Backup bool `json:"backup" mapstructure:"backup"`
	DryRun bool `json:"dryRun" mapstructure:"dryRun"`
}

// LedgerConfig contains run history settings
type LedgerConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Format applies to the log file: "human" or "json".
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
	File   bool   `json:"file" mapstructure:"file"`
	// MaxSize is the size (e.g. "5MB") above which the log file is rotated
	// when a run starts. Empty disables rotation.
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:    CurrentVersion,
		RepoRoot:   ".",
		SearchRoot: "",
		Discovery: DiscoveryConfig{
			Include:                []string{"**/*.java"},
			Exclude:                []string{"**/test/**", "**/generated/**"},
			ResourceSuffix:         "Resource",
			ClassRoutingAnnotation: "Path",
		},
		Engine: EngineConfig{
			RoutingAnnotations: []string{"Path", "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
			ContextAnnotations: []string{"Context", "Auth", "BeanParam"},
			DtoSuffix:          "DTO",
			AccessorPrefix:     "get",
			VisitedScope:       "run",
		},
		Resolver: ResolverConfig{
			Backend:       "fs",
			ScipIndexPath: "index.scip",
			CacheSize:     1024,
		},
		Output: OutputConfig{
			Backup: true,
		},
		Ledger: LedgerConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "warn",
			File:       true,
			MaxSize:    "5MB",
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from .swagfill/config.json.
// SWAGFILL_* environment variables override file values, e.g.
// SWAGFILL_RESOLVER_BACKEND=scip.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".swagfill"))

	v.SetEnvPrefix("SWAGFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.RepoRoot == "" || cfg.RepoRoot == "." {
		cfg.RepoRoot = repoRoot
	}
	return &cfg, nil
}

// setDefaults registers every default so AutomaticEnv can see nested keys.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("repoRoot", d.RepoRoot)
	v.SetDefault("searchRoot", d.SearchRoot)

	v.SetDefault("discovery.include", d.Discovery.Include)
	v.SetDefault("discovery.exclude", d.Discovery.Exclude)
	v.SetDefault("discovery.resourceSuffix", d.Discovery.ResourceSuffix)
	v.SetDefault("discovery.classRoutingAnnotation", d.Discovery.ClassRoutingAnnotation)

	v.SetDefault("engine.routingAnnotations", d.Engine.RoutingAnnotations)
	v.SetDefault("engine.contextAnnotations", d.Engine.ContextAnnotations)
	v.SetDefault("engine.dtoSuffix", d.Engine.DtoSuffix)
	v.SetDefault("engine.accessorPrefix", d.Engine.AccessorPrefix)
	v.SetDefault("engine.visitedScope", d.Engine.VisitedScope)
	v.SetDefault("engine.profilePath", d.Engine.ProfilePath)

	v.SetDefault("resolver.backend", d.Resolver.Backend)
	v.SetDefault("resolver.scipIndexPath", d.Resolver.ScipIndexPath)
	v.SetDefault("resolver.cacheSize", d.Resolver.CacheSize)

	v.SetDefault("output.backup", d.Output.Backup)
	v.SetDefault("output.dryRun", d.Output.DryRun)
	v.SetDefault("ledger.enabled", d.Ledger.Enabled)

	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// EffectiveSearchRoot returns the root used for DTO name lookup.
func (c *Config) EffectiveSearchRoot() string {
	root := c.SearchRoot
	if root == "" {
		return c.RepoRoot
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(c.RepoRoot, root)
	}
	return root
}

// Save writes the configuration to .swagfill/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".swagfill")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), append(data, '\n'), 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if c.Engine.DtoSuffix == "" {
		return &ConfigError{Field: "engine.dtoSuffix", Message: "must not be empty"}
	}
	if c.Engine.AccessorPrefix == "" {
		return &ConfigError{Field: "engine.accessorPrefix", Message: "must not be empty"}
	}
	if len(c.Engine.RoutingAnnotations) == 0 {
		return &ConfigError{Field: "engine.routingAnnotations", Message: "at least one routing annotation is required"}
	}
	switch c.Engine.VisitedScope {
	case "run", "service":
	default:
		return &ConfigError{Field: "engine.visitedScope", Message: "must be \"run\" or \"service\""}
	}
	switch c.Resolver.Backend {
	case "fs":
	case "scip":
		if c.Resolver.ScipIndexPath == "" {
			return &ConfigError{Field: "resolver.scipIndexPath", Message: "required when backend is scip"}
		}
	default:
		return &ConfigError{Field: "resolver.backend", Message: "must be \"fs\" or \"scip\""}
	}
	if c.Resolver.CacheSize < 0 {
		return &ConfigError{Field: "resolver.cacheSize", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be \"human\" or \"json\""}
	}
	if c.Logging.MaxSize != "" {
		if _, err := humanize.ParseBytes(c.Logging.MaxSize); err != nil {
			return &ConfigError{Field: "logging.maxSize", Message: err.Error()}
		}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
