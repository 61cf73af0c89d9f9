package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the snipgram pipeline configuration.
type Config struct {
	Input           InputConfig           `yaml:"input"`
	Export          ExportConfig          `yaml:"export"`
	Enrich          EnrichConfig          `yaml:"enrich"`
	Gram            GramConfig            `yaml:"gram"`
	Cache           CacheConfig           `yaml:"cache"`
	SimilarityStore SimilarityStoreConfig `yaml:"similarity_store"`
	Metrics         MetricsConfig         `yaml:"metrics"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// InputConfig points at the snippet, topic and lexicon files.
type InputConfig struct {
	TrainPath   string `yaml:"train_path"`
	TestPath    string `yaml:"test_path"`
	TopicsPath  string `yaml:"topics_path"`
	LexiconPath string `yaml:"lexicon_path"`
}

// ExportConfig holds dataset persistence settings.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Engine string `yaml:"engine"` // bolt, kv (default: bolt)
}

// EnrichConfig holds the topic smoothing constants.
type EnrichConfig struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

// GramConfig holds worker pool settings for Gram matrix builds.
type GramConfig struct {
	Workers       int    `yaml:"workers"`        // 0 = runtime.NumCPU()
	BatchSize     int    `yaml:"batch_size"`     // pairs per dispatched unit
	Dispatch      string `yaml:"dispatch"`       // fifo, affinity (default: fifo)
	ProgressEvery int    `yaml:"progress_every"` // pairs between progress lines
}

// CacheConfig holds per-worker similarity cache settings.
type CacheConfig struct {
	Disabled    bool `yaml:"disabled"`
	MaxEntries  int  `yaml:"max_entries"`  // 0 = unbounded
	ReportEvery int  `yaml:"report_every"` // oracle calls between hit-ratio lines
}

// SimilarityStoreConfig holds the optional remote similarity memo.
type SimilarityStoreConfig struct {
	Driver           string   `yaml:"driver"` // "", redis, valkey
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a remote store is configured.
func (c SimilarityStoreConfig) Enabled() bool { return c.Driver != "" }

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty = no endpoint
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expanding ${VAR} references, applying defaults and validating.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Export.Dir == "" {
		c.Export.Dir = "datasets"
	}
	if c.Export.Engine == "" {
		c.Export.Engine = "bolt"
	}
	if c.Enrich.Alpha <= 0 {
		c.Enrich.Alpha = 0.5
	}
	if c.Enrich.Beta <= 0 {
		c.Enrich.Beta = 0.1
	}
	if c.Gram.Workers <= 0 {
		c.Gram.Workers = runtime.NumCPU()
	}
	if c.Gram.BatchSize <= 0 {
		c.Gram.BatchSize = 1
	}
	if c.Gram.Dispatch == "" {
		c.Gram.Dispatch = "fifo"
	}
	if c.Gram.ProgressEvery <= 0 {
		c.Gram.ProgressEvery = 1000
	}
	if c.Cache.ReportEvery <= 0 {
		c.Cache.ReportEvery = 100000
	}
	if c.SimilarityStore.KeyPrefix == "" {
		c.SimilarityStore.KeyPrefix = "snipgram:"
	}
	if c.SimilarityStore.ReadinessTimeout <= 0 {
		c.SimilarityStore.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Input.TrainPath == "" || c.Input.TestPath == "" {
		return fmt.Errorf("input.train_path and input.test_path are required")
	}
	if c.Input.TopicsPath == "" {
		return fmt.Errorf("input.topics_path is required")
	}
	if c.Input.LexiconPath == "" {
		return fmt.Errorf("input.lexicon_path is required")
	}
	switch c.Export.Engine {
	case "bolt", "kv":
	default:
		return fmt.Errorf("export.engine must be \"bolt\" or \"kv\", got %q", c.Export.Engine)
	}
	switch c.Gram.Dispatch {
	case "fifo", "affinity":
	default:
		return fmt.Errorf("gram.dispatch must be \"fifo\" or \"affinity\", got %q", c.Gram.Dispatch)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0, got %d", c.Cache.MaxEntries)
	}
	switch c.SimilarityStore.Driver {
	case "":
	case "redis", "valkey":
		if len(c.SimilarityStore.Addrs) == 0 {
			return fmt.Errorf("similarity_store.addrs is required for driver %q", c.SimilarityStore.Driver)
		}
	default:
		return fmt.Errorf("similarity_store.driver must be \"redis\" or \"valkey\", got %q", c.SimilarityStore.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
