package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// Scratch directory prefix, one directory per assembly run
	TempDirPrefix = "scene_assembly_"

	// Concat manifest written into the scratch directory
	ConcatManifestName = "concat.txt"

	DefaultProbeConcurrency = 4
	DefaultProbeTimeout     = 30 * time.Second
	DefaultAssemblyTimeout  = 2 * time.Hour

	envPrefix = "SCENE_ASSEMBLER_"
)

// Config holds the application configuration around a single assembly.
type Config struct {
	FFmpegPath       string        `yaml:"ffmpeg_path"`
	FFprobePath      string        `yaml:"ffprobe_path"`
	TempDir          string        `yaml:"temp_dir"`
	ProbeConcurrency int           `yaml:"probe_concurrency"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	AssemblyTimeout  time.Duration `yaml:"assembly_timeout"`
	Profile          string        `yaml:"profile"`
	Verbose          bool          `yaml:"verbose"`
	LogFormat        string        `yaml:"log_format"` // "console" or "json"

	Settings AssemblySettings `yaml:"settings"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		TempDir:          os.TempDir(),
		ProbeConcurrency: DefaultProbeConcurrency,
		ProbeTimeout:     DefaultProbeTimeout,
		AssemblyTimeout:  DefaultAssemblyTimeout,
		LogFormat:        "console",
		Settings:         DefaultSettings(),
	}
}

// Load reads configuration from path (or the first config file found),
// then applies .env and SCENE_ASSEMBLER_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	// best-effort: load .env if present
	_ = godotenv.Load()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", path)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.WithStack(err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration and the embedded assembly settings.
func (c *Config) Validate() error {
	if c.FFmpegPath == "" || c.FFprobePath == "" {
		return errors.New("ffmpeg and ffprobe paths are required")
	}
	if c.ProbeConcurrency <= 0 {
		return errors.Errorf("probe concurrency must be > 0, got %d", c.ProbeConcurrency)
	}
	if c.ProbeTimeout <= 0 || c.AssemblyTimeout <= 0 {
		return errors.New("timeouts must be > 0")
	}
	return errors.Wrap(c.Settings.Validate(), "settings")
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envPrefix + "FFMPEG"); v != "" {
		c.FFmpegPath = v
	}
	if v := os.Getenv(envPrefix + "FFPROBE"); v != "" {
		c.FFprobePath = v
	}
	if v := os.Getenv(envPrefix + "TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv(envPrefix + "PROFILE"); v != "" {
		c.Profile = v
	}
	if v := os.Getenv(envPrefix + "PROBE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %sPROBE_CONCURRENCY", envPrefix)
		}
		c.ProbeConcurrency = n
	}
	if v := os.Getenv(envPrefix + "PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %sPROBE_TIMEOUT", envPrefix)
		}
		c.ProbeTimeout = d
	}
	return nil
}

func findConfigFile() string {
	candidates := []string{
		"./scene-assembler.yaml",
		"./scene-assembler.yml",
		filepath.Join(os.Getenv("HOME"), ".scene-assembler", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
