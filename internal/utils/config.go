package utils

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the process-wide configuration. It is loaded once at startup
// and passed explicitly; values are fixed for the process lifetime.
type Config struct {
	Server ServerConfig `yaml:"server"`
	CORS   CORSConfig   `yaml:"cors"`
	Logger LoggerConfig `yaml:"logger"`
	Limits LimitsConfig `yaml:"limits"`
	Latex  LatexConfig  `yaml:"latex"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	Prefork bool   `yaml:"prefork"`
}

type CORSConfig struct {
	// AllowOrigins is a comma-separated origin allow-list. "*" permits all.
	AllowOrigins string `yaml:"allow_origins"`
}

type LoggerConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type LimitsConfig struct {
	// MaxInputBytes bounds the combined size of the template and its
	// side-files copied into a workspace.
	MaxInputBytes int64 `yaml:"max_input_bytes"`
	// MaxPDFBytes bounds the size of the produced artifact.
	MaxPDFBytes int `yaml:"max_pdf_bytes"`
}

type LatexConfig struct {
	Command         string   `yaml:"command"`
	Passes          int      `yaml:"passes"`
	TimeoutSecs     int      `yaml:"timeout_secs"`
	TemplatesDir    string   `yaml:"templates_dir"`
	OutputDir       string   `yaml:"output_dir"`
	DebugDir        string   `yaml:"debug_dir"`
	WorkDir         string   `yaml:"work_dir"`
	FilePrefix      string   `yaml:"file_prefix"`
	DefaultTemplate string   `yaml:"default_template"`
	DefaultTitle    string   `yaml:"default_title"`
	DefaultStyle    string   `yaml:"default_style"`
	AllowedStyles   []string `yaml:"allowed_styles"`
}

// Timeout returns the wall-clock budget for one compilation, all passes
// included.
func (l LatexConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSecs) * time.Second
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "",
			Port: ":5001",
		},
		CORS: CORSConfig{
			AllowOrigins: "*",
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Limits: LimitsConfig{
			MaxInputBytes: 50 * 1024 * 1024,
			MaxPDFBytes:   50 * 1024 * 1024,
		},
		Latex: LatexConfig{
			Command:         "pdflatex",
			Passes:          2,
			TimeoutSecs:     120,
			TemplatesDir:    "templates",
			OutputDir:       "cv_output",
			FilePrefix:      "cv",
			DefaultTemplate: "resume",
			DefaultTitle:    "CV",
			DefaultStyle:    "modern",
			AllowedStyles:   []string{"bold", "elegant", "luxe", "modern", "slate"},
		},
	}
}

// LoadConfig reads the YAML config from CONFIG_PATH (default "config.yaml").
// A missing file yields the defaults; a broken or invalid file panics, since
// starting with a half-applied configuration is worse than not starting.
func LoadConfig() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig()
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the config file at the given path.
func LoadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: cannot read %s: %v", path, err))
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("config: cannot parse %s: %v", path, err))
	}
	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("config: %s: %v", path, err))
	}
	return cfg
}

func (c Config) validate() error {
	if c.Latex.Command == "" {
		return fmt.Errorf("latex.command is empty")
	}
	if c.Latex.TimeoutSecs <= 0 {
		return fmt.Errorf("latex.timeout_secs must be positive, got %d", c.Latex.TimeoutSecs)
	}
	if c.Latex.Passes <= 0 {
		return fmt.Errorf("latex.passes must be positive, got %d", c.Latex.Passes)
	}
	if c.Latex.TemplatesDir == "" {
		return fmt.Errorf("latex.templates_dir is empty")
	}
	if c.Limits.MaxInputBytes <= 0 {
		return fmt.Errorf("limits.max_input_bytes must be positive, got %d", c.Limits.MaxInputBytes)
	}
	if c.Limits.MaxPDFBytes <= 0 {
		return fmt.Errorf("limits.max_pdf_bytes must be positive, got %d", c.Limits.MaxPDFBytes)
	}
	if len(c.Latex.AllowedStyles) == 0 {
		return fmt.Errorf("latex.allowed_styles is empty")
	}
	return nil
}
