package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// EnvBaseURL overrides base_url from the config file.
const EnvBaseURL = "DEVSHELF_BASE_URL"

type Config struct {
	BaseURL       string   `yaml:"base_url"`
	NotesFile     string   `yaml:"notes_file"`
	ProgramsFile  string   `yaml:"programs_file"`
	Timeout       string   `yaml:"timeout"`
	Difficulties  []string `yaml:"difficulties"`
	MarkdownStyle string   `yaml:"markdown_style"`
	Watch         bool     `yaml:"watch"`
}

func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// Base returns the effective base, with the environment taking precedence
// over the file.
func (c *Config) Base() string {
	if v := os.Getenv(EnvBaseURL); v != "" {
		return v
	}
	return c.BaseURL
}

func (c *Config) GetMarkdownStyle() string {
	if c.MarkdownStyle == "" {
		return "dark"
	}
	return c.MarkdownStyle
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "devshelf", "config.yaml")
}

// LogPath is where the TUI writes its log, since it owns the terminal.
func LogPath() string {
	return filepath.Join(xdg.StateHome, "devshelf", "devshelf.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (or the default location), filling unset
// keys from the embedded defaults. A missing file is not an error: the
// defaults are written there and returned.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply.
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the loaded values. The base is validated as given in the
// file; an override from the environment or a flag is checked by the caller
// with ValidateBase.
func Validate(cfg *Config) error {
	if err := ValidateBase(cfg.BaseURL); err != nil {
		return err
	}
	if cfg.NotesFile == "" {
		return fmt.Errorf("notes_file is required")
	}
	if cfg.ProgramsFile == "" {
		return fmt.Errorf("programs_file is required")
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
		}
	}
	if len(cfg.Difficulties) == 0 {
		return fmt.Errorf("difficulties must list at least one level")
	}
	seen := make(map[string]bool)
	for _, d := range cfg.Difficulties {
		if d == "" || d == "all" {
			return fmt.Errorf("invalid difficulty %q", d)
		}
		if seen[d] {
			return fmt.Errorf("duplicate difficulty %q", d)
		}
		seen[d] = true
	}
	return nil
}

// ValidateBase accepts http(s) URLs, file:// URLs and existing directories.
func ValidateBase(base string) error {
	if base == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(base)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			if u.Host == "" {
				return fmt.Errorf("base_url %q has no host", base)
			}
			return nil
		case "file":
			return checkDir(u.Path)
		}
	}
	return checkDir(base)
}

func checkDir(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("base_url %q: %w", p, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("base_url %q is not a directory", p)
	}
	return nil
}
