package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/cosmodrome/internal/foundation/errors"
)

// FileName is the optional site configuration file looked up in the project root.
const FileName = "cosmodrome.yaml"

// Config represents the site layout and build options.
type Config struct {
	SourceDir       string        `yaml:"source_dir"`
	OutputDir       string        `yaml:"output_dir"`
	MarkupExtension string        `yaml:"markup_extension"`
	HiddenPrefix    string        `yaml:"hidden_prefix"`
	Placeholder     string        `yaml:"placeholder"`
	HTML            HTMLConfig    `yaml:"html"`
	Capsule         CapsuleConfig `yaml:"capsule"`
	Logging         LoggingConfig `yaml:"logging"`

	// BaseDir is the absolute project root every other path is relative to.
	BaseDir string `yaml:"-"`
}

// Target describes one published tree: where it goes, what overlays it and
// which wrapper template frames its pages.
type Target struct {
	Output  string `yaml:"output"`
	Overlay string `yaml:"overlay"`
	Wrapper string `yaml:"wrapper"`
}

// HTMLConfig configures the website tree.
type HTMLConfig struct {
	Target    `yaml:",inline"`
	Extension string `yaml:"extension"`
	RawText   bool   `yaml:"raw_text"` // Emit line content without HTML escaping
}

// CapsuleConfig configures the capsule tree.
type CapsuleConfig struct {
	Target `yaml:",inline"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration of the standard layout rooted at baseDir.
func Default(baseDir string) *Config {
	cfg := &Config{BaseDir: baseDir}
	cfg.applyDefaults()
	return cfg
}

// Load resolves baseDir, loads .env files from it and reads the site config.
// An empty configPath means FileName inside baseDir, which may be absent.
// An explicit configPath must exist.
func Load(baseDir, configPath string) (*Config, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve project directory").
			Fatal().WithContext("path", baseDir).Build()
	}
	if err := loadEnvFiles(absBase); err != nil {
		return nil, err
	}

	required := configPath != ""
	if !required {
		configPath = filepath.Join(absBase, FileName)
	}

	cfg := &Config{}
	data, err := os.ReadFile(configPath) // #nosec G304 -- user supplied config path
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse configuration").
				Fatal().WithContext("path", configPath).Build()
		}
	case errors.Is(err, os.ErrNotExist) && !required:
		// Defaults only.
	default:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration").
			Fatal().WithContext("path", configPath).Build()
	}

	cfg.BaseDir = absBase
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env and .env.local from dir. Existing process
// environment variables win.
func loadEnvFiles(dir string) error {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "load environment file").
				Fatal().WithContext("path", path).Build()
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.SourceDir, "src")
	setDefault(&c.OutputDir, "srv")
	setDefault(&c.MarkupExtension, "gmi")
	setDefault(&c.HiddenPrefix, "_")
	setDefault(&c.Placeholder, "<!-- CONTENT -->")

	setDefault(&c.HTML.Output, "www")
	setDefault(&c.HTML.Overlay, "www")
	setDefault(&c.HTML.Wrapper, c.HiddenPrefix+"wrapper.html")
	setDefault(&c.HTML.Extension, "html")

	setDefault(&c.Capsule.Output, "gemini")
	setDefault(&c.Capsule.Overlay, "gemini")
	setDefault(&c.Capsule.Wrapper, c.HiddenPrefix+"wrapper."+c.MarkupExtension)

	setDefault(&c.Logging.Level, string(LogLevelInfo))
	setDefault(&c.Logging.Format, string(LogFormatText))
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// SourcePath is the directory the content tree is read from.
func (c *Config) SourcePath() string { return filepath.Join(c.BaseDir, c.SourceDir) }

// OutputPath is the root removed and recreated by every build.
func (c *Config) OutputPath() string { return filepath.Join(c.BaseDir, c.OutputDir) }

// HTMLOutputPath is the root of the generated website.
func (c *Config) HTMLOutputPath() string { return filepath.Join(c.OutputPath(), c.HTML.Output) }

// CapsuleOutputPath is the root of the generated capsule.
func (c *Config) CapsuleOutputPath() string { return filepath.Join(c.OutputPath(), c.Capsule.Output) }

// HTMLOverlayPath holds static website assets copied over the generated tree.
func (c *Config) HTMLOverlayPath() string { return filepath.Join(c.BaseDir, c.HTML.Overlay) }

// CapsuleOverlayPath holds static capsule assets copied over the generated tree.
func (c *Config) CapsuleOverlayPath() string { return filepath.Join(c.BaseDir, c.Capsule.Overlay) }

// HTMLWrapperPath is the website wrapper template inside the source tree.
func (c *Config) HTMLWrapperPath() string { return filepath.Join(c.SourcePath(), c.HTML.Wrapper) }

// CapsuleWrapperPath is the capsule wrapper template inside the source tree.
func (c *Config) CapsuleWrapperPath() string {
	return filepath.Join(c.SourcePath(), c.Capsule.Wrapper)
}
