// Package config loads psconv settings from a YAML file and merges them
// with command-line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/psconv/internal/errors"
)

// Conversion modes
const (
	ModeJSONToPS = "json2ps"
	ModePSToJSON = "ps2json"
	ModeYAMLToPS = "yaml2ps"
	ModePSToYAML = "ps2yaml"
	ModeFormat   = "fmt"
)

// Modes lists every supported conversion mode.
var Modes = []string{ModeJSONToPS, ModePSToJSON, ModeYAMLToPS, ModePSToYAML, ModeFormat}

// Key cases understood by naming.key_case
const (
	KeyCaseNone           = ""
	KeyCaseSnake          = "snake"
	KeyCaseCamel          = "camel"
	KeyCaseLowerCamel     = "lower_camel"
	KeyCaseKebab          = "kebab"
	KeyCaseScreamingSnake = "screaming_snake"
)

var keyCasers = map[string]func(string) string{
	KeyCaseSnake:          strcase.ToSnake,
	KeyCaseCamel:          strcase.ToCamel,
	KeyCaseLowerCamel:     strcase.ToLowerCamel,
	KeyCaseKebab:          strcase.ToKebab,
	KeyCaseScreamingSnake: strcase.ToScreamingSnake,
}

// Config represents the complete configuration for psconv
type Config struct {
	Mode   string       `yaml:"mode"`
	JSON   JSONConfig   `yaml:"json"`
	YAML   YAMLConfig   `yaml:"yaml"`
	PS     PSConfig     `yaml:"ps"`
	Naming NamingConfig `yaml:"naming"`
	Batch  BatchConfig  `yaml:"batch"`
	Dev    DevConfig    `yaml:"dev"`
}

// JSONConfig controls JSON output
type JSONConfig struct {
	Indent string `yaml:"indent"`
}

// YAMLConfig controls YAML output
type YAMLConfig struct {
	Indent int `yaml:"indent"`
}

// PSConfig controls PS notation output
type PSConfig struct {
	Indent int `yaml:"indent"`
}

// NamingConfig controls object key rewriting during conversion
type NamingConfig struct {
	KeyCase     string            `yaml:"key_case"`
	KeyMappings map[string]string `yaml:"key_mappings"`
}

// BatchConfig controls multi-file conversion
type BatchConfig struct {
	Workers int    `yaml:"workers"`
	OutDir  string `yaml:"out_dir"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Mode: ModePSToJSON,
		JSON: JSONConfig{
			Indent: "  ",
		},
		YAML: YAMLConfig{
			Indent: 2,
		},
		PS: PSConfig{
			Indent: 4,
		},
		Naming: NamingConfig{
			KeyCase:     KeyCaseNone,
			KeyMappings: make(map[string]string),
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

// LoadConfig loads configuration from a YAML file. The result is not
// validated, since CLI overrides may still replace any value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Naming.KeyMappings == nil {
		cfg.Naming.KeyMappings = make(map[string]string)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".psconv.yml", ".psconv.yaml", "psconv.yml", "psconv.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that every setting has a usable value
func (c *Config) Validate() error {
	if !IsMode(c.Mode) {
		return fmt.Errorf("invalid mode '%s' (allowed %s): %w", c.Mode, strings.Join(Modes, ", "), errors.ErrInvalidMode)
	}
	if _, ok := keyCasers[c.Naming.KeyCase]; !ok && c.Naming.KeyCase != KeyCaseNone {
		return fmt.Errorf("invalid key case '%s': allowed %s", c.Naming.KeyCase, strings.Join(KeyCases(), ", "))
	}
	if strings.Trim(c.JSON.Indent, " \t") != "" {
		return fmt.Errorf("invalid JSON indent %q: only spaces and tabs are allowed", c.JSON.Indent)
	}
	if c.PS.Indent < 0 {
		return fmt.Errorf("invalid PS indent %d: must not be negative", c.PS.Indent)
	}
	if c.YAML.Indent < 0 {
		return fmt.Errorf("invalid YAML indent %d: must not be negative", c.YAML.Indent)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("invalid worker count %d: must be at least 1", c.Batch.Workers)
	}
	return nil
}

// IsMode reports whether mode is a supported conversion mode
func IsMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// KeyCases returns the supported key case names, sorted
func KeyCases() []string {
	names := make([]string, 0, len(keyCasers))
	for name := range keyCasers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeyName returns the output name for an object key, applying the exact
// mappings first and the key case otherwise
func (c *Config) KeyName(key string) string {
	if mapped, exists := c.Naming.KeyMappings[key]; exists {
		return mapped
	}
	if caser, ok := keyCasers[c.Naming.KeyCase]; ok {
		return caser(key)
	}
	return key
}

// RenamesKeys reports whether KeyName can change any key
func (c *Config) RenamesKeys() bool {
	return c.Naming.KeyCase != KeyCaseNone || len(c.Naming.KeyMappings) > 0
}

// Overrides carries CLI values that take precedence over the config file.
// Zero values mean "not set".
type Overrides struct {
	Mode    string
	KeyCase string
	Workers int
	OutDir  string
	Debug   bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Mode != "" {
		cfg.Mode = cli.Mode
	}
	if cli.KeyCase != "" {
		cfg.Naming.KeyCase = cli.KeyCase
	}
	if cli.Workers > 0 {
		cfg.Batch.Workers = cli.Workers
	}
	if cli.OutDir != "" {
		cfg.Batch.OutDir = cli.OutDir
	}
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
