package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

// EnvPrefix prefixes every environment override, e.g. LOOKATDATA_TOP_N.
const EnvPrefix = "LOOKATDATA"

// Global configuration structure.
type Global struct {
	TopN          int    `mapstructure:"top_n" yaml:"top_n"`
	TopCategories int    `mapstructure:"top_categories" yaml:"top_categories"`
	Workers       int    `mapstructure:"workers" yaml:"workers"`
	MaxRows       int    `mapstructure:"max_rows" yaml:"max_rows"`
	Format        string `mapstructure:"format" yaml:"format"`

	// CSV parsing
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	Encoding           string `mapstructure:"encoding" yaml:"encoding"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultPath returns ~/.lookatdata/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "config: resolve home dir")
	}
	return filepath.Join(home, ".lookatdata", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.lookatdata/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "config: mkdir config dir")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "config: marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return eris.Wrap(err, "config: write config")
	}
	return nil
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Global {
	return &Global{
		TopN:          5,
		TopCategories: 5,
		MaxRows:       100000,
		Format:        "markdown",
		Log:           LogConfig{Level: "warn", Format: "console"},
	}
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A missing file is not an error.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("top_categories", d.TopCategories)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("format", d.Format)
	v.SetDefault("delimiter", "")
	v.SetDefault("encoding", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrap(err, "config: read config")
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges and separator spellings.
func (c *Global) Validate() error {
	if c.TopN < 0 || c.TopCategories < 0 || c.Workers < 0 || c.MaxRows < 0 {
		return eris.New("config: top_n, top_categories, workers and max_rows must not be negative")
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	if _, err := ParseDecimal(c.DecimalSeparator); err != nil {
		return err
	}
	if _, err := ParseThousands(c.ThousandsSeparator); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return eris.Errorf("config: invalid log.format %q (use console or json)", c.Log.Format)
	}
	return nil
}

// NumberFormat returns the configured numeric separators.
func (c *Global) NumberFormat() dataset.NumberFormat {
	dec, _ := ParseDecimal(c.DecimalSeparator)
	thou, _ := ParseThousands(c.ThousandsSeparator)
	return dataset.NumberFormat{DecimalSeparator: dec, ThousandsSeparator: thou}
}

// DelimiterRune returns the configured CSV delimiter, 0 for auto.
func (c *Global) DelimiterRune() rune {
	r, _ := ParseDelimiter(c.Delimiter)
	return r
}

// ParseDelimiter reads a CSV delimiter spelling. Empty means auto-detect.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "\\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, eris.Errorf("config: unsupported delimiter %q (use ','|';'|'tab'|'|')", s)
}

// ParseDecimal reads a decimal separator spelling. Empty means auto-detect.
func ParseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	}
	return 0, eris.Errorf("config: unsupported decimal separator %q (use '.'|'comma')", s)
}

// ParseThousands reads a thousands separator spelling. Empty means auto-detect.
func ParseThousands(s string) (rune, error) {
	if s == " " {
		return ' ', nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "space":
		return ' ', nil
	}
	return 0, eris.Errorf("config: unsupported thousands separator %q (use ','|'.'|'space')", s)
}

// InitLogger builds the global zap logger. "console" selects the
// development encoder, anything else JSON.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	lvl := cfg.Level
	if lvl == "" {
		lvl = "warn"
	}
	level, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
