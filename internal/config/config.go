package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/civtab/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DefaultEncoding  string `mapstructure:"default_encoding" yaml:"default_encoding"`
	DefaultDelimiter string `mapstructure:"default_delimiter" yaml:"default_delimiter"`
	ThousandsSep     string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Analysis
	RangeMethod     string `mapstructure:"range_method" yaml:"range_method"`
	RangeSampleSize int    `mapstructure:"range_sample_size" yaml:"range_sample_size"`
	StrictColumns   bool   `mapstructure:"strict_columns" yaml:"strict_columns"`

	// Output
	MaxDisplayRows int    `mapstructure:"max_display_rows" yaml:"max_display_rows"`
	CSVBOM         bool   `mapstructure:"csv_bom" yaml:"csv_bom"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
	RecipesDir     string `mapstructure:"recipes_dir" yaml:"recipes_dir"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// ErrUnknownKey is returned by Set for keys it does not know.
var ErrUnknownKey = errors.New("unknown config key")

// Dir returns the civtab home directory, ~/.civtab.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".civtab"), nil
}

// Path returns cfgFile or the default ~/.civtab/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.civtab/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from defaults, the config file, a .env file found
// by walking up from the working directory, and CIVTAB_* environment variables.
// Precedence: env (including .env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// .env never overrides variables already set in the process environment.
	if envFile, err := utils.FindUp("", ".env"); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("CIVTAB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("default_encoding", "utf-8")
	v.SetDefault("default_delimiter", "auto")
	v.SetDefault("thousands_separator", ",")
	v.SetDefault("range_method", "midpoint")
	v.SetDefault("range_sample_size", 20)
	v.SetDefault("strict_columns", false)
	v.SetDefault("max_display_rows", 50)
	v.SetDefault("csv_bom", false)
	v.SetDefault("output_dir", "")
	v.SetDefault("recipes_dir", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve recipes_dir default: ~/.civtab/recipes
	if c.RecipesDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.RecipesDir = filepath.Join(dir, "recipes")
	}
	c.RecipesDir = utils.ExpandHome(c.RecipesDir)
	c.OutputDir = utils.ExpandHome(c.OutputDir)
	return &c, nil
}

// Values returns each key with its current value, in display order.
func (c *Global) Values() [][2]string {
	return [][2]string{
		{"default_encoding", c.DefaultEncoding},
		{"default_delimiter", c.DefaultDelimiter},
		{"thousands_separator", c.ThousandsSep},
		{"range_method", c.RangeMethod},
		{"range_sample_size", strconv.Itoa(c.RangeSampleSize)},
		{"strict_columns", strconv.FormatBool(c.StrictColumns)},
		{"max_display_rows", strconv.Itoa(c.MaxDisplayRows)},
		{"csv_bom", strconv.FormatBool(c.CSVBOM)},
		{"output_dir", c.OutputDir},
		{"recipes_dir", c.RecipesDir},
		{"log_level", c.LogLevel},
		{"log_format", c.LogFormat},
	}
}

// Set assigns one key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "default_encoding":
		c.DefaultEncoding = val
	case "default_delimiter":
		c.DefaultDelimiter = val
	case "thousands_separator":
		if len([]rune(val)) > 1 {
			return fmt.Errorf("invalid thousands_separator: %q (use one character or empty)", val)
		}
		c.ThousandsSep = val
	case "range_method":
		switch strings.ToLower(val) {
		case "midpoint", "min", "max":
			c.RangeMethod = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid range_method: %s (use midpoint, min or max)", val)
		}
	case "range_sample_size":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for range_sample_size: %v", val)
		}
		c.RangeSampleSize = i
	case "strict_columns":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for strict_columns: %w", err)
		}
		c.StrictColumns = b
	case "max_display_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for max_display_rows: %v", val)
		}
		c.MaxDisplayRows = i
	case "csv_bom":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for csv_bom: %w", err)
		}
		c.CSVBOM = b
	case "output_dir":
		c.OutputDir = val
	case "recipes_dir":
		c.RecipesDir = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "warning", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
