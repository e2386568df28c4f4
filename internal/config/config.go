package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/zjy-dev/covlens/internal/logger"
)

// EnvPrefix prefixes every environment variable read by Load, e.g. COVLENS_EXPORT.
const EnvPrefix = "COVLENS"

// Theme holds the colours used to render coverage. Values are lipgloss
// colours: "#rrggbb" or an ANSI index.
type Theme struct {
	CountFg     string `mapstructure:"count_fg"`
	ZeroFg      string `mapstructure:"zero_fg"`
	UncoveredBg string `mapstructure:"uncovered_bg"`
	BorderFg    string `mapstructure:"border_fg"`
	HeaderFg    string `mapstructure:"header_fg"`
}

// Config is the covlens configuration.
type Config struct {
	// Export is the path of the llvm-cov JSON export.
	Export    string `mapstructure:"export"`
	LogLevel  string `mapstructure:"log_level"`
	Color     bool   `mapstructure:"color"`
	Syntax    bool   `mapstructure:"syntax"`
	CacheSize int    `mapstructure:"cache_size"`
	// LLVMCov is the llvm-cov binary used by "covlens export".
	LLVMCov string `mapstructure:"llvm_cov"`
	Theme   Theme  `mapstructure:"theme"`
}

// DefaultTheme mirrors a dark editor scheme: grey counts, red for uncovered code.
var DefaultTheme = Theme{
	CountFg:     "#5c6370",
	ZeroFg:      "#e06c75",
	UncoveredBg: "#5c1e24",
	BorderFg:    "#3e4451",
	HeaderFg:    "#61afef",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("export", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("color", true)
	v.SetDefault("syntax", true)
	v.SetDefault("cache_size", 8)
	v.SetDefault("llvm_cov", "llvm-cov")
	v.SetDefault("theme.count_fg", DefaultTheme.CountFg)
	v.SetDefault("theme.zero_fg", DefaultTheme.ZeroFg)
	v.SetDefault("theme.uncovered_bg", DefaultTheme.UncoveredBg)
	v.SetDefault("theme.border_fg", DefaultTheme.BorderFg)
	v.SetDefault("theme.header_fg", DefaultTheme.HeaderFg)
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"export":    "export",
	"log-level": "log_level",
	"llvm-cov":  "llvm_cov",
}

// Load reads the configuration. Precedence, highest first: flags, COVLENS_*
// environment variables (including those from a .env file), the config file,
// then defaults. With an empty configFile, covlens.yaml is looked up in the
// working directory, ./configs and the user config directory; a missing file
// is not an error.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("covlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "covlens"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		logger.Debug("[Config] Using %s", v.ConfigFileUsed())
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	if flags != nil {
		if noColor, err := flags.GetBool("no-color"); err == nil && noColor {
			cfg.Color = false
		}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.Color = false
	}

	return &cfg, nil
}

// loadDotEnv exports the variables of path into the process environment.
// Variables already set are kept. A missing file is ignored.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Debug("[Config] Loaded environment from %s", path)
	return nil
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func validColor(c string) bool {
	if c == "" || hexColor.MatchString(c) {
		return true
	}
	n, err := strconv.Atoi(c)
	return err == nil && n >= 0 && n <= 255
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if _, lerr := logger.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	if c.CacheSize < 0 {
		err = multierr.Append(err, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	colors := []struct{ key, value string }{
		{"theme.count_fg", c.Theme.CountFg},
		{"theme.zero_fg", c.Theme.ZeroFg},
		{"theme.uncovered_bg", c.Theme.UncoveredBg},
		{"theme.border_fg", c.Theme.BorderFg},
		{"theme.header_fg", c.Theme.HeaderFg},
	}
	for _, c := range colors {
		if !validColor(c.value) {
			err = multierr.Append(err, fmt.Errorf("%s: invalid colour %q", c.key, c.value))
		}
	}
	return err
}

// RequireExport returns the export path or an error telling the user how to set it.
func (c *Config) RequireExport() (string, error) {
	if c.Export == "" {
		return "", fmt.Errorf("no coverage export given: use --export, %s_EXPORT or the export key in covlens.yaml", EnvPrefix)
	}
	return c.Export, nil
}
