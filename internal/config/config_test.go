package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfigs creates a temporary working directory with a "configs"
// subdirectory and changes into it for the duration of the test.
func setupTestConfigs(t *testing.T) string {
	configDir := t.TempDir()

	actualConfigPath := filepath.Join(configDir, "configs")
	require.NoError(t, os.Mkdir(actualConfigPath, 0755))

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(configDir))
	t.Cleanup(func() { os.Chdir(oldWd) })

	// Keep the user's own config directory out of the search path.
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(configDir, "xdg"))
	t.Setenv("HOME", configDir)
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")

	return actualConfigPath
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("export", "e", "", "")
	flags.String("log-level", "info", "")
	flags.String("llvm-cov", "llvm-cov", "")
	flags.Bool("no-color", false, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	setupTestConfigs(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Export)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Color)
	assert.True(t, cfg.Syntax)
	assert.Equal(t, 8, cfg.CacheSize)
	assert.Equal(t, "llvm-cov", cfg.LLVMCov)
	assert.Equal(t, DefaultTheme, cfg.Theme)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromConfigsDir(t *testing.T) {
	configPath := setupTestConfigs(t)

	configContent := `
export: "build/coverage.json"
log_level: "debug"
syntax: false
theme:
  uncovered_bg: "#440000"
`
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "covlens.yaml"), []byte(configContent), 0644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "build/coverage.json", cfg.Export)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Syntax)
	assert.Equal(t, "#440000", cfg.Theme.UncoveredBg)
	assert.Equal(t, DefaultTheme.ZeroFg, cfg.Theme.ZeroFg)
}

func TestLoad_Precedence(t *testing.T) {
	configPath := setupTestConfigs(t)

	configContent := `
export: "from-file.json"
log_level: "warn"
cache_size: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "covlens.yaml"), []byte(configContent), 0644))
	t.Setenv("COVLENS_LOG_LEVEL", "error")
	t.Setenv("COVLENS_THEME_ZERO_FG", "#ff0000")

	cfg, err := Load("", newFlags(t, "--export", "from-flag.json"))
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.Export, "flag beats file")
	assert.Equal(t, "error", cfg.LogLevel, "env beats file")
	assert.Equal(t, 2, cfg.CacheSize, "file beats default")
	assert.Equal(t, "#ff0000", cfg.Theme.ZeroFg)
}

func TestLoad_UnchangedFlagDoesNotOverrideFile(t *testing.T) {
	configPath := setupTestConfigs(t)
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "covlens.yaml"), []byte("log_level: debug\n"), 0644))

	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_NoColor(t *testing.T) {
	setupTestConfigs(t)

	cfg, err := Load("", newFlags(t, "--no-color"))
	require.NoError(t, err)
	assert.False(t, cfg.Color)
}

func TestLoad_DotEnv(t *testing.T) {
	setupTestConfigs(t)
	require.NoError(t, os.WriteFile(".env", []byte("COVLENS_EXPORT=dotenv.json\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("COVLENS_EXPORT") })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "dotenv.json", cfg.Export)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := setupTestConfigs(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llvm_cov: llvm-cov-18\n"), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "llvm-cov-18", cfg.LLVMCov)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	setupTestConfigs(t)

	_, err := Load("does-not-exist.yaml", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	configPath := setupTestConfigs(t)

	malformedContent := "export: test\n  log_level: oops" // Bad indentation
	require.NoError(t, os.WriteFile(filepath.Join(configPath, "covlens.yaml"), []byte(malformedContent), 0644))

	_, err := Load("", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		LogLevel:  "chatty",
		CacheSize: -1,
		Theme: Theme{
			CountFg:     "#zzzzzz",
			ZeroFg:      "196",
			UncoveredBg: "300",
			BorderFg:    "#abc",
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown log level "chatty"`)
	assert.Contains(t, msg, "cache_size must not be negative")
	assert.Contains(t, msg, `theme.count_fg: invalid colour "#zzzzzz"`)
	assert.Contains(t, msg, `theme.uncovered_bg: invalid colour "300"`)
	assert.NotContains(t, msg, "theme.zero_fg")
	assert.NotContains(t, msg, "theme.border_fg")
}

func TestRequireExport(t *testing.T) {
	_, err := (&Config{}).RequireExport()
	assert.ErrorContains(t, err, "COVLENS_EXPORT")

	path, err := (&Config{Export: "cov.json"}).RequireExport()
	require.NoError(t, err)
	assert.Equal(t, "cov.json", path)
}
