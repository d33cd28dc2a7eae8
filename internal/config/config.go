// Package config manages application configuration using viper.
// It supports configuration from YAML files (.revue.yaml), environment
// variables (REVUE_ prefix), and command-line flags with sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/okabe/revue/internal/git"
)

// Config holds all application configuration values.
// It is populated from config files, environment variables, and flags.
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Run      RunConfig      `mapstructure:"run"`
	Repo     RepoConfig     `mapstructure:"repo"`
	Truncate TruncateConfig `mapstructure:"truncate"`
}

// BackendConfig selects and tunes the AI backend.
type BackendConfig struct {
	Name            string `mapstructure:"name"`             // claude, codex or copilot
	Model           string `mapstructure:"model"`            // backend-specific model name
	Profile         string `mapstructure:"profile"`          // codex profile
	ReasoningEffort string `mapstructure:"reasoning_effort"` // codex reasoning effort
}

// RunConfig controls how an analysis run behaves.
type RunConfig struct {
	Mode    string `mapstructure:"mode"`    // all, review, analyze or priority
	Context bool   `mapstructure:"context"` // give the backend repository access
	TUI     bool   `mapstructure:"tui"`     // show the progress TUI
}

// RepoConfig controls repository lookup.
type RepoConfig struct {
	SearchRoot string `mapstructure:"search_root"` // root for --appid lookup
	CloneDir   string `mapstructure:"clone_dir"`   // destination for URL clones
}

// TruncateConfig bounds the text embedded in prompts.
type TruncateConfig struct {
	NameStatusMaxChars int `mapstructure:"name_status_max_chars"`
	DiffMaxChars       int `mapstructure:"diff_max_chars"`
}

var (
	cfg        Config
	configFile string
)

// Init initializes the configuration system by setting defaults, loading
// config files from current and home directories, and enabling environment
// variable overrides with the REVUE_ prefix.
func Init() {
	setDefaults()
	loadConfigFile()
	loadEnvVars()
}

func setDefaults() {
	viper.SetDefault("backend.name", "claude")
	viper.SetDefault("backend.model", "")
	viper.SetDefault("backend.profile", "")
	viper.SetDefault("backend.reasoning_effort", "")

	viper.SetDefault("run.mode", "all")
	viper.SetDefault("run.context", true)
	viper.SetDefault("run.tui", true)

	viper.SetDefault("repo.search_root", defaultSearchRoot())
	viper.SetDefault("repo.clone_dir", "")

	viper.SetDefault("truncate.name_status_max_chars", git.NameStatusMaxChars)
	viper.SetDefault("truncate.diff_max_chars", git.DiffMaxChars)
}

func defaultSearchRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "repos")
}

func loadConfigFile() {
	viper.SetConfigName(".revue")
	viper.SetConfigType("yaml")

	// Project config first, then the global one.
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err == nil {
		configFile = viper.ConfigFileUsed()
	}
}

func loadEnvVars() {
	viper.SetEnvPrefix("REVUE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// BindFlags binds command-line flags to viper configuration values so that
// flags override config file settings.
func BindFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("backend.name", cmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("backend.model", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("backend.profile", cmd.Flags().Lookup("profile"))
	_ = viper.BindPFlag("backend.reasoning_effort", cmd.Flags().Lookup("reasoning-effort"))
	_ = viper.BindPFlag("run.mode", cmd.Flags().Lookup("mode"))
	_ = viper.BindPFlag("repo.search_root", cmd.Flags().Lookup("search-root"))
	_ = viper.BindPFlag("repo.clone_dir", cmd.Flags().Lookup("clone-dir"))
}

// Get returns the current configuration by unmarshaling all viper values.
// Call this after Init and BindFlags to get the final merged configuration.
func Get() *Config {
	_ = viper.Unmarshal(&cfg)
	return &cfg
}

// GetConfigPath returns the path of the loaded config file, or "" when no
// config file was found.
func GetConfigPath() string {
	return configFile
}

// GetDefaultConfigPath returns the global config file path (~/.revue.yaml).
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".revue.yaml")
}

// WithContext reports whether the backend gets repository access,
// honoring the --no-context flag over the run.context setting.
func WithContext(cmd *cobra.Command) bool {
	noContext, _ := cmd.Flags().GetBool("no-context")
	if noContext {
		return false
	}
	return viper.GetBool("run.context")
}

// TUIEnabled reports whether the progress TUI should run, honoring the
// --no-tui flag over the run.tui setting.
func TUIEnabled(cmd *cobra.Command) bool {
	noTUI, _ := cmd.Flags().GetBool("no-tui")
	if noTUI {
		return false
	}
	return viper.GetBool("run.tui")
}
