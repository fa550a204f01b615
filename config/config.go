package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// CONFIGURATION — env > config file > defaults
// ============================================================================

// Config holds everything the server and CLI need.
type Config struct {
	GeminiAPIKey   string `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiModel    string `mapstructure:"gemini_model" yaml:"gemini_model"`
	GeminiEndpoint string `mapstructure:"gemini_endpoint" yaml:"gemini_endpoint"`
	ListenAddr     string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Load reads configuration from a .env file (if present), the environment,
// and an optional yaml config file. Environment variables use the
// CONTACTLENS_ prefix; GEMINI_API_KEY is also honored directly since that
// is what the Gemini tooling ecosystem exports.
func Load(cfgFile string) (*Config, error) {
	// A missing .env is fine; it only exists in dev setups.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CONTACTLENS")
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can bind it.
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("gemini_endpoint", "")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("max_upload_bytes", int64(16<<20))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".contactlens"))
		}
		v.AddConfigPath(".")
		// Missing default config is not an error.
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

// Save writes the configuration to cfgFile, or to
// ~/.contactlens/config.yaml when cfgFile is empty.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".contactlens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
