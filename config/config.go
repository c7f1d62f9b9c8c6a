// ABOUTME: Layered configuration: defaults, optional YAML file, .env file and environment
// ABOUTME: Decides whether the workspace talks to the hosted backend or the local store
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend modes.
const (
	BackendAuto   = "auto"
	BackendRemote = "remote"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	keyProjectID   = "project_id"
	keyPublicKey   = "public_key"
	keyBaseURL     = "base_url"
	keyBackend     = "backend"
	keyDBPath      = "db_path"
	keyLogLevel    = "log_level"
	keyHTTPTimeout = "http_timeout"
	keyPageSize    = "page_size"
	keyListenAddr  = "listen_addr"
)

// Config is the resolved runtime configuration.
type Config struct {
	ProjectID   string
	PublicKey   string
	BaseURL     string
	Backend     string
	DBPath      string
	LogLevel    string
	HTTPTimeout time.Duration
	PageSize    int
	ListenAddr  string

	// File is the config file that was read, if any.
	File string
}

// Options point Load at explicit files. Empty values use the defaults.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Dir is where config.yaml is looked up.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "crmdesk")
}

// DefaultDBPath is the local store location.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "crmdesk", "crmdesk.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyBaseURL, "https://api.apper.io")
	v.SetDefault(keyBackend, BackendAuto)
	v.SetDefault(keyDBPath, DefaultDBPath())
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyHTTPTimeout, 15*time.Second)
	v.SetDefault(keyPageSize, 100)
	v.SetDefault(keyListenAddr, "127.0.0.1:8080")
}

// Load resolves configuration. Precedence, highest first: environment,
// .env file, config file, defaults. Credentials also fall back to the
// VITE_APPER_* names used by the browser build.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CRMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(keyProjectID, "CRMDESK_PROJECT_ID", "VITE_APPER_PROJECT_ID"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(keyPublicKey, "CRMDESK_PUBLIC_KEY", "VITE_APPER_PUBLIC_KEY"); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		ProjectID:   strings.TrimSpace(v.GetString(keyProjectID)),
		PublicKey:   strings.TrimSpace(v.GetString(keyPublicKey)),
		BaseURL:     strings.TrimRight(v.GetString(keyBaseURL), "/"),
		Backend:     strings.ToLower(v.GetString(keyBackend)),
		DBPath:      v.GetString(keyDBPath),
		LogLevel:    v.GetString(keyLogLevel),
		HTTPTimeout: v.GetDuration(keyHTTPTimeout),
		PageSize:    v.GetInt(keyPageSize),
		ListenAddr:  v.GetString(keyListenAddr),
		File:        v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasCredentials reports whether both backend credentials are present.
func (c *Config) HasCredentials() bool {
	return c.ProjectID != "" && c.PublicKey != ""
}

// Mode resolves auto into remote or sqlite.
func (c *Config) Mode() string {
	if c.Backend != BackendAuto {
		return c.Backend
	}
	if c.HasCredentials() {
		return BackendRemote
	}
	return BackendSQLite
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendRemote, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want auto, remote, sqlite or memory)", c.Backend)
	}
	if c.Backend == BackendRemote && !c.HasCredentials() {
		return errors.New("remote backend needs CRMDESK_PROJECT_ID and CRMDESK_PUBLIC_KEY")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}
