// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/shareconnect/internal/buildinfo"
	"github.com/autobrr/shareconnect/internal/domain"
)

const (
	envPrefix           = "SHARECONNECT__"
	defaultConfigName   = "config.toml"
	defaultProfilesName = "profiles.yaml"
	appDirName          = "shareconnect"
)

var configTemplate = `# config.toml - Auto-generated on first run

# Hostname / IP
# Default: "localhost"
host = "{{ .host }}"

# Port
# Default: 7477
port = {{ .port }}

# Base URL
# Set custom baseUrl eg /shareconnect/ to serve the API behind a reverse proxy
# Optional
#baseUrl = "/shareconnect/"

# Profiles file
# Relative paths resolve against the directory of this file
# Default: "profiles.yaml"
#profilesPath = "profiles.yaml"

# Dispatch timeout in seconds
# 0 leaves dispatch requests without a client-side timeout
# Default: 0
#dispatchTimeout = 0

# Web session URL injection attempts
# 0 retries until the session is closed
# Default: 30
#injectMaxAttempts = 30

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/shareconnect.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "{{ .logLevel }}"

# Allowed CORS origins for the HTTP API
# Optional
#corsAllowedOrigins = ["http://localhost:3000"]

# Metrics
# Serve Prometheus metrics on a separate listener
# Default: false
#metricsEnabled = false
#metricsHost = "127.0.0.1"
#metricsPort = 9074
# Comma separated user:password pairs protecting /metrics
#metricsBasicAuthUsers = ""
`

// AppConfig owns the loaded configuration and the viper instance behind it.
type AppConfig struct {
	Config *domain.Config

	viper      *viper.Viper
	configDir  string
	configPath string

	mu sync.Mutex
}

// New loads configuration from configDirOrPath, which may be a directory or a
// path to a .toml file. An empty value uses the default config directory. A
// missing config file is created from the commented template.
func New(configDirOrPath string) (*AppConfig, error) {
	c := &AppConfig{
		viper:  viper.New(),
		Config: &domain.Config{},
	}

	c.configPath = resolveConfigPath(configDirOrPath)
	c.configDir = filepath.Dir(c.configPath)

	loadDotEnv(c.configDir)

	c.defaults()

	if err := c.writeDefaultConfig(); err != nil {
		return nil, err
	}

	if err := c.load(); err != nil {
		return nil, err
	}

	if err := c.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	c.ApplyLogConfig()

	return c, nil
}

// ConfigPath returns the config.toml in use.
func (c *AppConfig) ConfigPath() string {
	return c.configPath
}

// ConfigDir returns the directory holding config.toml.
func (c *AppConfig) ConfigDir() string {
	return c.configDir
}

// ProfilesPath resolves profilesPath against the config directory.
func (c *AppConfig) ProfilesPath() string {
	p := strings.TrimSpace(c.Config.ProfilesPath)
	if p == "" {
		p = defaultProfilesName
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

// DispatchTimeout returns the configured dispatch timeout; zero means none.
func (c *AppConfig) DispatchTimeout() time.Duration {
	if c.Config.DispatchTimeout <= 0 {
		return 0
	}
	return time.Duration(c.Config.DispatchTimeout) * time.Second
}

func (c *AppConfig) defaults() {
	c.viper.SetDefault("host", "localhost")
	c.viper.SetDefault("port", 7477)
	c.viper.SetDefault("baseUrl", "")
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logPath", "")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("metricsHost", "127.0.0.1")
	c.viper.SetDefault("metricsPort", 9074)
	c.viper.SetDefault("metricsBasicAuthUsers", "")
	c.viper.SetDefault("profilesPath", defaultProfilesName)
	c.viper.SetDefault("dispatchTimeout", 0)
	c.viper.SetDefault("injectMaxAttempts", 30)
	c.viper.SetDefault("corsAllowedOrigins", []string{})
}

var configKeys = []string{
	"host",
	"port",
	"baseUrl",
	"logLevel",
	"logPath",
	"logMaxSize",
	"logMaxBackups",
	"metricsEnabled",
	"metricsHost",
	"metricsPort",
	"metricsBasicAuthUsers",
	"profilesPath",
	"dispatchTimeout",
	"injectMaxAttempts",
	"corsAllowedOrigins",
}

func (c *AppConfig) load() error {
	c.viper.SetConfigFile(c.configPath)
	c.viper.SetConfigType("toml")

	if err := c.viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config %s", c.configPath)
	}

	for _, key := range configKeys {
		if err := c.viper.BindEnv(key, envKey(key)); err != nil {
			return errors.Wrapf(err, "failed to bind env for %s", key)
		}
	}

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}

	c.Config.Version = buildinfo.Version

	return nil
}

func (c *AppConfig) writeDefaultConfig() error {
	if _, err := os.Stat(c.configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat config %s", c.configPath)
	}

	if err := os.MkdirAll(c.configDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create config directory %s", c.configDir)
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse config template")
	}

	host := "localhost"
	if isContainer() {
		host = "0.0.0.0"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"host":     host,
		"port":     7477,
		"logLevel": "INFO",
	}); err != nil {
		return errors.Wrap(err, "failed to render config template")
	}

	if err := os.WriteFile(c.configPath, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write config %s", c.configPath)
	}

	log.Info().Str("path", c.configPath).Msg("Created default config file")
	return nil
}

// ApplyLogConfig configures the global zerolog logger from the loaded config.
func (c *AppConfig) ApplyLogConfig() {
	c.mu.Lock()
	defer c.mu.Unlock()

	zerolog.SetGlobalLevel(parseLevel(c.Config.LogLevel))

	var writer io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if c.Config.LogPath != "" {
		path := c.Config.LogPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.configDir, path)
		}
		writer = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    c.Config.LogMaxSize,
			MaxBackups: c.Config.LogMaxBackups,
		}
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "ERROR":
		return zerolog.ErrorLevel
	case "WARN":
		return zerolog.WarnLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func resolveConfigPath(configDirOrPath string) string {
	if configDirOrPath == "" {
		return filepath.Join(defaultConfigDir(), defaultConfigName)
	}
	if strings.HasSuffix(strings.ToLower(configDirOrPath), ".toml") {
		return configDirOrPath
	}
	return filepath.Join(configDirOrPath, defaultConfigName)
}

// defaultConfigDir honours XDG_CONFIG_HOME. Containers mount /config directly,
// so that path is used as is.
func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if xdg == "/config" {
			return xdg
		}
		return filepath.Join(xdg, appDirName)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		log.Warn().Err(err).Msg("Could not determine user config dir, using working directory")
		return "."
	}
	return filepath.Join(dir, appDirName)
}

// loadDotEnv reads .env from the working directory and the config directory.
// Values already in the environment win.
func loadDotEnv(configDir string) {
	for _, path := range []string{".env", filepath.Join(configDir, ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to load .env file")
		}
	}
}

func isContainer() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// envKey maps a camelCase key to its environment variable, e.g. logLevel to
// SHARECONNECT__LOG_LEVEL.
func envKey(key string) string {
	var b strings.Builder
	b.WriteString(envPrefix)
	for i, r := range key {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

