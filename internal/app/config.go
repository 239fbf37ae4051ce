package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"wconnect/internal/domain"
	"wconnect/internal/relay"
	"wconnect/internal/store"
)

const (
	// EnvPrefix prefixes every environment override, e.g. WCONNECT_BRIDGE.
	EnvPrefix = "WCONNECT"

	configName = "config"
	configType = "toml"

	DefaultBridge        = "https://bridge.walletconnect.org"
	DefaultProbeInterval = 15 * time.Second
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string `mapstructure:"home"`
	Bridge     string `mapstructure:"bridge"`
	StorageID  string `mapstructure:"storage_id"`
	Passphrase string `mapstructure:"passphrase"`
	// Ephemeral keeps sessions in memory only.
	Ephemeral bool `mapstructure:"ephemeral"`

	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`

	CallTimeout time.Duration `mapstructure:"call_timeout"`
	// ProbeInterval is how often the bridge host is probed to detect the
	// network coming back. Zero disables probing.
	ProbeInterval time.Duration `mapstructure:"probe_interval"`

	Client         ClientConfig        `mapstructure:"client"`
	Push           PushConfig          `mapstructure:"push"`
	Backoff        relay.BackoffConfig `mapstructure:"backoff"`
	SigningMethods []string            `mapstructure:"signing_methods"`

	HTTP *http.Client `mapstructure:"-"` // optional; defaults to http.DefaultClient
}

// ClientConfig is the metadata announced to peers.
type ClientConfig struct {
	Name        string   `mapstructure:"name" toml:"name"`
	Description string   `mapstructure:"description" toml:"description"`
	URL         string   `mapstructure:"url" toml:"url"`
	Icons       []string `mapstructure:"icons" toml:"icons"`
}

// Meta returns c as peer metadata.
func (c ClientConfig) Meta() *domain.ClientMeta {
	return &domain.ClientMeta{
		Name:        c.Name,
		Description: c.Description,
		URL:         c.URL,
		Icons:       append([]string{}, c.Icons...),
	}
}

// PushConfig registers the client with a push server. An empty URL
// disables push.
type PushConfig struct {
	URL      string `mapstructure:"url" toml:"url"`
	Type     string `mapstructure:"type" toml:"type"`
	Token    string `mapstructure:"token" toml:"token"`
	PeerMeta bool   `mapstructure:"peer_meta" toml:"peer_meta"`
	Language string `mapstructure:"language" toml:"language"`
}

// DefaultHome is ~/.wconnect.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(dir, ".wconnect"), nil
}

// SetDefaults registers every key with its default so environment
// variables and the config file can override it.
func SetDefaults(v *viper.Viper, home string) {
	backoff := relay.DefaultBackoff()
	v.SetDefault("home", home)
	v.SetDefault("bridge", DefaultBridge)
	v.SetDefault("storage_id", store.DefaultStorageKey)
	v.SetDefault("passphrase", "")
	v.SetDefault("ephemeral", false)
	v.SetDefault("env", "")
	v.SetDefault("host", "")
	v.SetDefault("call_timeout", 5*time.Minute)
	v.SetDefault("probe_interval", DefaultProbeInterval)
	v.SetDefault("client.name", "wconnect")
	v.SetDefault("client.description", "WalletConnect command line client")
	v.SetDefault("client.url", "https://github.com/wconnect")
	v.SetDefault("client.icons", []string{})
	v.SetDefault("push.url", "")
	v.SetDefault("push.type", "")
	v.SetDefault("push.token", "")
	v.SetDefault("push.peer_meta", false)
	v.SetDefault("push.language", "")
	v.SetDefault("backoff.initial_delay", backoff.InitialDelay)
	v.SetDefault("backoff.multiplier", backoff.Multiplier)
	v.SetDefault("backoff.max_delay", backoff.MaxDelay)
	v.SetDefault("backoff.jitter", backoff.Jitter)
	v.SetDefault("signing_methods", []string{})
}

// BindEnv makes WCONNECT_<KEY> override every key, with dots and dashes
// mapped to underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// LoadConfig reads <home>/config.toml, when present, over the defaults
// already set on v and decodes the result.
func LoadConfig(v *viper.Viper) (Config, error) {
	home := v.GetString("home")
	if v.ConfigFileUsed() == "" && home != "" {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Home == "" {
		return Config{}, errors.New("config: home directory is empty")
	}
	return cfg, nil
}

// ConfigPath is where LoadConfig looks for the config file.
func ConfigPath(home string) string {
	return filepath.Join(home, configName+"."+configType)
}

// fileConfig is the on-disk layout written by WriteConfig. Durations are
// strings so the file stays readable.
type fileConfig struct {
	Bridge         string       `toml:"bridge"`
	StorageID      string       `toml:"storage_id"`
	Ephemeral      bool         `toml:"ephemeral"`
	Env            string       `toml:"env"`
	Host           string       `toml:"host"`
	CallTimeout    string       `toml:"call_timeout"`
	ProbeInterval  string       `toml:"probe_interval"`
	SigningMethods []string     `toml:"signing_methods"`
	Client         ClientConfig `toml:"client"`
	Push           PushConfig   `toml:"push"`
	Backoff        fileBackoff  `toml:"backoff"`
}

type fileBackoff struct {
	InitialDelay string  `toml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier"`
	MaxDelay     string  `toml:"max_delay"`
	Jitter       bool    `toml:"jitter"`
}

// EncodeConfig renders cfg as TOML. The passphrase is never written.
func EncodeConfig(cfg Config) ([]byte, error) {
	return toml.Marshal(fileConfig{
		Bridge:         cfg.Bridge,
		StorageID:      cfg.StorageID,
		Ephemeral:      cfg.Ephemeral,
		Env:            cfg.Env,
		Host:           cfg.Host,
		CallTimeout:    cfg.CallTimeout.String(),
		ProbeInterval:  cfg.ProbeInterval.String(),
		SigningMethods: append([]string{}, cfg.SigningMethods...),
		Client:         cfg.Client,
		Push:           cfg.Push,
		Backoff: fileBackoff{
			InitialDelay: cfg.Backoff.InitialDelay.String(),
			Multiplier:   cfg.Backoff.Multiplier,
			MaxDelay:     cfg.Backoff.MaxDelay.String(),
			Jitter:       cfg.Backoff.Jitter,
		},
	})
}

// WriteConfig writes cfg to <home>/config.toml. An existing file is kept
// unless force is set.
func WriteConfig(cfg Config, force bool) (string, error) {
	path := ConfigPath(cfg.Home)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := EncodeConfig(cfg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
