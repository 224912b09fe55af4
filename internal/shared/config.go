package shared

import (
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Secrets may also be supplied through the environment; [Config.ApplyEnv]
// overlays the variables the deployment platform injects.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Client      ClientConfig      `toml:"client"`
	Credentials CredentialsConfig `toml:"credentials"`
	Security    SecurityConfig    `toml:"security"`
	Database    DatabaseConfig    `toml:"database"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientConfig identifies the front-end that consumes login redirects.
type ClientConfig struct {
	URL string `toml:"url"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// SecurityConfig contains the process-wide secrets for state signing and
// service key validation.
type SecurityConfig struct {
	StateSecret   string `toml:"state_secret"`
	ServiceAPIKey string `toml:"service_api_key"`
}

// DatabaseConfig contains database connection settings for the invocation log.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the configuration.
//
// Environment values win over file values so deployments can keep secrets
// out of config.toml entirely.
func (c *Config) ApplyEnv() {
	c.Credentials.Spotify.ClientID = Getenv("SPOTIFY_CLIENT_ID", c.Credentials.Spotify.ClientID)
	c.Credentials.Spotify.ClientSecret = Getenv("SPOTIFY_CLIENT_SECRET", c.Credentials.Spotify.ClientSecret)
	c.Credentials.Spotify.RedirectURI = Getenv("REDIRECT_URI", c.Credentials.Spotify.RedirectURI)
	c.Client.URL = Getenv("CLIENT_URL", c.Client.URL)
	c.Security.StateSecret = Getenv("STATE_SECRET", c.Security.StateSecret)
	c.Security.ServiceAPIKey = Getenv("SERVER_API_KEY", c.Security.ServiceAPIKey)

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate checks that the configuration carries everything the server
// needs to run. A missing state secret is generated rather than fatal,
// matching how the original deployment behaved.
func (c *Config) Validate() error {
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientID == "your_spotify_client_id" {
		return fmt.Errorf("%w: spotify client_id", ErrInvalidConfig)
	}
	if c.Credentials.Spotify.ClientSecret == "" || c.Credentials.Spotify.ClientSecret == "your_spotify_client_secret" {
		return fmt.Errorf("%w: spotify client_secret", ErrInvalidConfig)
	}
	if c.Credentials.Spotify.RedirectURI == "" {
		return fmt.Errorf("%w: spotify redirect_uri", ErrInvalidConfig)
	}
	if c.Security.ServiceAPIKey == "" {
		return fmt.Errorf("%w: service_api_key", ErrInvalidConfig)
	}

	if c.Security.StateSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("%w: could not generate state secret: %v", ErrInvalidConfig, err)
		}
		c.Security.StateSecret = hex.EncodeToString(buf)
	}

	return nil
}

// Addr returns the host:port pair the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
