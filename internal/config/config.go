package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHost   = "http://localhost:11434"
	DefaultModel  = "discord1"
	DefaultPrompt = "Analyze these daily Discord messages and provide insights:"
)

var ErrInvalidHost = errors.New("invalid model server host")

// Config is shared by both binaries. Fields a binary does not use are
// ignored.
type Config struct {
	Host           string        `yaml:"host"`
	Model          string        `yaml:"model"`
	Prompt         string        `yaml:"prompt"`
	Timeout        time.Duration `yaml:"timeout"`
	DiscordWebhook string        `yaml:"discordWebhook"`
	Dev            bool          `yaml:"dev"`
	LogPath        string        `yaml:"logPath"`
}

func Default() Config {
	return Config{
		Host:   DefaultHost,
		Model:  DefaultModel,
		Prompt: DefaultPrompt,
	}
}

// DefaultPath returns <UserConfigDir>/digest/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "digest", "config.yaml")
}

// Load layers defaults, the YAML file at path and the environment (.env in
// the working directory included). A missing file is not an error unless the
// caller named it explicitly.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) || explicit {
				return cfg, err
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("error decoding config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("DIGEST_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("DIGEST_DISCORD_WEBHOOK"); v != "" {
		c.DiscordWebhook = v
	}
}

// Validate fills blanks with defaults and normalizes Host to scheme://host.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}

	host, err := normalizeHost(c.Host)
	if err != nil {
		return err
	}
	c.Host = host
	return nil
}

func normalizeHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return DefaultHost, nil
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	u, err := url.Parse(host)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}
