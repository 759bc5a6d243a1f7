package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Server  ServerConfig
	Grok    GrokConfig
	Whisper WhisperConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

// GrokConfig holds settings for the xAI chat-completions API.
type GrokConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

// WhisperConfig holds settings for the OpenAI audio transcription API.
type WhisperConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			// Port 5000 is often taken by macOS AirPlay Receiver.
			Port: 5001,
		},
		Grok: GrokConfig{
			BaseURL: "https://api.x.ai/v1",
			Model:   "grok-4-0709",
		},
		Whisper: WhisperConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "whisper-1",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: ai.humanintuition.insight)
// and secrets fall back to macOS Keychain. On Linux the backend is a JSON
// file at $XDG_CONFIG_HOME/insight/config.json and secrets come from a
// secrets file or environment variables.
//
// Environment variables (INSIGHT_*) override backend values on all
// platforms; the bare XAI_API_KEY and OPENAI_API_KEY forms are honored too.
//
// Load does not require any API key to be present: commands declare what
// they need via RequireGrokKey/RequireWhisperKey.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for API keys still empty after env.
	if cfg.Grok.APIKey == "" {
		if key, err := kc.Get("insight", "xai_api_key"); err == nil && key != "" {
			cfg.Grok.APIKey = key
		}
	}
	if cfg.Whisper.APIKey == "" {
		if key, err := kc.Get("insight", "openai_api_key"); err == nil && key != "" {
			cfg.Whisper.APIKey = key
		}
	}

	return cfg, nil
}

// RequireGrokKey returns an error when no xAI API key is configured.
func (c Config) RequireGrokKey() error {
	if c.Grok.APIKey == "" {
		return fmt.Errorf("missing required config: xAI API key. Set it via environment variable XAI_API_KEY%s", apiKeyHint("xai_api_key"))
	}
	return nil
}

// RequireWhisperKey returns an error when no OpenAI API key is configured.
// Audio transcription is the only operation that needs it.
func (c Config) RequireWhisperKey() error {
	if c.Whisper.APIKey == "" {
		return fmt.Errorf("missing required config: OpenAI API key for transcription. Set it via environment variable OPENAI_API_KEY%s", apiKeyHint("openai_api_key"))
	}
	return nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
