package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	altEnv  string // legacy/unprefixed env name, checked after env
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "INSIGHT_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "grok.base_url", typ: kString, env: "INSIGHT_GROK_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Grok.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Grok.BaseURL },
	},
	{
		key: "grok.model", typ: kString, env: "INSIGHT_GROK_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Grok.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Grok.Model },
	},
	{
		key: "grok.api_key", typ: kString, env: "INSIGHT_XAI_API_KEY", altEnv: "XAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Grok.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Grok.APIKey },
	},
	{
		key: "whisper.base_url", typ: kString, env: "INSIGHT_WHISPER_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Whisper.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Whisper.BaseURL },
	},
	{
		key: "whisper.model", typ: kString, env: "INSIGHT_WHISPER_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Whisper.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Whisper.Model },
	},
	{
		key: "whisper.api_key", typ: kString, env: "INSIGHT_OPENAI_API_KEY", altEnv: "OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Whisper.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Whisper.APIKey },
	},
	{
		key: "storage.data_dir", typ: kString, env: "INSIGHT_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "INSIGHT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" && s.altEnv != "" {
			raw = os.Getenv(s.altEnv)
		}
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
