// Package config builds the relay's immutable startup configuration from the
// environment, an optional .env file and, optionally, SSM Parameter Store.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"chat-relay/internal/integrations/gemini"
	"chat-relay/internal/integrations/huggingface"
	"chat-relay/internal/integrations/openai"
	"chat-relay/internal/integrations/paramstore"
)

const (
	defaultPort         = 5000
	defaultTemplatesDir = "templates"
)

// Provider holds one upstream's key and endpoint.
type Provider struct {
	APIKey string
	URL    string
}

// Enabled reports whether a key is present.
func (p Provider) Enabled() bool {
	return p.APIKey != ""
}

type Config struct {
	Port            int
	TemplatesDir    string
	LogLevel        slog.Level
	UpstreamTimeout time.Duration

	Gemini      Provider
	HuggingFace Provider
	OpenAI      Provider

	ParamPrefix   string
	ExchangeTable string
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// LoadDotEnv seeds the process environment from the given files (".env" when
// none are named). Variables already set win; a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration through getenv (os.Getenv in production).
// Malformed numeric or duration values fall back to their defaults.
func Load(getenv func(string) string) Config {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	return Config{
		Port:            envInt(env, "PORT", defaultPort),
		TemplatesDir:    withDefault(env("TEMPLATES_DIR"), defaultTemplatesDir),
		LogLevel:        envLevel(env, "LOG_LEVEL", slog.LevelInfo),
		UpstreamTimeout: envDuration(env, "UPSTREAM_TIMEOUT", 0),
		Gemini: Provider{
			APIKey: env("GEMINI_API_KEY"),
			URL:    withDefault(env("GEMINI_BASE_URL"), gemini.DefaultBaseURL),
		},
		HuggingFace: Provider{
			APIKey: env("HUGGINGFACE_API_KEY"),
			URL:    withDefault(env("HUGGINGFACE_URL"), huggingface.DefaultURL),
		},
		OpenAI: Provider{
			APIKey: env("OPENAI_API_KEY"),
			URL:    withDefault(env("OPENAI_BASE_URL"), openai.DefaultBaseURL),
		},
		ParamPrefix:   strings.TrimRight(env("PARAM_PREFIX"), "/"),
		ExchangeTable: env("EXCHANGE_TABLE"),
	}
}

// ResolveKeys returns a copy of c in which every empty provider key is looked
// up under ParamPrefix. Parameters that do not exist leave the key empty.
func (c Config) ResolveKeys(ctx context.Context, getter paramstore.Getter) (Config, error) {
	if c.ParamPrefix == "" {
		return c, nil
	}
	if getter == nil {
		return c, errors.New("config: paramstore getter must not be nil")
	}

	targets := []struct {
		name string
		key  *string
	}{
		{"gemini-api-key", &c.Gemini.APIKey},
		{"huggingface-api-key", &c.HuggingFace.APIKey},
		{"openai-api-key", &c.OpenAI.APIKey},
	}
	for _, t := range targets {
		if *t.key != "" {
			continue
		}
		v, err := getter.GetParameter(ctx, c.ParamPrefix+"/"+t.name)
		if errors.Is(err, paramstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return c, fmt.Errorf("config: resolve %s: %w", t.name, err)
		}
		*t.key = strings.TrimSpace(v)
	}
	return c, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func envInt(env func(string) string, key string, def int) int {
	v := env(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(env func(string) string, key string, def time.Duration) time.Duration {
	v := env(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func envLevel(env func(string) string, key string, def slog.Level) slog.Level {
	v := env(key)
	if v == "" {
		return def
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return def
	}
	return level
}
