package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar aponta para um arquivo YAML opcional.
const ConfigPathEnvVar = "CONFIG_PATH"

var validate = validator.New()

// Load monta a configuração: defaults -> arquivo -> ambiente.
func Load() (*Config, error) {
	// .env é opcional; ausência não é erro
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitCommaList(k, "admission.whitelist"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// splitCommaList converte "a, b" vindo do ambiente em []string. Valor que
// já é lista (YAML) fica como está.
func splitCommaList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// Nomes herdados do gateway de rate limit continuam valendo.
var envMappings = map[string]string{
	"listen_addr":  "server.listen_addr",
	"upstream_url": "server.upstream_url",

	"rate_enabled":       "throttle.enabled",
	"rate_rps":           "throttle.rps",
	"rate_burst":         "throttle.burst",
	"retry_after":        "throttle.retry_after",
	"rate_idle_ttl":      "throttle.idle_ttl",
	"rate_cleanup_every": "throttle.cleanup_every",

	"stats_track_clients":  "stats.track_clients",
	"stats_redis_enabled":  "stats.redis_enabled",
	"stats_redis_addr":     "stats.redis_addr",
	"stats_redis_password": "stats.redis_password",
	"stats_redis_db":       "stats.redis_db",
	"stats_prefix":         "stats.prefix",
	"stats_ttl":            "stats.ttl",
	"stats_bucket":         "stats.bucket",

	"log_level":  "logging.level",
	"log_format": "logging.format",
}

// envTransformFunc mapeia variáveis de ambiente para caminhos do koanf:
//
//   - ADMISSION_MAX_FAILURES -> admission.max_failures
//   - RATE_RPS -> throttle.rps
//   - LOG_LEVEL -> logging.level
//
// Qualquer outra variável vira "" e é ignorada.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if path, ok := envMappings[key]; ok {
		return path
	}
	if rest, ok := strings.CutPrefix(key, "admission_"); ok && rest != "" {
		return "admission." + rest
	}
	return ""
}
