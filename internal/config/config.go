// Package config carrega a configuração do gateway em camadas: defaults do
// struct, arquivo YAML opcional (CONFIG_PATH) e variáveis de ambiente, nessa
// ordem de prioridade crescente. Um .env no diretório atual é lido antes.
package config

import (
	"slices"
	"time"

	"admission-gateway/middleware/admission/infra"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Admission AdmissionConfig `koanf:"admission"`
	Throttle  ThrottleConfig  `koanf:"throttle"`
	Stats     StatsConfig     `koanf:"stats"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	ListenAddr  string `koanf:"listen_addr" validate:"required"`
	UpstreamURL string `koanf:"upstream_url" validate:"required,url"`
}

// AdmissionConfig usa números simples (segundos, minutos, ms) como nas
// variáveis ADMISSION_*; os métodos convertem para time.Duration.
type AdmissionConfig struct {
	GlobalMaxRequests          int      `koanf:"global_max_requests" validate:"gt=0"`
	GlobalWindowSeconds        int      `koanf:"global_window_seconds" validate:"gt=0"`
	BlockDurationMinutes       int      `koanf:"block_duration_minutes" validate:"gt=0"`
	MaxFailures                int      `koanf:"max_failures" validate:"gt=0"`
	MaxPathDiversity           int      `koanf:"max_path_diversity" validate:"gt=0"`
	TimingWindowSeconds        int      `koanf:"timing_window_seconds" validate:"gt=0"`
	MinRequestIntervalMS       int      `koanf:"min_request_interval_ms" validate:"gte=0"`
	MaintenanceIntervalSeconds int      `koanf:"maintenance_interval_seconds" validate:"gt=0"`
	TrustRemoteAddr            bool     `koanf:"trust_remote_addr"`
	Whitelist                  []string `koanf:"whitelist" validate:"dive,cidr"`
}

func (a AdmissionConfig) GlobalWindow() time.Duration {
	return time.Duration(a.GlobalWindowSeconds) * time.Second
}

func (a AdmissionConfig) BlockDuration() time.Duration {
	return time.Duration(a.BlockDurationMinutes) * time.Minute
}

func (a AdmissionConfig) MaintenanceInterval() time.Duration {
	return time.Duration(a.MaintenanceIntervalSeconds) * time.Second
}

func (a AdmissionConfig) Detector() infra.DetectorConfig {
	return infra.DetectorConfig{
		MaxFailures:        a.MaxFailures,
		MaxPathDiversity:   a.MaxPathDiversity,
		TimingWindow:       time.Duration(a.TimingWindowSeconds) * time.Second,
		MinRequestInterval: time.Duration(a.MinRequestIntervalMS) * time.Millisecond,
	}
}

// ThrottleConfig controla o token bucket por cliente. Desligado por padrão.
type ThrottleConfig struct {
	Enabled      bool          `koanf:"enabled"`
	RPS          float64       `koanf:"rps" validate:"gt=0"`
	Burst        int           `koanf:"burst" validate:"gt=0"`
	RetryAfter   time.Duration `koanf:"retry_after" validate:"gte=0"`
	IdleTTL      time.Duration `koanf:"idle_ttl" validate:"gte=0"`
	CleanupEvery time.Duration `koanf:"cleanup_every" validate:"gte=0"`
}

type StatsConfig struct {
	TrackClients bool `koanf:"track_clients"`

	RedisEnabled  bool          `koanf:"redis_enabled"`
	RedisAddr     string        `koanf:"redis_addr" validate:"required_if=RedisEnabled true"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"gte=0"`
	Prefix        string        `koanf:"prefix"`
	TTL           time.Duration `koanf:"ttl" validate:"gte=0"`
	Bucket        string        `koanf:"bucket" validate:"omitempty,oneof=minute none"`
}

type LoggingConfig struct {
	// Level: debug, info, warn, error.
	Level string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`
	// Format: json (produção) ou console (desenvolvimento).
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Admission: AdmissionConfig{
			GlobalMaxRequests:          1000,
			GlobalWindowSeconds:        10,
			BlockDurationMinutes:       30,
			MaxFailures:                10,
			MaxPathDiversity:           20,
			TimingWindowSeconds:        60,
			MinRequestIntervalMS:       50,
			MaintenanceIntervalSeconds: 60,
			TrustRemoteAddr:            false,
			Whitelist:                  slices.Clone(infra.DefaultWhitelistCIDRs),
		},
		Throttle: ThrottleConfig{
			Enabled:      false,
			RPS:          10,
			Burst:        20,
			RetryAfter:   1 * time.Second,
			IdleTTL:      10 * time.Minute,
			CleanupEvery: 1 * time.Minute,
		},
		Stats: StatsConfig{
			Prefix: "admission:stats",
			TTL:    24 * time.Hour,
			Bucket: "minute",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
