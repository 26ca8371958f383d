package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://127.0.0.1:8081")

	cfg, err := Load()
	require.NoError(t, err)

	a := cfg.Admission
	require.Equal(t, 1000, a.GlobalMaxRequests)
	require.Equal(t, 10*time.Second, a.GlobalWindow())
	require.Equal(t, 30*time.Minute, a.BlockDuration())
	require.Equal(t, 60*time.Second, a.MaintenanceInterval())
	require.False(t, a.TrustRemoteAddr)

	det := a.Detector()
	require.Equal(t, 10, det.MaxFailures)
	require.Equal(t, 20, det.MaxPathDiversity)
	require.Equal(t, 60*time.Second, det.TimingWindow)
	require.Equal(t, 50*time.Millisecond, det.MinRequestInterval)

	require.False(t, cfg.Throttle.Enabled)
	require.False(t, cfg.Stats.RedisEnabled)
	require.Equal(t, ":8080", cfg.Server.ListenAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "http://127.0.0.1:8081")
	t.Setenv("ADMISSION_GLOBAL_MAX_REQUESTS", "50")
	t.Setenv("ADMISSION_MIN_REQUEST_INTERVAL_MS", "20")
	t.Setenv("ADMISSION_TRUST_REMOTE_ADDR", "true")
	t.Setenv("ADMISSION_WHITELIST", "10.0.0.0/8, 100.64.0.0/10")
	t.Setenv("RATE_ENABLED", "true")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("RETRY_AFTER", "3s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Admission.GlobalMaxRequests)
	require.Equal(t, 20*time.Millisecond, cfg.Admission.Detector().MinRequestInterval)
	require.True(t, cfg.Admission.TrustRemoteAddr)
	require.Equal(t, []string{"10.0.0.0/8", "100.64.0.0/10"}, cfg.Admission.Whitelist)
	require.True(t, cfg.Throttle.Enabled)
	require.Equal(t, 2.5, cfg.Throttle.RPS)
	require.Equal(t, 3*time.Second, cfg.Throttle.RetryAfter)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	yaml := "server:\n  upstream_url: http://upstream:9000\nadmission:\n  max_failures: 4\n  max_path_diversity: 7\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("ADMISSION_MAX_PATH_DIVERSITY", "9")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://upstream:9000", cfg.Server.UpstreamURL)
	require.Equal(t, 4, cfg.Admission.MaxFailures)
	require.Equal(t, 9, cfg.Admission.MaxPathDiversity, "env wins over file")
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing upstream": {},
		"zero max requests": {
			"UPSTREAM_URL":                  "http://127.0.0.1:8081",
			"ADMISSION_GLOBAL_MAX_REQUESTS": "0",
		},
		"redis without addr": {
			"UPSTREAM_URL":        "http://127.0.0.1:8081",
			"STATS_REDIS_ENABLED": "true",
		},
		"bad whitelist": {
			"UPSTREAM_URL":        "http://127.0.0.1:8081",
			"ADMISSION_WHITELIST": "10.0.0.0/8,not-a-cidr",
		},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	require.Equal(t, "admission.max_failures", envTransformFunc("ADMISSION_MAX_FAILURES"))
	require.Equal(t, "throttle.rps", envTransformFunc("RATE_RPS"))
	require.Equal(t, "logging.format", envTransformFunc("LOG_FORMAT"))
	require.Equal(t, "", envTransformFunc("HOME"))
	require.Equal(t, "", envTransformFunc("ADMISSION_"))
}
