package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test, ,https://b.test")
	t.Setenv("CLASSIFIER_TIMEOUT", "2s")
	t.Setenv("TRACKING_RATE_LIMIT", "not-a-number")
	t.Setenv("REPORT_TRANSITION_POLICY", "lifecycle")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("port: got %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.test" {
		t.Fatalf("origins: got %v", cfg.AllowedOrigins)
	}
	if cfg.ClassifierTimeout != 2*time.Second {
		t.Fatalf("timeout: got %v", cfg.ClassifierTimeout)
	}
	if cfg.TrackingRateLimit != 30 {
		t.Fatalf("bad int should fall back to 30, got %d", cfg.TrackingRateLimit)
	}
	if cfg.ReportTransitionPolicy != "lifecycle" {
		t.Fatalf("policy: got %q", cfg.ReportTransitionPolicy)
	}
}

func TestLoadLeavesRedisOffByDefault(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	os.Unsetenv("REDIS_URL")
	if cfg := Load(); cfg.RedisURL != "" {
		t.Fatalf("redis must be opt-in, got %q", cfg.RedisURL)
	}
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cases := []struct {
		env    string
		secret string
		ok     bool
	}{
		{"production", DefaultJWTSecret, false},
		{"production", "", false},
		{"production", "a-real-secret", true},
		{"development", DefaultJWTSecret, true},
	}
	for _, tc := range cases {
		err := (&Config{Env: tc.env, JWTSecret: tc.secret}).Validate()
		if (err == nil) != tc.ok {
			t.Errorf("env=%s secret=%q: unexpected error %v", tc.env, tc.secret, err)
		}
	}
}

func TestParseDurationFallsBack(t *testing.T) {
	if got := parseDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("got %v", got)
	}
}

func TestEnvironmentFlags(t *testing.T) {
	cfg := &Config{Env: "production"}
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Fatal("production flags wrong")
	}
}
