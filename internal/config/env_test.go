package config

import (
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ADDR", "TOKEN_TTL", "MIN_PASSWORD_LENGTH", "CORS_ALLOWED_ORIGINS", "PROFILE_BACKEND", "AGENT_NAME", "NODE_WIDTH"} {
		t.Setenv(k, "")
	}

	env := LoadEnv()
	if env.AppAddr != ":8080" {
		t.Fatalf("unexpected addr %q", env.AppAddr)
	}
	if env.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl %v", env.TokenTTL)
	}
	if env.MinPasswordLength != 6 {
		t.Fatalf("unexpected min password length %d", env.MinPasswordLength)
	}
	if env.ProfileBackend != "mysql" || env.AgentName != "my_agent" {
		t.Fatalf("unexpected backend/agent %q/%q", env.ProfileBackend, env.AgentName)
	}
	if env.NodeWidth != 170 {
		t.Fatalf("unexpected node width %v", env.NodeWidth)
	}
	if len(env.CORSAllowedOrigins) != len(defaultCORSOrigins) {
		t.Fatalf("expected default origins, got %v", env.CORSAllowedOrigins)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://vacai.app, ,https://admin.vacai.app")
	t.Setenv("PROFILE_BACKEND", "Mongo")
	t.Setenv("NODE_WIDTH", "-3")
	t.Setenv("LOG_PRETTY", "true")

	env := LoadEnv()
	if env.AppAddr != ":9090" || env.TokenTTL != 2*time.Hour {
		t.Fatalf("overrides not applied: %+v", env)
	}
	if len(env.CORSAllowedOrigins) != 2 || env.CORSAllowedOrigins[1] != "https://admin.vacai.app" {
		t.Fatalf("unexpected origins %v", env.CORSAllowedOrigins)
	}
	if env.ProfileBackend != "mongo" {
		t.Fatalf("backend should be lower-cased, got %q", env.ProfileBackend)
	}
	if env.NodeWidth != 170 {
		t.Fatalf("non-positive width should fall back, got %v", env.NodeWidth)
	}
	if !env.LogPretty {
		t.Fatalf("expected pretty logs")
	}
}

func TestCheckSecrets(t *testing.T) {
	dev := Env{JWTSecret: DefaultJWTSecret, GinMode: "debug"}
	if err := dev.CheckSecrets(); err != nil {
		t.Fatalf("default secret should only warn outside release: %v", err)
	}

	release := Env{JWTSecret: DefaultJWTSecret, GinMode: "release"}
	if err := release.CheckSecrets(); err == nil {
		t.Fatalf("expected release mode to reject the default secret")
	}

	release.JWTSecret = "rotated-secret"
	if err := release.CheckSecrets(); err != nil {
		t.Fatalf("custom secret should pass: %v", err)
	}
}

func TestLoadEnvLayoutStyle(t *testing.T) {
	t.Setenv("LAYOUT_DIRECTION", "LTR")
	t.Setenv("LAYOUT_CONNECTOR", "Straight")

	env := LoadEnv()
	if env.LayoutDirection != "ltr" || env.LayoutConnector != "straight" {
		t.Fatalf("unexpected layout style %q/%q", env.LayoutDirection, env.LayoutConnector)
	}
}
