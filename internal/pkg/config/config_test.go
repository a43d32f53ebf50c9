package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DB_CONNECT":   "mongodb://localhost:27017/auth",
		"TOKEN_SECRET": "s3cret",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL.Std())
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "", cfg.Mongo.Database)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Redis.Timeout.Std())
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window.Std())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_Overrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "8080"
	env["ENV"] = "production"
	env["JWT_EXPIRES_IN"] = "12h"
	env["REDIS_ADDR"] = "redis:6379"
	env["REDIS_PASSWORD"] = "hunter2"
	env["REDIS_DB"] = "2"
	env["REDIS_TIMEOUT"] = "250ms"
	env["RATE_LIMIT_WINDOW"] = "60"

	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL.Std())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.Timeout.Std())
	assert.Equal(t, time.Minute, cfg.RateLimit.Window.Std())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		patch func(map[string]string)
	}{
		{"missing secret", func(m map[string]string) { delete(m, "TOKEN_SECRET") }},
		{"missing db", func(m map[string]string) { delete(m, "DB_CONNECT") }},
		{"blank secret", func(m map[string]string) { m["TOKEN_SECRET"] = "  " }},
		{"bad port", func(m map[string]string) { m["PORT"] = "http" }},
		{"bad ttl", func(m map[string]string) { m["JWT_EXPIRES_IN"] = "soon" }},
		{"bcrypt cost too low", func(m map[string]string) { m["BCRYPT_COST"] = "2" }},
		{"zero rate limit", func(m map[string]string) { m["RATE_LIMIT_MAX"] = "0" }},
		{"negative redis db", func(m map[string]string) { m["REDIS_DB"] = "-1" }},
		{"overflowing ttl", func(m map[string]string) { m["JWT_EXPIRES_IN"] = "106752d" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			tt.patch(env)
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "1w", want: 7 * 24 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: "3600", want: time.Hour},
		{in: " 2h ", want: 2 * time.Hour},
		{in: "", wantErr: true},
		{in: "d", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-1h", wantErr: true},
		{in: "seven days", wantErr: true},
		{in: "-3d", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration_Overflow(t *testing.T) {
	for _, in := range []string{"106752d", "9223372036w", "9223372037", "999999999999999999999d"} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDuration(in)
			require.Error(t, err)
			assert.Zero(t, got)
			assert.NotContains(t, err.Error(), "must be positive")
		})
	}

	got, err := ParseDuration("106751d")
	require.NoError(t, err)
	assert.Equal(t, 106751*24*time.Hour, got)
}
