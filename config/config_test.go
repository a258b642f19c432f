package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-circuit/models"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/circuit")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("CURRENT_SEASON", "2025")
	for _, k := range []string{"SERVER_PORT", "ZONE_CAPACITY", "R2_ACCOUNT_ID"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 4, cfg.ZoneCapacity)
	assert.Equal(t, 2025, cfg.CurrentSeason)
	assert.False(t, cfg.R2Enabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")
	os.Unsetenv("DATABASE_URL")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{ServerPort: 8080, ZoneCapacity: 4, CurrentSeason: 2025, RateLimitRPS: 1, RateLimitBurst: 1}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"port too high", func(c *Config) { c.ServerPort = 70000 }, true},
		{"zone capacity", func(c *Config) { c.ZoneCapacity = 1 }, true},
		{"r2 without bucket", func(c *Config) { c.R2AccountID = "acc"; c.R2AccessKeyID = "id"; c.R2SecretAccessKey = "s" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadPoints_EmbeddedDefault(t *testing.T) {
	table, err := LoadPoints("")
	require.NoError(t, err)
	for _, inst := range models.AllInstances() {
		assert.Contains(t, table.Default, inst)
	}
	assert.Greater(t, table.Default[models.InstanceChampion], table.Default[models.InstanceRunnerUp])

	rules := Rules(nil, table.Default)
	require.Len(t, rules, len(models.AllInstances()))
	assert.Equal(t, models.InstanceChampion, rules[0].Instance)
}

func TestLoadPoints_FileWithCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default:
  champion: 100
categories:
  "Suma 13":
    champion: 150
    zone_eliminated: 5
`), 0o600))

	table, err := LoadPoints(path)
	require.NoError(t, err)
	assert.Equal(t, 150, table.Categories["Suma 13"][models.InstanceChampion])
}

func TestParsePoints_Rejections(t *testing.T) {
	_, err := ParsePoints([]byte("default:\n  winner: 10\n"))
	assert.Error(t, err)

	_, err = ParsePoints([]byte("default:\n  champion: -1\n"))
	assert.Error(t, err)
}
