package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nova-webgames/arena/internal/game"
	"github.com/nova-webgames/arena/pkg/core"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"game": { "killValue": 75, "weapon": { "maxAmmo": 12 } },
		"storage": { "type": "sqlite", "sqlite": { "path": "/tmp/a.db" } }
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 75, viper.GetInt("game.killValue"))
	assert.Equal(t, 12, viper.GetInt("game.weapon.maxAmmo"))
	assert.Equal(t, 25, viper.GetInt("game.weapon.damage"), "sibling keys keep their defaults")
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
	assert.Equal(t, "/tmp/a.db", viper.GetString("storage.sqlite.path"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", GetString("logLevel"))
	assert.Equal(t, "./arenalogs", GetString("logsDir"))
	assert.Equal(t, 50, GetInt("game.killValue"))
	assert.Equal(t, 100, GetInt("game.playerMaxHealth"))
	assert.Equal(t, "memory", GetString("storage.type"))
	assert.Equal(t, "http://localhost:8000", GetString("api.serverUrl"))
	assert.False(t, GetBool("api.enabled"))
	assert.False(t, GetBool("influx.enabled"))
	assert.False(t, GetBool("graylog.enabled"))
	assert.False(t, GetBool("otel.enabled"))
	assert.Equal(t, "localhost:12201", GetString("graylog.address"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	assert.Error(t, err)
	assert.Equal(t, "info", GetString("logLevel"), "defaults survive a missing file")
}

func TestLoad_InvalidJSON(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{ not json`))
	assert.Error(t, err)
}

func TestBindFlags_OverridesFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{ "logLevel": "warn" }`)
	require.NoError(t, Load(dir))

	fs := pflag.NewFlagSet("arena-sim", pflag.ContinueOnError)
	fs.String("logLevel", "info", "")
	fs.Int("game.killValue", 50, "")
	require.NoError(t, fs.Parse([]string{"--logLevel=debug"}))
	require.NoError(t, BindFlags(fs))

	assert.Equal(t, "debug", GetString("logLevel"), "set flag wins")
	assert.Equal(t, 50, GetInt("game.killValue"), "unset flag falls back to its default")
}

func TestGetGameConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg, err := GetGameConfig()
	require.NoError(t, err)

	want := game.DefaultConfig()
	assert.Equal(t, want.KillValue, cfg.KillValue)
	assert.Equal(t, want.PlayerMaxHealth, cfg.PlayerMaxHealth)
	assert.Equal(t, want.PlayerMaxArmor, cfg.PlayerMaxArmor)
	assert.InDelta(t, want.SessionTimeout, cfg.SessionTimeout, 1e-9)
	assert.Equal(t, want.Weapon, cfg.Weapon)
	assert.Equal(t, want.Enemy, cfg.Enemy)
	assert.Empty(t, cfg.Waves)
}

func TestGetGameConfig_PatrolAndWaves(t *testing.T) {
	t.Cleanup(viper.Reset)

	wavesPath := filepath.Join(t.TempDir(), "waves.yaml")
	require.NoError(t, os.WriteFile(wavesPath, []byte(`
archetypes:
  brute:
    max_health: 120
    speed: 2
waves:
  - {at: 0, count: 2, origin: {x: 0, y: 0, z: -15}, spacing: 3}
  - {at: 10, archetype: brute, count: 1, origin: {x: 5, y: 0, z: -20}}
scenery:
  - {id: crate-1, position: {x: 2, y: 0, z: -8}, radius: 1}
`), 0644))

	dir := writeConfig(t, `{
		"game": {
			"wavesFile": "`+filepath.ToSlash(wavesPath)+`",
			"enemy": { "patrol": [ {"x": 1, "y": 0, "z": 1}, {"x": -1, "y": 0, "z": 1} ] }
		}
	}`)
	require.NoError(t, Load(dir))

	cfg, err := GetGameConfig()
	require.NoError(t, err)

	assert.Equal(t, []core.Vector3{{X: 1, Z: 1}, {X: -1, Z: 1}}, cfg.Enemy.Patrol)
	require.Len(t, cfg.Waves, 2)
	assert.Equal(t, 2, cfg.Waves[0].Count)
	assert.Equal(t, "brute", cfg.Waves[1].Archetype)
	require.Len(t, cfg.Scenery, 1)
	assert.Equal(t, "crate-1", cfg.Scenery[0].ID)

	brute, ok := cfg.Archetypes["brute"]
	require.True(t, ok)
	assert.Equal(t, 120, brute.MaxHealth)
	assert.InDelta(t, 2.0, brute.Speed, 1e-9)
	assert.Equal(t, cfg.Enemy.AttackDamage, brute.AttackDamage, "unlisted fields come from the base enemy")
}

func TestGetGameConfig_BadWavesFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{ "game": { "wavesFile": "/does/not/exist.yaml" } }`)
	require.NoError(t, Load(dir))

	_, err := GetGameConfig()
	assert.ErrorContains(t, err, "reading waves file")
}

func TestGetStorageConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "postgres",
			"postgres": { "host": "db", "port": "5433", "username": "u", "password": "p", "database": "arena" }
		}
	}`)
	require.NoError(t, Load(dir))

	cfg := GetStorageConfig()
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "./arena.db", cfg.SQLite.Path)
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=arena sslmode=disable", cfg.Postgres.DSN())
}

func TestGetAPIAndAuthConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"api": { "enabled": true, "serverUrl": "https://scores.example", "playerId": "p-7", "timeout": "3s" },
		"auth": { "secretKey": "s3cret", "accessTokenTtl": "15m" }
	}`)
	require.NoError(t, Load(dir))

	api := GetAPIConfig()
	assert.True(t, api.Enabled)
	assert.Equal(t, "https://scores.example", api.ServerURL)
	assert.Equal(t, "p-7", api.PlayerID)
	assert.Equal(t, 3*time.Second, api.Timeout)

	auth := GetAuthConfig()
	assert.Equal(t, "s3cret", auth.SecretKey)
	assert.Equal(t, "arena-sim", auth.Issuer)
	assert.Equal(t, 15*time.Minute, auth.AccessTokenTTL)
}

func TestGetInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "influx": { "enabled": true, "host": "influx" } }`)))

	cfg := GetInfluxConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://influx:8086", cfg.URL())
	assert.Equal(t, "matches", cfg.Bucket)
}

func TestGetOTelConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "otel": { "enabled": true, "batchTimeout": "2s", "endpoint": "collector:4318" } }`)))

	cfg := GetOTelConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "arena-sim", cfg.ServiceName)
	assert.Equal(t, 2*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "collector:4318", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
}

func TestGetGraylogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "graylog": { "enabled": true } }`)))

	cfg := GetGraylogConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "localhost:12201", cfg.Address)
}
