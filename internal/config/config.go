// Package config loads arena-sim settings from arena.cfg.json, command-line
// flags and an optional YAML wave file.
package config

import (
	"fmt"
	"time"

	"github.com/nova-webgames/arena/internal/combat"
	"github.com/nova-webgames/arena/internal/enemy"
	"github.com/nova-webgames/arena/internal/game"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "arena.cfg.json"

// StorageConfig selects and configures the match-result backend.
type StorageConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// SQLiteConfig holds the SQLite backend settings.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds the Postgres backend connection settings.
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslMode" mapstructure:"sslMode"`
}

// DSN renders the connection string for gorm's postgres driver.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

// APIConfig configures the leaderboard client.
type APIConfig struct {
	Enabled   bool          `json:"enabled" mapstructure:"enabled"`
	ServerURL string        `json:"serverUrl" mapstructure:"serverUrl"`
	PlayerID  string        `json:"playerId" mapstructure:"playerId"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
}

// AuthConfig configures access-token minting for the leaderboard.
type AuthConfig struct {
	SecretKey      string        `json:"secretKey" mapstructure:"secretKey"`
	Issuer         string        `json:"issuer" mapstructure:"issuer"`
	AccessTokenTTL time.Duration `json:"accessTokenTtl" mapstructure:"accessTokenTtl"`
}

// InfluxConfig configures match telemetry.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// URL returns the InfluxDB server address.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// OTelConfig configures the OpenTelemetry log provider.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// GraylogConfig configures the GELF log sink.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// setDefaults registers every default. Game defaults mirror game.DefaultConfig.
func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./arenalogs")

	g := game.DefaultConfig()
	viper.SetDefault("game.killValue", g.KillValue)
	viper.SetDefault("game.playerMaxHealth", g.PlayerMaxHealth)
	viper.SetDefault("game.playerMaxArmor", g.PlayerMaxArmor)
	viper.SetDefault("game.sceneryBonus", g.SceneryBonus)
	viper.SetDefault("game.sessionTimeout", g.SessionTimeout)
	viper.SetDefault("game.wavesFile", "")

	w := combat.DefaultWeapon()
	viper.SetDefault("game.weapon.name", w.Name)
	viper.SetDefault("game.weapon.damage", w.Damage)
	viper.SetDefault("game.weapon.maxAmmo", w.MaxAmmo)
	viper.SetDefault("game.weapon.range", w.Range)
	viper.SetDefault("game.weapon.fireInterval", w.FireInterval)
	viper.SetDefault("game.weapon.reloadDuration", w.ReloadDuration)

	e := g.Enemy
	viper.SetDefault("game.enemy.maxHealth", e.MaxHealth)
	viper.SetDefault("game.enemy.attackDamage", e.AttackDamage)
	viper.SetDefault("game.enemy.scoreValue", e.ScoreValue)
	viper.SetDefault("game.enemy.detectRadius", e.DetectRadius)
	viper.SetDefault("game.enemy.loseRadius", e.LoseRadius)
	viper.SetDefault("game.enemy.attackRadius", e.AttackRadius)
	viper.SetDefault("game.enemy.hitRadius", e.HitRadius)
	viper.SetDefault("game.enemy.speed", e.Speed)
	viper.SetDefault("game.enemy.attackCooldown", e.AttackCooldown)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.sqlite.path", "./arena.db")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "arena")
	viper.SetDefault("storage.postgres.sslMode", "disable")

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.serverUrl", "http://localhost:8000")
	viper.SetDefault("api.playerId", "")
	viper.SetDefault("api.timeout", "10s")

	viper.SetDefault("auth.secretKey", "")
	viper.SetDefault("auth.issuer", "arena-sim")
	viper.SetDefault("auth.accessTokenTtl", "24h")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "arena")
	viper.SetDefault("influx.bucket", "matches")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "arena-sim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load sets default values and reads arena.cfg.json from configDir. The
// defaults stay in effect when the file cannot be read.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// BindFlags binds command-line flags into viper so that a set flag overrides
// the file. Flag names use the config key, e.g. "game.killValue".
func BindFlags(fs *pflag.FlagSet) error {
	if err := viper.BindPFlags(fs); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetGameConfig returns the match tuning, merged with the wave file when
// game.wavesFile is set.
func GetGameConfig() (game.Config, error) {
	cfg := game.Config{
		KillValue:       viper.GetInt("game.killValue"),
		PlayerMaxHealth: viper.GetInt("game.playerMaxHealth"),
		PlayerMaxArmor:  viper.GetInt("game.playerMaxArmor"),
		SceneryBonus:    viper.GetInt("game.sceneryBonus"),
		SessionTimeout:  viper.GetFloat64("game.sessionTimeout"),
		Weapon: combat.WeaponConfig{
			Name:           viper.GetString("game.weapon.name"),
			Damage:         viper.GetInt("game.weapon.damage"),
			MaxAmmo:        viper.GetInt("game.weapon.maxAmmo"),
			Range:          viper.GetFloat64("game.weapon.range"),
			FireInterval:   viper.GetFloat64("game.weapon.fireInterval"),
			ReloadDuration: viper.GetFloat64("game.weapon.reloadDuration"),
		},
		Enemy: enemy.Config{
			MaxHealth:      viper.GetInt("game.enemy.maxHealth"),
			AttackDamage:   viper.GetInt("game.enemy.attackDamage"),
			ScoreValue:     viper.GetInt("game.enemy.scoreValue"),
			DetectRadius:   viper.GetFloat64("game.enemy.detectRadius"),
			LoseRadius:     viper.GetFloat64("game.enemy.loseRadius"),
			AttackRadius:   viper.GetFloat64("game.enemy.attackRadius"),
			HitRadius:      viper.GetFloat64("game.enemy.hitRadius"),
			Speed:          viper.GetFloat64("game.enemy.speed"),
			AttackCooldown: viper.GetFloat64("game.enemy.attackCooldown"),
		},
	}
	if viper.IsSet("game.enemy.patrol") {
		if err := viper.UnmarshalKey("game.enemy.patrol", &cfg.Enemy.Patrol); err != nil {
			return game.Config{}, fmt.Errorf("decoding patrol route: %w", err)
		}
	}

	if path := viper.GetString("game.wavesFile"); path != "" {
		wf, err := LoadWaves(path)
		if err != nil {
			return game.Config{}, err
		}
		if err := wf.Apply(&cfg); err != nil {
			return game.Config{}, err
		}
	}
	return cfg, nil
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
			SSLMode:  viper.GetString("storage.postgres.sslMode"),
		},
	}
}

// GetAPIConfig returns the leaderboard client settings.
func GetAPIConfig() APIConfig {
	return APIConfig{
		Enabled:   viper.GetBool("api.enabled"),
		ServerURL: viper.GetString("api.serverUrl"),
		PlayerID:  viper.GetString("api.playerId"),
		Timeout:   viper.GetDuration("api.timeout"),
	}
}

// GetAuthConfig returns the access-token settings.
func GetAuthConfig() AuthConfig {
	return AuthConfig{
		SecretKey:      viper.GetString("auth.secretKey"),
		Issuer:         viper.GetString("auth.issuer"),
		AccessTokenTTL: viper.GetDuration("auth.accessTokenTtl"),
	}
}

// GetInfluxConfig returns the telemetry settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}
