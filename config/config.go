package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	PayFast  PayFastConfig  `mapstructure:"payfast"`
	Mail     MailConfig     `mapstructure:"mail"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
	// Proxy addresses whose forwarded-for headers may be believed when
	// resolving the client IP. Empty means none: the notification origin
	// check then sees the TCP peer address only.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PayFastConfig holds the PayFast gateway integration settings.
//
// payfast.merchant_id is the single canonical key for the merchant identity
// check; there are no fallback aliases. trusted_ips is the published notify
// source allow-list. skip_origin_check should be true only in sandbox
// deployments, where ITN callbacks arrive from arbitrary addresses.
type PayFastConfig struct {
	MerchantID      string   `mapstructure:"merchant_id"`
	MerchantKey     string   `mapstructure:"merchant_key"`
	Passphrase      string   `mapstructure:"passphrase"`
	ProcessURL      string   `mapstructure:"process_url"`
	ReturnURL       string   `mapstructure:"return_url"`
	CancelURL       string   `mapstructure:"cancel_url"`
	NotifyURL       string   `mapstructure:"notify_url"`
	TrustedIPs      []string `mapstructure:"trusted_ips"`
	SkipOriginCheck bool     `mapstructure:"skip_origin_check"`
}

type MailConfig struct {
	SMTPHost           string   `mapstructure:"smtp_host"`
	SMTPPort           int      `mapstructure:"smtp_port"`
	Username           string   `mapstructure:"username"`
	Password           string   `mapstructure:"password"`
	From               string   `mapstructure:"from"`
	OperatorRecipients []string `mapstructure:"operator_recipients"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: FMP_ (Fit Mom Payments).
// Nested keys use underscore: FMP_DATABASE_HOST, FMP_PAYFAST_MERCHANT_ID, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "fitmom_payments")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("payfast.merchant_id", "")
	v.SetDefault("payfast.merchant_key", "")
	v.SetDefault("payfast.passphrase", "")
	v.SetDefault("payfast.process_url", "https://www.payfast.co.za/eng/process")
	v.SetDefault("payfast.return_url", "")
	v.SetDefault("payfast.cancel_url", "")
	v.SetDefault("payfast.notify_url", "")
	v.SetDefault("payfast.trusted_ips", []string{})
	v.SetDefault("payfast.skip_origin_check", false)
	v.SetDefault("mail.smtp_host", "localhost")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.operator_recipients", []string{})
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "fitmom-payments")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: FMP_PAYFAST_MERCHANT_ID -> payfast.merchant_id
	v.SetEnvPrefix("FMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
