package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. UNIKIT_NOTES_BASE_URL
const EnvPrefix = "UNIKIT"

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Notes   NotesConfig   `mapstructure:"notes"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Share   ShareConfig   `mapstructure:"share"`
}

type StorageConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type NotesConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Rate        float64       `mapstructure:"rate"`
	Concurrency int           `mapstructure:"concurrency"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type ShareConfig struct {
	Driver string      `mapstructure:"driver"`
	Dir    string      `mapstructure:"dir"`
	Minio  MinioConfig `mapstructure:"minio"`
}

type MinioConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	Region    string        `mapstructure:"region"`
	Secure    bool          `mapstructure:"secure"`
	Expiry    time.Duration `mapstructure:"expiry"`
}

// Dir is where unikit keeps its files by default (~/.unikit)
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".unikit")
}

// every key needs a default so AutomaticEnv can override it during Unmarshal
func setDefaults(v *viper.Viper) {
	dir := Dir()
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", filepath.Join(dir, "unikit.db"))
	v.SetDefault("storage.redis.addr", "127.0.0.1:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "unikit")

	v.SetDefault("notes.base_url", "http://localhost:3000")
	v.SetDefault("notes.timeout", 30*time.Second)
	v.SetDefault("notes.rate", 5.0)
	v.SetDefault("notes.concurrency", 4)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("share.driver", "local")
	v.SetDefault("share.dir", filepath.Join(dir, "shared"))
	v.SetDefault("share.minio.endpoint", "")
	v.SetDefault("share.minio.access_key", "")
	v.SetDefault("share.minio.secret_key", "")
	v.SetDefault("share.minio.bucket", "unikit-reports")
	v.SetDefault("share.minio.region", "us-east-1")
	v.SetDefault("share.minio.secure", false)
	v.SetDefault("share.minio.expiry", 24*time.Hour)
}

// Load reads configuration from, in increasing priority: built-in defaults,
// a unikit.yaml found in path (or path itself when it names a file), a .env
// file next to it, and UNIKIT_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	dir := path
	if path == "" {
		dir = Dir()
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v.SetConfigFile(path)
		dir = filepath.Dir(path)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("unikit")
		v.SetConfigType("yaml")
	}

	// load .env if it exists (ignore if it does not)
	dotEnv := filepath.Join(dir, ".env")
	if _, err := os.Stat(dotEnv); err == nil {
		if err := godotenv.Load(dotEnv); err != nil {
			return nil, fmt.Errorf("load %s: %w", dotEnv, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations that cannot work
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver must be sqlite or redis, got %q", c.Storage.Driver)
	}

	switch c.Share.Driver {
	case "local":
	case "minio":
		if c.Share.Minio.Endpoint == "" || c.Share.Minio.Bucket == "" {
			return errors.New("share.minio.endpoint and share.minio.bucket are required for the minio driver")
		}
	default:
		return fmt.Errorf("share.driver must be local or minio, got %q", c.Share.Driver)
	}

	if c.Notes.Concurrency <= 0 {
		return fmt.Errorf("notes.concurrency must be positive, got %d", c.Notes.Concurrency)
	}
	if c.Notes.Rate <= 0 {
		return fmt.Errorf("notes.rate must be positive, got %g", c.Notes.Rate)
	}
	return nil
}
