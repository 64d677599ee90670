package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type StorageConf struct {
	// Backend is "local" or "s3".
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type AWSConf struct {
	Region     string `mapstructure:"region"`
	Bucket     string `mapstructure:"bucket"`
	Endpoint   string `mapstructure:"endpoint"`
	PublicRead bool   `mapstructure:"public_read"`
}

type UploadConf struct {
	MaxFileSizeMB int `mapstructure:"max_file_size_mb"`
}

type JWTConf struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
	HMACSecret    string `mapstructure:"hmac_secret"`
}

type RedisConf struct {
	Addr              string `mapstructure:"addr"`
	Password          string `mapstructure:"password"`
	DB                int    `mapstructure:"db"`
	RateLimitPerMin   int    `mapstructure:"rate_limit_per_min"`
	RateLimitDisabled bool   `mapstructure:"rate_limit_disabled"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Config struct {
	App     AppConf     `mapstructure:"app"`
	Mongo   MongoConf   `mapstructure:"mongodb"`
	Storage StorageConf `mapstructure:"storage"`
	AWS     AWSConf     `mapstructure:"aws"`
	Upload  UploadConf  `mapstructure:"upload"`
	JWT     JWTConf     `mapstructure:"jwt"`
	Redis   RedisConf   `mapstructure:"redis"`
	Kafka   KafkaConf   `mapstructure:"kafka"`
	Log     struct {
		Development bool `mapstructure:"development"`
	} `mapstructure:"log"`

	// derived
	ShutdownTimeout time.Duration
	MaxFileSize     int64
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "procurement"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "uploads"
	}
	if cfg.Upload.MaxFileSizeMB == 0 {
		cfg.Upload.MaxFileSizeMB = 15
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.MaxFileSize = int64(cfg.Upload.MaxFileSizeMB) * 1024 * 1024
}

// Default returns a config with all defaults applied, for tests and for
// running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
