package config

import (
	"fmt"
	"os"
	"strconv"

	"taskapi/internal/version"
)

// Config はアプリケーション設定
type Config struct {
	AppName      string
	Version      string
	Debug        bool
	Host         string
	Port         string
	DatabasePath string
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	cfg := &Config{
		AppName:      getenv("APP_NAME", "Task Management API"),
		Version:      getenv("VERSION", version.Version),
		Host:         getenv("HOST", "0.0.0.0"),
		Port:         getenv("PORT", "8080"),
		DatabasePath: os.Getenv("DATABASE_PATH"),
	}

	if v := os.Getenv("DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}

	return cfg
}

// Addr はサーバーのリッスンアドレスを返す
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
