package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                  int      `yaml:"port"`
	StaticDir             string   `yaml:"static_dir"`
	PublicURL             string   `yaml:"public_url"`
	LogLevel              string   `yaml:"log_level"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
	InboxSize             int      `yaml:"inbox_size"`
	SendBuffer            int      `yaml:"ws_send_buffer"`
	WriteTimeoutSeconds   int      `yaml:"ws_write_timeout_seconds"`
	PongTimeoutSeconds    int      `yaml:"ws_pong_timeout_seconds"`
	MaxMessageBytes       int64    `yaml:"ws_max_message_bytes"`
	QRSize                int      `yaml:"qr_size"`
	ShutdownTimeoutSecond int      `yaml:"shutdown_timeout_seconds"`
}

func Default() Config {
	return Config{
		Port:                  3000,
		StaticDir:             "public",
		LogLevel:              "info",
		InboxSize:             1024,
		SendBuffer:            256,
		WriteTimeoutSeconds:   10,
		PongTimeoutSeconds:    60,
		MaxMessageBytes:       4096,
		QRSize:                256,
		ShutdownTimeoutSecond: 10,
	}
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) WriteTimeout() time.Duration {
	if c.WriteTimeoutSeconds <= 0 {
		return time.Duration(Default().WriteTimeoutSeconds) * time.Second
	}
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

func (c Config) PongTimeout() time.Duration {
	if c.PongTimeoutSeconds <= 0 {
		return time.Duration(Default().PongTimeoutSeconds) * time.Second
	}
	return time.Duration(c.PongTimeoutSeconds) * time.Second
}

// PingInterval keeps pings comfortably inside the pong deadline.
func (c Config) PingInterval() time.Duration {
	return c.PongTimeout() * 9 / 10
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecond) * time.Second
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and
// then environment variables, in that order of precedence.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := LoadFile(path, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if raw := os.Getenv("PORT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Port = value
		}
	}
	if raw := os.Getenv("STATIC_DIR"); raw != "" {
		cfg.StaticDir = raw
	}
	if raw := os.Getenv("PUBLIC_URL"); raw != "" {
		cfg.PublicURL = strings.TrimRight(raw, "/")
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.AllowedOrigins = origins
	}
	if raw := os.Getenv("INBOX_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.InboxSize = value
		}
	}
	if raw := os.Getenv("WS_SEND_BUFFER"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SendBuffer = value
		}
	}
	if raw := os.Getenv("WS_WRITE_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WriteTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("WS_PONG_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PongTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("WS_MAX_MESSAGE_BYTES"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value > 0 {
			cfg.MaxMessageBytes = value
		}
	}
	if raw := os.Getenv("QR_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.QRSize = value
		}
	}
	if raw := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ShutdownTimeoutSecond = value
		}
	}
	return cfg
}
