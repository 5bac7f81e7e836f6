package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	Environment   string        `yaml:"environment"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`

	UploadDir      string `yaml:"upload_dir"`
	UploadBaseURL  string `yaml:"upload_base_url"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	RateLimit   int           `yaml:"rate_limit"`
	RateWindow  time.Duration `yaml:"rate_window"`
	WorkerCount int           `yaml:"worker_count"`

	Notifier NotifierConfig `yaml:"notifier"`
}

type NotifierConfig struct {
	Sender   string `yaml:"sender"` // "log" or "smtp"
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	From     string `yaml:"from"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("MYCITY_ADDR", ":8080"),
		Environment:    getEnv("MYCITY_ENV", "development"),
		JWTSecret:      getEnv("MYCITY_JWT_SECRET", "supersecretkey"),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("MYCITY_DATABASE_PATH", "mycity.db"),
		TokenDuration:  12 * time.Hour,
		AdminEmail:     getEnv("MYCITY_ADMIN_EMAIL", "admin@mycity.local"),
		AdminPassword:  getEnv("MYCITY_ADMIN_PASSWORD", "AdminPass123!"),
		UploadDir:      getEnv("MYCITY_UPLOAD_DIR", "./uploads"),
		UploadBaseURL:  getEnv("MYCITY_UPLOAD_BASE_URL", ""),
		MaxUploadBytes: getEnvInt64("MYCITY_MAX_UPLOAD_BYTES", 5<<20),
		RateLimit:      100,
		RateWindow:     15 * time.Minute,
		WorkerCount:    2,
		Notifier: NotifierConfig{
			Sender:   getEnv("MYCITY_NOTIFY_SENDER", "log"),
			SMTPHost: getEnv("MYCITY_SMTP_HOST", ""),
			SMTPPort: int(getEnvInt64("MYCITY_SMTP_PORT", 587)),
			From:     getEnv("MYCITY_NOTIFY_FROM", "noreply@mycity.local"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}

	return def
}
