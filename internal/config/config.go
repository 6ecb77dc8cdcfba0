package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Payments PaymentsConfig
	Security SecurityConfig
	Storage  StorageConfig
	Email    EmailConfig
	Logging  LoggingConfig
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig represents the OTP/cache store configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PaymentsConfig holds the payment gateway credentials. The key secret is
// also the HMAC key used to verify gateway callbacks.
type PaymentsConfig struct {
	GatewayBaseURL string
	GatewayKeyID   string
	GatewaySecret  string
}

// SecurityConfig holds JWT and admin bootstrap credentials
type SecurityConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// StorageConfig holds object storage settings
type StorageConfig struct {
	Region string
	Bucket string
}

// EmailConfig holds outbound email settings
type EmailConfig struct {
	Sender      string
	SendTimeout time.Duration
}

// LoggingConfig
type LoggingConfig struct {
	Level string
}

// Load builds configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "donation_portal",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Payments: PaymentsConfig{
			GatewayBaseURL: "https://api.razorpay.com/v1",
		},
		Security: SecurityConfig{
			TokenTTL: 30 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			Region: "ap-south-1",
			Bucket: "donation-portal-uploads",
		},
		Email: EmailConfig{
			Sender:      "no-reply@ngoconnect.example.org",
			SendTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	overrideWithEnv(cfg)

	if cfg.Security.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if cfg.Payments.GatewaySecret == "" {
		return nil, fmt.Errorf("config: PAYMENT_GATEWAY_SECRET is required")
	}

	return cfg, nil
}

func overrideWithEnv(cfg *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		cfg.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Redis.DB = n
		}
	}
	if baseURL := os.Getenv("PAYMENT_GATEWAY_URL"); baseURL != "" {
		cfg.Payments.GatewayBaseURL = baseURL
	}
	if keyID := os.Getenv("PAYMENT_GATEWAY_KEY_ID"); keyID != "" {
		cfg.Payments.GatewayKeyID = keyID
	}
	if secret := os.Getenv("PAYMENT_GATEWAY_SECRET"); secret != "" {
		cfg.Payments.GatewaySecret = secret
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Security.JWTSecret = secret
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		cfg.Security.AdminEmail = email
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		cfg.Security.AdminPassword = pass
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.Storage.Region = region
	}
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		cfg.Storage.Bucket = bucket
	}
	if sender := os.Getenv("EMAIL_SENDER"); sender != "" {
		cfg.Email.Sender = sender
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
