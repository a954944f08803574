package config

import "os"

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Prober   ProberConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

type AuthConfig struct {
	JWTSecret    string
	JWTAccessTTL string
}

type ProberConfig struct {
	BaseURL string
	Timeout string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			AllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),
		},
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			JWTAccessTTL: getenv("JWT_ACCESS_TTL", "15m"),
		},
		Prober: ProberConfig{
			BaseURL: getenv("PROBER_URL", "http://pulsewatch-prober.pulsewatch.svc:8000"),
			Timeout: getenv("PROBER_TIMEOUT", "30s"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
