package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	ServerConfig   ServerConfig   `yaml:"server"`
	StorageConfig  StorageConfig  `yaml:"storage"`
	PostgresConfig PostgresConfig `yaml:"postgres"`
	MySQLConfig    MySQLConfig    `yaml:"mysql"`
	AuthConfig     AuthConfig     `yaml:"auth"`
	LogConfig      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host              string        `yaml:"host" env:"SERVER_HOST"`
	Port              string        `yaml:"port" env:"PORT" env-default:"3000"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr is the listen address. An empty host binds all interfaces.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

type PostgresConfig struct {
	Host     string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string        `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	DBName   string        `yaml:"dbname" env:"POSTGRES_DB" env-default:"tasks"`
	User     string        `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password string        `yaml:"password" env:"POSTGRES_PASSWORD"`
	Timeout  time.Duration `yaml:"timeout" env:"POSTGRES_TIMEOUT" env-default:"10s"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

type MySQLConfig struct {
	DSN string `yaml:"dsn" env:"MYSQL_DSN"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	Operator  string        `yaml:"operator" env:"AUTH_OPERATOR" env-default:"admin"`
	// PasswordHash is a bcrypt hash, see the -hash-password flag.
	PasswordHash string `yaml:"password_hash" env:"AUTH_PASSWORD_HASH"`
}

// Enabled reports whether mutating routes require a bearer token.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Load reads configPath when it exists and the environment otherwise.
// Environment variables always win over file values.
func Load(configPath string) (Config, error) {
	var cfg Config

	var err error
	switch _, statErr := os.Stat(configPath); {
	case statErr == nil:
		err = cleanenv.ReadConfig(configPath, &cfg)
	case errors.Is(statErr, fs.ErrNotExist):
		err = cleanenv.ReadEnv(&cfg)
	default:
		return Config{}, fmt.Errorf("stat config: %w", statErr)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func MustLoad() Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("config not read: %v", err)
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.StorageConfig.Driver {
	case DriverMemory, DriverPostgres:
	case DriverMySQL:
		if c.MySQLConfig.DSN == "" {
			return errors.New("mysql.dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageConfig.Driver)
	}

	if c.ServerConfig.Port == "" {
		return errors.New("server.port is required")
	}

	if c.AuthConfig.Enabled() && c.AuthConfig.PasswordHash == "" {
		return errors.New("auth.password_hash is required when auth.jwt_secret is set")
	}
	return nil
}
