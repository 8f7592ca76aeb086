package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/avelesov/urlwords/internal/models"
	"github.com/avelesov/urlwords/internal/tokens"
)

type Config struct {
	SecretKey       string
	Algorithm       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	KafkaAddress string

	ESURL      string
	ESUser     string
	ESPassword string

	ServerHost string
	ServerPort string
	LogLevel   string

	RequestTimeout time.Duration
	MaxContentSize int64
	UserAgent      string
}

// Load reads .env plus the environment and validates everything that
// must be fatal at startup. A process with a weak secret or
// non-positive TTLs never gets to serve a request.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment variables", err)
	}

	cfg := &Config{
		SecretKey:       os.Getenv("SECRET_KEY"),
		Algorithm:       getenv("ALGORITHM", "HS256"),
		AccessTokenTTL:  time.Duration(getint("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(getint("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		BcryptCost:      getint("BCRYPT_COST", 12),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		KafkaAddress: os.Getenv("KAFKA_ADDRESS"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		ServerHost: getenv("SERVER_HOST", "0.0.0.0"),
		ServerPort: getenv("SERVER_PORT", "8000"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		RequestTimeout: time.Duration(getint("REQUEST_TIMEOUT", 10)) * time.Second,
		MaxContentSize: int64(getint("MAX_CONTENT_SIZE", 5*1024*1024)),
		UserAgent:      getenv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required but not set")
	}
	if len(c.SecretKey) < tokens.MinSecretLen {
		return fmt.Errorf("SECRET_KEY must be at least %d bytes long", tokens.MinSecretLen)
	}
	if c.Algorithm != "HS256" {
		return fmt.Errorf("unsupported signing algorithm %q, only HS256 is supported", c.Algorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer")
	}
	if c.RefreshTokenTTL <= 0 {
		return errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be a positive integer")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.MaxContentSize <= 0 {
		return errors.New("MAX_CONTENT_SIZE must be a positive integer")
	}
	return nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.URLAnalysis{}); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("notice: %s=%q is not an integer, using default %d", key, v, def)
		return def
	}
	return n
}
