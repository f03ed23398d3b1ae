// Package config loads application settings from defaults, command-line
// flags, a .env file and environment variables, in that order of
// increasing precedence. It validates the result before use.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service and the terminal
// client.
type Config struct {
	// RunAddr is the address and port the HTTP server listens on.
	RunAddr string `env:"SERVER_ADDRESS" validate:"hostname_port"`

	// LogLevel is the minimal level the global zap logger emits.
	LogLevel string `env:"LOG_LEVEL" validate:"loglevel"`

	// DatabaseDSN selects the PostgreSQL backend when non-empty.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// DBFileName selects the JSON-file backend when non-empty and
	// DatabaseDSN is empty.
	DBFileName string `env:"FILE_STORAGE_PATH"`

	// DBConnectionTimeout bounds individual storage operations.
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`

	// MigrationsDir is where goose looks for SQL migrations.
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	// TokenSigningSecretKey is the base64-encoded HMAC secret for
	// bearer tokens. A random key is generated when left empty, which
	// invalidates outstanding tokens across restarts.
	TokenSigningSecretKey string `env:"TOKEN_SIGNING_SECRET_KEY"`

	// TokenTTL is the lifetime of issued bearer tokens. There is no
	// refresh mechanism; expiry forces re-login.
	TokenTTL time.Duration `env:"TOKEN_TTL"`

	// APIBaseURL is the server address the terminal client talks to.
	APIBaseURL string `env:"API_BASE_URL" validate:"url"`
}

var defaultConfig = Config{
	RunAddr:               ":8080",
	LogLevel:              "info",
	DatabaseDSN:           "",
	DBFileName:            "",
	DBConnectionTimeout:   10 * time.Second,
	MigrationsDir:         "migrations",
	TokenSigningSecretKey: "",
	TokenTTL:              15 * time.Minute,
	APIBaseURL:            "http://localhost:8080",
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption customizes config loading.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips flag.Parse(), which tests need because
// the testing package registers its own flags.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func applyDefaults(target *Config, defaults Config) {
	*target = defaults
}

func generateSigningKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(key), nil
}

// New loads and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "a string with the database connection details")
		flag.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database")
		flag.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "directory with goose migrations")
		flag.StringVar(&values.APIBaseURL, "s", values.APIBaseURL, "base URL of the API server (client side)")
		flag.DurationVar(&values.TokenTTL, "t", values.TokenTTL, "bearer token lifetime")
		flag.Parse()
	}

	valuesFromEnv := Config{}
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		values.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBFileName != "" {
		values.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		values.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.TokenSigningSecretKey != "" {
		values.TokenSigningSecretKey = valuesFromEnv.TokenSigningSecretKey
	}

	if valuesFromEnv.TokenTTL != 0 {
		values.TokenTTL = valuesFromEnv.TokenTTL
	}

	if valuesFromEnv.APIBaseURL != "" {
		values.APIBaseURL = valuesFromEnv.APIBaseURL
	}

	if values.TokenSigningSecretKey == "" {
		values.TokenSigningSecretKey, err = generateSigningKey()
		if err != nil {
			return nil, err
		}
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
