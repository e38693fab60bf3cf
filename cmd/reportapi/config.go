package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/feedbackadmin/internal/logger"
)

const (
	defaultListenAddr      = "localhost:8000"
	defaultLoggingLevel    = logger.LevelInfo
	defaultEnvironment     = logger.EnvProduction
	defaultAlgorithm       = "HS256"
	defaultTokenTTLMinutes = 120
	defaultCORSOrigin      = "http://localhost:5173"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the API will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key to sign access tokens
	SecretKey string

	// JWT signing algorithm, HMAC family only
	Algorithm string

	// Access token lifetime in minutes
	TokenTTLMinutes int

	// Environment: dev or prod
	Environment string

	// Origins allowed to call API from browser
	CORSOrigins []string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:        defaultLoggingLevel,
		ListenAddr:      defaultListenAddr,
		Environment:     defaultEnvironment,
		Algorithm:       defaultAlgorithm,
		TokenTTLMinutes: defaultTokenTTLMinutes,
		CORSOrigins:     []string{defaultCORSOrigin},
	}
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}
	setList := func(o *[]string) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			var items []string
			for _, item := range strings.Split(value, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*o = items
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":                 setString(&c.ListenAddr),
		"DATABASE_URL":                setString(&c.DatabaseDSN),
		"SECRET_KEY":                  setString(&c.SecretKey),
		"ALGORITHM":                   setString(&c.Algorithm),
		"ACCESS_TOKEN_EXPIRE_MINUTES": setInt(&c.TokenTTLMinutes),
		"LOG_LEVEL":                   setString(&c.LogLevel),
		"ENVIRONMENT":                 setString(&c.Environment),
		"CORS_ORIGINS":                setList(&c.CORSOrigins),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("reportapi", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign access tokens")
	fs.StringVar(&c.Algorithm, "algorithm", c.Algorithm, "Access token signing algorithm (HS256, HS384, HS512)")
	fs.IntVar(&c.TokenTTLMinutes, "token-ttl", c.TokenTTLMinutes, "Access token lifetime in minutes")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", c.CORSOrigins, "Comma separated origins allowed by CORS")

	return fs.Parse(args)
}

// Check options that have no sensible default
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database connection string is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.TokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}

	return errors.Join(errs...)
}
