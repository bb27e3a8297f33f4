// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath         = pflag.String("config", "", "Path to a config.toml file")
	validLogLevels     = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes  = []string{"s3", "r2", "memory"}
	validDatabaseTypes = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Defaults sets every default value. Split from Setup so tests can start
// from a known state.
func Defaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("jwt.ttl", "168h")

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("upload.max_size", 25)

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("cache.redis_addr", "")

	v.SetDefault("cleanup.schedule", "@every 15m")
	v.SetDefault("cleanup.grace", "5m")
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	// APP_LOG_LEVEL, STORAGE_BUCKET, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	Defaults()

	if err := v.ReadInConfig(); err != nil {
		// Running from environment variables alone is fine
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return Validate()
}

// Validate checks the loaded values and normalizes the ones that need it
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDatabaseTypes, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.driver") == "postgres" && v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty for postgres")
	}

	if v.GetDuration("jwt.ttl") <= 0 {
		return errors.New("jwt.ttl must be a positive duration")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetDuration("cleanup.grace") < 0 {
		return errors.New("cleanup.grace can't be negative")
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("storage.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("storage.region") == "" {
			return errors.New("region can't be empty")
		}
	case "r2":
		if v.GetString("storage.account_id") == "" {
			return errors.New("account id can't be empty")
		}
		if v.GetString("storage.access_key_id") == "" {
			return errors.New("account access id can't be empty")
		}
		if v.GetString("storage.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
		if v.GetString("storage.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
	case "memory":
		fmt.Println("[WARNING]: Using in-memory storage. Uploaded files are lost on restart and signed URLs can't be served")
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	// Comma separated when it comes from the environment
	if origins := v.GetStringSlice("host.cors_origins"); len(origins) == 1 && strings.Contains(origins[0], ",") {
		v.Set("host.cors_origins", strings.Split(origins[0], ","))
	}

	return nil
}

// MaxUploadSize is upload.max_size in bytes
func MaxUploadSize() int64 {
	return v.GetInt64("upload.max_size") << 20
}
