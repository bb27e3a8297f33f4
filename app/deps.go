package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate-api/aws"
	"estate-api/cloudflare"
	"estate-api/config"
	"estate-api/db"
	"estate-api/internal"
	"estate-api/internal/service"
	"estate-api/internal/storage"
	"estate-api/pkg/security"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewDeps builds the process wide clients and services from the loaded
// config
func NewDeps(ctx context.Context) (*internal.Deps, error) {
	database, err := db.New(viper.GetString("db.driver"), viper.GetString("db.dsn"))
	if err != nil {
		return nil, err
	}

	gw, err := newStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage, %w", err)
	}

	cacheStore, err := newCacheStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache, %w", err)
	}

	d := Assemble(database, gw, cacheStore, Options{
		JWTSecret:     []byte(viper.GetString("jwt.secret")),
		TokenTTL:      viper.GetDuration("jwt.ttl"),
		MaxUploadSize: config.MaxUploadSize(),
		CleanupGrace:  viper.GetDuration("cleanup.grace"),
		RateLimit:     viper.GetInt("security.rate_limit"),
		CORSOrigins:   viper.GetStringSlice("host.cors_origins"),
		SecureCookies: viper.GetBool("host.secure_cookies"),
	})

	return d, nil
}

type Options struct {
	JWTSecret     []byte
	TokenTTL      time.Duration
	MaxUploadSize int64
	CleanupGrace  time.Duration
	RateLimit     int
	CORSOrigins   []string
	SecureCookies bool
}

// Assemble wires the services on top of already opened clients
func Assemble(database *gorm.DB, gw storage.Gateway, cacheStore persist.CacheStore, o Options) *internal.Deps {
	log := zap.L()

	return &internal.Deps{
		DB:      database,
		Storage: gw,
		Cache:   cacheStore,

		Users:      service.NewUserService(database, security.New(), o.JWTSecret, o.TokenTTL, log.Named("users")),
		Properties: service.NewPropertyService(database, gw, log.Named("properties")),
		Documents:  service.NewDocumentService(database, gw, log.Named("documents")),
		Rentals:    service.NewRentalService(database, log.Named("rentals")),
		Contracts:  service.NewContractService(database, gw, service.PDFRenderer{}, log.Named("contracts")),
		Sweeper:    service.NewOrphanSweeper(database, gw, o.CleanupGrace, log.Named("sweeper")),

		JWTSecret:     o.JWTSecret,
		TokenTTL:      int64(o.TokenTTL / time.Second),
		MaxUploadSize: o.MaxUploadSize,
		SecureCookies: o.SecureCookies,
		RateLimit:     o.RateLimit,
		CORSOrigins:   o.CORSOrigins,
	}
}

func newStorage(ctx context.Context) (storage.Gateway, error) {
	publicURL := viper.GetString("storage.public_url")

	switch viper.GetString("storage.type") {
	case "s3":
		c, err := aws.NewS3(ctx, aws.S3Options{
			Region:          viper.GetString("storage.region"),
			Bucket:          viper.GetString("storage.bucket"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			Endpoint:        viper.GetString("storage.endpoint"),
			PathStyle:       viper.GetBool("storage.path_style"),
		})
		if err != nil {
			return nil, err
		}

		return storage.NewS3Gateway(c, publicURL), nil
	case "r2":
		c, err := cloudflare.NewR2(ctx, cloudflare.R2Options{
			AccountID:       viper.GetString("storage.account_id"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			Bucket:          viper.GetString("storage.bucket"),
		})
		if err != nil {
			return nil, err
		}

		return storage.NewS3Gateway(c, publicURL), nil
	case "memory":
		return storage.NewMemory(), nil
	}

	return nil, errors.New("invalid storage type provided")
}

// Responses are cached in redis when one is configured so that every
// instance shares them
func newCacheStore(ctx context.Context) (persist.CacheStore, error) {
	addr := viper.GetString("cache.redis_addr")
	if addr == "" {
		return persist.NewMemoryStore(time.Minute), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("cache.redis_password"),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s, %w", addr, err)
	}

	return persist.NewRedisStore(client), nil
}
