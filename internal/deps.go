package internal

import (
	"estate-api/internal/service"
	"estate-api/internal/storage"

	"github.com/chenyahui/gin-cache/persist"
	"gorm.io/gorm"
)

// Deps is everything the handlers need, built once at startup
type Deps struct {
	DB      *gorm.DB
	Storage storage.Gateway
	Cache   persist.CacheStore

	Users      *service.UserService
	Properties *service.PropertyService
	Documents  *service.DocumentService
	Rentals    *service.RentalService
	Contracts  *service.ContractService
	Sweeper    *service.OrphanSweeper

	JWTSecret     []byte
	TokenTTL      int64 // seconds, for the auth cookie
	MaxUploadSize int64
	SecureCookies bool
	RateLimit     int
	CORSOrigins   []string
}
