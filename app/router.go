package app

import (
	"context"
	"net/http"
	"time"

	"estate-api/app/contract"
	"estate-api/app/document"
	"estate-api/app/property"
	"estate-api/app/rental"
	"estate-api/app/root"
	"estate-api/app/user"
	"estate-api/internal"
	"estate-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRouter mounts every endpoint under /api. ctx bounds the background
// work started for the router, the rate limiter cleanup.
func NewRouter(ctx context.Context, d *internal.Deps) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "HEAD", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 8 << 20

	jwt := middleware.NewJWTMiddleware(d.DB, d.JWTSecret)
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: d.RateLimit,
		Burst:             d.RateLimit * 2,
	})
	go rateLimiter.Cleanup(ctx)

	smallBody := middleware.BodySizeLimiter(1 << 20)

	m := router.Group("/api", rateLimiter.Handler())
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a JWT token
		m.GET("/validate", jwt, root.Validate)
	}

	u := m.Group("/users", smallBody)
	{
		// POST /api/users 		-> Registers a new user
		u.POST("", func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/users/login 	-> Logs in a user and returns a JWT token
		u.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// GET /api/users/me		-> Returns the logged in user
		u.GET("/me", jwt, func(c *gin.Context) { user.UserMe(c, d) })

		// GET /api/users/:id		-> Returns the public profile of a user
		u.GET("/:id", jwt, func(c *gin.Context) { user.UserFetch(c, d) })
	}

	p := m.Group("/properties", smallBody)
	{
		// GET /api/properties		-> Lists properties, filtered and paginated
		p.GET("", cacheFor(d.Cache, 15), func(c *gin.Context) { property.PropertyList(c, d) })

		// GET /api/properties/:id	-> Returns a property with its rentals and documents
		p.GET("/:id", func(c *gin.Context) { property.PropertyGet(c, d) })

		// POST /api/properties		-> Lists a new property
		p.POST("", jwt, func(c *gin.Context) { property.PropertyCreate(c, d) })

		// PATCH /api/properties/:id	-> Updates a property owned by the user
		p.PATCH("/:id", jwt, func(c *gin.Context) { property.PropertyUpdate(c, d) })

		// DELETE /api/properties/:id	-> Deletes a property with its rentals and contracts
		p.DELETE("/:id", jwt, func(c *gin.Context) { property.PropertyDelete(c, d) })
	}

	doc := m.Group("/documents", jwt)
	{
		// POST /api/documents/upload-url	-> Registers a document and returns a signed upload URL
		doc.POST("/upload-url", smallBody, func(c *gin.Context) { document.DocumentPrepareUpload(c, d) })

		// POST /api/documents/:id/confirm	-> Confirms a document was uploaded
		doc.POST("/:id/confirm", func(c *gin.Context) { document.DocumentConfirm(c, d) })

		// POST /api/documents/upload		-> Uploads a document in a multipart form
		doc.POST("/upload", middleware.BodySizeLimiter(d.MaxUploadSize), func(c *gin.Context) { document.DocumentUpload(c, d) })

		// PATCH /api/documents/:id/review	-> Approves or rejects a document
		doc.PATCH("/:id/review", smallBody, func(c *gin.Context) { document.DocumentReview(c, d) })

		// GET /api/documents/mine		-> Lists the user's documents
		doc.GET("/mine", func(c *gin.Context) { document.DocumentListMine(c, d) })

		// GET /api/documents/:id/download-url	-> Returns a signed download URL
		doc.GET("/:id/download-url", func(c *gin.Context) { document.DocumentDownloadURL(c, d) })

		// DELETE /api/documents/:id		-> Deletes a document and its file
		doc.DELETE("/:id", func(c *gin.Context) { document.DocumentDelete(c, d) })
	}

	r := m.Group("/rentals", jwt, smallBody)
	{
		// POST /api/rentals		-> Applies for a property
		r.POST("", func(c *gin.Context) { rental.RentalCreate(c, d) })

		// GET /api/rentals/mine	-> Lists the user's applications
		r.GET("/mine", func(c *gin.Context) { rental.RentalListMine(c, d) })

		// GET /api/rentals/owner	-> Lists applications on the user's properties
		r.GET("/owner", func(c *gin.Context) { rental.RentalListOwner(c, d) })

		// PATCH /api/rentals/:id/status	-> Accepts, rejects or cancels an application
		r.PATCH("/:id/status", func(c *gin.Context) { rental.RentalUpdateStatus(c, d) })
	}

	ct := m.Group("/contracts", jwt)
	{
		// GET /api/contracts/mine	-> Lists contracts the user is a party of
		ct.GET("/mine", func(c *gin.Context) { contract.ContractListMine(c, d) })

		// GET /api/contracts/:id	-> Returns a contract
		ct.GET("/:id", func(c *gin.Context) { contract.ContractGet(c, d) })

		// POST /api/contracts/:id/sign	-> Signs a contract
		ct.POST("/:id/sign", func(c *gin.Context) { contract.ContractSign(c, d) })

		// POST /api/contracts/:id/notarize	-> Notarizes a signed contract
		ct.POST("/:id/notarize", func(c *gin.Context) { contract.ContractNotarize(c, d) })

		// POST /api/contracts/:id/pdf	-> Generates and stores the contract PDF
		ct.POST("/:id/pdf", func(c *gin.Context) { contract.ContractGeneratePdf(c, d) })

		// GET /api/contracts/:id/pdf-url	-> Returns a signed URL of the PDF
		ct.GET("/:id/pdf-url", func(c *gin.Context) { contract.ContractPdfURL(c, d) })
	}

	return router, nil
}

func cacheFor(store persist.CacheStore, sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
