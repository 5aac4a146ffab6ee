package server

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Rajini967/CRM/internal/auth"
	"github.com/Rajini967/CRM/internal/db"
	"github.com/Rajini967/CRM/internal/handlers"
	"github.com/Rajini967/CRM/internal/logger"
	"github.com/Rajini967/CRM/internal/mailer"
	"github.com/Rajini967/CRM/internal/secrets"
	"github.com/Rajini967/CRM/web"
)

// Handler Definitions
var (
	healthHandler        *handlers.HealthHandler
	bulkEmailHandler     *handlers.BulkEmailHandler
	emailAccountHandler  *handlers.EmailAccountHandler
	emailTemplateHandler *handlers.EmailTemplateHandler

	tokenVerifier auth.TokenVerifier

	// Database
	dbQueries *db.Queries
)

const defaultSendDelay = time.Second

func InitializeHandlers() {
	// Get database connection string from environment
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	// Create a connection pool using pgxpool
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		logger.Fatal("Unable to parse database connection string", zap.Error(err))
	}

	// Configure the connection pool
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	// Create the connection pool
	connPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Fatal("Unable to create connection pool", zap.Error(err))
	}

	// Create queries instance with the connection pool
	dbQueries = db.New(connPool)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET environment variable is required")
	}
	tokenVerifier = auth.HMACVerifier([]byte(jwtSecret))

	codec, err := secrets.NewCodecFromEnv()
	if err != nil {
		logger.Fatal("Unable to initialize credentials codec", zap.Error(err))
	}

	commonServices := handlers.NewCommonServices(
		dbQueries,
		codec.Decrypt,
		handlers.NewTransportForAccount,
		mailer.FixedDelayPacer{Delay: sendDelayFromEnv()},
	)

	// API Handler initialization
	healthHandler = handlers.NewHealthHandler()
	bulkEmailHandler = handlers.NewBulkEmailHandler(commonServices)
	emailAccountHandler = handlers.NewEmailAccountHandler(commonServices)
	emailTemplateHandler = handlers.NewEmailTemplateHandler(commonServices)
}

func InitializeRoutes(router *gin.Engine) {
	// Configure and apply CORS middleware
	router.Use(configureCORS())

	// Health check
	router.GET("/health", healthHandler.Health)

	// Embedded compose form
	router.StaticFS("/app", http.FS(web.Assets()))
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/app")
	})

	// if we are not in production, log the request body
	if os.Getenv("GIN_MODE") != "release" {
		router.Use(handlers.LogRequest())
	}

	// API routes
	api := router.Group("/api")
	{
		// Protected routes (authentication required)
		protected := api.Group("/")
		protected.Use(auth.EnsureValidToken(tokenVerifier))
		{
			// Bulk emails
			bulkEmails := protected.Group("/bulk-emails")
			{
				bulkEmails.GET("/template", bulkEmailHandler.DownloadTemplate)
				bulkEmails.POST("/send", bulkEmailHandler.Send)
				bulkEmails.GET("/logs", bulkEmailHandler.ListLogs)
			}

			// Email accounts
			emailAccounts := protected.Group("/email-accounts")
			{
				emailAccounts.GET("", emailAccountHandler.ListEmailAccounts)
				emailAccounts.GET("/:account_id", emailAccountHandler.GetEmailAccount)
				emailAccounts.POST("/:account_id/test", emailAccountHandler.TestSend)
			}

			// Email templates
			emailTemplates := protected.Group("/email-templates")
			{
				emailTemplates.GET("", emailTemplateHandler.ListEmailTemplates)
				emailTemplates.GET("/:template_id", emailTemplateHandler.GetEmailTemplate)
			}
		}
	}
}

// sendDelayFromEnv reads the fixed inter-message delay, in milliseconds.
func sendDelayFromEnv() time.Duration {
	raw := os.Getenv("BULK_EMAIL_SEND_DELAY_MS")
	if raw == "" {
		return defaultSendDelay
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		logger.Warn("invalid BULK_EMAIL_SEND_DELAY_MS, using default", zap.String("value", raw))
		return defaultSendDelay
	}
	return time.Duration(ms) * time.Millisecond
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
