package handlers

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rajini967/CRM/internal/logger"
)

// shouldSkipLogging determines if request logging should be skipped for a given path
func shouldSkipLogging(path string) bool {
	return path == "/health"
}

// getRequestBody safely reads and returns the request body, restoring it for
// subsequent middleware and handlers
func getRequestBody(c *gin.Context) ([]byte, error) {
	var bodyBytes []byte
	if c.Request.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	return bodyBytes, nil
}

// LogRequest is a middleware that logs incoming requests. Multipart bodies
// (the spreadsheet uploads) are logged by size only.
func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldSkipLogging(c.Request.URL.Path) {
			c.Next()
			return
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("client_ip", c.ClientIP()),
			zap.Time("timestamp", time.Now().UTC()),
		}

		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			fields = append(fields, zap.Int64("content_length", c.Request.ContentLength))
		} else {
			bodyBytes, err := getRequestBody(c)
			if err != nil {
				logger.Error("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			fields = append(fields, zap.String("body", string(bodyBytes)))
		}

		logger.Debug("Request received", fields...)
		c.Next()
	}
}
