package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resto/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Context keys for branch information
const (
	BranchIDKey     = "branch_id"
	BranchHeaderKey = "X-Branch-ID"
)

// BranchMiddlewareConfig holds configuration for branch middleware
type BranchMiddlewareConfig struct {
	// SkipPaths are paths that don't require branch context (e.g., health check)
	SkipPaths []string
	// Required determines if branch context is mandatory
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultBranchConfig returns default branch middleware configuration.
// Branch context is optional by default: session-opening requests carry the
// branch in the body, the header exists so logs can be correlated per branch.
func DefaultBranchConfig() BranchMiddlewareConfig {
	return BranchMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/health"},
		Required:  false,
		Logger:    nil,
	}
}

// BranchMiddleware extracts the branch ID from the X-Branch-ID header
func BranchMiddleware() gin.HandlerFunc {
	return BranchMiddlewareWithConfig(DefaultBranchConfig())
}

// BranchMiddlewareWithConfig returns branch middleware with custom configuration
func BranchMiddlewareWithConfig(cfg BranchMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		branchID := c.GetHeader(BranchHeaderKey)

		// Validate branch ID format if present
		if branchID != "" {
			if _, err := uuid.Parse(branchID); err != nil {
				respondBranchError(c, "Invalid branch ID format")
				return
			}
		}

		if branchID == "" && cfg.Required {
			respondBranchError(c, "Branch identification required")
			return
		}

		if branchID != "" {
			// Set in gin context for easy access in handlers
			c.Set(BranchIDKey, branchID)

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithBranchID(ctx, log, branchID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("Branch identified",
					zap.String("branch_id", branchID))
			}
		}

		c.Next()
	}
}

// respondBranchError sends a bad request response
func respondBranchError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_BRANCH",
			"message": message,
		},
	})
}

// GetBranchID retrieves the branch ID from gin.Context
func GetBranchID(c *gin.Context) string {
	if branchID, exists := c.Get(BranchIDKey); exists {
		if id, ok := branchID.(string); ok {
			return id
		}
	}
	return ""
}

// GetBranchUUID retrieves the branch ID from gin.Context as a UUID
func GetBranchUUID(c *gin.Context) (uuid.UUID, bool) {
	id := GetBranchID(c)
	if id == "" {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}
