package middleware

import (
	"net/http"
	"strings"

	"myforum/internal/core/user"

	"github.com/gin-gonic/gin"
)

const viewerKey = "viewer"

// TokenParser تبدیل توکن JWT به کاربر جاری
type TokenParser interface {
	ParseToken(token string) (*user.Viewer, error)
}

// JWTAuthMiddleware rejects requests without a valid bearer token.
func JWTAuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		viewer, err := parser.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware برای مسیرهای عمومی: بدون توکن، بیننده ناشناس است
// ولی توکن نامعتبر همچنان رد می‌شود
func OptionalJWTAuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) == "" {
			c.Next()
			return
		}
		JWTAuthMiddleware(parser)(c)
	}
}

// ViewerFrom returns the authenticated viewer, or nil for anonymous requests.
func ViewerFrom(c *gin.Context) *user.Viewer {
	v, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	viewer, _ := v.(*user.Viewer)
	return viewer
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
