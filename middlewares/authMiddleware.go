package middlewares

import (
	"net/http"
	"strings"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/appctx"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token into the user identity and the
// segment scope. Requests without a token pass through anonymous; handlers
// that need identity reject them.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = appctx.Set(ctx, appctx.ContextKeyToken, auth)
		ctx = appctx.Set(ctx, appctx.ContextKeyUserId, claim.ID)
		ctx = appctx.Set(ctx, appctx.ContextKeyUserName, claim.Name)
		ctx = appctx.Set(ctx, appctx.ContextKeyIsAdmin, claim.Role == string(models.UserRoleAdmin))
		if claim.Role != string(models.UserRoleAdmin) && claim.SegmentScope != nil {
			ctx = appctx.Set(ctx, appctx.ContextKeySegmentScope, claim.SegmentScope)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := appctx.GetString(c.Request.Context(), appctx.ContextKeyUserId); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everything but platform admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.IsAdmin(c.Request.Context()) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
