package middlewares

import (
	"github.com/TanakaTsuyoshi-10/kpidash-backend/appctx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const correlationHeader = "X-Correlation-Id"

// CorrelationMiddleware propagates the caller's correlation id, minting one
// when absent. The id travels with every audit event written in the request.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := appctx.Set(c.Request.Context(), appctx.ContextKeyCorrelationId, id)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(correlationHeader, id)
		c.Next()
	}
}
