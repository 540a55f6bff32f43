package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

const CorrelationIdHeader = "X-Correlation-Id"

// CorrelationMiddleware threads a correlation id through the request
// context and echoes it on the response, generating one when the caller
// did not supply it.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get(CorrelationIdHeader)
		if correlationId == "" {
			correlationId = uuid.New().String()
		}

		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(CorrelationIdHeader, correlationId)
		c.Next()
	}
}
