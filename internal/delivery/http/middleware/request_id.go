package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// contextKeyRequestID is where the request id lives in the gin context; the
// request logger reads it back from there.
const contextKeyRequestID = "request_id"

// RequestID tags every request with a UUIDv7 id so log lines for one request
// can be correlated. A client-supplied X-Request-ID is kept as-is and echoed
// back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			generated, _ := uuid.NewV7()
			id = generated.String()
		}

		c.Set(contextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
