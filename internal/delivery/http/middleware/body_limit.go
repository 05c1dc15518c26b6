package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimit rejects request bodies larger than maxBytes. Deck payloads
// are small; anything bigger is answered with 413 before a handler reads it.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("Request body exceeds %d bytes", maxBytes),
			})
			return
		}

		// Chunked uploads carry no declared length; cap the reader so they
		// cannot stream past the limit either.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
