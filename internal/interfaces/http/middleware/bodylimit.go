package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerbooks/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodyBytes bounds journal postings, which are the largest
// request bodies this API accepts.
const DefaultMaxBodyBytes int64 = 1 << 20

// BodyLimit rejects requests whose declared Content-Length exceeds maxBytes
// and caps streaming bodies with no declared length at the same limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.Response{
				Success: false,
				Error: &dto.ErrorInfo{
					Code:    "REQUEST_TOO_LARGE",
					Message: "Request body exceeds maximum allowed size",
				},
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
