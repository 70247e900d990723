package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/dto"
)

// BodyLimit rejects bodies over maxBytes. Multipart requests get
// uploadBytes instead so receipts can exceed the JSON limit.
func BodyLimit(maxBytes, uploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") && uploadBytes > limit {
			limit = uploadBytes
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		// Chunked bodies have no ContentLength; cap the reader as well
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
