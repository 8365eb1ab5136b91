package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/portal/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies. Multipart requests carry workbooks and
// product images and get maxUpload; every other body gets maxBody.
func BodyLimit(maxBody, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBody
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = maxUpload
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodePayloadTooLarge,
					"The file or form you sent is too large", getRequestIDFromContext(c)))
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
