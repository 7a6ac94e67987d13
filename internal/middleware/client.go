package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blueskyzii/Latihan-PPKN/internal/response"
)

// ContextKeyClientID is the Gin context key for the exam client id.
const ContextKeyClientID = "client_id"

// RequireClientID extracts the opaque client id the browser generates for
// itself (X-Client-ID header, or client_id query for connections that cannot
// set headers). This identifies the snapshot slot only; it is not
// authentication.
func RequireClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader("X-Client-ID")
		if clientID == "" {
			clientID = c.Query("client_id")
		}
		if clientID == "" {
			response.AbortFail(c, http.StatusBadRequest, response.ErrClientIDRequired)
			return
		}
		c.Set(ContextKeyClientID, clientID)
		c.Next()
	}
}

// GetClientID returns the client id set by RequireClientID, or "".
func GetClientID(c *gin.Context) string {
	clientID, _ := c.Get(ContextKeyClientID)
	id, _ := clientID.(string)
	return id
}
