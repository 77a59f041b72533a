package rest

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const mtaSecretHeader = "X-Prizma-Secret"

// MTAAuthentication guards the server-to-server endpoints the game server
// calls. A missing configured secret closes the endpoints entirely.
func (s *Server) MTAAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader(mtaSecretHeader)
		if s.mtaSecret == "" ||
			subtle.ConstantTimeCompare([]byte(secret), []byte(s.mtaSecret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "unauthorized",
			})
			return
		}

		c.Next()
	}
}

func (s *Server) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info(
			"Request",
			zap.String("uri", c.Request.RequestURI),
			zap.Duration("duration", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
		)
	}
}
