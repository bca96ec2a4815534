package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/fakeapi/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contextKeyUserID    = "user_id"
	contextKeyRequestID = "request_id"
)

const msgSignInFirst = "You need to sign in or sign up before continuing."

// requestLogger tags each request with an id (reusing the caller's
// X-Request-Id when present) and logs it once it completes.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(common.HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(contextKeyRequestID, reqID)
		c.Header(common.HeaderRequestID, reqID)

		started := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
}

// requireAuth validates the token-auth header set: the access token must
// verify, belong to the sending client id and to the user named in uid.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(common.HeaderAccessToken)
		client := c.GetHeader(common.HeaderClient)
		uid := c.GetHeader(common.HeaderUID)
		if token == "" || client == "" || uid == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := auth.ParseToken(token, s.secret)
		if err != nil || claims.Client != client {
			abortUnauthorized(c)
			return
		}

		user, ok := s.store.User(claims.UserID)
		if !ok || !strings.EqualFold(user.UID, uid) {
			abortUnauthorized(c)
			return
		}

		c.Set(contextKeyUserID, user.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{msgSignInFirst}})
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(contextKeyUserID)
}
