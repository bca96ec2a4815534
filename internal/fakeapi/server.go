// Package fakeapi is an in-memory implementation of the chat REST API with
// devise-token-auth style credentials. It backs the integration tests and
// local demos of the client; it is not meant to hold real data.
package fakeapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	address  string
	store    *Store
	logger   *zap.Logger
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	router   *gin.Engine
}

type Option func(*Server)

// WithClock overrides the clock used for token expiry and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(address string, store *Store, logger *zap.Logger, secretKey string, tokenTTL time.Duration, opts ...Option) *Server {
	s := &Server{
		address:  address,
		store:    store,
		logger:   logger.With(zap.String("module", "fakeapi")),
		secret:   []byte(secretKey),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.POST("/auth/sign_in", s.SignIn)
	r.POST("/auth", s.SignUp)

	authed := r.Group("/", s.requireAuth())
	authed.GET("/auth/validate_token", s.ValidateToken)
	authed.GET("/users/current", s.CurrentUser)
	authed.GET("/users", s.ListUsers)
	authed.GET("/channels", s.ListChannels)
	authed.GET("/channels/:id", s.GetChannel)
	authed.POST("/channels", s.CreateChannel)
	authed.POST("/channel/add_member", s.AddMember)
	authed.GET("/channels/:id/messages", s.ListMessages)
	authed.POST("/channels/:id/messages", s.CreateMessage)

	return r
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info("stopping fake API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting fake API", zap.String("address", listen.Addr().String()))

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
