// Package httpapi exposes the signup and authentication services over HTTP
// using gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/graphpass/internal/logging"
	"github.com/dmitrijs2005/graphpass/internal/server/images"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/dmitrijs2005/graphpass/internal/server/sequence"
	"github.com/gin-gonic/gin"
)

// Signup is the signup state machine as used by the handlers.
type Signup interface {
	SubmitBasicInfo(ctx context.Context, email, firstname string) (*models.Account, bool, error)
	SubmitImages(ctx context.Context, email string, uploads []images.Upload) (*models.Account, error)
	SubmitPasswordSequence(ctx context.Context, email string, raw []byte) (*models.Account, error)
}

// Auth is the credential check as used by the handlers.
type Auth interface {
	Login(ctx context.Context, email string, submitted sequence.Sequence) (string, error)
	GetImages(ctx context.Context, email string) ([]models.Image, error)
	VerifyPassword(ctx context.Context, email string, submitted sequence.Sequence) (bool, error)
}

// Options configures a Server.
type Options struct {
	Address         string
	ShutdownTimeout time.Duration
	// MaxUploadBytes bounds the body of an image upload request.
	MaxUploadBytes int64
}

type Server struct {
	opts   Options
	signup Signup
	auth   Auth
	logger logging.Logger
	engine *gin.Engine
}

func NewServer(opts Options, l logging.Logger, signup Signup, auth Auth) *Server {
	s := &Server{
		opts:   opts,
		signup: signup,
		auth:   auth,
		logger: l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.MaxMultipartMemory = s.opts.MaxUploadBytes

	r.Use(s.requestID(), s.requestLog(), s.recovery(), corsMiddleware())

	r.GET("/health", s.health)

	a := r.Group("/auth")
	a.POST("/login", s.login)
	a.GET("/images", s.getImages)
	a.POST("/images/verify-password", s.verifyPassword)

	c := r.Group("/create/signup")
	c.POST("/basic", s.signupBasic)
	c.POST("/images", limitBody(s.opts.MaxUploadBytes), s.signupImages)
	c.POST("/finalize", s.signupFinalize)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
