package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const greeting = "Ahhh so you're a nerd I see!!!!"

const requestIDHeader = "X-Request-ID"

// Generator produces upstream text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg    Config
	gen    Generator
	engine *gin.Engine

	shutdownTimeout time.Duration
}

func NewServer(cfg Config, gen Generator) *Server {
	s := &Server{cfg: cfg, gen: gen, shutdownTimeout: shutdownTimeout}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(), cors.New(corsConfig()))

	r.GET("/", s.handleIndex)
	r.POST("/prompt", s.handlePrompt)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully. Upstream
// calls still running when the shutdown timeout expires are abandoned.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warn().
					Dur("timeout", s.shutdownTimeout).
					Msg("shutdown timed out with requests in flight")
				return nil
			}
			return err
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, greeting)
}

func (s *Server) handlePrompt(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonErr(c, err.Error(), bindStatus(err))
		return
	}

	// The upstream call outlives a disconnecting client.
	ctx := context.WithoutCancel(c.Request.Context())

	out, err := s.gen.Generate(ctx, *req.Prompt)
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDHeader)).
			Msg("prompt failed")
		jsonErr(c, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(out))
}

// bindStatus maps unparsable bodies to 400 and well-formed bodies of the
// wrong shape to 422.
func bindStatus(err error) int {
	var syn *json.SyntaxError
	if errors.As(err, &syn) || errors.Is(err, ErrLoneSurrogate) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func jsonErr(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetString(requestIDHeader)).
			Msg("request")
	}
}
