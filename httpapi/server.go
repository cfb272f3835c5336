package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cybergate-systems/relay/logger"
	"github.com/cybergate-systems/relay/types"
)

// Server wires the gated endpoint, health check and metrics endpoint onto a
// gin engine.
type Server struct {
	engine *gin.Engine
	addr   string
}

func NewServer(port string, gate Relayer, path string, log logger.Logger, reg *prometheus.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(recoveryMiddleware(log))
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	NewHandler(gate, path, log).Register(r)

	return &Server{
		engine: r,
		addr:   ":" + port,
	}
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	return s.engine.Run(s.addr)
}

// Engine exposes the underlying engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,OPTIONS,PATCH,DELETE,POST,PUT")
		c.Header("Access-Control-Allow-Headers",
			"X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, "+
				"Content-MD5, Content-Type, Date, X-Api-Version, "+PaymentHeader)
		c.Next()
	}
}

// recoveryMiddleware converts panics into a generic 500 without leaking
// internals to the caller.
func recoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler panic", map[string]any{
					"panic": fmt.Sprint(r),
					"path":  c.Request.URL.Path,
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorBody{Error: "Internal Server Error"})
			}
		}()
		c.Next()
	}
}
