// Package http exposes the bancho request cycle over the osu! client's
// HTTP polling protocol.
package http

import (
	"context"
	"io"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// clientAgent is the User-Agent every osu! client sends.
	clientAgent = "osu!"
	// maxBodyBytes bounds one polled request body.
	maxBodyBytes = 1 << 20

	contentType = "text/html; charset=UTF-8"
)

// Bancho is the request cycle the transport drives. Satisfied by
// *bancho.Server.
type Bancho interface {
	Login(ctx context.Context, body []byte, ip string) (token string, out []byte)
	Handle(ctx context.Context, token string, body []byte) []byte
}

// Handlers serves the bancho endpoints.
type Handlers struct {
	bancho Bancho
	logger *zap.Logger
}

// NewHandlers creates Handlers.
//
// Precondition: b and logger must be non-nil.
func NewHandlers(b Bancho, logger *zap.Logger) *Handlers {
	return &Handlers{bancho: b, logger: logger}
}

// NewRouter builds the gin engine with the bancho and health routes.
func NewRouter(h *Handlers, logger *zap.Logger, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	r.GET("/health", h.Health)
	r.GET("/", h.Index)
	r.POST("/", h.Poll)
	return r
}

// Health reports liveness.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// Index answers browsers that open the bancho host.
// GET /
func (h *Handlers) Index(c *gin.Context) {
	c.String(stdhttp.StatusOK, "Ragnarok bancho")
}

// Poll runs one login or request cycle. A request without an osu-token
// header is a login; the issued token, or "no" on failure, goes back in
// the cho-token header.
// POST /
func (h *Handlers) Poll(c *gin.Context) {
	if c.GetHeader("User-Agent") != clientAgent {
		c.String(stdhttp.StatusOK, "no")
		return
	}

	body, err := io.ReadAll(stdhttp.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.Debug("reading request body", zap.Error(err))
		c.Status(stdhttp.StatusRequestEntityTooLarge)
		return
	}

	ctx := c.Request.Context()
	token := c.GetHeader("osu-token")
	if token == "" {
		issued, out := h.bancho.Login(ctx, body, clientIP(c))
		if issued == "" {
			issued = "no"
		}
		c.Header("cho-token", issued)
		c.Data(stdhttp.StatusOK, contentType, out)
		return
	}
	c.Data(stdhttp.StatusOK, contentType, h.bancho.Handle(ctx, token, body))
}

// clientIP prefers the address set by a fronting proxy.
func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
