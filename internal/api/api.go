package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"electricity-price/internal/mcp"
	"electricity-price/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

type APIHandler struct {
	tools    *tools.Service
	rpc      *mcp.Server
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// ToolResponse is the body of every tool endpoint reply.
type ToolResponse struct {
	Tool    string `json:"tool"`
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

func SetupRoutes(r *gin.RouterGroup, svc *tools.Service, rpc *mcp.Server, logger *zap.Logger, limiter *rate.Limiter) *APIHandler {
	handler := &APIHandler{
		tools:  svc,
		rpc:    rpc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	r.Use(RequestID(logger))

	// Tool routes
	toolGroup := r.Group("/tools")
	toolGroup.Use(RateLimit(limiter))
	{
		toolGroup.GET("", handler.ListTools)
		toolGroup.POST("/:name", handler.CallTool)
	}

	// Convenience GET routes over the same tools
	limited := r.Group("", RateLimit(limiter))
	{
		limited.GET("/prices", handler.QueryPrices)
		limited.GET("/regions", handler.ListRegions)
	}

	// JSON-RPC over websocket
	r.GET("/ws", handler.ServeWS)

	return handler
}

func (h *APIHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.tools.Definitions()})
}

// CallTool always answers 200 with text: hints, failures and unknown tool
// names are replies, not HTTP errors.
func (h *APIHandler) CallTool(c *gin.Context) {
	name := c.Param("name")

	args := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "请求体必须是JSON对象"})
			return
		}
	}

	h.reply(c, name, h.tools.Call(c.Request.Context(), name, args))
}

func (h *APIHandler) QueryPrices(c *gin.Context) {
	args := map[string]any{}
	for _, key := range []string{"region_name", "price_date", "electricity_type1", "electricity_type2"} {
		if v, ok := c.GetQuery(key); ok {
			args[key] = v
		}
	}
	h.reply(c, tools.ToolQueryPrices, h.tools.Call(c.Request.Context(), tools.ToolQueryPrices, args))
}

func (h *APIHandler) ListRegions(c *gin.Context) {
	h.reply(c, tools.ToolListRegions, h.tools.Call(c.Request.Context(), tools.ToolListRegions, nil))
}

func (h *APIHandler) reply(c *gin.Context, name string, reply tools.Reply) {
	if strings.Contains(c.GetHeader("Accept"), "text/plain") {
		c.String(http.StatusOK, reply.Text)
		return
	}
	c.JSON(http.StatusOK, ToolResponse{Tool: name, Text: reply.Text, IsError: reply.IsError()})
}

// ServeWS speaks the same JSON-RPC protocol as the stdio server, one
// message per text frame.
func (h *APIHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	next := func() ([]byte, error) {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		return msg, nil
	}
	write := func(b []byte) error {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteMessage(websocket.TextMessage, b)
	}

	if err := h.rpc.Serve(ctx, next, write); err != nil {
		h.logger.Info("Websocket session ended", zap.Error(err))
	}
}

// RequestID tags every request with an id, reusing the caller's when given.
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// RateLimit rejects requests beyond the limiter's budget. A nil limiter
// disables limiting.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			return
		}
		c.Next()
	}
}
