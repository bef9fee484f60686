package bridge

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/muurk/klfgate/internal/events"
	"github.com/muurk/klfgate/internal/gateway"
	"github.com/muurk/klfgate/internal/klf"
	"github.com/muurk/klfgate/internal/logging"
	"github.com/muurk/klfgate/internal/metrics"
	"github.com/muurk/klfgate/internal/session"
	"github.com/muurk/klfgate/internal/version"
)

// Gateway is the subset of gateway.Client the bridge exposes.
type Gateway interface {
	State(ctx context.Context) (klf.State, error)
	Version(ctx context.Context) (klf.Version, error)
	Nodes(ctx context.Context) ([]klf.NodeInfo, error)
	SetPosition(ctx context.Context, node byte, percent float64, wait bool) (gateway.MoveResult, error)
	RunScene(ctx context.Context, id byte, wait bool) (uint16, error)
}

// Source delivers bus events. *session.Session and *events.Bus satisfy it.
type Source interface {
	On(topic string, h events.Handler) events.Subscription
	Off(sub events.Subscription) bool
}

// Publisher receives every encoded event besides websocket clients.
type Publisher interface {
	Publish(data []byte) bool
}

// Config holds the server configuration
type Config struct {
	Addr        string
	MetricsPath string
	ClientQueue int
	Registry    *prometheus.Registry // served on MetricsPath when set
}

// Server exposes a gateway over HTTP and streams its notifications over
// websocket.
type Server struct {
	config    Config
	gw        Gateway
	hub       *Hub
	engine    *gin.Engine
	upgrader  websocket.Upgrader
	publisher Publisher
	subs      []events.Subscription
	source    Source
}

// New creates a Server. Call Attach to start streaming events.
func New(config Config, gw Gateway) *Server {
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	s := &Server{
		config: config,
		gw:     gw,
		hub:    NewHub(config.ClientQueue),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.engine = s.routes()
	return s
}

// SetPublisher forwards every event to p as well.
func (s *Server) SetPublisher(p Publisher) {
	s.publisher = p
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Attach subscribes to the notification, error and timeout topics of src.
func (s *Server) Attach(src Source) {
	s.source = src
	for _, topic := range []string{events.TopicNotification, events.TopicError, events.TopicTimeout} {
		s.subs = append(s.subs, src.On(topic, s.forward))
	}
}

// Detach removes the subscriptions made by Attach.
func (s *Server) Detach() {
	if s.source == nil {
		return
	}
	for _, sub := range s.subs {
		s.source.Off(sub)
	}
	s.subs = nil
	s.source = nil
}

func (s *Server) forward(ev events.Event) {
	data, err := EventJSON(ev)
	if err != nil {
		logging.Error("Failed to encode event", zap.String("topic", ev.Topic), zap.Error(err))
		return
	}
	s.hub.Broadcast(data)
	if s.publisher != nil && !s.publisher.Publish(data) {
		logging.Warn("Publisher queue full, event dropped", zap.String("topic", ev.Topic))
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": s.hub.Count(), "version": version.Version})
	})
	if s.config.Registry != nil {
		r.GET(s.config.MetricsPath, gin.WrapH(metrics.Handler(s.config.Registry)))
	}

	api := r.Group("/api")
	api.GET("/state", s.getState)
	api.GET("/version", s.getVersion)
	api.GET("/nodes", s.getNodes)
	api.PUT("/nodes/:id/position", s.putPosition)
	api.POST("/scenes/:id/run", s.runScene)

	r.GET("/ws", s.serveWS)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logging.LogHTTPRequest(c.ClientIP(), c.Request.Method, path, c.Writer.Status(), c.Writer.Size())
	}
}

func (s *Server) getState(c *gin.Context) {
	st, err := s.gw.State(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":    st.State.String(),
		"subState": st.SubState.String(),
	})
}

func (s *Server) getVersion(c *gin.Context) {
	v, err := s.gw.Version(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"software":     v.SoftwareString(),
		"hardware":     v.Hardware,
		"productGroup": v.ProductGroup,
		"productType":  v.ProductType,
	})
}

type nodeJSON struct {
	ID       byte    `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	State    string  `json:"state"`
	Position float64 `json:"position"`
	Target   float64 `json:"target"`
	Known    bool    `json:"known"`
}

func (s *Server) getNodes(c *gin.Context) {
	nodes, err := s.gw.Nodes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]nodeJSON, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeJSON{
			ID:       n.NodeID,
			Name:     n.Name,
			Type:     n.Type.String(),
			State:    n.State.String(),
			Position: n.CurrentPosition.Percent(),
			Target:   n.Target.Percent(),
			Known:    n.CurrentPosition.IsRelative(),
		})
	}
	c.JSON(http.StatusOK, out)
}

type positionRequest struct {
	Percent *float64 `json:"percent" binding:"required"`
	Wait    bool     `json:"wait"`
}

func (s *Server) putPosition(c *gin.Context) {
	id, ok := byteParam(c, "id")
	if !ok {
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Percent < 0 || *req.Percent > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "percent must be between 0 and 100"})
		return
	}
	res, err := s.gw.SetPosition(c.Request.Context(), id, *req.Percent, req.Wait)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sessionId": res.SessionID, "node": id, "percent": *req.Percent})
}

func (s *Server) runScene(c *gin.Context) {
	id, ok := byteParam(c, "id")
	if !ok {
		return
	}
	wait := c.Query("wait") == "true"
	sid, err := s.gw.RunScene(c.Request.Context(), id, wait)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sessionId": sid, "scene": id})
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("Websocket upgrade failed",
			zap.String("remote_addr", c.Request.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	s.hub.Serve(conn)
}

func byteParam(c *gin.Context, name string) (byte, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return byte(v), true
}

// statusFor maps gateway and session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case gateway.IsRejected(err):
		return http.StatusConflict
	case session.IsTimeout(err):
		return http.StatusGatewayTimeout
	case session.IsClosed(err), session.IsTransport(err), session.IsAuthentication(err):
		return http.StatusServiceUnavailable
	case session.IsDecode(err):
		return http.StatusBadGateway
	}
	var se *session.Error
	if errors.As(err, &se) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var se *session.Error
	if errors.As(err, &se) {
		body["hint"] = session.Hint(err)
	}
	c.JSON(statusFor(err), body)
}

// Run serves HTTP on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logging.Info("Bridge listening", zap.String("addr", s.config.Addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutting down bridge...")
	s.Detach()
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return srv.Close()
	}
	return nil
}
