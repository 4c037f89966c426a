// Package api serves the keep-alive status endpoint that hosting platforms
// ping to keep the bot process alive.
package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/outlawlabs/outlaw/pkg/utils"
)

// StatusSource is what the server reports about; the Discord bot implements it
type StatusSource interface {
	Connected() bool
	Uptime() time.Duration
	LastActivity() time.Time
}

// StatusResponse is the JSON body of GET /status
type StatusResponse struct {
	Bot            string `json:"bot"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	UptimeReadable string `json:"uptime_readable"`
	Connected      bool   `json:"connected"`
	LastActivity   string `json:"last_activity"`
	Timestamp      string `json:"timestamp"`
}

// Server is the keep-alive HTTP server plus its self-ping schedule
type Server struct {
	config *utils.Config
	source StatusSource
	cron   *cron.Cron
	port   string
}

// NewServer creates the status server for the given source
func NewServer(cfg *utils.Config, source StatusSource) *Server {
	return &Server{
		config: cfg,
		source: source,
		cron:   cron.New(),
		port:   cfg.GetWithDefault("PORT", "5000"),
	}
}

// Start launches the HTTP server and the five-minute self-ping. It returns
// immediately; the server runs until the process exits.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	_ = engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Split(s.config.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:  []string{"OPTIONS", "GET"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	engine.GET("/status", s.onStatus)
	// Root serves the same payload for dumb uptime monitors
	engine.GET("/", s.onStatus)

	go func() {
		log.Printf("[API]: Keep-alive endpoint listening on port %s", s.port)
		if err := engine.Run(":" + s.port); err != nil {
			log.Printf("[API]: server stopped: %v", err)
		}
	}()

	// Self-ping every five minutes so free-tier hosts don't idle us out
	if _, err := s.cron.AddFunc("@every 5m", s.selfPing); err != nil {
		return fmt.Errorf("failed to schedule keep-alive ping: %w", err)
	}
	s.cron.Start()

	return nil
}

// Stop halts the self-ping schedule
func (s *Server) Stop() {
	s.cron.Stop()
}

// onStatus reports process health
func (s *Server) onStatus(c *gin.Context) {
	uptime := s.source.Uptime()

	c.JSON(http.StatusOK, StatusResponse{
		Bot:            "Outlaw is running",
		UptimeSeconds:  int64(uptime.Seconds()),
		UptimeReadable: formatUptime(uptime),
		Connected:      s.source.Connected(),
		LastActivity:   s.source.LastActivity().UTC().Format(time.RFC3339),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

// selfPing hits our own status endpoint and logs the outcome
func (s *Server) selfPing() {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/status", s.port))
	if err != nil {
		log.Printf("[API]: keep-alive ping failed: %v", err)
		return
	}
	defer resp.Body.Close()

	log.Printf("[API]: keep-alive ping ok, uptime %s", formatUptime(s.source.Uptime()))
}

// formatUptime renders a duration as "1d 2h 3m 4s", dropping leading zero units
func formatUptime(d time.Duration) string {
	seconds := int64(d.Seconds())

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	if secs > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}

	return strings.Join(parts, " ")
}
