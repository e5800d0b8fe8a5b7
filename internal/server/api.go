package server

import (
	"net/http"
	"strings"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/apikey"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/config"
	apierrors "github.com/Hamidon94/ultra.dogwalking-sub000/internal/errors"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/gateway"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/logging"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/middleware"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/monitoring"
	"github.com/gin-gonic/gin"
)

// PublicServer binds the gateway pipeline to HTTP. All public API traffic
// flows through one catch-all route: routing decisions belong to the
// endpoint registry, not to gin.
type PublicServer struct {
	config  *config.Config
	router  *gin.Engine
	gateway *gateway.Service
	keys    apikey.Store
}

// NewPublicServer creates the HTTP front of the gateway.
func NewPublicServer(cfg *config.Config, gw *gateway.Service, keys apikey.Store) *PublicServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins, cfg.Gateway.AuthHeader))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	srv := &PublicServer{
		config:  cfg,
		router:  router,
		gateway: gw,
		keys:    keys,
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *PublicServer) Router() http.Handler {
	return s.router
}

func (s *PublicServer) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", monitoring.GinHandler())

	// One catch-all: the registry resolves paths, gin only strips the
	// version prefix. The docs read model lives on the same prefix and is
	// intercepted before the pipeline.
	s.router.Any("/api/v1/*path", s.handleAPI)

	if s.config.Gateway.AdminToken != "" {
		admin := s.router.Group("/admin")
		admin.Use(s.requireAdmin())
		{
			admin.POST("/keys", s.handleIssueKey)
			admin.GET("/keys", s.handleListKeys)
			admin.DELETE("/keys/:id", s.handleRevokeKey)
			admin.GET("/keys/:id/usage", s.handleKeyUsage)
		}
	}
}

func (s *PublicServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "gateway",
	})
}

// handleAPI feeds one HTTP request through the admission pipeline.
func (s *PublicServer) handleAPI(c *gin.Context) {
	path := c.Param("path")

	if c.Request.Method == http.MethodGet {
		switch strings.TrimSuffix(path, "/") {
		case "/docs":
			c.JSON(http.StatusOK, s.gateway.Registry().Describe())
			return
		case "/docs/samples":
			s.handleCodeSamples(c)
			return
		}
	}

	params := make(map[string]any)
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}

	var body map[string]any
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, apierrors.NewValidationError([]string{"request body must be a JSON object"}))
			return
		}
		// Body fields join the parameter map so one schema covers query
		// and body inputs alike.
		for name, value := range body {
			params[name] = value
		}
	}

	envelope, apiErr := s.gateway.Handle(c.Request.Context(), gateway.Request{
		Path:     path,
		Method:   c.Request.Method,
		Token:    c.GetHeader(s.config.Gateway.AuthHeader),
		Params:   params,
		Body:     body,
		ClientIP: c.ClientIP(),
	})
	if apiErr != nil {
		respondError(c, apiErr)
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// handleCodeSamples renders request-shape samples for every endpoint.
func (s *PublicServer) handleCodeSamples(c *gin.Context) {
	lang := c.DefaultQuery("lang", "curl")
	reg := s.gateway.Registry()

	samples := make(map[string]string)
	for _, e := range reg.List() {
		sample, err := reg.CodeSample(e, lang)
		if err != nil {
			respondError(c, apierrors.NewValidationError([]string{err.Error()}))
			return
		}
		samples[e.Method+" "+e.Path] = sample
	}

	c.JSON(http.StatusOK, gin.H{"language": strings.ToLower(lang), "samples": samples})
}

// respondError writes the structured error envelope.
func respondError(c *gin.Context, err *apierrors.APIError) {
	c.JSON(err.HTTPStatus, err.ToResponse())
}
