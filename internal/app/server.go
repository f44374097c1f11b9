package app

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/programme-matcher/internal/assistant"
	"github.com/garyellow/programme-matcher/internal/buildinfo"
	"github.com/garyellow/programme-matcher/internal/catalog"
	"github.com/garyellow/programme-matcher/internal/config"
	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/matcher"
	"github.com/garyellow/programme-matcher/internal/metrics"
	"github.com/garyellow/programme-matcher/internal/profile"
	"github.com/garyellow/programme-matcher/internal/questionbank"
	"github.com/garyellow/programme-matcher/internal/ratelimit"
	"github.com/garyellow/programme-matcher/internal/recommend"
	"github.com/garyellow/programme-matcher/internal/refdata"
	"github.com/garyellow/programme-matcher/internal/storage"
	"github.com/garyellow/programme-matcher/internal/traitcode"
	"github.com/garyellow/programme-matcher/internal/warmup"
)

// DefaultSearchLimit is used when /modules/search has no limit parameter.
const DefaultSearchLimit = 20

// ServerConfig wires a Server. Assistant and Limiter may be nil.
type ServerConfig struct {
	Store           *refdata.Store
	DB              *storage.DB
	Assistant       *assistant.Client
	Limiter         *ratelimit.KeyedLimiter
	Readiness       *warmup.ReadinessState
	Metrics         *metrics.Metrics
	Logger          *logger.Logger
	MajorCap        int
	ModulesPerMajor int
	LoadTimeout     time.Duration

	// NewRand seeds profile and quiz sampling; defaults to profile.NewRand.
	NewRand func() *rand.Rand
}

// Server holds the HTTP handlers of the recommendation API.
type Server struct {
	store       *refdata.Store
	matcher     *matcher.Matcher
	recommender *recommend.Recommender
	questions   *questionbank.Loader
	db          *storage.DB
	assistant   *assistant.Client
	limiter     *ratelimit.KeyedLimiter
	readiness   *warmup.ReadinessState
	metrics     *metrics.Metrics
	logger      *logger.Logger
	majorCap    int
	perMajor    int
	newRand     func() *rand.Rand
}

// NewServer builds the engine components on top of the store.
func NewServer(cfg ServerConfig) *Server {
	newRand := cfg.NewRand
	if newRand == nil {
		newRand = profile.NewRand
	}
	readiness := cfg.Readiness
	if readiness == nil {
		readiness = warmup.NewReadinessState(0)
	}
	timeout := cfg.LoadTimeout
	if timeout <= 0 {
		timeout = config.ReferenceLoad
	}
	return &Server{
		store:       cfg.Store,
		matcher:     matcher.New(cfg.Store, cfg.Metrics),
		recommender: recommend.New(cfg.Store, cfg.Metrics, timeout),
		questions:   questionbank.NewLoader(cfg.Store),
		db:          cfg.DB,
		assistant:   cfg.Assistant,
		limiter:     cfg.Limiter,
		readiness:   readiness,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.WithModule("api"),
		majorCap:    cfg.MajorCap,
		perMajor:    cfg.ModulesPerMajor,
		newRand:     newRand,
	}
}

// Register mounts health and API routes on r.
func (s *Server) Register(r gin.IRouter) {
	r.GET("/livez", s.livenessCheck)
	r.HEAD("/livez", s.livenessCheck)
	r.GET("/readyz", s.readinessCheck)
	r.HEAD("/readyz", s.readinessCheck)

	api := r.Group("/api/v1")
	api.POST("/codes", s.handleCodes)
	api.POST("/majors", s.handleMajors)
	api.POST("/modules", s.handleModules)
	api.GET("/modules/search", s.handleSearch)
	api.POST("/recommendations", s.handleRecommendations)
	api.GET("/filenames", s.handleFilename)
	api.POST("/assistant", s.handleAssistant)

	users := api.Group("/users/:userID", userIDMiddleware())
	users.POST("/ratings", s.handleRateModule)
	users.GET("/ratings", s.handleGetRatings)
	users.PUT("/selections", s.handleSaveSelections)
	users.GET("/selections", s.handleGetSelections)
	users.POST("/final-selections", s.handleFinalSelections)
}

func (s *Server) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) readinessCheck(c *gin.Context) {
	if !s.readiness.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not ready",
			"readiness": s.readiness.Status(),
		})
		return
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheck)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.WithError(err).Warn("Readiness check failed: database unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"source":    s.store.SourceName(),
		"readiness": s.readiness.Status(),
		"features": gin.H{
			"assistant": s.assistant.Enabled(),
			"feedback":  s.db != nil,
		},
	})
}

func (s *Server) computeCodes(req codesRequest) codesResponse {
	return codesResponse{
		RIASECCode:    traitcode.NormalizeCode(req.RIASEC, traitcode.RIASECToken),
		WorkValueCode: traitcode.NormalizeCode(req.WorkValues, traitcode.WorkValueToken),
	}
}

func (s *Server) handleCodes(c *gin.Context) {
	var req codesRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, "codes", err)
		return
	}
	c.JSON(http.StatusOK, s.computeCodes(req))
}

func (s *Server) handleMajors(c *gin.Context) {
	var req majorsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, "majors", err)
		return
	}
	c.JSON(http.StatusOK, s.matcher.GetMatchingMajors(c.Request.Context(), req.RIASECCode, req.WorkValueCode))
}

func (s *Server) recommendOptions(majorCap, perMajor int) []recommend.Option {
	if majorCap <= 0 {
		majorCap = s.majorCap
	}
	if perMajor <= 0 {
		perMajor = s.perMajor
	}
	return []recommend.Option{recommend.WithMajorCap(majorCap), recommend.WithModulesPerMajor(perMajor)}
}

func (s *Server) handleModules(c *gin.Context) {
	var req modulesRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, "modules", err)
		return
	}
	modules := s.recommender.FetchModuleRecommendations(c.Request.Context(), req.Recommendations,
		s.recommendOptions(req.MajorCap, req.ModulesPerMajor)...)
	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

type recommendationsResponse struct {
	codesResponse
	Majors        matcher.MajorRecommendations `json:"majors"`
	Modules       []catalog.Module             `json:"modules"`
	QuestionBanks []questionbank.Bank          `json:"questionBanks"`
	Quiz          []questionbank.Question      `json:"quiz"`
	Profile       profile.Profile              `json:"profile"`
}

func (s *Server) handleRecommendations(c *gin.Context) {
	start := time.Now()
	var req recommendationsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, "recommendations", err)
		return
	}
	ctx := c.Request.Context()

	codes := s.computeCodes(req.codesRequest)
	majors := s.matcher.GetMatchingMajors(ctx, codes.RIASECCode, codes.WorkValueCode)
	modules := s.recommender.FetchModuleRecommendations(ctx, majors, s.recommendOptions(req.MajorCap, req.ModulesPerMajor)...)
	banks := s.questions.ForRecommendations(ctx, majors)

	rng := s.newRand()
	resp := recommendationsResponse{
		codesResponse: codes,
		Majors:        majors,
		Modules:       modules,
		QuestionBanks: banks,
		Quiz:          questionbank.Quiz(banks, rng),
		Profile:       profile.Build(codes.RIASECCode, codes.WorkValueCode, rng),
	}

	outcome := "success"
	if majors.MatchType == matcher.MatchNone {
		outcome = "no_match"
	}
	s.metrics.RecordRecommendation("recommendations", outcome, time.Since(start).Seconds())
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFilename(c *gin.Context) {
	major := c.Query("major")
	if major == "" {
		s.respondError(c, "filenames", apperrors.NewValidationError("major", "major is required"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"major":       major,
		"filename":    majorname.SanitizeToFilename(major),
		"displayName": majorname.DisplayName(major),
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	var q searchQuery
	if err := bindQuery(c, &q); err != nil {
		s.respondError(c, "search", err)
		return
	}
	if q.Limit == 0 {
		q.Limit = DefaultSearchLimit
	}

	idx, err := s.store.SearchIndex(c.Request.Context())
	if err != nil {
		s.respondError(c, "search", apperrors.NewWrapper("search", "load_index").Wrap(err, "Module catalog is temporarily unavailable"))
		return
	}
	results, err := idx.Search(q.Query, majorname.Institution(q.Institution), q.Limit)
	if err != nil {
		s.respondError(c, "search", err)
		return
	}
	if results == nil {
		results = []catalog.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"query": q.Query, "results": results})
}
