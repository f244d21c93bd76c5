// Package api exposes the portal over HTTP with gin.
package api

import (
	"context"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"visa-portal/internal/assessment/session"
	"visa-portal/internal/common/camunda"
	"visa-portal/internal/common/database"
	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/validation"
	queryelasticsearch "visa-portal/internal/workers/data-access/query-elasticsearch"
	querypostgresql "visa-portal/internal/workers/data-access/query-postgresql"
	crmleadcreate "visa-portal/internal/workers/crm/crm-lead-create"
	sendenquirynotification "visa-portal/internal/workers/communication/send-enquiry-notification"
	captchaverify "visa-portal/internal/workers/enquiry/captcha-verify"
	createenquiryrecord "visa-portal/internal/workers/enquiry/create-enquiry-record"
	calculaterecommendations "visa-portal/internal/workers/visa-assessment/calculate-recommendations"
	generatereport "visa-portal/internal/workers/visa-assessment/generate-report"
	loadquestions "visa-portal/internal/workers/visa-assessment/load-questions"
)

type QuestionLoader interface {
	Execute(ctx context.Context, input *loadquestions.Input) (*loadquestions.Output, error)
}

type RecommendationCalculator interface {
	Execute(ctx context.Context, input *calculaterecommendations.Input) (*calculaterecommendations.Output, error)
}

type ReportGenerator interface {
	Execute(ctx context.Context, input *generatereport.Input) (*generatereport.Output, error)
}

type ContentQuerier interface {
	Execute(ctx context.Context, input *querypostgresql.Input) (*querypostgresql.Output, error)
}

type Searcher interface {
	Execute(ctx context.Context, input *queryelasticsearch.Input) (*queryelasticsearch.Output, error)
}

type CaptchaService interface {
	Enabled() bool
	Issue(ctx context.Context, clientIP string) (*captchaverify.Challenge, error)
	Execute(ctx context.Context, input *captchaverify.Input) (*captchaverify.Output, error)
}

type EnquiryRecorder interface {
	Execute(ctx context.Context, input *createenquiryrecord.Input) (*createenquiryrecord.Output, error)
}

type LeadCreator interface {
	Enabled() bool
	Execute(ctx context.Context, input *crmleadcreate.Input) (*crmleadcreate.Output, error)
}

type EnquiryNotifier interface {
	Execute(ctx context.Context, input *sendenquirynotification.Input) (*sendenquirynotification.Output, error)
}

type ProcessStarter interface {
	StartProcess(ctx context.Context, bpmnProcessID string, variables map[string]interface{}) (*camunda.ProcessInstance, error)
}

// Dependencies wires the router. Optional collaborators may be nil: the
// matching routes then answer with their fallback or not-configured shape.
type Dependencies struct {
	Logger    logger.Logger
	Validator *validation.Validator

	Questions       QuestionLoader
	Recommendations RecommendationCalculator
	Reports         ReportGenerator
	Sessions        *session.Store
	// ClosingSectionOrdinal is passed to every walker built for a session.
	ClosingSectionOrdinal int

	Content ContentQuerier
	Search  Searcher

	Captcha        CaptchaService
	Enquiries      EnquiryRecorder
	Leads          LeadCreator
	Notifier       EnquiryNotifier
	Process        ProcessStarter
	EnquiryProcess string

	ServiceName       string
	AllowedHosts      []string
	IsDevelopment     bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
	Backends          map[string]database.Pinger
}

type Server struct {
	deps Dependencies
	log  logger.Logger
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 15 * time.Second
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "visa-portal"
	}
	s := &Server{deps: deps, log: deps.Logger.WithFields(map[string]interface{}{"component": "api"})}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(deps.ServiceName))
	router.Use(RequestLogger(logger.Zap(deps.Logger)))
	router.Use(Metrics())
	router.Use(SecureHeaders(deps.AllowedHosts, deps.IsDevelopment))

	// Each limited route keeps its own bucket.
	pdfLimiter := newLimiter(deps.RateLimitRequests, deps.RateLimitWindow)
	enquiryLimiter := newLimiter(deps.RateLimitRequests, deps.RateLimitWindow)

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		assessment := api.Group("/visa-assessment")
		assessment.GET("/questions", s.questions)
		assessment.POST("/calculate", s.calculate)
		assessment.POST("/download-pdf", pdfLimiter, s.downloadPDF)

		sessions := assessment.Group("/sessions")
		sessions.POST("", s.startSession)
		sessions.GET("/:id", s.getSession)
		sessions.POST("/:id/answers", s.answerSession)
		sessions.POST("/:id/back", s.backSession)
		sessions.DELETE("/:id", s.deleteSession)

		api.GET("/countries", s.listCountries)
		api.GET("/countries/:slug", s.getCountry)
		api.GET("/blog", s.listBlogPosts)
		api.GET("/blog/:slug", s.getBlogPost)
		api.GET("/trip-packages", s.listTripPackages)
		api.GET("/trip-packages/:id", s.getTripPackage)
		api.GET("/search", s.search)

		api.GET("/captcha", s.captcha)
		api.POST("/enquiries", enquiryLimiter, s.createEnquiry)
	}

	return router
}

func newLimiter(requests int, window time.Duration) gin.HandlerFunc {
	if requests <= 0 {
		requests = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  window,
		Limit: uint(requests),
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: rateLimited,
		KeyFunc:      func(c *gin.Context) string { return c.ClientIP() },
	})
}

// requestContext bounds backend calls made on behalf of one request.
func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.deps.RequestTimeout)
}
