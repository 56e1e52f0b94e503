package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/selve-org/selve-engine/internal/config"
	"github.com/selve-org/selve-engine/internal/handlers"
	"github.com/selve-org/selve-engine/internal/session"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

func Setup(log *zap.Logger, manager *session.Manager) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("selve_session", store))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	assessmentHandler := handlers.NewAssessmentHandler(log, manager)
	resultsHandler := handlers.NewResultsHandler(log)

	// Answers arrive one per screen interaction; the limiter mostly guards
	// against scripted straight-lining of the whole bank.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 60,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.POST("/sessions", limiter, assessmentHandler.Start)

	sessionRoutes := router.Group("/sessions/:id")
	{
		sessionRoutes.POST("/answers", limiter, assessmentHandler.Submit)
		sessionRoutes.GET("/next", assessmentHandler.Next)
		sessionRoutes.GET("/report", assessmentHandler.Report)
		sessionRoutes.GET("/results", resultsHandler.Scores)
		sessionRoutes.GET("/chart", resultsHandler.ScoreChart)
	}

	router.GET("/charts/timeline", resultsHandler.TimelineChart)

	return router
}
