// Package service is the web API of pcrm. It exposes every operation of the crm package over HTTP,
// with contacts addressed by id and names resolved through /contacts/resolve.
package service

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/calendar"
	"gitlab.com/dirk.krummacker/pcrm/internal/crm"
	"gitlab.com/dirk.krummacker/pcrm/internal/metrics"
	"gitlab.com/dirk.krummacker/pcrm/internal/resolver"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// Handler serves the HTTP requests.
type Handler struct {
	crm *crm.Service
	log *zap.Logger
}

// New returns a handler serving the given service.
func New(svc *crm.Service, log *zap.Logger) *Handler {
	return &Handler{crm: svc, log: log}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. Request logging can
// be turned off, for example when the service is under load tests.
func (h *Handler) SetupHttpRouter(logging bool) *gin.Engine {
	router := gin.New()
	if logging {
		router.Use(h.requestLogger())
	} else {
		h.log.Info("turning off HTTP request logging")
	}
	router.Use(gin.Recovery(), observeDuration())

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/contacts", h.findContacts)
	router.POST("/contacts", h.createContact)
	router.GET("/contacts/search", h.searchContacts)
	router.GET("/contacts/resolve", h.resolveContact)
	router.GET("/contacts/:id", h.viewContactByID)
	router.PUT("/contacts/:id", h.updateContactByID)
	router.DELETE("/contacts/:id", h.deleteContactByID)

	router.POST("/contacts/:id/notes", h.addNote)
	router.POST("/contacts/:id/interactions", h.logInteraction)
	router.POST("/contacts/:id/reminders", h.addReminder)
	router.POST("/contacts/:id/tags", h.tagContact)
	router.DELETE("/contacts/:id/tags/:tag", h.untagContact)
	router.POST("/contacts/:id/phones", h.addPhone)
	router.POST("/contacts/:id/pets", h.addPet)
	router.POST("/contacts/:id/partners", h.addPartner)
	router.GET("/contacts/:id/relationships", h.relationships)
	router.POST("/contacts/:id/relationships", h.addRelationship)
	router.DELETE("/contacts/:id/relationships/:other", h.removeRelationship)
	router.GET("/contacts/:id/occasions", h.occasions)
	router.POST("/contacts/:id/occasions", h.addOccasion)
	router.GET("/contacts/:id/gifts", h.gifts)
	router.POST("/contacts/:id/gifts", h.addGift)

	router.GET("/reminders", h.reminders)
	router.GET("/tags", h.tags)
	router.GET("/suggestions", h.suggestions)
	router.GET("/dashboard", h.dashboard)
	router.GET("/graph", h.graph)
	router.POST("/calendar/sync", h.syncCalendar)
	router.GET("/export", h.export)
	router.POST("/import", h.importContacts)
	return router
}

// requestLogger logs every request with zap instead of gin's default logger.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// observeDuration records the request latency per route.
func observeDuration() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// health answers whether the service can reach its database.
//
// Example REST API call:
//
//	> curl http://localhost:8080/health
func (h *Handler) health(c *gin.Context) {
	if err := h.crm.Ping(c.Request.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"message": "database unavailable"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "ok"})
}

// parseID reads a numeric URL parameter. Like an unknown id, a non-numeric one is answered with
// NOT FOUND.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}

// bind parses the JSON body into the document and answers BAD REQUEST if that fails.
func bind(c *gin.Context, document interface{}) bool {
	if err := c.ShouldBindJSON(document); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return false
	}
	return true
}

// abortWithError translates an error of the crm layer into a status code and a message.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	var ambiguous *resolver.AmbiguousError
	switch {
	case errors.As(err, &ambiguous):
		body := api.Ambiguous{
			Message:    "multiple contacts found, choose one with the 'choice' parameter",
			Candidates: make([]api.Candidate, 0, len(ambiguous.Candidates)),
		}
		for i, candidate := range ambiguous.Candidates {
			body.Candidates = append(body.Candidates, api.Candidate{
				Number: i + 1,
				Id:     candidate.Id,
				Name:   candidate.FullName(),
			})
		}
		c.AbortWithStatusJSON(http.StatusConflict, body)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, resolver.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	case errors.Is(err, resolver.ErrCancelled),
		errors.Is(err, crm.ErrNotTagged),
		errors.Is(err, crm.ErrUnknownTag),
		errors.Is(err, crm.ErrRelationshipUnset):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, crm.ErrAlreadyTagged):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
	case crm.IsValidation(err),
		errors.Is(err, resolver.ErrInvalidSelection),
		errors.Is(err, resolver.ErrEmptyName),
		errors.Is(err, crm.ErrSelfRelationship),
		errors.Is(err, crm.ErrUnknownOccasion):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, calendar.ErrDisabled):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
