package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"charger-alert-service/internal/http/middleware"
	"charger-alert-service/internal/model"
	"charger-alert-service/internal/repository"
	"charger-alert-service/internal/service"
)

type Handler struct {
	alertService        *service.AlertService
	subscriptionService *service.SubscriptionService
	auditRepo           *repository.AuditRepository
	log                 zerolog.Logger
}

func NewHandler(
	alertService *service.AlertService,
	subscriptionService *service.SubscriptionService,
	auditRepo *repository.AuditRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		alertService:        alertService,
		subscriptionService: subscriptionService,
		auditRepo:           auditRepo,
		log:                 log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware, internalMiddleware gin.HandlerFunc) {
	internal := r.Group("/internal")
	internal.Use(internalMiddleware)
	{
		internal.POST("/reports", h.ingestReport)
		internal.GET("/alerts", h.listAlerts)
		internal.GET("/unregistered-plates", h.listUnregisteredPlates)
		internal.GET("/failed-detections", h.listFailedDetections)
	}

	protected := r.Group("/")
	protected.Use(authMiddleware)
	{
		protected.POST("/subscriptions", h.toggleSubscription)
	}
}

// ingestReport is the HTTP rendering of the at-least-once delivery channel:
// the caller retries on 5xx, so only an audit-write failure returns one.
func (h *Handler) ingestReport(c *gin.Context) {
	var report model.UsageReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	outcome, err := h.alertService.ProcessReport(c.Request.Context(), &report)
	if err != nil {
		h.log.Error().Err(err).Str("report_id", report.ID).Msg("failed to record pipeline outcome")
		c.JSON(http.StatusInternalServerError, errorResponse("failed to record outcome"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"outcome": outcome})
}

func (h *Handler) toggleSubscription(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Token  string `json:"token" binding:"required"`
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.subscriptionService.Toggle(c.Request.Context(), principal, service.ToggleInput{
		Token:  req.Token,
		Action: req.Action,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) listAlerts(c *gin.Context) {
	limit, offset := pagination(c)
	alerts, err := h.auditRepo.ListAlerts(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(alerts))
}

func (h *Handler) listUnregisteredPlates(c *gin.Context) {
	limit, offset := pagination(c)
	records, err := h.auditRepo.ListUnregisteredPlates(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) listFailedDetections(c *gin.Context) {
	limit, offset := pagination(c)
	records, err := h.auditRepo.ListFailedDetections(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("internal error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}
