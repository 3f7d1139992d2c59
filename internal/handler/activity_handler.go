package handler

import (
	"net/http"
	"strconv"

	"reception/internal/middleware"
	"reception/internal/service"
	"reception/pkg/pagination"
	"reception/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// RegisterRoutes binds the audit trail endpoints. Reading requires a login,
// purging is admin only.
func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	activity := router.Group("/activity", middleware.RequireAuth())
	{
		activity.GET("/logs", h.List)
		activity.GET("/stats", h.Stats)
		activity.DELETE("/clear", middleware.RequireAdmin(), h.Clear)
	}
}

// List returns audit entries, newest first, with composable filters
// @Summary      List activity logs
// @Tags         activity
// @Produce      json
// @Param        action       query     string  false  "Action filter (create, update, delete, login, logout, view, export)"
// @Param        entity_type  query     string  false  "Entity filter (booking, user, auth, system)"
// @Param        performed_by query     string  false  "Performer filter, user_<id> or custom_<id>"
// @Param        date_from    query     string  false  "Inclusive start date (YYYY-MM-DD)"
// @Param        date_to      query     string  false  "Inclusive end date (YYYY-MM-DD)"
// @Param        search       query     string  false  "Case-insensitive description/entity name search"
// @Param        page         query     int     false  "Page"
// @Param        per_page     query     int     false  "Page size"
// @Success      200          {object}  map[string]interface{}
// @Router       /activity/logs [get]
func (h *ActivityHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	query := service.ActivityLogQuery{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Performer:  c.Query("performed_by"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Search:     c.Query("search"),
	}

	logs, total, err := h.activityService.List(c.Request.Context(), query, p.Offset, p.PerPage)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Err(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.H{
		"logs":       logs,
		"pagination": pagination.NewMeta(p, total),
	})
}

// Stats aggregates recent activity
// @Summary      Activity statistics
// @Description  Totals, today's count, per-action and per-entity breakdowns, and the five most active performers of each identity class over the window.
// @Tags         activity
// @Produce      json
// @Param        days  query     int  false  "Window in days (default 30)"
// @Success      200   {object}  map[string]interface{}
// @Router       /activity/stats [get]
func (h *ActivityHandler) Stats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	stats, err := h.activityService.Stats(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Clear purges old audit entries
// @Summary      Clear old activity logs
// @Description  Deletes entries older than the given number of days (default 90). The purge itself is audited.
// @Tags         activity
// @Produce      json
// @Param        days  query     int  false  "Retention in days (default 90)"
// @Success      200   {object}  map[string]interface{}
// @Failure      403   {object}  map[string]interface{}
// @Router       /activity/clear [delete]
func (h *ActivityHandler) Clear(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "90"))

	deleted, err := h.activityService.ClearOlderThan(c.Request.Context(), days, requestMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success("Activity logs cleared", response.H{
		"deleted_count": deleted,
	}))
}
