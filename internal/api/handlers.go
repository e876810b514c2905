package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"homeboard/internal/store"
	"homeboard/internal/weather"
	"homeboard/internal/wire"
)

// ToggleTask flips the finished flag of a task.
// POST /api/tasks/:id/toggle
func (h *Handler) ToggleTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.deps.Chores.Toggle(c.Request.Context(), id, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromTask(*task))
}

// ResetTask restarts the cycle of a task now.
// POST /api/tasks/:id/reset
func (h *Handler) ResetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.deps.Chores.Reset(c.Request.Context(), id, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromTask(*task))
}

// ClearBought removes every bought item.
// POST /api/courses/clear-bought
func (h *Handler) ClearBought(c *gin.Context) {
	report, err := h.deps.Shopping.ClearBought(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type bulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// BulkDeleteCourses removes the listed items atomically.
// POST /api/courses/bulk-delete
func (h *Handler) BulkDeleteCourses(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_body"})
		return
	}
	bulk, ok := h.deps.Store.(store.BulkCourseDeleter)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "bulk_unsupported"})
		return
	}
	n, err := bulk.DeleteCourses(c.Request.Context(), req.IDs)
	if store.IsBulkUnsupported(err) {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "bulk_unsupported"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type taskStatusRow struct {
	wire.TaskRow
	Progress      int  `json:"progress"`
	RemainingDays int  `json:"remaining_days"`
	Due           bool `json:"due"`
}

// TaskDashboard lists tasks with their progress, most urgent first.
// GET /api/dashboard/tasks
func (h *Handler) TaskDashboard(c *gin.Context) {
	statuses, err := h.deps.Chores.Statuses(c.Request.Context(), h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	rows := make([]taskStatusRow, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, taskStatusRow{
			TaskRow:       wire.FromTask(st.Task),
			Progress:      st.Progress,
			RemainingDays: st.RemainingDays,
			Due:           st.IsDue(),
		})
	}
	c.JSON(http.StatusOK, rows)
}

type scheduledRow struct {
	wire.MealRow
	At time.Time `json:"at"`
}

// MealDashboard groups the meals of the next days.
// GET /api/dashboard/meals?days=7
func (h *Handler) MealDashboard(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_days"})
		return
	}
	agenda, err := h.deps.Meals.Upcoming(c.Request.Context(), h.now(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	byDay := make(map[string][]scheduledRow, len(agenda.ByDay))
	for key, items := range agenda.ByDay {
		for _, s := range items {
			byDay[key] = append(byDay[key], scheduledRow{MealRow: wire.FromMeal(s.Meal), At: s.At})
		}
	}
	order := agenda.Order
	if order == nil {
		order = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "days": byDay})
}

// Weather returns the cached forecast with the next hours.
// GET /api/weather?force=1
func (h *Handler) Weather(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	payload, err := h.deps.Weather.Load(c.Request.Context(), force)
	if err != nil {
		writeError(c, err)
		return
	}
	code := payload.Data.Current.WeatherCode
	c.JSON(http.StatusOK, gin.H{
		"loc":         payload.Loc,
		"data":        payload.Data,
		"description": weather.Describe(code),
		"icon":        weather.Icon(code),
		"hours":       weather.NextHours(payload.Data, h.deps.Now(), 6),
	})
}
