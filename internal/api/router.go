// Package api serves the household data over HTTP, compatible with the
// PHP endpoint the browser app used to call.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"homeboard/internal/chore"
	"homeboard/internal/logger"
	"homeboard/internal/mealplan"
	"homeboard/internal/model"
	"homeboard/internal/service"
	"homeboard/internal/store"
	"homeboard/internal/weather"
	"homeboard/internal/wire"
)

// Deps are the collaborators of the router. Weather is optional.
type Deps struct {
	Store    store.Store
	Chores   *service.ChoreService
	Shopping *service.ShoppingService
	Meals    *service.MealService
	Weather  *weather.Service
	APIKey   string
	Location *time.Location
	Now      func() time.Time
}

// Handler holds the HTTP handlers.
type Handler struct {
	deps Deps
}

// NewRouter builds the gin engine with every route.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	h := &Handler{deps: deps}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(), cors())
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_entity"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		secured := api.Group("")
		secured.Use(apiKey(deps.APIKey))

		tasks := secured.Group("/tasks")
		h.tasks().register(tasks)
		tasks.POST("/:id/toggle", h.ToggleTask)
		tasks.POST("/:id/reset", h.ResetTask)

		courses := secured.Group("/courses")
		h.courses().register(courses)
		courses.POST("/clear-bought", h.ClearBought)
		courses.POST("/bulk-delete", h.BulkDeleteCourses)

		meals := secured.Group("/meals")
		h.meals().register(meals)

		dashboard := secured.Group("/dashboard")
		{
			dashboard.GET("/tasks", h.TaskDashboard)
			dashboard.GET("/meals", h.MealDashboard)
		}

		if deps.Weather != nil {
			secured.GET("/weather", h.Weather)
		}
	}

	return r
}

func (h *Handler) now() time.Time {
	return h.deps.Now().In(h.deps.Location)
}

func (h *Handler) tasks() entity[model.Task, wire.TaskRow] {
	st := h.deps.Store
	return entity[model.Task, wire.TaskRow]{
		fields: []string{"title", "freq_value", "freq_unit", "room", "last_done", "prev_last_done", "finished"},
		list: func(ctx context.Context) ([]model.Task, error) {
			return h.deps.Chores.List(ctx, h.now())
		},
		create: st.CreateTask,
		update: st.UpdateTask,
		remove: st.DeleteTask,
		id:     func(t model.Task) uint { return t.ID },
		encode: wire.FromTask,
		decode: func(r wire.TaskRow) model.Task {
			now := h.now()
			t := r.Decode(now)
			return *chore.Normalize(&t, now)
		},
		validate: func(t *model.Task) error {
			t.Title = strings.TrimSpace(t.Title)
			t.Room = strings.TrimSpace(t.Room)
			if t.Title == "" {
				return service.ErrEmptyTitle
			}
			return nil
		},
	}
}

func (h *Handler) courses() entity[model.CourseItem, wire.CourseRow] {
	st := h.deps.Store
	return entity[model.CourseItem, wire.CourseRow]{
		fields: []string{"title", "quantity", "category", "note", "bought"},
		list:   st.ListCourses,
		create: st.CreateCourse,
		update: st.UpdateCourse,
		remove: st.DeleteCourse,
		id:     func(c model.CourseItem) uint { return c.ID },
		encode: wire.FromCourse,
		decode: wire.CourseRow.Decode,
		validate: func(c *model.CourseItem) error {
			c.Title = strings.TrimSpace(c.Title)
			c.Quantity = strings.TrimSpace(c.Quantity)
			c.Note = strings.TrimSpace(c.Note)
			if c.Title == "" {
				return service.ErrEmptyTitle
			}
			return nil
		},
	}
}

func (h *Handler) meals() entity[model.Meal, wire.MealRow] {
	st := h.deps.Store
	return entity[model.Meal, wire.MealRow]{
		fields: []string{"day", "moment", "meal", "week_offset"},
		list:   st.ListMeals,
		create: st.CreateMeal,
		update: st.UpdateMeal,
		remove: st.DeleteMeal,
		id:     func(m model.Meal) uint { return m.ID },
		encode: wire.FromMeal,
		decode: wire.MealRow.Decode,
		validate: func(m *model.Meal) error {
			idx := mealplan.DayIndex(m.Day)
			if idx < 0 {
				return service.ErrInvalidDay
			}
			moment, err := service.ParseMoment(string(m.Moment))
			if err != nil {
				return err
			}
			m.Day = model.Weekdays[idx]
			m.Moment = moment
			m.Meal = strings.TrimSpace(m.Meal)
			if m.Meal == "" {
				return service.ErrEmptyTitle
			}
			return nil
		},
	}
}

// writeError maps domain errors to the JSON error codes of the API.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyTitle):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "empty_title"})
	case errors.Is(err, service.ErrInvalidDay):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_day"})
	case errors.Is(err, service.ErrInvalidMoment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_moment"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	default:
		logger.Error("request error", "path", c.Request.URL.Path, "request_id", c.GetString("requestID"), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
	}
}
