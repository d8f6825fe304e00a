// Package httpapi exposes the repositories, the agenda view and the weather
// client over a JSON REST surface, with SSE endpoints backed by the live
// subscriptions.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"agendly/backend/internal/service/scheduling"
	"agendly/backend/internal/store"
	"agendly/backend/internal/weather"
)

type Server struct {
	categories   store.CategoryRepository
	appointments store.AppointmentRepository
	agenda       *scheduling.Service
	weather      *weather.Client
	log          *slog.Logger
}

func NewServer(
	categories store.CategoryRepository,
	appointments store.AppointmentRepository,
	agenda *scheduling.Service,
	weatherClient *weather.Client,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		categories:   categories,
		appointments: appointments,
		agenda:       agenda,
		weather:      weatherClient,
		log:          log.With(slog.String("component", "httpapi")),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.health)

	api.GET("/categories", s.listCategories)
	api.POST("/categories", s.createCategory)
	api.GET("/categories/watch", s.watchCategories)
	api.GET("/categories/:id", s.getCategory)
	api.PATCH("/categories/:id", s.updateCategory)
	api.DELETE("/categories/:id", s.deleteCategory)

	api.GET("/appointments", s.listAppointments)
	api.POST("/appointments", s.createAppointment)
	api.GET("/appointments/watch", s.watchAppointments)
	api.GET("/appointments/:id", s.getAppointment)
	api.PATCH("/appointments/:id", s.updateAppointment)
	api.DELETE("/appointments/:id", s.deleteAppointment)

	api.GET("/agenda", s.getAgenda)
	api.GET("/weather", s.getWeather)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, errorResponse{Error: resource + " not found"})
}

// respondStoreError maps the error taxonomy onto status codes: validation
// failures are the caller's fault, everything else is a store-level failure.
func (s *Server) respondStoreError(c *gin.Context, err error, op string) {
	if store.IsValidation(err) {
		respondBadRequest(c, err.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	s.log.Error("store operation failed", slog.String("op", op), slog.Any("err", err))
	c.JSON(http.StatusBadGateway, errorResponse{Error: "store unavailable"})
}
