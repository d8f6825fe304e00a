package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"agendly/backend/internal/weather"
)

type weatherResponse struct {
	weather.Current
	Emoji string `json:"emoji"`
}

func (s *Server) getWeather(c *gin.Context) {
	if s.weather == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "weather is not configured"})
		return
	}

	cur, err := s.weather.CurrentByCity(c.Request.Context(), c.Query("city"))
	if err != nil {
		s.respondWeatherError(c, err)
		return
	}
	c.JSON(http.StatusOK, weatherResponse{Current: cur, Emoji: weather.IconEmoji(cur.Icon)})
}

func (s *Server) respondWeatherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, weather.ErrEmptyCity):
		respondBadRequest(c, err.Error())
	case errors.Is(err, weather.ErrCityNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, weather.ErrMissingKey):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, weather.ErrInvalidKey):
		s.log.Error("weather api rejected the key")
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, weather.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
	case errors.Is(err, weather.ErrOffline):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: weather.ErrOffline.Error()})
	default:
		s.log.Error("weather lookup failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "weather lookup failed"})
	}
}
