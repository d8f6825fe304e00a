package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

type appointmentResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	Notes      *string   `json:"notes,omitempty"`
	CategoryID *string   `json:"categoryId,omitempty"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:         a.ID,
		Title:      a.Title,
		Date:       a.Date,
		Notes:      a.Notes,
		CategoryID: a.CategoryID,
	}
}

func toAppointmentResponses(appts []domain.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

// appointmentFilterFromQuery parses the filter query params: categoryId,
// after, before (RFC3339), limit and order.
func appointmentFilterFromQuery(c *gin.Context) (store.AppointmentFilter, bool) {
	filter := store.AppointmentFilter{CategoryID: c.Query("categoryId")}

	if raw := c.Query("after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "after: invalid RFC3339 timestamp")
			return store.AppointmentFilter{}, false
		}
		filter.After = &t
	}
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "before: invalid RFC3339 timestamp")
			return store.AppointmentFilter{}, false
		}
		filter.Before = &t
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondBadRequest(c, "limit: must be a non-negative integer")
			return store.AppointmentFilter{}, false
		}
		filter.Limit = n
	}
	switch c.Query("order") {
	case "", "asc":
		filter.Order = store.OrderAsc
	case "desc":
		filter.Order = store.OrderDesc
	default:
		respondBadRequest(c, "order: must be asc or desc")
		return store.AppointmentFilter{}, false
	}

	return filter, true
}

func (s *Server) listAppointments(c *gin.Context) {
	filter, ok := appointmentFilterFromQuery(c)
	if !ok {
		return
	}
	appts, err := s.appointments.List(c.Request.Context(), filter)
	if err != nil {
		s.respondStoreError(c, err, "appointments.list")
		return
	}
	c.JSON(http.StatusOK, toAppointmentResponses(appts))
}

func (s *Server) getAppointment(c *gin.Context) {
	appt, err := s.appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err, "appointments.get")
		return
	}
	if appt == nil {
		respondNotFound(c, "appointment")
		return
	}
	c.JSON(http.StatusOK, toAppointmentResponse(*appt))
}

type createAppointmentRequest struct {
	Title      string `json:"title"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
	CategoryID string `json:"categoryId"`
}

func (s *Server) createAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			respondBadRequest(c, "date: invalid RFC3339 timestamp")
			return
		}
	}

	appt, err := s.appointments.Create(c.Request.Context(), domain.AppointmentInput{
		Title:      req.Title,
		Date:       date,
		Notes:      req.Notes,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		s.respondStoreError(c, err, "appointments.create")
		return
	}
	c.JSON(http.StatusCreated, toAppointmentResponse(appt))
}

func (s *Server) updateAppointment(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	var patch domain.AppointmentPatch
	for key, raw := range fields {
		var err error
		switch key {
		case "title":
			patch.Title, err = stringPatchField(raw)
		case "date":
			patch.Date, err = datePatchField(raw)
		case "notes":
			patch.Notes, err = stringPatchField(raw)
		case "categoryId":
			patch.CategoryID, err = stringPatchField(raw)
		default:
			respondBadRequest(c, "unknown field "+key)
			return
		}
		if err != nil {
			respondBadRequest(c, key+": "+err.Error())
			return
		}
	}

	if err := s.appointments.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		s.respondStoreError(c, err, "appointments.update")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteAppointment(c *gin.Context) {
	if err := s.appointments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondStoreError(c, err, "appointments.delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) watchAppointments(c *gin.Context) {
	filter, ok := appointmentFilterFromQuery(c)
	if !ok {
		return
	}

	events := make(chan []domain.Appointment, 8)
	errs := make(chan error, 1)

	unsubscribe := s.appointments.Watch(c.Request.Context(), filter,
		func(appts []domain.Appointment) {
			select {
			case events <- appts:
			default:
			}
		},
		func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	)
	defer unsubscribe()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case appts := <-events:
			c.SSEvent("appointments", toAppointmentResponses(appts))
			return true
		case err := <-errs:
			c.SSEvent("error", errorResponse{Error: err.Error()})
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}
