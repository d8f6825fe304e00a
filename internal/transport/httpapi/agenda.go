package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type agendaEntryResponse struct {
	Appointment appointmentResponse `json:"appointment"`
	Category    *categoryResponse   `json:"category,omitempty"`
}

func (s *Server) getAgenda(c *gin.Context) {
	filter, ok := appointmentFilterFromQuery(c)
	if !ok {
		return
	}

	entries, err := s.agenda.Agenda(c.Request.Context(), filter)
	if err != nil {
		s.respondStoreError(c, err, "agenda")
		return
	}

	out := make([]agendaEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := agendaEntryResponse{Appointment: toAppointmentResponse(e.Appointment)}
		if e.Category != nil {
			cat := toCategoryResponse(*e.Category)
			resp.Category = &cat
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}
