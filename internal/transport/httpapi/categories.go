package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"agendly/backend/internal/domain"
)

type categoryResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

func toCategoryResponse(c domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Color: c.Color}
}

func toCategoryResponses(cats []domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	return out
}

func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.categories.List(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, err, "categories.list")
		return
	}
	c.JSON(http.StatusOK, toCategoryResponses(cats))
}

func (s *Server) getCategory(c *gin.Context) {
	cat, err := s.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err, "categories.get")
		return
	}
	if cat == nil {
		respondNotFound(c, "category")
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(*cat))
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	cat, err := s.categories.Create(c.Request.Context(), domain.CategoryInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		s.respondStoreError(c, err, "categories.create")
		return
	}
	c.JSON(http.StatusCreated, toCategoryResponse(cat))
}

func (s *Server) updateCategory(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	var patch domain.CategoryPatch
	for key, raw := range fields {
		var err error
		switch key {
		case "name":
			patch.Name, err = stringPatchField(raw)
		case "color":
			patch.Color, err = stringPatchField(raw)
		default:
			respondBadRequest(c, "unknown field "+key)
			return
		}
		if err != nil {
			respondBadRequest(c, key+": "+err.Error())
			return
		}
	}

	if err := s.categories.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		s.respondStoreError(c, err, "categories.update")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteCategory(c *gin.Context) {
	if err := s.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondStoreError(c, err, "categories.delete")
		return
	}
	c.Status(http.StatusNoContent)
}

// watchCategories streams the live result set as SSE. Each event carries the
// full, name-ordered list. Intermediate snapshots may be dropped when the
// client reads slower than the store emits.
func (s *Server) watchCategories(c *gin.Context) {
	events := make(chan []domain.Category, 8)
	errs := make(chan error, 1)

	unsubscribe := s.categories.Watch(c.Request.Context(),
		func(cats []domain.Category) {
			select {
			case events <- cats:
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
		case cats := <-events:
			c.SSEvent("categories", toCategoryResponses(cats))
			return true
		case err := <-errs:
			c.SSEvent("error", errorResponse{Error: err.Error()})
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}
