package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dcolumn/internal/core/apperror"
	"dcolumn/internal/domain/collection"
	"dcolumn/internal/domain/record"
	"dcolumn/internal/infrastructure/http/v1/dto"
)

// CollectionHandler serves collection administration and the display
// context endpoint that form front ends poll.
type CollectionHandler struct {
	BaseHandler
	svc      *collection.Service
	renderer record.Renderer
}

// NewCollectionHandler creates the collection handler.
func NewCollectionHandler(svc *collection.Service, renderer record.Renderer) *CollectionHandler {
	return &CollectionHandler{svc: svc, renderer: renderer}
}

// Create stores a new collection with its membership.
func (h *CollectionHandler) Create(c *gin.Context) {
	var req dto.CollectionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	col := req.ToModel()
	if err := h.svc.Create(c.Request.Context(), col); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, col)
}

// Update stores a collection and reconciles its membership.
func (h *CollectionHandler) Update(c *gin.Context) {
	id, ok := h.IDParam(c)
	if !ok {
		return
	}
	var req dto.CollectionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	current, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	col := req.ToModel()
	col.Base = current.Base
	if err := h.svc.Update(c.Request.Context(), col); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, col)
}

// Get returns one collection with its membership.
func (h *CollectionHandler) Get(c *gin.Context) {
	id, ok := h.IDParam(c)
	if !ok {
		return
	}
	col, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, col)
}

// List returns collections.
func (h *CollectionHandler) List(c *gin.Context) {
	cols, err := h.svc.List(c.Request.Context(), h.BoolQuery(c, "include_inactive"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"items": cols, "count": len(cols)})
}

// Delete soft-deletes a collection.
func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := h.IDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Choices lists the named collection's descriptors as (key, name) pairs
// for selects over the descriptors themselves. Keys are slugs unless
// ?use_pk=true.
func (h *CollectionHandler) Choices(c *gin.Context) {
	pairs, err := h.svc.DescriptorChoices(c.Request.Context(), c.Param("name"), h.BoolQuery(c, "use_pk"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"items": pairs, "count": len(pairs)})
}

// contextResponse wraps the display context for form front ends. Failures
// still answer 200 with valid=false so polling widgets degrade quietly.
type contextResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	*record.DisplayContext
}

// Context returns the display context of the named collection: serialized
// descriptors plus the option lists of every choice relation.
func (h *CollectionHandler) Context(c *gin.Context) {
	name := c.Param("name")
	dc, err := h.renderer.CollectionContext(c.Request.Context(), name)
	if err != nil {
		msg := "Error occurred getting dynamic columns."
		if appErr, ok := apperror.AsAppError(err); ok && appErr.HTTPStatus < 500 {
			msg = appErr.Message
		} else {
			h.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, contextResponse{Valid: false, Message: msg})
		return
	}
	c.JSON(http.StatusOK, contextResponse{Valid: true, DisplayContext: dc})
}
