package handlers

import (
	"github.com/gin-gonic/gin"

	"dcolumn/internal/domain/dcolumn"
	"dcolumn/internal/infrastructure/http/v1/dto"
)

// DynamicColumnHandler serves descriptor administration.
type DynamicColumnHandler struct {
	BaseHandler
	svc *dcolumn.Service
}

// NewDynamicColumnHandler creates the descriptor handler.
func NewDynamicColumnHandler(svc *dcolumn.Service) *DynamicColumnHandler {
	return &DynamicColumnHandler{svc: svc}
}

// Create stores a new descriptor.
func (h *DynamicColumnHandler) Create(c *gin.Context) {
	var req dto.DynamicColumnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	dc := req.ToModel()
	if err := h.svc.Create(c.Request.Context(), dc); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dc)
}

// Update stores an existing descriptor.
func (h *DynamicColumnHandler) Update(c *gin.Context) {
	id, ok := h.IDParam(c)
	if !ok {
		return
	}
	var req dto.DynamicColumnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	current, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	dc := req.ToModel()
	dc.Base = current.Base
	if err := h.svc.Update(c.Request.Context(), dc); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dc)
}

// Get returns one descriptor by id.
func (h *DynamicColumnHandler) Get(c *gin.Context) {
	id, ok := h.IDParam(c)
	if !ok {
		return
	}
	dc, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dc)
}

// List returns descriptors. ?include_inactive=true includes soft-deleted
// ones.
func (h *DynamicColumnHandler) List(c *gin.Context) {
	cols, err := h.svc.List(c.Request.Context(), h.BoolQuery(c, "include_inactive"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"items": cols, "count": len(cols)})
}

// Delete soft-deletes a descriptor.
func (h *DynamicColumnHandler) Delete(c *gin.Context) {
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

// ValueTypes lists the value type options for admin widgets.
func (h *DynamicColumnHandler) ValueTypes(c *gin.Context) {
	h.OK(c, gin.H{"items": h.svc.ValueTypeOptions()})
}

// Relations lists the registered relation options for admin widgets.
func (h *DynamicColumnHandler) Relations(c *gin.Context) {
	h.OK(c, gin.H{"items": h.svc.Relations()})
}
