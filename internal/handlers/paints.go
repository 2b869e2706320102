package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/response"
)

// PaintHandler exposes paint record CRUD within a home.
type PaintHandler struct {
	paints *services.PaintService
}

func NewPaintHandler(paints *services.PaintService) *PaintHandler {
	return &PaintHandler{paints: paints}
}

// GET /api/homes/:homeID/paints?room_id=
func (h *PaintHandler) List(c *gin.Context) {
	paints, err := h.paints.List(requestContext(c), currentUserID(c), c.Param("homeID"), c.Query("room_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, paints)
}

// POST /api/homes/:homeID/paints
func (h *PaintHandler) Create(c *gin.Context) {
	var req services.PaintInput
	if !bindAndValidate(c, &req) {
		return
	}

	paint, err := h.paints.Create(requestContext(c), currentUserID(c), c.Param("homeID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, paint)
}

// PUT /api/homes/:homeID/paints/:paintID
func (h *PaintHandler) Update(c *gin.Context) {
	var req services.PaintInput
	if !bindAndValidate(c, &req) {
		return
	}

	paint, err := h.paints.Update(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("paintID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, paint)
}

// DELETE /api/homes/:homeID/paints/:paintID
func (h *PaintHandler) Delete(c *gin.Context) {
	err := h.paints.Delete(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("paintID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
