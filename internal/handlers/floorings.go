package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/response"
)

// FlooringHandler exposes flooring record CRUD within a home.
type FlooringHandler struct {
	floorings *services.FlooringService
}

func NewFlooringHandler(floorings *services.FlooringService) *FlooringHandler {
	return &FlooringHandler{floorings: floorings}
}

// GET /api/homes/:homeID/floorings?room_id=
func (h *FlooringHandler) List(c *gin.Context) {
	floorings, err := h.floorings.List(requestContext(c), currentUserID(c), c.Param("homeID"), c.Query("room_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, floorings)
}

// POST /api/homes/:homeID/floorings
func (h *FlooringHandler) Create(c *gin.Context) {
	var req services.FlooringInput
	if !bindAndValidate(c, &req) {
		return
	}

	flooring, err := h.floorings.Create(requestContext(c), currentUserID(c), c.Param("homeID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, flooring)
}

// PUT /api/homes/:homeID/floorings/:flooringID
func (h *FlooringHandler) Update(c *gin.Context) {
	var req services.FlooringInput
	if !bindAndValidate(c, &req) {
		return
	}

	flooring, err := h.floorings.Update(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("flooringID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, flooring)
}

// DELETE /api/homes/:homeID/floorings/:flooringID
func (h *FlooringHandler) Delete(c *gin.Context) {
	err := h.floorings.Delete(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("flooringID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
