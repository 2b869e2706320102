package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/response"
)

// RoomHandler exposes room CRUD within a home.
type RoomHandler struct {
	rooms *services.RoomService
}

func NewRoomHandler(rooms *services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// GET /api/homes/:homeID/rooms
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.List(requestContext(c), currentUserID(c), c.Param("homeID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rooms)
}

// POST /api/homes/:homeID/rooms
func (h *RoomHandler) Create(c *gin.Context) {
	var req services.RoomInput
	if !bindAndValidate(c, &req) {
		return
	}

	room, err := h.rooms.Create(requestContext(c), currentUserID(c), c.Param("homeID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, room)
}

// GET /api/homes/:homeID/rooms/:roomID
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.Get(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("roomID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}

// PUT /api/homes/:homeID/rooms/:roomID
func (h *RoomHandler) Update(c *gin.Context) {
	var req services.RoomInput
	if !bindAndValidate(c, &req) {
		return
	}

	room, err := h.rooms.Update(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("roomID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}

// DELETE /api/homes/:homeID/rooms/:roomID
func (h *RoomHandler) Delete(c *gin.Context) {
	err := h.rooms.Delete(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("roomID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
