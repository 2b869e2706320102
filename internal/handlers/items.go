package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/response"
)

// ItemHandler exposes item CRUD within a home.
type ItemHandler struct {
	items *services.ItemService
}

func NewItemHandler(items *services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// GET /api/homes/:homeID/items?room_id=
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.items.List(requestContext(c), currentUserID(c), c.Param("homeID"), c.Query("room_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// POST /api/homes/:homeID/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req services.ItemInput
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.items.Create(requestContext(c), currentUserID(c), c.Param("homeID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// GET /api/homes/:homeID/items/:itemID
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.items.Get(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("itemID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// PUT /api/homes/:homeID/items/:itemID
func (h *ItemHandler) Update(c *gin.Context) {
	var req services.ItemInput
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.items.Update(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("itemID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DELETE /api/homes/:homeID/items/:itemID
func (h *ItemHandler) Delete(c *gin.Context) {
	err := h.items.Delete(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("itemID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
