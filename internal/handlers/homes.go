package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/response"
)

// HomeHandler exposes home CRUD and membership management.
type HomeHandler struct {
	homes *services.HomeService
}

func NewHomeHandler(homes *services.HomeService) *HomeHandler {
	return &HomeHandler{homes: homes}
}

// GET /api/homes
func (h *HomeHandler) List(c *gin.Context) {
	summaries, err := h.homes.ListForUser(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summaries)
}

// POST /api/homes
func (h *HomeHandler) Create(c *gin.Context) {
	var req services.CreateHomeInput
	if !bindAndValidate(c, &req) {
		return
	}

	home, err := h.homes.Create(requestContext(c), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, home)
}

// GET /api/homes/:homeID
func (h *HomeHandler) Get(c *gin.Context) {
	home, err := h.homes.Get(requestContext(c), currentUserID(c), c.Param("homeID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, home)
}

// PATCH /api/homes/:homeID
func (h *HomeHandler) Update(c *gin.Context) {
	var req services.UpdateHomeInput
	if !bindAndValidate(c, &req) {
		return
	}

	home, err := h.homes.Update(requestContext(c), currentUserID(c), c.Param("homeID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, home)
}

// DELETE /api/homes/:homeID
func (h *HomeHandler) Delete(c *gin.Context) {
	if err := h.homes.Delete(requestContext(c), currentUserID(c), c.Param("homeID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/homes/:homeID/shares
func (h *HomeHandler) ListShares(c *gin.Context) {
	shares, err := h.homes.ListShares(requestContext(c), currentUserID(c), c.Param("homeID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, shares)
}

// POST /api/homes/:homeID/shares
func (h *HomeHandler) ShareWithUser(c *gin.Context) {
	var req services.ShareWithUserInput
	if !bindAndValidate(c, &req) {
		return
	}

	share, err := h.homes.ShareWithUser(requestContext(c), currentUserID(c), c.Param("homeID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, share)
}

// DELETE /api/homes/:homeID/shares/:shareID
func (h *HomeHandler) RevokeShare(c *gin.Context) {
	err := h.homes.RevokeShare(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("shareID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}
