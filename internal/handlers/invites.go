package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/response"
)

// InviteHandler exposes the invite lifecycle. Management endpoints sit under
// the home and require ownership; Info and Accept resolve raw tokens.
type InviteHandler struct {
	invites *services.InviteService
}

func NewInviteHandler(invites *services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type createInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type acceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

type acceptSignupRequest struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// GET /api/homes/:homeID/invites
func (h *InviteHandler) List(c *gin.Context) {
	pending, err := h.invites.List(requestContext(c), currentUserID(c), c.Param("homeID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, pending)
}

// POST /api/homes/:homeID/invites
func (h *InviteHandler) Create(c *gin.Context) {
	var req createInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pending, err := h.invites.Create(requestContext(c), currentUserID(c), services.CreateInviteInput{
		HomeID: c.Param("homeID"),
		Email:  req.Email,
		Role:   req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, pending)
}

// POST /api/homes/:homeID/invites/:inviteID/resend
func (h *InviteHandler) Resend(c *gin.Context) {
	pending, err := h.invites.Resend(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("inviteID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, pending)
}

// DELETE /api/homes/:homeID/invites/:inviteID
func (h *InviteHandler) Revoke(c *gin.Context) {
	err := h.invites.Revoke(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("inviteID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/invites/:token — unauthenticated preview for the accept page.
func (h *InviteHandler) Info(c *gin.Context) {
	details, err := h.invites.Info(requestContext(c), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, details)
}

// POST /api/invites/accept
func (h *InviteHandler) Accept(c *gin.Context) {
	var req acceptInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	share, err := h.invites.Accept(requestContext(c), currentUserID(c), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, share)
}

// POST /api/invites/accept/signup — unauthenticated accept for invitees
// without an account; creates the account and the share together.
func (h *InviteHandler) AcceptWithSignup(c *gin.Context) {
	var req acceptSignupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, share, err := h.invites.AcceptWithSignup(requestContext(c), req.Token, services.AcceptSignupInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"user":  user,
		"share": share,
	})
}
