package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cjmartens/homestead/internal/models"
	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/response"
)

// TaskHandler exposes maintenance task CRUD and completion within a home.
type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type taskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// GET /api/homes/:homeID/tasks?status=
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(requestContext(c), currentUserID(c), c.Param("homeID"), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tasks)
}

// POST /api/homes/:homeID/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req services.TaskInput
	if !bindAndValidate(c, &req) {
		return
	}

	task, err := h.tasks.Create(requestContext(c), currentUserID(c), c.Param("homeID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, task)
}

// GET /api/homes/:homeID/tasks/:taskID
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.Get(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("taskID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

// PUT /api/homes/:homeID/tasks/:taskID
func (h *TaskHandler) Update(c *gin.Context) {
	var req services.TaskInput
	if !bindAndValidate(c, &req) {
		return
	}

	task, err := h.tasks.Update(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("taskID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

// PATCH /api/homes/:homeID/tasks/:taskID/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req taskStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	status := models.TaskStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	task, err := h.tasks.UpdateStatus(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("taskID"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

// POST /api/homes/:homeID/tasks/:taskID/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	task, err := h.tasks.Complete(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("taskID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, task)
}

// DELETE /api/homes/:homeID/tasks/:taskID
func (h *TaskHandler) Delete(c *gin.Context) {
	err := h.tasks.Delete(requestContext(c), currentUserID(c), c.Param("homeID"), c.Param("taskID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
