package handlers

import (
	"net/http"
	"strconv"

	"task-manager/api/internal/models"
	"task-manager/api/internal/repositories"
	"task-manager/api/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// queryInt returns zero for a missing, malformed or out-of-range value so
// that Normalize substitutes the default.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// taskFilterFromQuery reads list parameters. Unparseable numbers fall back
// to the defaults.
func taskFilterFromQuery(c *gin.Context) repositories.TaskFilter {
	page := queryInt(c, "page")
	limit := queryInt(c, "limit")
	return repositories.TaskFilter{
		Status:    models.TaskStatus(c.Query("status")),
		Priority:  models.TaskPriority(c.Query("priority")),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      page,
		Limit:     limit,
	}
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	tasks, pagination, err := h.taskService.List(c.Request.Context(), p, taskFilterFromQuery(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tasks, "pagination": pagination})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	task, err := h.taskService.Get(c.Request.Context(), p, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": task})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		_ = c.Error(err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), p, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "task created", "data": task})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if !bind(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		_ = c.Error(err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), p, id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task updated", "data": task})
}

func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), p, id, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "status updated to " + string(task.Status), "data": task})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), p, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task deleted"})
}

func (h *TaskHandler) GetStats(c *gin.Context) {
	stats, err := h.taskService.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
