package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kamy/api/internal/middleware"
	"github.com/kamy/api/internal/models"
	"github.com/kamy/api/internal/services"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
)

type TasksHandler struct {
	Tasks *services.TaskService
}

func NewTasksHandler(tasks *services.TaskService) *TasksHandler {
	return &TasksHandler{Tasks: tasks}
}

type createTaskRequest struct {
	Title       string `json:"title" validate:"min=2"`
	Description string `json:"description"`
	GroupID     string `json:"groupId" validate:"required,uuid"`
	AssignedTo  string `json:"assignedTo" validate:"required,uuid"`
	DueDate     string `json:"dueDate" validate:"required,isodate"`
}

func (r *createTaskRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.GroupID = strings.TrimSpace(r.GroupID)
	r.AssignedTo = strings.TrimSpace(r.AssignedTo)
	r.DueDate = strings.TrimSpace(r.DueDate)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending done"`
}

type taskResponse struct {
	Task taskDTO `json:"task"`
}

type tasksResponse struct {
	Tasks []taskDTO `json:"tasks"`
}

func (h *TasksHandler) ListByGroup(c *fiber.Ctx) error {
	tasks, err := h.Tasks.ListByGroup(c.UserContext(), pathID(c, "groupId"), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "task_list_failed", err)
	}
	return utils.JSON(c, fiber.StatusOK, tasksResponse{Tasks: newTaskDTOs(tasks)})
}

func (h *TasksHandler) Mine(c *fiber.Ctx) error {
	tasks, err := h.Tasks.ListAssigned(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "task_list_failed", err)
	}
	return utils.JSON(c, fiber.StatusOK, tasksResponse{Tasks: newTaskDTOs(tasks)})
}

func (h *TasksHandler) Get(c *fiber.Ctx) error {
	task, err := h.Tasks.Get(c.UserContext(), pathID(c, "id"), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "task_load_failed", err)
	}
	return utils.JSON(c, fiber.StatusOK, taskResponse{Task: newTaskDTO(task)})
}

func (h *TasksHandler) Create(c *fiber.Ctx) error {
	var req createTaskRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	// Formats were checked by bindJSON.
	groupID := uuid.MustParse(req.GroupID)
	assignedTo := uuid.MustParse(req.AssignedTo)
	dueDate, _ := time.Parse(models.DueDateLayout, req.DueDate)

	userID := middleware.CurrentUserID(c)
	task, err := h.Tasks.Create(c.UserContext(), userID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		GroupID:     groupID,
		AssignedTo:  assignedTo,
		DueDate:     dueDate,
	})
	if err != nil {
		return respondError(c, "task_create_failed", err)
	}

	logger.InfoWithUser(userID.String(), "task_created", map[string]interface{}{
		"task_id":     task.ID.String(),
		"group_id":    task.GroupID.String(),
		"assigned_to": task.AssignedTo.String(),
	})

	return utils.JSON(c, fiber.StatusCreated, taskResponse{Task: newTaskDTO(task)})
}

func (h *TasksHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	userID := middleware.CurrentUserID(c)
	task, err := h.Tasks.UpdateStatus(c.UserContext(), pathID(c, "id"), userID, models.TaskStatus(req.Status))
	if err != nil {
		return respondError(c, "task_status_failed", err)
	}

	logger.InfoWithUser(userID.String(), "task_status_updated", map[string]interface{}{
		"task_id": task.ID.String(),
		"status":  string(task.Status),
	})

	return utils.JSON(c, fiber.StatusOK, taskResponse{Task: newTaskDTO(task)})
}
