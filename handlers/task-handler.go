package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"task-management/microservices/tasks-service/logging"
	"task-management/microservices/tasks-service/models"
	"task-management/microservices/tasks-service/services"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func checkRole(r *http.Request, allowedRoles []string) error {
	userRole := r.Header.Get("Role")
	if userRole == "" {
		return fmt.Errorf("role is missing in request header")
	}

	for _, role := range allowedRoles {
		if role == userRole {
			return nil
		}
	}
	return fmt.Errorf("access forbidden: user does not have the required role")
}

// writeError translates the typed domain failures into transport codes.
// Anything unrecognized is an internal error and its detail stays out of
// the response.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	var notFoundErr *models.NotFoundError
	var businessErr *models.BusinessRuleError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &notFoundErr):
		http.Error(w, notFoundErr.Error(), http.StatusNotFound)
	case errors.As(err, &businessErr):
		http.Error(w, businessErr.Error(), http.StatusConflict)
	default:
		logging.Logger.Errorf("Unhandled error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	var input models.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logging.Logger.Warnf("Failed to decode create task request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.service.CreateTask(r.Context(), &input)
	if err != nil {
		logging.Logger.Errorf("Failed to create task: %v", err)
		writeError(w, err)
		return
	}

	logging.Logger.Infof("Task %s created in project %s", task.ID.Hex(), task.ProjectID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	taskID := mux.Vars(r)["id"]
	task, err := h.service.GetTaskByID(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	taskID := mux.Vars(r)["id"]
	var fields models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		logging.Logger.Warnf("Failed to decode update task request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), taskID, &fields)
	if err != nil {
		logging.Logger.Errorf("Failed to update task %s: %v", taskID, err)
		writeError(w, err)
		return
	}

	logging.Logger.Infof("Task %s updated", taskID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// ChangeTaskStatus lets members move a task through its lifecycle without
// granting them the full update surface.
func (h *TaskHandler) ChangeTaskStatus(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	taskID := mux.Vars(r)["id"]
	var req struct {
		Status models.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Logger.Warnf("Failed to decode change status request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fields := models.TaskUpdate{Status: &req.Status}
	task, err := h.service.UpdateTask(r.Context(), taskID, &fields)
	if err != nil {
		logging.Logger.Errorf("Failed to change status of task %s: %v", taskID, err)
		writeError(w, err)
		return
	}

	logging.Logger.Infof("Task %s changed status to %s", taskID, task.Status)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	taskID := mux.Vars(r)["id"]
	if err := h.service.DeleteTask(r.Context(), taskID); err != nil {
		logging.Logger.Errorf("Failed to delete task %s: %v", taskID, err)
		writeError(w, err)
		return
	}

	logging.Logger.Infof("Task %s deleted", taskID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	tasks, err := h.service.GetAllTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks)
}

func (h *TaskHandler) GetTasksByProject(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	projectID := mux.Vars(r)["projectId"]
	if projectID == "" {
		http.Error(w, "Missing project ID", http.StatusBadRequest)
		return
	}

	tasks, err := h.service.GetTasksByProject(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks)
}

// HasUnfinishedTasks answers the users service before it tears down an
// account or a project.
func (h *TaskHandler) HasUnfinishedTasks(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager", "member"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	projectID := mux.Vars(r)["projectId"]
	unfinished, err := h.service.HasUnfinishedTasks(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"hasUnfinishedTasks": unfinished})
}

func (h *TaskHandler) RemoveUserFromAllTasks(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{"manager"}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	userID := mux.Vars(r)["userId"]
	removed, err := h.service.RemoveUserFromAllTasks(r.Context(), userID)
	if err != nil {
		logging.Logger.Errorf("Failed to remove user %s from tasks: %v", userID, err)
		writeError(w, err)
		return
	}

	logging.Logger.Infof("Removed user %s from %d task assignments", userID, removed)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"removedAssignments": removed})
}
